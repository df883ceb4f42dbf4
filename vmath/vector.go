// Package vmath provides the 2D/3D vector type used by the flow field and particles.
package vmath

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Operand errors reported to the warning handler. Vector methods never return
// them directly: a failed operation leaves the receiver unchanged.
var (
	ErrDivideByZero  = errors.New("divide by 0")
	ErrNonFinite     = errors.New("operand contains components that are not finite numbers")
	ErrOperandLength = errors.New("operand must have 1, 2 or 3 components")
)

// warnHandler receives rejected operations.
var warnHandler = func(op string, err error) {
	slog.Warn("vector operation ignored", "op", op, "error", err)
}

// SetWarnHandler replaces the handler called when an operation is rejected.
// Passing nil restores the default slog handler.
func SetWarnHandler(fn func(op string, err error)) {
	if fn == nil {
		fn = func(op string, err error) {
			slog.Warn("vector operation ignored", "op", op, "error", err)
		}
	}
	warnHandler = fn
}

func warn(op string, err error) {
	warnHandler(op, err)
}

// Vector is a Euclidean vector. Z is zero for the 2D vectors used by the simulation.
type Vector struct {
	X, Y, Z float64
}

// New creates a vector from its components.
func New(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// FromAngle returns a unit 2D vector pointing at angle radians.
func FromAngle(angle float64) Vector {
	return FromAngleLen(angle, 1)
}

// FromAngleLen returns a 2D vector of the given length pointing at angle radians.
func FromAngleLen(angle, length float64) Vector {
	sin, cos := math.Sincos(angle)
	return Vector{X: length * cos, Y: length * sin}
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Copy returns a copy of v.
func (v Vector) Copy() Vector {
	return v
}

// IsZero reports whether all components are zero.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func (v Vector) String() string {
	return fmt.Sprintf("[%g, %g, %g]", v.X, v.Y, v.Z)
}

// Add adds o component-wise.
func (v *Vector) Add(o Vector) *Vector {
	return v.AddXYZ(o.X, o.Y, o.Z)
}

// AddXYZ adds the given components.
func (v *Vector) AddXYZ(x, y, z float64) *Vector {
	if !finite(x, y, z) {
		warn("add", ErrNonFinite)
		return v
	}
	v.X += x
	v.Y += y
	v.Z += z
	return v
}

// AddSlice adds up to three components; missing components count as zero.
func (v *Vector) AddSlice(a []float64) *Vector {
	if len(a) > 3 {
		warn("add", ErrOperandLength)
		return v
	}
	var c [3]float64
	copy(c[:], a)
	return v.AddXYZ(c[0], c[1], c[2])
}

// Sub subtracts o component-wise.
func (v *Vector) Sub(o Vector) *Vector {
	if !finite(o.X, o.Y, o.Z) {
		warn("sub", ErrNonFinite)
		return v
	}
	v.X -= o.X
	v.Y -= o.Y
	v.Z -= o.Z
	return v
}

// Mult scales all components by n.
func (v *Vector) Mult(n float64) *Vector {
	if !finite(n) {
		warn("mult", ErrNonFinite)
		return v
	}
	v.X *= n
	v.Y *= n
	v.Z *= n
	return v
}

// MultVec multiplies component-wise by o.
func (v *Vector) MultVec(o Vector) *Vector {
	if !finite(o.X, o.Y, o.Z) {
		warn("mult", ErrNonFinite)
		return v
	}
	v.X *= o.X
	v.Y *= o.Y
	v.Z *= o.Z
	return v
}

// MultSlice multiplies by a 1-, 2- or 3-component operand. A single component
// scales uniformly; two components scale x and y only.
func (v *Vector) MultSlice(a []float64) *Vector {
	if !finite(a...) {
		warn("mult", ErrNonFinite)
		return v
	}
	switch len(a) {
	case 1:
		return v.Mult(a[0])
	case 2:
		v.X *= a[0]
		v.Y *= a[1]
	case 3:
		v.X *= a[0]
		v.Y *= a[1]
		v.Z *= a[2]
	default:
		warn("mult", ErrOperandLength)
	}
	return v
}

// Div divides all components by n. Division by zero is ignored.
func (v *Vector) Div(n float64) *Vector {
	if !finite(n) {
		warn("div", ErrNonFinite)
		return v
	}
	if n == 0 {
		warn("div", ErrDivideByZero)
		return v
	}
	v.X /= n
	v.Y /= n
	v.Z /= n
	return v
}

// DivVec divides component-wise by o. When both vectors have a zero z the
// pair is treated as 2D and z is left alone.
func (v *Vector) DivVec(o Vector) *Vector {
	if !finite(o.X, o.Y, o.Z) {
		warn("div", ErrNonFinite)
		return v
	}
	flat := o.Z == 0 && v.Z == 0
	if o.X == 0 || o.Y == 0 || (!flat && o.Z == 0) {
		warn("div", ErrDivideByZero)
		return v
	}
	v.X /= o.X
	v.Y /= o.Y
	if !flat {
		v.Z /= o.Z
	}
	return v
}

// DivSlice divides by a 1-, 2- or 3-component operand, shaped like MultSlice.
func (v *Vector) DivSlice(a []float64) *Vector {
	if !finite(a...) {
		warn("div", ErrNonFinite)
		return v
	}
	if len(a) == 0 || len(a) > 3 {
		warn("div", ErrOperandLength)
		return v
	}
	for _, c := range a {
		if c == 0 {
			warn("div", ErrDivideByZero)
			return v
		}
	}
	switch len(a) {
	case 1:
		return v.Div(a[0])
	case 2:
		v.X /= a[0]
		v.Y /= a[1]
	case 3:
		v.X /= a[0]
		v.Y /= a[1]
		v.Z /= a[2]
	}
	return v
}

// MagSq returns the squared magnitude. It overflows for components beyond
// about 1e154; use Mag for comparisons.
func (v Vector) MagSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Mag returns the magnitude, scaled by the largest component so that it
// neither overflows nor underflows for finite vectors.
func (v Vector) Mag() float64 {
	m, x, y, z := v.scaled()
	if m == 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return m
	}
	return m * math.Sqrt(x*x+y*y+z*z)
}

// scaled returns the largest absolute component and v divided by it.
func (v Vector) scaled() (m, x, y, z float64) {
	m = max(math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z))
	if m == 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return m, 0, 0, 0
	}
	return m, v.X / m, v.Y / m, v.Z / m
}

// Dist returns the distance between v and o.
func (v Vector) Dist(o Vector) float64 {
	d := o
	d.X -= v.X
	d.Y -= v.Y
	d.Z -= v.Z
	return d.Mag()
}

// Heading returns the 2D angle of v in radians.
func (v Vector) Heading() float64 {
	return math.Atan2(v.Y, v.X)
}

// Normalize scales v to unit length. The zero vector and vectors with
// non-finite components are left unchanged.
func (v *Vector) Normalize() *Vector {
	m, x, y, z := v.scaled()
	if m == 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return v
	}
	l := math.Sqrt(x*x + y*y + z*z)
	v.X, v.Y, v.Z = x/l, y/l, z/l
	return v
}

// SetMag sets the magnitude of v, keeping its direction.
func (v *Vector) SetMag(n float64) *Vector {
	return v.Normalize().Mult(n)
}

// Limit caps the magnitude of v at maxMag.
func (v *Vector) Limit(maxMag float64) *Vector {
	if v.Mag() > maxMag {
		v.Normalize().Mult(maxMag)
	}
	return v
}
