package vmath

import (
	"errors"
	"math"
	"testing"
)

// captureWarnings installs a recording handler for the duration of the test.
func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var got []error
	SetWarnHandler(func(op string, err error) {
		got = append(got, err)
	})
	t.Cleanup(func() { SetWarnHandler(nil) })
	return &got
}

func TestLimit(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
		max  float64
	}{
		{"over limit", New(3, 4, 0), 1},
		{"far over limit", New(-300, 1200, 0), 2.5},
		{"exactly at limit", New(0, 2, 0), 2},
		{"under limit", New(0.1, -0.2, 0), 1},
		{"zero", New(0, 0, 0), 1},
		{"3d", New(1, 2, 2), 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.v
			v.Limit(tt.max)
			if v.Mag() > tt.max+1e-9 {
				t.Errorf("Limit(%v) magnitude = %v, want <= %v", tt.max, v.Mag(), tt.max)
			}
			if tt.v.Mag() <= tt.max && v != tt.v {
				t.Errorf("Limit changed vector under limit: %v -> %v", tt.v, v)
			}
			if tt.v.Mag() > tt.max && math.Abs(v.Mag()-tt.max) > 1e-9 {
				t.Errorf("Limit should rescale to exactly %v, got %v", tt.max, v.Mag())
			}
		})
	}
}

func TestLimitKeepsDirection(t *testing.T) {
	v := New(3, 0, 0)
	v.Limit(1)
	if v != New(1, 0, 0) {
		t.Errorf("expected (1,0,0), got %v", v)
	}
}

func TestNormalize(t *testing.T) {
	tests := []Vector{
		New(3, 4, 0),
		New(-0.001, 0.002, 0),
		New(1e6, -1e6, 3),
		New(0, 0, 7),
	}
	for _, v := range tests {
		got := v
		got.Normalize()
		if math.Abs(got.Mag()-1) > 1e-12 {
			t.Errorf("Normalize(%v).Mag() = %v, want 1", v, got.Mag())
		}
		if math.Abs(got.Heading()-v.Heading()) > 1e-12 {
			t.Errorf("Normalize(%v) changed heading", v)
		}
	}

	zero := Vector{}
	zero.Normalize()
	if !zero.IsZero() {
		t.Errorf("normalizing zero vector should leave it zero, got %v", zero)
	}
}

func TestExtremeMagnitudes(t *testing.T) {
	tests := []struct {
		name    string
		v       Vector
		wantMag float64
	}{
		{"huge axis", New(1e200, 0, 0), 1e200},
		{"huge diagonal", New(1e200, 1e200, 0), math.Sqrt2 * 1e200},
		{"tiny diagonal", New(1e-170, 1e-170, 0), math.Sqrt2 * 1e-170},
		{"huge 3d", New(-3e300, 4e300, 0), 5e300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Mag(); math.Abs(got-tt.wantMag)/tt.wantMag > 1e-12 {
				t.Errorf("Mag() = %v, want %v", got, tt.wantMag)
			}

			n := tt.v
			n.Normalize()
			if math.Abs(n.Mag()-1) > 1e-12 {
				t.Errorf("Normalize().Mag() = %v, want 1", n.Mag())
			}
			if math.Abs(n.Heading()-tt.v.Heading()) > 1e-12 {
				t.Errorf("Normalize changed heading %v -> %v", tt.v.Heading(), n.Heading())
			}

			l := tt.v
			l.Limit(1)
			if tt.wantMag <= 1 && l != tt.v {
				t.Errorf("Limit(1) changed vector under limit: %v -> %v", tt.v, l)
			}
			if tt.wantMag > 1 && math.Abs(l.Mag()-1) > 1e-12 {
				t.Errorf("Limit(1).Mag() = %v, want 1", l.Mag())
			}

			m := tt.v
			m.SetMag(3)
			if math.Abs(m.Mag()-3) > 1e-12 {
				t.Errorf("SetMag(3).Mag() = %v, want 3", m.Mag())
			}
		})
	}
}

func TestFromAngleMagnitude(t *testing.T) {
	angles := []float64{0, 0.5, math.Pi / 2, math.Pi, -2.3, 4 * math.Pi, 123.456}
	lengths := []float64{0, 1, 3, 0.25, 1000}

	for _, a := range angles {
		for _, l := range lengths {
			v := FromAngleLen(a, l)
			if math.Abs(v.Mag()-l) > 1e-9 {
				t.Errorf("FromAngleLen(%v, %v).Mag() = %v", a, l, v.Mag())
			}
			if v.Z != 0 {
				t.Errorf("FromAngleLen should produce a 2D vector, got z=%v", v.Z)
			}
		}
	}

	if v := FromAngle(0); v != New(1, 0, 0) {
		t.Errorf("FromAngle(0) = %v, want (1,0,0)", v)
	}
}

func TestSetMag(t *testing.T) {
	v := FromAngle(1.2)
	v.SetMag(3)
	if math.Abs(v.Mag()-3) > 1e-12 {
		t.Errorf("SetMag(3) magnitude = %v", v.Mag())
	}
	if math.Abs(v.Heading()-1.2) > 1e-12 {
		t.Errorf("SetMag changed heading to %v", v.Heading())
	}
}

func TestDivByZeroLeavesVectorUnchanged(t *testing.T) {
	warnings := captureWarnings(t)

	orig := New(1.5, -2.25, 0.125)
	ops := []struct {
		name string
		fn   func(v *Vector)
	}{
		{"scalar", func(v *Vector) { v.Div(0) }},
		{"vector x", func(v *Vector) { v.DivVec(New(0, 1, 1)) }},
		{"vector y", func(v *Vector) { v.DivVec(New(1, 0, 1)) }},
		{"vector z in 3d", func(v *Vector) { v.DivVec(New(1, 1, 0)) }},
		{"slice single", func(v *Vector) { v.DivSlice([]float64{0}) }},
		{"slice pair", func(v *Vector) { v.DivSlice([]float64{2, 0}) }},
		{"slice triple", func(v *Vector) { v.DivSlice([]float64{2, 2, 0}) }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			*warnings = nil
			v := orig
			op.fn(&v)
			if math.Float64bits(v.X) != math.Float64bits(orig.X) ||
				math.Float64bits(v.Y) != math.Float64bits(orig.Y) ||
				math.Float64bits(v.Z) != math.Float64bits(orig.Z) {
				t.Errorf("vector changed: %v -> %v", orig, v)
			}
			if len(*warnings) != 1 || !errors.Is((*warnings)[0], ErrDivideByZero) {
				t.Errorf("expected one divide-by-zero warning, got %v", *warnings)
			}
		})
	}
}

func TestDivVecFlat(t *testing.T) {
	captureWarnings(t)

	v := New(4, 9, 0)
	v.DivVec(New(2, 3, 0))
	if v != New(2, 3, 0) {
		t.Errorf("2D division = %v, want (2,3,0)", v)
	}
}

func TestNonFiniteOperands(t *testing.T) {
	warnings := captureWarnings(t)

	orig := New(1, 2, 3)
	ops := []struct {
		name string
		fn   func(v *Vector)
	}{
		{"mult nan", func(v *Vector) { v.Mult(math.NaN()) }},
		{"mult inf", func(v *Vector) { v.Mult(math.Inf(1)) }},
		{"mult vec", func(v *Vector) { v.MultVec(New(1, math.Inf(-1), 1)) }},
		{"mult slice", func(v *Vector) { v.MultSlice([]float64{1, math.NaN()}) }},
		{"div nan", func(v *Vector) { v.Div(math.NaN()) }},
		{"div vec", func(v *Vector) { v.DivVec(New(math.NaN(), 1, 1)) }},
		{"add", func(v *Vector) { v.Add(New(math.Inf(1), 0, 0)) }},
		{"add xyz", func(v *Vector) { v.AddXYZ(0, 0, math.NaN()) }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			*warnings = nil
			v := orig
			op.fn(&v)
			if v != orig {
				t.Errorf("vector changed: %v -> %v", orig, v)
			}
			if len(*warnings) != 1 || !errors.Is((*warnings)[0], ErrNonFinite) {
				t.Errorf("expected one non-finite warning, got %v", *warnings)
			}
		})
	}
}

func TestSliceOperands(t *testing.T) {
	warnings := captureWarnings(t)

	tests := []struct {
		name string
		fn   func(v *Vector)
		want Vector
	}{
		{"mult uniform", func(v *Vector) { v.MultSlice([]float64{2}) }, New(2, 4, 6)},
		{"mult xy", func(v *Vector) { v.MultSlice([]float64{2, 3}) }, New(2, 6, 3)},
		{"mult xyz", func(v *Vector) { v.MultSlice([]float64{2, 3, 4}) }, New(2, 6, 12)},
		{"div uniform", func(v *Vector) { v.DivSlice([]float64{2}) }, New(0.5, 1, 1.5)},
		{"div xy", func(v *Vector) { v.DivSlice([]float64{2, 4}) }, New(0.5, 0.5, 3)},
		{"add partial", func(v *Vector) { v.AddSlice([]float64{1}) }, New(2, 2, 3)},
		{"add full", func(v *Vector) { v.AddSlice([]float64{1, 1, 1}) }, New(2, 3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(1, 2, 3)
			tt.fn(&v)
			if v != tt.want {
				t.Errorf("got %v, want %v", v, tt.want)
			}
		})
	}
	if len(*warnings) != 0 {
		t.Errorf("unexpected warnings: %v", *warnings)
	}

	v := New(1, 2, 3)
	v.MultSlice([]float64{1, 2, 3, 4})
	if v != New(1, 2, 3) || len(*warnings) != 1 || !errors.Is((*warnings)[0], ErrOperandLength) {
		t.Errorf("4-component operand should be rejected, got %v warnings=%v", v, *warnings)
	}
}

func TestChaining(t *testing.T) {
	v := New(1, 1, 0)
	v.Add(New(1, 1, 0)).Mult(3).Sub(New(1, 0, 0))
	if v != New(5, 6, 0) {
		t.Errorf("chained result = %v, want (5,6,0)", v)
	}
	if d := New(0, 0, 0).Dist(New(3, 4, 0)); d != 5 {
		t.Errorf("Dist = %v, want 5", d)
	}
}
