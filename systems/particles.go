package systems

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"

	"github.com/pthm-cable/afterglow/vmath"
)

// EdgePolicy decides what happens to a particle that leaves the canvas.
type EdgePolicy uint8

const (
	// EdgeRespawn discards the particle and spawns a fresh one elsewhere.
	EdgeRespawn EdgePolicy = iota
	// EdgeWrap moves the particle to the opposite edge.
	EdgeWrap
)

// ErrUnknownEdgePolicy is returned by ParseEdgePolicy.
var ErrUnknownEdgePolicy = errors.New("unknown edge policy")

// ParseEdgePolicy converts a config name to an EdgePolicy.
func ParseEdgePolicy(name string) (EdgePolicy, error) {
	switch name {
	case "", "respawn":
		return EdgeRespawn, nil
	case "wrap":
		return EdgeWrap, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEdgePolicy, name)
	}
}

func (p EdgePolicy) String() string {
	switch p {
	case EdgeRespawn:
		return "respawn"
	case EdgeWrap:
		return "wrap"
	default:
		return fmt.Sprintf("EdgePolicy(%d)", uint8(p))
	}
}

// ParticleRecorder receives the drawable state of every particle as it is shown.
type ParticleRecorder interface {
	Record(x, y float64, c color.NRGBA)
}

// Particle is a point steered by the flow field.
type Particle struct {
	Pos      vmath.Vector
	Prev     vmath.Vector
	Vel      vmath.Vector
	Acc      vmath.Vector
	Radius   float64
	MaxSpeed float64
}

// NewParticle creates a resting particle at (x, y).
func NewParticle(x, y, radius, maxSpeed float64) Particle {
	pos := vmath.New(x, y, 0)
	return Particle{
		Pos:      pos,
		Prev:     pos,
		Radius:   radius,
		MaxSpeed: maxSpeed,
	}
}

// Show draws the particle and the segment it travelled last tick.
func (p *Particle) Show(s Surface, st DrawStyle, c color.NRGBA, rec ParticleRecorder) {
	s.Point(p.Pos.X, p.Pos.Y, st.PointSize, c)
	if st.DrawTrail {
		s.Line(p.Pos.X, p.Pos.Y, p.Prev.X, p.Prev.Y, st.LineWidth, c)
	}
	if rec != nil {
		rec.Record(p.Pos.X, p.Pos.Y, c)
	}
}

// Update integrates one tick of motion and clears the accumulated force.
func (p *Particle) Update() {
	p.Prev = p.Pos
	p.Pos.Add(p.Vel)
	p.Vel.Add(p.Acc)
	p.Acc.Mult(0)
	p.Vel.Limit(p.MaxSpeed)
}

// ApplyForce accumulates f into the acceleration.
func (p *Particle) ApplyForce(f vmath.Vector) {
	p.Acc.Add(f)
}

// Follow applies the flow vector of the cell under the particle.
func (p *Particle) Follow(g *Grid) error {
	f, err := g.Cell(p.Pos.X, p.Pos.Y)
	if err != nil {
		return err
	}
	p.ApplyForce(f)
	return nil
}

// Edge checks the particle against the canvas bounds extended by its radius.
// It returns true when the particle must be replaced. Under EdgeWrap the
// particle is moved to the opposite edge instead and Edge returns false.
func (p *Particle) Edge(policy EdgePolicy, width, height float64) bool {
	r := p.Radius
	if policy == EdgeRespawn {
		return p.Pos.X < -r || p.Pos.Y < -r || p.Pos.X > width+r || p.Pos.Y > height+r
	}

	if p.Pos.X < -r {
		p.Pos.X = width + r
	}
	if p.Pos.Y < -r {
		p.Pos.Y = height + r
	}
	if p.Pos.X > width+r {
		p.Pos.X = -r
	}
	if p.Pos.Y > height+r {
		p.Pos.Y = -r
	}
	return false
}

// DrawStyle controls how particles are drawn.
type DrawStyle struct {
	PointSize float64
	LineWidth float64
	DrawTrail bool
}

// ParticleSettings configures a ParticleSystem.
type ParticleSettings struct {
	Count         int
	Width, Height float64
	Radius        float64
	MaxSpeed      float64
	Policy        EdgePolicy
	Style         DrawStyle
}

// StepResult summarizes one tick of the particle system.
type StepResult struct {
	Respawned int
	Wrapped   int
}

// ParticleSystem owns the particle pool.
type ParticleSystem struct {
	Particles []Particle
	settings  ParticleSettings
	rng       *rand.Rand
}

// NewParticleSystem creates Count particles at random positions.
func NewParticleSystem(s ParticleSettings, rng *rand.Rand) *ParticleSystem {
	ps := &ParticleSystem{
		Particles: make([]Particle, s.Count),
		settings:  s,
		rng:       rng,
	}
	for i := range ps.Particles {
		ps.Particles[i] = ps.spawn()
	}
	return ps
}

func (s *ParticleSystem) spawn() Particle {
	x := s.rng.Float64() * s.settings.Width
	y := s.rng.Float64() * s.settings.Height
	return NewParticle(x, y, s.settings.Radius, s.settings.MaxSpeed)
}

// Step shows, moves and steers every particle, then applies the edge policy.
// Drawing goes to surf in the current color; rec may be nil.
func (s *ParticleSystem) Step(g *Grid, surf Surface, c color.NRGBA, rec ParticleRecorder) (StepResult, error) {
	var res StepResult
	w, h := s.settings.Width, s.settings.Height

	for i := range s.Particles {
		p := &s.Particles[i]

		p.Show(surf, s.settings.Style, c, rec)
		p.Update()
		if err := p.Follow(g); err != nil {
			return res, fmt.Errorf("particle %d: %w", i, err)
		}

		before := p.Pos
		if p.Edge(s.settings.Policy, w, h) {
			s.Particles[i] = s.spawn()
			res.Respawned++
		} else if p.Pos != before {
			res.Wrapped++
		}
	}

	return res, nil
}

// Count returns the number of particles.
func (s *ParticleSystem) Count() int {
	return len(s.Particles)
}

// Speeds returns the current speed of every particle.
func (s *ParticleSystem) Speeds() []float64 {
	out := make([]float64, len(s.Particles))
	for i := range s.Particles {
		out[i] = s.Particles[i].Vel.Mag()
	}
	return out
}
