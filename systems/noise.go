package systems

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// ErrUnknownNoiseBackend is returned by NewNoise for an unrecognized backend name.
var ErrUnknownNoiseBackend = errors.New("unknown noise backend")

// Noise backend names accepted by NewNoise.
const (
	NoisePerlin      = "perlin"
	NoiseOpenSimplex = "opensimplex"
	NoiseHarmonic    = "harmonic"
)

// maxNoise is the largest value a NoiseSource may return.
var maxNoise = math.Nextafter(1, 0)

// NoiseSource is a deterministic, continuous 3D noise function with output in [0, 1).
// Implementations hold no state that changes between calls.
type NoiseSource interface {
	Noise(x, y, z float64) float64
}

// NoiseSettings selects and tunes a noise backend.
type NoiseSettings struct {
	Backend string
	Seed    int64
	Octaves int
	Falloff float64
}

// ResolveSeed returns s with a zero Seed replaced by runSeed.
func (s NoiseSettings) ResolveSeed(runSeed int64) NoiseSettings {
	if s.Seed == 0 {
		s.Seed = runSeed
	}
	return s
}

// NewNoise constructs the backend named in s.
func NewNoise(s NoiseSettings) (NoiseSource, error) {
	octaves := s.Octaves
	if octaves < 1 {
		octaves = 1
	}
	falloff := s.Falloff
	if falloff <= 0 || falloff >= 1 {
		falloff = 0.5
	}

	switch s.Backend {
	case "", NoisePerlin:
		return &PerlinNoise{base: newPerlinBase(s.Seed), octaves: octaves, falloff: falloff}, nil
	case NoiseOpenSimplex:
		return &SimplexNoise{noise: opensimplex.NewNormalized(s.Seed), octaves: octaves, falloff: falloff}, nil
	case NoiseHarmonic:
		return &HarmonicNoise{p: perlin.NewPerlin(1/falloff, 2, int32(octaves), s.Seed)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNoiseBackend, s.Backend)
	}
}

// clampNoise folds a value into [0, 1).
func clampNoise(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > maxNoise {
		return maxNoise
	}
	return v
}

// octaveSum layers octaves of sample, doubling frequency and scaling amplitude
// by falloff each step. sample must return values in [0, 1]; the result is
// normalized by the total amplitude so it stays in that range.
func octaveSum(x, y, z float64, octaves int, falloff float64, sample func(x, y, z float64) float64) float64 {
	var sum, norm float64
	amp := 0.5
	freq := 1.0
	for i := 0; i < octaves; i++ {
		sum += amp * sample(x*freq, y*freq, z*freq)
		norm += amp
		amp *= falloff
		freq *= 2
	}
	return clampNoise(sum / norm)
}

// PerlinNoise generates coherent noise values.
type PerlinNoise struct {
	base    *perlinBase
	octaves int
	falloff float64
}

// NewPerlinNoise creates a single-octave Perlin noise generator.
func NewPerlinNoise(seed int64) *PerlinNoise {
	return &PerlinNoise{base: newPerlinBase(seed), octaves: 1, falloff: 0.5}
}

// Noise returns octave-summed Perlin noise in [0, 1).
func (p *PerlinNoise) Noise(x, y, z float64) float64 {
	return octaveSum(x, y, z, p.octaves, p.falloff, func(x, y, z float64) float64 {
		return (p.base.Noise3D(x, y, z) + 1) * 0.5
	})
}

// Noise3D returns raw gradient noise in roughly [-1, 1].
func (p *PerlinNoise) Noise3D(x, y, z float64) float64 {
	return p.base.Noise3D(x, y, z)
}

type perlinBase struct {
	perm [512]int
}

func newPerlinBase(seed int64) *perlinBase {
	p := &perlinBase{}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}

	// Shuffle
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	// Duplicate so corner hashes never need wrapping
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}

	return p
}

func (p *perlinBase) Noise3D(x, y, z float64) float64 {
	// Find unit cube
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255
	Z := int(math.Floor(z)) & 255

	// Find relative position in cube
	x -= math.Floor(x)
	y -= math.Floor(y)
	z -= math.Floor(z)

	u := fade(x)
	v := fade(y)
	w := fade(z)

	// Hash coordinates of cube corners
	A := p.perm[X] + Y
	AA := p.perm[A] + Z
	AB := p.perm[A+1] + Z
	B := p.perm[X+1] + Y
	BA := p.perm[B] + Z
	BB := p.perm[B+1] + Z

	// Blend results from 8 corners
	return lerp(w, lerp(v, lerp(u, grad3D(p.perm[AA], x, y, z),
		grad3D(p.perm[BA], x-1, y, z)),
		lerp(u, grad3D(p.perm[AB], x, y-1, z),
			grad3D(p.perm[BB], x-1, y-1, z))),
		lerp(v, lerp(u, grad3D(p.perm[AA+1], x, y, z-1),
			grad3D(p.perm[BA+1], x-1, y, z-1)),
			lerp(u, grad3D(p.perm[AB+1], x, y-1, z-1),
				grad3D(p.perm[BB+1], x-1, y-1, z-1))))
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad3D(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

// SimplexNoise layers OpenSimplex octaves.
type SimplexNoise struct {
	noise   opensimplex.Noise
	octaves int
	falloff float64
}

// Noise returns octave-summed OpenSimplex noise in [0, 1).
func (s *SimplexNoise) Noise(x, y, z float64) float64 {
	return octaveSum(x, y, z, s.octaves, s.falloff, s.noise.Eval3)
}

// HarmonicNoise wraps the alpha/beta harmonic Perlin generator.
type HarmonicNoise struct {
	p *perlin.Perlin
}

// Noise returns harmonic Perlin noise mapped into [0, 1).
func (h *HarmonicNoise) Noise(x, y, z float64) float64 {
	return clampNoise((h.p.Noise3D(x, y, z) + 1) * 0.5)
}
