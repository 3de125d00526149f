package physics

import (
	"math"
	"math/rand/v2"
)

// Config holds the simulation constants. Velocities, jitter and max speed are
// expressed per nominal tick; when TickRate differs from NominalRate each step
// is scaled so motion stays consistent in wall-clock time.
type Config struct {
	TickRate     float64 `yaml:"tick_rate"`
	NominalRate  float64 `yaml:"nominal_rate"`
	Restitution  float64 `yaml:"restitution"`
	MaxSpeed     float64 `yaml:"max_speed"`
	Jitter       float64 `yaml:"jitter"`
	InitialSpeed float64 `yaml:"initial_speed"`
	BodySize     float64 `yaml:"body_size"`
	Padding      float64 `yaml:"padding"`
}

// DefaultConfig returns constants tuned for a 60 Hz display.
func DefaultConfig() Config {
	return Config{
		TickRate:     60,
		NominalRate:  60,
		Restitution:  0.9,
		MaxSpeed:     4,
		Jitter:       0.2,
		InitialSpeed: 3,
		BodySize:     80,
		Padding:      100,
	}
}

// StepScale returns how many nominal ticks one real tick represents.
func (c Config) StepScale() float64 {
	if c.TickRate <= 0 || c.NominalRate <= 0 {
		return 1
	}
	return c.NominalRate / c.TickRate
}

// Simulator advances free bodies. It is not safe for concurrent use; the
// engine serializes access.
type Simulator struct {
	cfg    Config
	rng    *rand.Rand
	bounds Bounds
}

// NewSimulator creates a Simulator. A nil rng gets a randomly seeded source.
func NewSimulator(cfg Config, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{cfg: cfg, rng: rng}
}

// Config returns the simulator constants.
func (s *Simulator) Config() Config {
	return s.cfg
}

// Bounds returns the current container size.
func (s *Simulator) Bounds() Bounds {
	return s.bounds
}

// SetBounds updates the container size. Invalid sizes are stored but make
// Place and Step no-ops until a valid size arrives.
func (s *Simulator) SetBounds(b Bounds) {
	s.bounds = b
}

// Place creates one body per label at a random position inside the padded
// container, with a random initial velocity. It returns nil while the bounds
// are not valid.
func (s *Simulator) Place(labels []string) []*Body {
	if !s.bounds.Valid() {
		return nil
	}

	size := s.cfg.BodySize
	bodies := make([]*Body, len(labels))
	for i, label := range labels {
		bodies[i] = &Body{
			ID:    i,
			Label: label,
			Size:  size,
			Pos: Vec2{
				X: s.spread(s.bounds.Width, size),
				Y: s.spread(s.bounds.Height, size),
			},
			Vel: ClampSpeed(Vec2{
				X: (s.rng.Float64() - 0.5) * s.cfg.InitialSpeed,
				Y: (s.rng.Float64() - 0.5) * s.cfg.InitialSpeed,
			}, s.cfg.MaxSpeed),
		}
	}
	return bodies
}

// spread picks a coordinate in [pad, limit-pad], shrinking the padding when
// the container is too small to honor it.
func (s *Simulator) spread(extent, size float64) float64 {
	max := limit(extent, size)
	pad := math.Min(s.cfg.Padding, max/2)
	return pad + s.rng.Float64()*(max-2*pad)
}

// RandomPoint returns margin + r*(extent - reserve) on each axis, with the
// random span floored at zero.
func (s *Simulator) RandomPoint(margin, reserve float64) Vec2 {
	return Vec2{
		X: margin + s.rng.Float64()*math.Max(0, s.bounds.Width-reserve),
		Y: margin + s.rng.Float64()*math.Max(0, s.bounds.Height-reserve),
	}
}

// Step advances every Free body by one tick. Grabbed bodies are skipped and
// their velocity pinned to zero.
func (s *Simulator) Step(bodies []*Body) {
	if !s.bounds.Valid() {
		return
	}
	scale := s.cfg.StepScale()
	for _, b := range bodies {
		if b.State == Grabbed {
			b.Vel = Vec2{}
			continue
		}
		s.step(b, scale)
	}
}

func (s *Simulator) step(b *Body, scale float64) {
	// Velocities may arrive above the limit (initial placement, config
	// changes); never integrate an over-speed vector.
	b.Vel = ClampSpeed(b.Vel, s.cfg.MaxSpeed)

	b.Pos = b.Pos.Add(b.Vel.Scale(scale))

	maxX := limit(s.bounds.Width, b.Size)
	if b.Pos.X < 0 || b.Pos.X > maxX {
		b.Vel.X = -b.Vel.X * s.cfg.Restitution
		b.Pos.X = clamp(b.Pos.X, 0, maxX)
	}
	maxY := limit(s.bounds.Height, b.Size)
	if b.Pos.Y < 0 || b.Pos.Y > maxY {
		b.Vel.Y = -b.Vel.Y * s.cfg.Restitution
		b.Pos.Y = clamp(b.Pos.Y, 0, maxY)
	}

	b.Vel.X += (s.rng.Float64() - 0.5) * s.cfg.Jitter * scale
	b.Vel.Y += (s.rng.Float64() - 0.5) * s.cfg.Jitter * scale

	b.Vel = ClampSpeed(b.Vel, s.cfg.MaxSpeed)
}

// Contain clamps a Free body back inside the current bounds, used after the
// container shrinks. Grabbed bodies may sit anywhere.
func (s *Simulator) Contain(b *Body) {
	if b.State == Grabbed || !s.bounds.Valid() {
		return
	}
	b.Pos.X = clamp(b.Pos.X, 0, limit(s.bounds.Width, b.Size))
	b.Pos.Y = clamp(b.Pos.Y, 0, limit(s.bounds.Height, b.Size))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
