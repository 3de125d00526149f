package completion

import (
	"math"
	"time"

	"github.com/ayusman/guineaday/internal/physics"
)

// ZoneHit completes when a body is released with its center closer than
// Threshold to a zone center.
type ZoneHit struct {
	Threshold float64
	zones     []Zone
	now       func() time.Time
}

// NewZoneHit creates a zone policy. A non-positive threshold selects the
// default.
func NewZoneHit(threshold float64) *ZoneHit {
	if threshold <= 0 {
		threshold = DefaultZoneThreshold
	}
	return &ZoneHit{Threshold: threshold, now: time.Now}
}

// SetZones replaces the targets. Zones are checked in slice order.
func (z *ZoneHit) SetZones(zones []Zone) {
	z.zones = zones
}

// Zones returns the current targets.
func (z *ZoneHit) Zones() []Zone {
	return z.zones
}

func (z *ZoneHit) Name() string { return PolicyZone }

func (z *ZoneHit) Grab(*physics.Body, physics.Vec2) {}

func (z *ZoneHit) Move(*physics.Body, physics.Vec2) (Completion, bool) {
	return Completion{}, false
}

// Release returns the first zone within reach of the body center.
func (z *ZoneHit) Release(b *physics.Body, _ physics.Vec2) (Completion, bool) {
	zone, ok := z.Hit(b.Center())
	if !ok {
		return Completion{}, false
	}
	return Completion{
		Body:   b.Label,
		Zone:   zone.Label,
		Policy: PolicyZone,
		At:     z.now(),
	}, true
}

// Hit returns the first zone whose center lies strictly within Threshold of p.
func (z *ZoneHit) Hit(p physics.Vec2) (Zone, bool) {
	for _, zone := range z.zones {
		if p.Dist(zone.Center()) < z.Threshold {
			return zone, true
		}
	}
	return Zone{}, false
}

func (z *ZoneHit) Abort()            {}
func (z *ZoneHit) Progress() float64 { return 0 }
func (z *ZoneHit) Reset()            {}

// Progress completes when the pointer has travelled Threshold percent of the
// surface width to the right since the grab started.
type Progress struct {
	Threshold float64

	width    float64
	startX   float64
	value    float64
	dragging bool
	frozen   bool
	now      func() time.Time
}

// NewProgress creates a progress policy. A threshold outside (0, 100] selects
// the default.
func NewProgress(threshold float64) *Progress {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultProgressThreshold
	}
	return &Progress{Threshold: threshold, now: time.Now}
}

// SetWidth sets the surface width progress is measured against.
func (p *Progress) SetWidth(w float64) {
	p.width = w
}

func (p *Progress) Name() string { return PolicyProgress }

func (p *Progress) Grab(_ *physics.Body, pointer physics.Vec2) {
	if p.frozen {
		return
	}
	p.startX = pointer.X
	p.dragging = true
}

// Move updates progress and completes as soon as it reaches Threshold.
func (p *Progress) Move(b *physics.Body, pointer physics.Vec2) (Completion, bool) {
	if p.frozen || !p.dragging {
		return Completion{}, false
	}
	p.value = p.measure(pointer.X)
	if p.value < p.Threshold {
		return Completion{}, false
	}
	p.frozen = true
	p.dragging = false
	return Completion{
		Body:     b.Label,
		Policy:   PolicyProgress,
		Progress: p.value,
		At:       p.now(),
	}, true
}

// Release completes if the final position reaches Threshold; otherwise
// progress springs back to zero.
func (p *Progress) Release(b *physics.Body, pointer physics.Vec2) (Completion, bool) {
	if c, ok := p.Move(b, pointer); ok {
		return c, true
	}
	p.Abort()
	return Completion{}, false
}

// Abort springs progress back unless the session already completed.
func (p *Progress) Abort() {
	p.dragging = false
	if !p.frozen {
		p.value = 0
	}
}

func (p *Progress) Progress() float64 { return p.value }

func (p *Progress) Reset() {
	p.value = 0
	p.dragging = false
	p.frozen = false
}

func (p *Progress) measure(x float64) float64 {
	if p.width <= 0 || math.IsInf(p.width, 0) || math.IsNaN(p.width) {
		return 0
	}
	v := (x - p.startX) * 100 / p.width
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
