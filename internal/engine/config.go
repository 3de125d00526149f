package engine

import (
	"github.com/ayusman/guineaday/internal/completion"
	"github.com/ayusman/guineaday/internal/gesture"
	"github.com/ayusman/guineaday/internal/input"
	"github.com/ayusman/guineaday/internal/physics"
)

// Zone placement constants for randomly positioned targets.
const (
	ZoneMargin  = 50.0
	ZoneReserve = 150.0
)

// DefaultBodies are the labels of the bodies placed in a new session.
var DefaultBodies = []string{"Patches", "Sunny", "Smokey", "Cream", "Coco", "Snowball"}

// DefaultZoneLabels are the labels of the default random zones.
var DefaultZoneLabels = []string{"Carrot", "Lettuce", "Apple", "Strawberry", "Cucumber", "Corn"}

// ZoneSpec describes one target. Random zones ignore X and Y and are placed
// when the surface size becomes known.
type ZoneSpec struct {
	Label  string
	X, Y   float64
	Size   float64
	Random bool
}

// Config is the session configuration of an Engine.
type Config struct {
	Physics    physics.Config
	Completion completion.Config
	Gesture    gesture.ClassifierConfig
	Bodies     []string
	Zones      []ZoneSpec
	Mode       input.Mode
	// StaleTicks is how many frameless ticks gesture mode tolerates before
	// the pointer is considered absent.
	StaleTicks int
}

// DefaultConfig returns six bodies, six random zones, the zone policy and
// pointer input.
func DefaultConfig() Config {
	zones := make([]ZoneSpec, len(DefaultZoneLabels))
	for i, label := range DefaultZoneLabels {
		zones[i] = ZoneSpec{Label: label, Size: completion.DefaultZoneSize, Random: true}
	}
	return Config{
		Physics:    physics.DefaultConfig(),
		Completion: completion.DefaultConfig(),
		Gesture:    gesture.DefaultClassifierConfig(),
		Bodies:     append([]string(nil), DefaultBodies...),
		Zones:      zones,
		Mode:       input.ModePointer,
		StaleTicks: input.DefaultStaleTicks,
	}
}
