// Package codec converts between scene projects and furniture model packages:
// a zip archive holding model.json, properties.json and the texture images.
package codec

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Package entry names.
const (
	ModelEntry      = "model.json"
	PropertiesEntry = "properties.json"
	TextureExt      = ".png"
)

// Fatal import errors. Nothing in the target project is touched when Parse
// returns one of these.
var (
	ErrOpenArchive  = errors.New("cannot open model archive")
	ErrMissingModel = errors.New("missing model.json file")
	ErrInvalidModel = errors.New("invalid model.json")
)

// itemParents are the builtin parents whose models render a flat item layer
// instead of elements.
var itemParents = []string{
	"item/generated", "minecraft:item/generated",
	"item/handheld", "minecraft:item/handheld",
	"item/handheld_rod", "minecraft:item/handheld_rod",
	"builtin/generated", "minecraft:builtin/generated",
}

// IsItemParent reports whether parent is one of the builtin item parents.
func IsItemParent(parent string) bool {
	for _, p := range itemParents {
		if p == parent {
			return true
		}
	}
	return false
}

// stripNamespace removes a leading "namespace:" from a resource link.
func stripNamespace(link string) string {
	if i := strings.Index(link, ":"); i >= 0 {
		return link[i+1:]
	}
	return link
}

// Settings are the user preferences the codec honors.
type Settings struct {
	StripNames   bool     // Omit element names
	ExportPivots bool     // Emit rotation records for pivots without rotation
	ExportGroups bool     // Emit the groups hierarchy
	Credit       string   // Fallback credit when the project has none
	WarnOverflow bool     // Report boxes outside the envelope
	Envelope     Envelope // Coordinate limits for overflow checks

	Logger *zap.Logger
}

// DefaultSettings returns the codec defaults.
func DefaultSettings() Settings {
	return Settings{
		ExportPivots: true,
		ExportGroups: true,
		WarnOverflow: true,
		Envelope:     DefaultEnvelope,
		Logger:       zap.NewNop(),
	}
}

func (s Settings) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
