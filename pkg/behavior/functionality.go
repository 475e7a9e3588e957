// Package behavior describes what a furniture model does in game. Each model
// carries exactly one functionality variant; the set of variants is closed.
package behavior

import (
	"encoding/json"
	"fmt"
	"math"
)

// Type tags a functionality variant in properties.json.
type Type string

const (
	TypeNone         Type = "none"
	TypeWorkBlock    Type = "work_block"
	TypeIllumination Type = "illumination"
	TypeStorage      Type = "storage"
	TypeChair        Type = "chair"
)

// Types lists every variant tag.
var Types = []Type{TypeNone, TypeWorkBlock, TypeIllumination, TypeStorage, TypeChair}

// String returns a human-readable variant name.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeWorkBlock:
		return "Crafting station"
	case TypeIllumination:
		return "Light source"
	case TypeStorage:
		return "Storage"
	case TypeChair:
		return "Seat"
	default:
		return fmt.Sprintf("Unknown(%s)", string(t))
	}
}

// Functionality is one configured variant. Only the types in this package
// implement it.
type Functionality interface {
	json.Marshaler
	Type() Type
	load(data []byte)
}

// New returns the variant for t with default settings, or None for an
// unknown tag.
func New(t Type) Functionality {
	switch t {
	case TypeWorkBlock:
		return &WorkBlock{Block: Workbench}
	case TypeIllumination:
		return &Illumination{LightLevel: MaxLightLevel}
	case TypeStorage:
		return &Storage{Size: MinStorageSize}
	case TypeChair:
		return &Chair{}
	default:
		return None{}
	}
}

// Load selects the variant named by the document's "type" field and lets it
// read its own settings. Missing, unknown or malformed input yields None.
func Load(data []byte) Functionality {
	var head struct {
		Type Type `json:"type"`
	}
	if len(data) == 0 || json.Unmarshal(data, &head) != nil {
		return None{}
	}
	f := New(head.Type)
	f.load(data)
	return f
}

// None is the variant of purely decorative furniture.
type None struct{}

// Type implements Functionality.
func (None) Type() Type { return TypeNone }

// MarshalJSON implements json.Marshaler.
func (None) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Type `json:"type"`
	}{TypeNone})
}

func (None) load([]byte) {}

// WorkBlockType is the kind of crafting station a work block opens.
type WorkBlockType string

const (
	Workbench    WorkBlockType = "workbench"
	Furnace      WorkBlockType = "furnace"
	Smoker       WorkBlockType = "smoker"
	BlastFurnace WorkBlockType = "blast_furnace"
	BrewingStand WorkBlockType = "brewing_stand"
	Loom         WorkBlockType = "loom"
	Stonecutter  WorkBlockType = "stonecutter"
	Smith        WorkBlockType = "smith"
	Grindstone   WorkBlockType = "grindstone"
)

// WorkBlockTypes lists the supported station kinds.
var WorkBlockTypes = []WorkBlockType{
	Workbench, Furnace, Smoker, BlastFurnace, BrewingStand,
	Loom, Stonecutter, Smith, Grindstone,
}

// Valid reports whether w is one of WorkBlockTypes.
func (w WorkBlockType) Valid() bool {
	for _, k := range WorkBlockTypes {
		if k == w {
			return true
		}
	}
	return false
}

// WorkBlock opens a crafting station.
type WorkBlock struct {
	Block WorkBlockType
}

// Type implements Functionality.
func (*WorkBlock) Type() Type { return TypeWorkBlock }

// SetBlock sets the station kind; unknown kinds fall back to the workbench.
func (w *WorkBlock) SetBlock(b WorkBlockType) {
	if !b.Valid() {
		b = Workbench
	}
	w.Block = b
}

// MarshalJSON implements json.Marshaler.
func (w *WorkBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  Type          `json:"type"`
		Block WorkBlockType `json:"block"`
	}{TypeWorkBlock, w.Block})
}

func (w *WorkBlock) load(data []byte) {
	var raw struct {
		Block WorkBlockType `json:"block"`
	}
	_ = json.Unmarshal(data, &raw)
	w.SetBlock(raw.Block)
}

// Light level bounds.
const (
	MinLightLevel = 0
	MaxLightLevel = 15
)

// Illumination emits light and may be toggled by players.
type Illumination struct {
	LightLevel int
	Switchable bool
}

// Type implements Functionality.
func (*Illumination) Type() Type { return TypeIllumination }

// SetLightLevel stores level clamped to [0, 15].
func (l *Illumination) SetLightLevel(level int) {
	l.LightLevel = min(max(level, MinLightLevel), MaxLightLevel)
}

// MarshalJSON implements json.Marshaler.
func (l *Illumination) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       Type `json:"type"`
		LightLevel int  `json:"light_level"`
		Switchable bool `json:"switchable"`
	}{TypeIllumination, l.LightLevel, l.Switchable})
}

func (l *Illumination) load(data []byte) {
	var raw struct {
		LightLevel *float64 `json:"light_level"`
		Switchable bool     `json:"switchable"`
	}
	_ = json.Unmarshal(data, &raw)
	l.SetLightLevel(MaxLightLevel)
	if raw.LightLevel != nil {
		l.SetLightLevel(clampLevel(*raw.LightLevel))
	}
	l.Switchable = raw.Switchable
}

// clampLevel rounds a document light level into the valid range before it is
// narrowed to int.
func clampLevel(v float64) int {
	if math.IsNaN(v) {
		return MaxLightLevel
	}
	return int(math.Round(min(max(v, MinLightLevel), MaxLightLevel)))
}

// Storage size bounds. Sizes are whole inventory rows of 9 slots.
const (
	StorageRow     = 9
	MinStorageSize = 9
	MaxStorageSize = 54
)

// NormalizeStorageSize rounds n up to a whole row and clamps it to [9, 54].
func NormalizeStorageSize(n float64) int {
	if math.IsNaN(n) {
		return MinStorageSize
	}
	n = min(max(n, MinStorageSize), MaxStorageSize)
	return int(math.Ceil(n/StorageRow)) * StorageRow
}

// Storage is a container with a fixed number of slots.
type Storage struct {
	Size int
}

// Type implements Functionality.
func (*Storage) Type() Type { return TypeStorage }

// SetSize stores the normalized slot count.
func (s *Storage) SetSize(n int) {
	s.Size = NormalizeStorageSize(float64(n))
}

// MarshalJSON implements json.Marshaler.
func (s *Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Type `json:"type"`
		Size int  `json:"size"`
	}{TypeStorage, s.Size})
}

func (s *Storage) load(data []byte) {
	var raw struct {
		Size *float64 `json:"size"`
	}
	_ = json.Unmarshal(data, &raw)
	s.Size = MinStorageSize
	if raw.Size != nil {
		s.Size = NormalizeStorageSize(*raw.Size)
	}
}

// Chair lets a player sit at the given height offset.
type Chair struct {
	Height float64
}

// Type implements Functionality.
func (*Chair) Type() Type { return TypeChair }

// MarshalJSON implements json.Marshaler.
func (c *Chair) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   Type    `json:"type"`
		Height float64 `json:"height"`
	}{TypeChair, c.Height})
}

func (c *Chair) load(data []byte) {
	var raw struct {
		Height float64 `json:"height"`
	}
	_ = json.Unmarshal(data, &raw)
	c.Height = raw.Height
}
