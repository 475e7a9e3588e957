package scene

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/Faultbox/furniture-core/pkg/behavior"
)

// DefaultTextureSize is the texture grid both axes start with.
const DefaultTextureSize = 16

// DisplaySlots are the item display contexts in document order.
var DisplaySlots = []string{
	"thirdperson_righthand", "thirdperson_lefthand",
	"firstperson_righthand", "firstperson_lefthand",
	"ground", "gui", "head", "fixed",
}

// DisplaySlot is the transform applied in one display context.
type DisplaySlot struct {
	Rotation    mgl64.Vec3
	Translation mgl64.Vec3
	Scale       mgl64.Vec3
}

// NewDisplaySlot returns an identity transform.
func NewDisplaySlot() *DisplaySlot {
	return &DisplaySlot{Scale: mgl64.Vec3{1, 1, 1}}
}

// Project is a whole editable model: scene tree, textures and model-level
// settings.
type Project struct {
	Name             string
	Credit           string
	Parent           string
	AmbientOcclusion bool
	FrontGUILight    bool
	TextureWidth     int
	TextureHeight    int
	Overrides        []map[string]any
	Display          map[string]*DisplaySlot

	Root     *Group
	Elements []Element // Creation order, independent of the tree
	Textures []*Texture

	// Unhandled keeps top-level document keys the codec does not model so
	// they can be written back unchanged.
	Unhandled map[string]json.RawMessage

	// AddedModels counts packages merged into this project.
	AddedModels int

	Properties behavior.Properties
}

// NewProject creates an empty project.
func NewProject(name string) *Project {
	root := NewGroup("root")
	return &Project{
		Name:             name,
		AmbientOcclusion: true,
		TextureWidth:     DefaultTextureSize,
		TextureHeight:    DefaultTextureSize,
		Display:          make(map[string]*DisplaySlot),
		Root:             root,
		Unhandled:        make(map[string]json.RawMessage),
		Properties:       behavior.DefaultProperties(),
	}
}

// AddElement registers e in the element arena and attaches it under parent
// (the root when parent is nil).
func (p *Project) AddElement(e Element, parent *Group) {
	if parent == nil {
		parent = p.Root
	}
	p.Elements = append(p.Elements, e)
	parent.Add(e)
}

// AddTexture appends t to the project.
func (p *Project) AddTexture(t *Texture) *Texture {
	p.Textures = append(p.Textures, t)
	return t
}

// TexturesByID returns every texture using the slot id.
func (p *Project) TexturesByID(id string) []*Texture {
	var out []*Texture
	for _, t := range p.Textures {
		if t.ID == id {
			out = append(out, t)
		}
	}
	return out
}

// Texture returns the texture with the given uuid.
func (p *Project) Texture(id uuid.UUID) *Texture {
	if id == uuid.Nil {
		return nil
	}
	for _, t := range p.Textures {
		if t.UUID == id {
			return t
		}
	}
	return nil
}

// ParticleTexture returns the texture flagged as particle, if any.
func (p *Project) ParticleTexture() *Texture {
	for _, t := range p.Textures {
		if t.Particle {
			return t
		}
	}
	return nil
}

// Boxes returns all boxes in element-arena order.
func (p *Project) Boxes() []*Box {
	var out []*Box
	for _, e := range p.Elements {
		if b, ok := e.(*Box); ok {
			out = append(out, b)
		}
	}
	return out
}

// Groups returns every group below the root, depth-first.
func (p *Project) Groups() []*Group {
	var out []*Group
	p.Root.Walk(func(n Node) bool {
		if g, ok := n.(*Group); ok {
			out = append(out, g)
		}
		return true
	})
	return out
}

// Find returns the box with the given uuid.
func (p *Project) Find(id uuid.UUID) *Box {
	for _, b := range p.Boxes() {
		if b.UUID == id {
			return b
		}
	}
	return nil
}
