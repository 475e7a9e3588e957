// Package scene provides the editable cuboid scene: boxes, groups, textures and the project
// that owns them.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// DefaultBoxName is the name new boxes start with. It is not exported to documents.
const DefaultBoxName = "cube"

// FaceDir names one of the six canonical box faces.
type FaceDir string

// Canonical faces in document order.
const (
	North FaceDir = "north"
	East  FaceDir = "east"
	South FaceDir = "south"
	West  FaceDir = "west"
	Up    FaceDir = "up"
	Down  FaceDir = "down"
)

// FaceDirs lists all faces in the order they are compiled.
var FaceDirs = [6]FaceDir{North, East, South, West, Up, Down}

// Index returns the position of d in FaceDirs, or -1.
func (d FaceDir) Index() int {
	for i, f := range FaceDirs {
		if f == d {
			return i
		}
	}
	return -1
}

// AutoUVMode selects how face UVs are derived.
type AutoUVMode int

const (
	AutoUVManual   AutoUVMode = 0 // UVs are edited by hand
	AutoUVBox      AutoUVMode = 1 // Box UV layout
	AutoUVRelative AutoUVMode = 2 // UVs follow the box position
)

// Face is one side of a box.
type Face struct {
	UV       [4]float64 // Pixel units: x1, y1, x2, y2
	Rotation int        // 0, 90, 180 or 270
	Enabled  bool
	CullFace string
	Tint     int // -1 when unset

	// Assigned is false when the face carries no texture slot at all and is
	// therefore not exported. An assigned face with a nil Texture is "missing".
	Assigned bool
	Texture  uuid.UUID
}

// HasTexture reports whether the face is bound to a texture.
func (f *Face) HasTexture() bool {
	return f.Assigned && f.Texture != uuid.Nil
}

// Bind assigns a texture to the face.
func (f *Face) Bind(id uuid.UUID) {
	f.Assigned = true
	f.Texture = id
}

// MarkMissing assigns the face without a texture.
func (f *Face) MarkMissing() {
	f.Assigned = true
	f.Texture = uuid.Nil
}

// Clear removes the texture assignment and zeroes the UV.
func (f *Face) Clear() {
	f.Assigned = false
	f.Texture = uuid.Nil
	f.UV = [4]float64{}
}

// Box is an axis-aligned cuboid.
type Box struct {
	UUID          uuid.UUID
	Name          string
	From, To      mgl64.Vec3
	Inflate       float64
	Shade         bool
	LightEmission int
	Rotation      mgl64.Vec3 // Degrees per axis
	RotationAxis  string     // Remembered axis when no rotation is set
	Origin        mgl64.Vec3
	Rescale       bool
	Faces         [6]Face // Indexed like FaceDirs
	Color         int
	Export        bool
	AutoUV        AutoUVMode
	Locked        bool

	parent *Group
}

// NewBox creates a box with default settings.
func NewBox(name string) *Box {
	if name == "" {
		name = DefaultBoxName
	}
	b := &Box{
		UUID:         uuid.New(),
		Name:         name,
		Shade:        true,
		RotationAxis: "y",
		Export:       true,
		AutoUV:       AutoUVManual,
	}
	for i := range b.Faces {
		b.Faces[i] = Face{Enabled: true, Tint: -1, Assigned: true}
	}
	return b
}

// Face returns the face for the given direction.
func (b *Box) Face(d FaceDir) *Face {
	i := d.Index()
	if i < 0 {
		return nil
	}
	return &b.Faces[i]
}

// ID implements Node.
func (b *Box) ID() uuid.UUID { return b.UUID }

// Parent implements Node.
func (b *Box) Parent() *Group { return b.parent }

func (b *Box) setParent(g *Group) { b.parent = g }

func (b *Box) isElement() {}

// RotatedAxis returns the first axis with a non-zero rotation, falling back
// to the remembered RotationAxis.
func (b *Box) RotatedAxis() string {
	for i, name := range [3]string{"x", "y", "z"} {
		if b.Rotation[i] != 0 {
			return name
		}
	}
	return b.RotationAxis
}

// MapAutoUV fills face UVs from the box extents for relative auto UV mode.
// Values are in pixel units for a texture of size w×h.
func (b *Box) MapAutoUV(w, h int) {
	if b.AutoUV != AutoUVRelative {
		return
	}
	sx, sy := float64(w)/16, float64(h)/16
	f, t := b.From, b.To
	rel := map[FaceDir][4]float64{
		North: {16 - t[0], 16 - t[1], 16 - f[0], 16 - f[1]},
		East:  {16 - t[2], 16 - t[1], 16 - f[2], 16 - f[1]},
		South: {f[0], 16 - t[1], t[0], 16 - f[1]},
		West:  {f[2], 16 - t[1], t[2], 16 - f[1]},
		Up:    {f[0], f[2], t[0], t[2]},
		Down:  {f[0], 16 - t[2], t[0], 16 - f[2]},
	}
	for i, d := range FaceDirs {
		uv := rel[d]
		b.Faces[i].UV = [4]float64{uv[0] * sx, uv[1] * sy, uv[2] * sx, uv[3] * sy}
	}
}
