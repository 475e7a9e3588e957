package scene

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// TextureError describes why a texture has no usable image.
type TextureError int

const (
	TextureLoaded   TextureError = 0 // Image present
	TextureNotFound TextureError = 1 // Source file missing
	TextureInvalid  TextureError = 2 // Bytes could not be decoded
	TextureEmpty    TextureError = 3 // Placeholder for an unresolved slot
)

// String returns a human-readable state name.
func (e TextureError) String() string {
	switch e {
	case TextureLoaded:
		return "loaded"
	case TextureNotFound:
		return "not found"
	case TextureInvalid:
		return "invalid"
	case TextureEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Texture is an image asset referenced by box faces.
type Texture struct {
	UUID      uuid.UUID `copier:"-"`
	ID        string    `copier:"-"` // Slot id used in documents
	Name      string
	Folder    string
	Namespace string
	Particle  bool `copier:"-"`
	Data      []byte
	Width     int
	Height    int
	Error     TextureError
}

// NewTexture creates an empty texture for the given slot id.
func NewTexture(id string) *Texture {
	return &Texture{
		UUID: uuid.New(),
		ID:   id,
		Name: id,
	}
}

// SetLink splits a "namespace:folder/name" link into the texture's path fields.
func (t *Texture) SetLink(link string) {
	t.Namespace = ""
	if i := strings.Index(link, ":"); i >= 0 {
		t.Namespace = link[:i]
		link = link[i+1:]
	}
	link = strings.TrimSuffix(link, ".png")
	dir, name := path.Split(link)
	t.Folder = strings.TrimSuffix(dir, "/")
	t.Name = name
}

// Link returns the texture's resource link. The default namespace is omitted.
func (t *Texture) Link() string {
	link := strings.TrimSuffix(t.Name, ".png")
	if t.Folder != "" {
		link = t.Folder + "/" + link
	}
	if t.Namespace != "" && t.Namespace != "minecraft" {
		link = t.Namespace + ":" + link
	}
	return link
}

// LoadEmpty turns the texture into a placeholder with the given error state.
func (t *Texture) LoadEmpty(state TextureError) *Texture {
	t.Data = nil
	t.Width, t.Height = 0, 0
	t.Error = state
	return t
}

// EnableParticle marks the texture as the model's particle texture.
func (t *Texture) EnableParticle() *Texture {
	t.Particle = true
	return t
}

// IsPlaceholder reports whether the texture carries no image.
func (t *Texture) IsPlaceholder() bool {
	return t.Error != TextureLoaded || len(t.Data) == 0
}
