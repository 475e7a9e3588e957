package codec

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/furniture-core/pkg/scene"
)

// ParticleSlot is the reserved texture slot of the particle texture.
const ParticleSlot = "particle"

// MissingRef is the face texture reference of faces without a texture.
const MissingRef = "#missing"

// TextureUsage records which textures compiled faces reference.
type TextureUsage struct {
	used map[uuid.UUID]bool
}

// NewTextureUsage returns an empty usage set.
func NewTextureUsage() *TextureUsage {
	return &TextureUsage{used: make(map[uuid.UUID]bool)}
}

// Use marks t as referenced.
func (u *TextureUsage) Use(t *scene.Texture) {
	if t == nil || u.used[t.UUID] {
		return
	}
	u.used[t.UUID] = true
}

// Contains reports whether t was referenced.
func (u *TextureUsage) Contains(t *scene.Texture) bool {
	return t != nil && u.used[t.UUID]
}

// Slots builds the document's textures object. Unreferenced textures are left
// out unless texturesOnly is set, and the particle texture is always listed
// under the particle slot.
func (u *TextureUsage) Slots(all []*scene.Texture, texturesOnly bool) TextureSlots {
	var out TextureSlots
	for _, t := range all {
		link := stripNamespace(t.Link())
		if t.Particle {
			out = append(out, TextureSlot{ID: ParticleSlot, Link: link})
		}
		if !u.Contains(t) && !texturesOnly {
			continue
		}
		if link == "#"+t.ID {
			continue
		}
		out = append(out, TextureSlot{ID: t.ID, Link: link})
	}
	return out
}

// ImageSource returns the bytes of a packaged file.
type ImageSource func(name string) ([]byte, bool)

// textureResolver creates the textures of one import and resolves face
// references against them.
type textureResolver struct {
	project *scene.Project
	codec   ImageCodec
	log     *zap.Logger

	byID    map[string]*scene.Texture
	byPath  map[string]*scene.Texture
	created []*scene.Texture
	notices []Notice
}

func newTextureResolver(p *scene.Project, codec ImageCodec, log *zap.Logger) *textureResolver {
	return &textureResolver{
		project: p,
		codec:   codec,
		log:     log,
		byID:    make(map[string]*scene.Texture),
		byPath:  make(map[string]*scene.Texture),
	}
}

func pathKey(link string) string {
	return strings.TrimPrefix(link, "minecraft:")
}

// follow resolves a "#slot" indirection one level deep.
func follow(slots TextureSlots, link string) string {
	if strings.HasPrefix(link, "#") {
		if target, ok := slots.Get(link[1:]); ok {
			return target
		}
	}
	return link
}

// load creates a texture for every declared slot, in document order, with the
// particle slot last.
func (r *textureResolver) load(slots TextureSlots, src ImageSource) {
	for _, slot := range slots {
		if slot.ID == ParticleSlot {
			continue
		}
		t := r.create(slot.ID, follow(slots, slot.Link), src)
		r.byPath[pathKey(slot.Link)] = t
		r.byID[slot.ID] = t
	}

	if particle, ok := slots.Get(ParticleSlot); ok {
		link := follow(slots, particle)
		if t := r.byPath[pathKey(link)]; t != nil {
			t.EnableParticle()
		} else {
			t := r.create(ParticleSlot, link, src).EnableParticle()
			r.byPath[pathKey(link)] = t
			r.byID[ParticleSlot] = t
		}
	}
}

func (r *textureResolver) create(id, link string, src ImageSource) *scene.Texture {
	t := scene.NewTexture(id)
	t.SetLink(link)

	file := stripNamespace(link) + TextureExt
	data, ok := src(file)
	switch {
	case !ok:
		t.LoadEmpty(scene.TextureEmpty)
		r.notices = append(r.notices, Notice{
			Kind:    MissingTexture,
			Texture: id,
			Message: fmt.Sprintf("texture %q is missing %s", id, file),
		})
		r.log.Warn("texture image missing", zap.String("id", id), zap.String("file", file))
	default:
		t.Data = data
		if r.codec != nil {
			img, err := r.codec.Decode(data)
			if err != nil {
				t.Error = scene.TextureInvalid
				r.log.Warn("texture image invalid", zap.String("id", id), zap.Error(err))
			} else {
				b := img.Bounds()
				t.Width, t.Height = b.Dx(), b.Dy()
			}
		}
		r.log.Debug("texture loaded", zap.String("id", id), zap.String("link", link))
	}

	r.project.AddTexture(t)
	r.created = append(r.created, t)
	return t
}

// disambiguate prefixes ids of textures added since first that clash with
// another texture in the project.
func (r *textureResolver) disambiguate(first, seq int) {
	for _, t := range r.project.Textures[first:] {
		if len(r.project.TexturesByID(t.ID)) > 1 {
			renamed := fmt.Sprintf("%d_%s", seq, t.ID)
			r.log.Debug("texture id collision", zap.String("id", t.ID), zap.String("renamed", renamed))
			t.ID = renamed
		}
	}
}

// resolve returns the texture a face reference points at. References to
// undeclared slots produce empty placeholder textures.
func (r *textureResolver) resolve(ref string) *scene.Texture {
	id := strings.TrimPrefix(ref, "#")
	if t := r.byID[id]; t != nil {
		return t
	}
	if t := r.byPath[pathKey(ref)]; t != nil {
		if t.ID == ParticleSlot {
			t.ID = id
			r.byID[id] = t
		}
		return t
	}

	t := scene.NewTexture(id)
	t.Name = "#" + id
	t.LoadEmpty(scene.TextureEmpty)
	r.project.AddTexture(t)
	r.byID[id] = t
	r.created = append(r.created, t)
	r.notices = append(r.notices, Notice{
		Kind:    UnresolvedTexture,
		Texture: id,
		Message: fmt.Sprintf("texture slot %q is not declared", id),
	})
	return t
}

// slots returns the textures of this import keyed by their declared slot.
func (r *textureResolver) slots() map[string]*scene.Texture {
	out := make(map[string]*scene.Texture, len(r.byID))
	for k, v := range r.byID {
		out[k] = v
	}
	return out
}
