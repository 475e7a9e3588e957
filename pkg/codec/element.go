package codec

import (
	"github.com/google/uuid"

	"github.com/Faultbox/furniture-core/pkg/scene"
)

// IndexMap maps boxes to their position in the compiled element list.
// Boxes that compiled to nothing keep the position they would have taken but
// are not emitted.
type IndexMap struct {
	slots map[uuid.UUID]indexSlot
}

type indexSlot struct {
	index   int
	emitted bool
}

func newIndexMap() *IndexMap {
	return &IndexMap{slots: make(map[uuid.UUID]indexSlot)}
}

// Lookup returns the element index of an emitted box.
func (m *IndexMap) Lookup(id uuid.UUID) (int, bool) {
	s, ok := m.slots[id]
	if !ok || !s.emitted {
		return 0, false
	}
	return s.index, true
}

// ElementOptions control how boxes compile.
type ElementOptions struct {
	StripNames   bool
	ExportPivots bool
	Envelope     Envelope
}

// CompiledElements is the result of the element pass.
type CompiledElements struct {
	Elements []*Element
	Index    *IndexMap
	Usage    *TextureUsage
	Overflow []*scene.Box // Boxes outside the envelope
}

// CompileElements compiles every exportable box of p in tree order.
func CompileElements(p *scene.Project, opts ElementOptions) *CompiledElements {
	out := &CompiledElements{
		Index: newIndexMap(),
		Usage: NewTextureUsage(),
	}
	p.Root.Walk(func(n scene.Node) bool {
		b, ok := n.(*scene.Box)
		if !ok || !b.Export {
			return true
		}
		out.Index.slots[b.UUID] = indexSlot{index: len(out.Elements)}

		el := compileBox(b, p, opts, out.Usage)
		if opts.Envelope.Outside(el.From, el.To) {
			out.Overflow = append(out.Overflow, b)
		}
		if len(el.Faces) > 0 {
			out.Index.slots[b.UUID] = indexSlot{index: len(out.Elements), emitted: true}
			out.Elements = append(out.Elements, el)
		}
		return true
	})
	return out
}

func compileBox(b *scene.Box, p *scene.Project, opts ElementOptions, usage *TextureUsage) *Element {
	el := &Element{}
	if !opts.StripNames && b.Name != scene.DefaultBoxName {
		el.Name = b.Name
	}
	el.From, el.To = ExpandBounds(b.From, b.To, b.Inflate)
	if !b.Shade {
		shade := false
		el.Shade = &shade
	}
	el.LightEmission = b.LightEmission
	el.Rotation, el.Rotated = EncodeRotation(b, opts.ExportPivots)

	hasTexture := false
	faces := make(FaceMap)
	for i, d := range scene.FaceDirs {
		f := &b.Faces[i]
		if !f.Assigned {
			continue
		}
		ef := &ElementFace{}
		if f.Enabled {
			uv := EncodeUV(f.UV, p.TextureWidth, p.TextureHeight)
			ef.UV = &uv
		}
		if f.Rotation != 0 {
			ef.Rotation = float64(f.Rotation)
		}
		if f.Texture != uuid.Nil {
			if t := p.Texture(f.Texture); t != nil {
				ef.Texture = "#" + t.ID
				usage.Use(t)
			}
			hasTexture = true
		}
		if ef.Texture == "" {
			ef.Texture = MissingRef
		}
		ef.CullFace = f.CullFace
		if f.Tint >= 0 {
			tint := float64(f.Tint)
			ef.TintIndex = &tint
		}
		faces[string(d)] = ef
	}
	if !hasTexture {
		color := b.Color
		el.Color = &color
	}
	el.Faces = faces
	return el
}

// TextureLookup resolves a face texture reference. Returning nil leaves the
// face without a texture.
type TextureLookup func(ref string) *scene.Texture

// ParseElement builds a box from a document element. UVs are converted for a
// w×h texture grid.
func ParseElement(el *Element, w, h int, resolve TextureLookup) *scene.Box {
	b := scene.NewBox(el.Name)
	if el.Comment != "" {
		b.Name = el.Comment
	}
	b.From, b.To = el.From, el.To
	if el.Shade != nil {
		b.Shade = *el.Shade
	}
	b.LightEmission = el.LightEmission
	if el.Color != nil {
		b.Color = *el.Color
	}
	DecodeRotation(b, el.Rotation, el.Rotated)

	withoutUV := false
	for _, f := range el.Faces {
		if f != nil && f.UV == nil {
			withoutUV = true
		}
	}
	if withoutUV {
		b.AutoUV = scene.AutoUVRelative
		b.MapAutoUV(w, h)
	} else {
		b.AutoUV = scene.AutoUVManual
	}

	for i, d := range scene.FaceDirs {
		face := &b.Faces[i]
		rf := el.Faces[string(d)]
		if rf == nil {
			face.Clear()
			continue
		}
		if rf.UV != nil {
			face.UV = DecodeUV(*rf.UV, w, h)
		}
		face.Rotation = int(rf.Rotation)
		face.CullFace = rf.CullFace

		face.MarkMissing()
		if rf.Texture != "" && rf.Texture != MissingRef && resolve != nil {
			if t := resolve(rf.Texture); t != nil {
				face.Bind(t.UUID)
			}
		}
		if rf.TintIndex != nil {
			face.Tint = int(*rf.TintIndex)
		}
	}
	return b
}
