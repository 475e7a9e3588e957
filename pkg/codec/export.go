package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/Faultbox/furniture-core/pkg/behavior"
	"github.com/Faultbox/furniture-core/pkg/scene"
)

// ExportOptions force individual document keys on or off. A nil field
// follows the project.
type ExportOptions struct {
	CubeName         *bool
	Comment          *bool
	Parent           *bool
	AmbientOcclusion *bool
	Textures         *bool
	Elements         *bool
	FrontGUILight    *bool
	Overrides        *bool
	Display          *bool
	Groups           *bool

	// PreventNotices suppresses clipping and builtin-parent notices.
	PreventNotices bool

	// OnCompile is called with the finished model document.
	OnCompile func(doc *Document)
}

func check(opt *bool, cond bool) bool {
	if opt == nil {
		return cond
	}
	return *opt
}

// ExportResult is the outcome of compiling a project.
type ExportResult struct {
	Model      *Document
	Properties behavior.Properties
	Index      *IndexMap
	Overflow   []*scene.Box
	Notices    []Notice
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// ExportModel compiles p into a model document. When p has elements and an
// item parent, the parent is cleared on p itself since such a model would be
// inconsistent.
func ExportModel(p *scene.Project, s Settings, opts ExportOptions) *ExportResult {
	log := s.log()
	withNames := (opts.CubeName == nil || *opts.CubeName) && !s.StripNames
	if opts.CubeName != nil && *opts.CubeName {
		withNames = true
	}
	compiled := CompileElements(p, ElementOptions{
		StripNames:   !withNames,
		ExportPivots: s.ExportPivots,
		Envelope:     s.Envelope,
	})
	res := &ExportResult{
		Index:      compiled.Index,
		Overflow:   compiled.Overflow,
		Properties: p.Properties,
	}

	texturesOnly := len(compiled.Elements) == 0 && check(opts.Parent, p.Parent != "")
	slots := compiled.Usage.Slots(p.Textures, texturesOnly)

	if !opts.PreventNotices && len(compiled.Overflow) > 0 && s.WarnOverflow {
		n := Notice{
			Kind:    ModelClipping,
			Message: fmt.Sprintf("%d elements exceed the %g to %g coordinate range", len(compiled.Overflow), s.Envelope.Min, s.Envelope.Max),
			Choices: []string{ChoiceSelectOverflow, ChoiceOK},
		}
		for _, b := range compiled.Overflow {
			n.Boxes = append(n.Boxes, b.UUID)
		}
		res.Notices = append(res.Notices, n)
		log.Warn("model clipping", zap.Int("elements", len(compiled.Overflow)))
	}
	if len(compiled.Elements) > 0 && IsItemParent(p.Parent) {
		if !opts.PreventNotices {
			res.Notices = append(res.Notices, Notice{
				Kind:    InvalidBuiltinParent,
				Parent:  p.Parent,
				Message: fmt.Sprintf("parent %q cannot be used with elements and was removed", p.Parent),
			})
		}
		log.Info("clearing builtin parent", zap.String("parent", p.Parent))
		p.Parent = ""
	}

	doc := &Document{Extra: make(map[string]json.RawMessage)}
	credit := p.Credit
	if credit == "" {
		credit = s.Credit
	}
	if check(opts.Comment, credit != "") {
		doc.Credit = credit
	}
	if check(opts.Parent, p.Parent != "") {
		parent := p.Parent
		doc.Parent = &parent
	}
	if check(opts.AmbientOcclusion, !p.AmbientOcclusion) {
		ao := false
		doc.AmbientOcclusion = &ao
	}
	if p.TextureWidth != scene.DefaultTextureSize || p.TextureHeight != scene.DefaultTextureSize {
		doc.TextureSize = &[2]int{p.TextureWidth, p.TextureHeight}
	}
	if check(opts.Textures, len(slots) >= 1) {
		doc.Textures = append(TextureSlots{}, slots...)
	}
	if check(opts.Elements, len(compiled.Elements) >= 1) {
		doc.Elements = append([]*Element{}, compiled.Elements...)
	}
	if check(opts.FrontGUILight, p.FrontGUILight) {
		doc.GUILight = "front"
	}
	if check(opts.Overrides, len(p.Overrides) > 0) {
		doc.Overrides = exportOverrides(p.Overrides)
	}
	if check(opts.Display, len(p.Display) >= 1) {
		display := make(DisplayMap)
		for _, slot := range scene.DisplaySlots {
			if t := exportDisplay(p.Display[slot]); t != nil {
				display[slot] = t
			}
		}
		if len(display) > 0 {
			doc.Display = display
		}
	}
	if check(opts.Groups, s.ExportGroups && len(p.Groups()) > 0) {
		if groups := CompileGroups(p.Root, compiled.Index); HasBranch(groups) {
			doc.Groups = groups
		}
	}
	maps.Copy(doc.Extra, p.Unhandled)

	res.Model = doc
	return res
}

func exportOverrides(in []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(in))
	for _, o := range in {
		var c map[string]any
		if err := copier.CopyWithOption(&c, o, copier.Option{DeepCopy: true}); err != nil || c == nil {
			c = maps.Clone(o)
		}
		delete(c, "_uuid")
		out = append(out, c)
	}
	return out
}

func exportDisplay(d *scene.DisplaySlot) *DisplayTransform {
	if d == nil {
		return nil
	}
	var t DisplayTransform
	set := false
	if !isZero(d.Rotation) {
		v := d.Rotation
		t.Rotation = &v
		set = true
	}
	if !isZero(d.Translation) {
		v := d.Translation
		t.Translation = &v
		set = true
	}
	if d.Scale[0] != 1 || d.Scale[1] != 1 || d.Scale[2] != 1 {
		v := d.Scale
		t.Scale = &v
		set = true
	}
	if !set {
		return nil
	}
	return &t
}

// Codec bundles the settings and services needed to read and write packages.
type Codec struct {
	Settings Settings
	Archives Archives
	Images   ImageCodec
	Schema   SchemaValidator // Optional
}

// New creates a codec.
func New(s Settings, archives Archives, images ImageCodec) *Codec {
	return &Codec{Settings: s, Archives: archives, Images: images}
}

// Compile exports p as a package. It returns the compile result alongside the
// archive bytes.
func (c *Codec) Compile(ctx context.Context, p *scene.Project, opts ExportOptions) (*ExportResult, []byte, error) {
	log := c.Settings.log()
	res := ExportModel(p, c.Settings, opts)
	if opts.OnCompile != nil {
		opts.OnCompile(res.Model)
	}

	model, err := res.Model.Encode()
	if err != nil {
		return nil, nil, fmt.Errorf("encoding %s: %w", ModelEntry, err)
	}
	props, err := json.MarshalIndent(res.Properties, "", "\t")
	if err != nil {
		return nil, nil, fmt.Errorf("encoding %s: %w", PropertiesEntry, err)
	}

	w := c.Archives.Create()
	if err := w.Write(ModelEntry, model); err != nil {
		return nil, nil, fmt.Errorf("writing %s: %w", ModelEntry, err)
	}
	if err := w.Write(PropertiesEntry, props); err != nil {
		return nil, nil, fmt.Errorf("writing %s: %w", PropertiesEntry, err)
	}

	written := make(map[string]bool)
	for _, t := range p.Textures {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		name := stripNamespace(t.Link()) + TextureExt
		if written[name] {
			continue
		}
		if len(t.Data) == 0 {
			log.Debug("skipping texture without image", zap.String("id", t.ID))
			continue
		}
		if t.Error != scene.TextureLoaded {
			log.Debug("skipping unreadable texture", zap.String("id", t.ID), zap.Stringer("state", t.Error))
			continue
		}
		data, err := c.pngBytes(t.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding texture %s: %w", t.ID, err)
		}
		if err := w.Write(name, data); err != nil {
			return nil, nil, fmt.Errorf("writing %s: %w", name, err)
		}
		written[name] = true
	}

	out, err := w.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("finishing archive: %w", err)
	}
	log.Info("model compiled",
		zap.Int("elements", len(res.Model.Elements)),
		zap.Int("textures", len(written)),
		zap.Int("notices", len(res.Notices)))
	return res, out, nil
}

// pngBytes re-encodes non-PNG image data as PNG.
func (c *Codec) pngBytes(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, pngMagic) || c.Images == nil {
		return data, nil
	}
	img, err := c.Images.Decode(data)
	if err != nil {
		return nil, err
	}
	return c.Images.Encode(img)
}
