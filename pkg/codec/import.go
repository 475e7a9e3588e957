package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/Faultbox/furniture-core/pkg/scene"
)

// layer0 is the texture slot item models display.
const layer0 = "layer0"

// ImportOptions control a single Parse call.
type ImportOptions struct {
	// Name becomes the project name in replace mode and the import group's
	// name in merge mode.
	Name string

	// Add merges the package into the project under a new group instead of
	// loading it at the root.
	Add bool

	// OnParse is called with the decoded document before the project is
	// touched.
	OnParse func(doc *Document)

	// OnParsed is called once the project holds the imported content.
	OnParsed func(res *ImportResult)
}

// ImportResult describes what a Parse call added to the project.
type ImportResult struct {
	Model   *Document
	Notices []Notice

	// Textures maps the declared slot ids to the textures created for them.
	Textures map[string]*scene.Texture

	// Elements holds the imported boxes in document order. Positions of
	// elements that failed to decode are nil.
	Elements []scene.Element

	// Group is the group the package was imported under in merge mode.
	Group *scene.Group

	// Mesh is the display quad created for builtin item parents.
	Mesh *scene.TextureMesh
}

// SchemaValidator checks package documents against their published schema.
type SchemaValidator interface {
	ValidateModel(data []byte) error
	ValidateProperties(data []byte) error
}

// Parse imports a package into p. Errors are only returned for conditions
// found before p is modified; everything later is reported as a notice.
func (c *Codec) Parse(ctx context.Context, data []byte, p *scene.Project, opts ImportOptions) (*ImportResult, error) {
	a, err := c.Archives.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenArchive, err)
	}
	if !a.Contains(ModelEntry) {
		return nil, ErrMissingModel
	}
	raw, err := a.Read(ModelEntry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenArchive, err)
	}

	var props []byte
	var notices []Notice
	if a.Contains(PropertiesEntry) {
		props, err = a.Read(PropertiesEntry)
		if err != nil {
			notices = append(notices, Notice{
				Kind:    MalformedField,
				Field:   PropertiesEntry,
				Message: fmt.Sprintf("%s unreadable: %v", PropertiesEntry, err),
			})
			props = nil
		}
	}
	return c.parse(ctx, raw, props, archiveSource(a), p, opts, notices)
}

// ParseModel imports loose package parts: a model.json, an optional
// properties.json and texture images looked up in src, which may be nil.
func (c *Codec) ParseModel(ctx context.Context, model, props []byte, src ImageSource, p *scene.Project, opts ImportOptions) (*ImportResult, error) {
	if src == nil {
		src = func(string) ([]byte, bool) { return nil, false }
	}
	return c.parse(ctx, model, props, src, p, opts, nil)
}

// Load imports a package into a new project named name.
func (c *Codec) Load(ctx context.Context, data []byte, name string) (*scene.Project, *ImportResult, error) {
	p := scene.NewProject(name)
	res, err := c.Parse(ctx, data, p, ImportOptions{Name: name})
	if err != nil {
		return nil, nil, err
	}
	return p, res, nil
}

func (c *Codec) parse(ctx context.Context, raw, props []byte, src ImageSource, p *scene.Project, opts ImportOptions, notices []Notice) (*ImportResult, error) {
	log := c.Settings.log()

	doc, fieldNotices, err := DecodeDocument(raw)
	if err != nil {
		return nil, err
	}
	notices = append(notices, fieldNotices...)
	notices = append(notices, c.validate(raw, props)...)
	if opts.OnParse != nil {
		opts.OnParse(doc)
	}
	// Last point of return; the import runs to completion from here.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &ImportResult{Model: doc}

	// Properties
	if !opts.Add {
		p.Properties.Reset()
	}
	if err := p.Properties.Apply(props); err != nil {
		notices = append(notices, Notice{
			Kind:    MalformedField,
			Field:   PropertiesEntry,
			Message: fmt.Sprintf("%s ignored: %v", PropertiesEntry, err),
		})
	}

	target := p.Root
	if opts.Add {
		p.AddedModels++
		name := opts.Name
		if name == "" {
			name = "model"
		}
		res.Group = scene.NewGroup(name)
		target = res.Group
	} else {
		if opts.Name != "" {
			p.Name = opts.Name
		}
		p.Unhandled = maps.Clone(doc.Extra)
		if doc.TextureSize != nil {
			p.TextureWidth = max(doc.TextureSize[0], 1)
			p.TextureHeight = max(doc.TextureSize[1], 1)
		}
	}

	switch {
	case doc.Credit != "":
		p.Credit = doc.Credit
	case doc.Comment != "":
		p.Credit = doc.Comment
	}
	for slot, t := range doc.Display {
		if t != nil {
			p.Display[slot] = importDisplay(t)
		}
	}
	if doc.Overrides != nil {
		p.Overrides = doc.Overrides
	}

	// Textures
	first := len(p.Textures)
	textures := newTextureResolver(p, c.Images, log)
	textures.load(doc.Textures, src)
	textures.disambiguate(first, p.AddedModels)

	// Elements
	for _, el := range doc.Elements {
		if el == nil {
			res.Elements = append(res.Elements, nil)
			continue
		}
		b := ParseElement(el, p.TextureWidth, p.TextureHeight, textures.resolve)
		p.AddElement(b, target)
		res.Elements = append(res.Elements, b)
	}
	ParseGroups(doc.Groups, res.Elements, target)
	if res.Group != nil {
		p.Root.Add(res.Group)
	}
	notices = append(notices, textures.notices...)

	// Parent
	parent := ""
	if doc.Parent != nil {
		parent = *doc.Parent
	}
	if !doc.HasGeometry() && parent != "" {
		if t := textures.byID[layer0]; IsItemParent(parent) && t != nil {
			m := scene.NewTextureMesh(t.Name)
			m.Texture = t.UUID
			p.AddElement(m, target)
			res.Mesh = m
		} else {
			n := Notice{
				Kind:    ChildModelOnly,
				Parent:  parent,
				Message: fmt.Sprintf("model has no elements of its own and extends %q", parent),
			}
			if !IsItemParent(parent) {
				n.Choices = append(n.Choices, ChoiceOpen)
				if len(doc.Textures) > 0 {
					n.Choices = append(n.Choices, ChoiceOpenWithTextures)
				}
			}
			notices = append(notices, n)
		}
	}
	if parent != "" {
		p.Parent = parent
	}
	if doc.AmbientOcclusion != nil && !*doc.AmbientOcclusion {
		p.AmbientOcclusion = false
	}
	if doc.GUILight == "front" {
		p.FrontGUILight = true
	}
	if opts.Add {
		for k, v := range doc.Extra {
			if _, ok := p.Unhandled[k]; !ok {
				if p.Unhandled == nil {
					p.Unhandled = make(map[string]json.RawMessage)
				}
				p.Unhandled[k] = v
			}
		}
	}

	res.Textures = textures.slots()
	res.Notices = notices
	log.Info("model parsed",
		zap.String("project", p.Name),
		zap.Bool("add", opts.Add),
		zap.Int("elements", len(res.Elements)),
		zap.Int("textures", len(textures.created)),
		zap.Int("notices", len(notices)))
	if opts.OnParsed != nil {
		opts.OnParsed(res)
	}
	return res, nil
}

func (c *Codec) validate(model, props []byte) []Notice {
	if c.Schema == nil {
		return nil
	}
	var notices []Notice
	if err := c.Schema.ValidateModel(model); err != nil {
		notices = append(notices, Notice{Kind: SchemaMismatch, Field: ModelEntry, Message: err.Error()})
	}
	if len(props) > 0 {
		if err := c.Schema.ValidateProperties(props); err != nil {
			notices = append(notices, Notice{Kind: SchemaMismatch, Field: PropertiesEntry, Message: err.Error()})
		}
	}
	return notices
}

func importDisplay(t *DisplayTransform) *scene.DisplaySlot {
	d := scene.NewDisplaySlot()
	if t.Rotation != nil {
		d.Rotation = *t.Rotation
	}
	if t.Translation != nil {
		d.Translation = *t.Translation
	}
	if t.Scale != nil {
		d.Scale = *t.Scale
	}
	return d
}

// ParentResolver fetches the package a parent reference points at.
type ParentResolver interface {
	ResolveParent(ctx context.Context, parent string) ([]byte, error)
}

// DirResolver resolves parents to packages stored below a directory.
type DirResolver struct {
	Dir  string
	Read func(name string) ([]byte, error)
}

// ResolveParent implements ParentResolver.
func (r DirResolver) ResolveParent(_ context.Context, parent string) ([]byte, error) {
	return r.Read(ResolveParentPath(r.Dir, parent))
}

// ResolveParentPath returns the package file a parent reference names,
// relative to dir. The namespace is dropped.
func ResolveParentPath(dir, parent string) string {
	return filepath.Join(dir, filepath.FromSlash(stripNamespace(parent))+".zip")
}

// FollowParent opens the parent package of a child-only model as a new
// project. With withTextures set, placeholder textures of the parent take
// over the image of the child's texture declared under the same slot.
func (c *Codec) FollowParent(ctx context.Context, child *ImportResult, parent string, resolver ParentResolver, withTextures bool) (*scene.Project, *ImportResult, error) {
	data, err := resolver.ResolveParent(ctx, parent)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving parent %q: %w", parent, err)
	}
	p, res, err := c.Load(ctx, data, stripNamespace(parent))
	if err != nil {
		return nil, nil, err
	}
	if !withTextures || child == nil {
		return p, res, nil
	}
	log := c.Settings.log()
	for _, t := range p.Textures {
		if !t.IsPlaceholder() {
			continue
		}
		src := child.Textures[t.ID]
		if src == nil || src.IsPlaceholder() {
			continue
		}
		if err := copier.Copy(t, src); err != nil {
			return nil, nil, fmt.Errorf("copying texture %s: %w", t.ID, err)
		}
		log.Debug("texture carried over from child", zap.String("id", t.ID))
	}
	return p, res, nil
}
