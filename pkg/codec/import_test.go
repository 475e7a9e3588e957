package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/furniture-core/pkg/behavior"
	"github.com/Faultbox/furniture-core/pkg/scene"
)

func TestRoundTrip(t *testing.T) {
	p := scene.NewProject("desk")
	wood := newTexture(t, p, "wood", "block/oak")
	metal := newTexture(t, p, "metal", "furniture:desk/metal")
	boxes := []*scene.Box{
		newBox(p, "top", mgl64.Vec3{0, 14, 0}, mgl64.Vec3{16, 16, 16}, wood),
		newBox(p, "leg", mgl64.Vec3{1, 0, 1}, mgl64.Vec3{3, 14, 3}, metal),
		newBox(p, "drawer", mgl64.Vec3{2, 8, 0}, mgl64.Vec3{14, 12, 2}, wood),
	}
	boxes[0].Face(scene.Up).Tint = 1
	boxes[1].Face(scene.North).UV = [4]float64{2.5, 0, 4.5, 14}
	boxes[1].Face(scene.North).Rotation = 90
	boxes[2].Face(scene.South).Bind(metal.UUID)
	boxes[2].Rotation = mgl64.Vec3{0, 22.5, 0}
	boxes[2].Origin = mgl64.Vec3{8, 8, 8}

	c := newTestCodec()
	_, data, err := c.Compile(context.Background(), p, ExportOptions{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	q, res, err := c.Load(context.Background(), data, "copy")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(res.Notices) != 0 {
		t.Errorf("notices = %v", res.Notices)
	}
	if q.Name != "copy" {
		t.Errorf("name = %q", q.Name)
	}

	got := q.Boxes()
	if len(got) != len(boxes) {
		t.Fatalf("imported %d boxes, want %d", len(got), len(boxes))
	}
	for i, want := range boxes {
		b := got[i]
		if b.Name != want.Name || b.From != want.From || b.To != want.To {
			t.Errorf("box %d = %s %v %v, want %s %v %v", i, b.Name, b.From, b.To, want.Name, want.From, want.To)
		}
		if b.Rotation != want.Rotation || b.Origin != want.Origin {
			t.Errorf("box %d rotation %v origin %v", i, b.Rotation, b.Origin)
		}
		for f := range want.Faces {
			wf, gf := want.Faces[f], b.Faces[f]
			if gf.UV != wf.UV || gf.Tint != wf.Tint || gf.Rotation != wf.Rotation {
				t.Errorf("box %d %s face = %+v, want %+v", i, scene.FaceDirs[f], gf, wf)
			}
			wt, gt := p.Texture(wf.Texture), q.Texture(gf.Texture)
			if gt == nil || gt.ID != wt.ID || !bytes.Equal(gt.Data, wt.Data) {
				t.Errorf("box %d %s texture = %+v, want %s", i, scene.FaceDirs[f], gt, wt.ID)
			}
		}
	}
	if tex := res.Textures["metal"]; tex == nil || tex.Link() != "desk/metal" || tex.Width != 16 {
		t.Errorf("metal texture = %+v", tex)
	}
}

func TestRoundTripFaceDrop(t *testing.T) {
	p := scene.NewProject("")
	wood := newTexture(t, p, "wood", "block/oak")
	newBox(p, "kept", mgl64.Vec3{}, mgl64.Vec3{4, 4, 4}, wood)
	gone := newBox(p, "gone", mgl64.Vec3{}, mgl64.Vec3{2, 2, 2}, wood)
	for i := range gone.Faces {
		gone.Faces[i].Clear()
	}

	c := newTestCodec()
	_, data, err := c.Compile(context.Background(), p, ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	q, _, err := c.Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	boxes := q.Boxes()
	if len(boxes) != 1 || boxes[0].Name != "kept" {
		t.Errorf("boxes = %v", boxes)
	}
}

func TestRoundTripGroups(t *testing.T) {
	p := scene.NewProject("")
	wood := newTexture(t, p, "wood", "block/oak")
	legs := scene.NewGroup("legs")
	legs.Origin = mgl64.Vec3{8, 0, 8}
	legs.Rotation = mgl64.Vec3{0, 45, 0}
	p.Root.Add(legs)
	newBox(p, "top", mgl64.Vec3{0, 14, 0}, mgl64.Vec3{16, 16, 16}, wood)
	legs.Add(newBox(p, "leg", mgl64.Vec3{}, mgl64.Vec3{2, 14, 2}, wood))

	c := newTestCodec()
	_, data, err := c.Compile(context.Background(), p, ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	q, _, err := c.Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	groups := q.Groups()
	if len(groups) != 1 {
		t.Fatalf("groups = %v", groups)
	}
	g := groups[0]
	if g.Name != "legs" || g.Origin != legs.Origin || g.Rotation != legs.Rotation {
		t.Errorf("group = %+v", g)
	}
	if len(g.Children) != 1 || g.Children[0].(*scene.Box).Name != "leg" {
		t.Errorf("group children = %v", g.Children)
	}
	if len(q.Root.Children) != 2 {
		t.Errorf("root children = %d, want 2", len(q.Root.Children))
	}
}

func TestUnknownFieldRoundTrip(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry: `{"custom_flag": true, "textures": {"wood": "block/oak"}, "elements": [` +
			`{"from": [0,0,0], "to": [1,1,1], "faces": {"up": {"uv": [0,0,1,1], "texture": "#wood"}}}]}`,
		"block/oak.png": string(testPNG(t, 16, 16)),
	})
	c := newTestCodec()
	p, _, err := c.Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	_, out, err := c.Compile(context.Background(), p, ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if model := unpack(t, out)[ModelEntry]; !bytes.Contains(model, []byte(`"custom_flag": true`)) {
		t.Errorf("custom_flag lost:\n%s", model)
	}
}

func modelPackage(t *testing.T, textures string) []byte {
	t.Helper()
	return pack(t, map[string]string{
		ModelEntry: fmt.Sprintf(`{"textures": %s, "elements": [`+
			`{"from": [0,0,0], "to": [4,4,4], "faces": {"north": {"uv": [0,0,4,4], "texture": "#wood"}}}]}`, textures),
		"block/oak.png":    string(testPNG(t, 16, 16)),
		"block/spruce.png": string(testPNG(t, 8, 8)),
	})
}

func TestTextureIDCollision(t *testing.T) {
	c := newTestCodec()
	ctx := context.Background()
	p, first, err := c.Load(ctx, modelPackage(t, `{"wood": "block/oak"}`), "chair")
	if err != nil {
		t.Fatal(err)
	}
	oak := first.Textures["wood"]
	oakData := oak.Data

	res, err := c.Parse(ctx, modelPackage(t, `{"wood": "block/spruce"}`), p, ImportOptions{Add: true, Name: "second"})
	if err != nil {
		t.Fatal(err)
	}
	spruce := res.Textures["wood"]
	if spruce.ID != "1_wood" {
		t.Errorf("second texture id = %q, want 1_wood", spruce.ID)
	}
	if oak.ID != "wood" || !bytes.Equal(oak.Data, oakData) {
		t.Errorf("first texture changed: %s", oak.ID)
	}
	if len(p.Textures) != 2 {
		t.Errorf("project textures = %d, want 2", len(p.Textures))
	}
	if res.Group == nil || res.Group.Name != "second" || res.Group.Parent() != p.Root {
		t.Errorf("import group = %+v", res.Group)
	}
	b := res.Elements[0].(*scene.Box)
	if b.Parent() != res.Group || b.Face(scene.North).Texture != spruce.UUID {
		t.Error("merged box not bound to its own texture inside the import group")
	}
	if p.Name != "chair" || p.AddedModels != 1 {
		t.Errorf("project name %q added %d", p.Name, p.AddedModels)
	}
}

func TestBuiltinItemParent(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry: `{"parent": "item/generated", "elements": [], "textures": {"layer0": "foo"}}`,
		"foo.png":  string(testPNG(t, 16, 16)),
	})
	p, res, err := newTestCodec().Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Boxes()) != 0 {
		t.Errorf("boxes = %d, want 0", len(p.Boxes()))
	}
	if len(p.Elements) != 1 || res.Mesh == nil || p.Elements[0] != res.Mesh {
		t.Fatalf("elements = %v mesh = %v", p.Elements, res.Mesh)
	}
	tex := p.Texture(res.Mesh.Texture)
	if tex == nil || tex.Name != "foo" || tex.ID != "layer0" {
		t.Errorf("mesh texture = %+v", tex)
	}
	if p.Parent != "item/generated" {
		t.Errorf("parent = %q", p.Parent)
	}
	if len(res.Notices) != 0 {
		t.Errorf("notices = %v", res.Notices)
	}
}

func TestChildModelOnly(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		kinds    []NoticeKind
		wantOpen []string
	}{
		{
			name:     "block parent with textures",
			model:    `{"parent": "block/chair_base", "textures": {"top": "block/oak"}}`,
			kinds:    []NoticeKind{ChildModelOnly},
			wantOpen: []string{ChoiceOpen, ChoiceOpenWithTextures},
		},
		{
			name:     "block parent without textures",
			model:    `{"parent": "block/chair_base", "elements": []}`,
			kinds:    []NoticeKind{ChildModelOnly},
			wantOpen: []string{ChoiceOpen},
		},
		{
			name:  "item parent without layer0",
			model: `{"parent": "item/handheld", "textures": {"top": "block/oak"}}`,
			kinds: []NoticeKind{ChildModelOnly},
		},
		{
			name:  "no parent",
			model: `{"elements": []}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := pack(t, map[string]string{
				ModelEntry:      tt.model,
				"block/oak.png": string(testPNG(t, 16, 16)),
			})
			_, res, err := newTestCodec().Load(context.Background(), data, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Notices) != len(tt.kinds) {
				t.Fatalf("notices = %v, want %v", noticeKinds(res.Notices), tt.kinds)
			}
			for i, k := range tt.kinds {
				if res.Notices[i].Kind != k {
					t.Errorf("notice %d = %s, want %s", i, res.Notices[i].Kind, k)
				}
			}
			if len(tt.kinds) == 0 {
				return
			}
			got := res.Notices[0].Choices
			if len(got) != len(tt.wantOpen) {
				t.Fatalf("choices = %v, want %v", got, tt.wantOpen)
			}
			for i := range got {
				if got[i] != tt.wantOpen[i] {
					t.Errorf("choice %d = %s, want %s", i, got[i], tt.wantOpen[i])
				}
			}
		})
	}
}

func TestMissingTextures(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry: `{"textures": {"wood": "block/oak"}, "elements": [{"from": [0,0,0], "to": [1,1,1], "faces": {` +
			`"north": {"uv": [0,0,1,1], "texture": "#wood"},` +
			`"south": {"uv": [0,0,1,1], "texture": "#cloth"},` +
			`"up": {"uv": [0,0,1,1], "texture": "#missing"}}}]}`,
	})
	p, res, err := newTestCodec().Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	if !hasNotice(res.Notices, MissingTexture) || !hasNotice(res.Notices, UnresolvedTexture) {
		t.Errorf("notices = %v", noticeKinds(res.Notices))
	}
	b := p.Boxes()[0]
	wood := p.Texture(b.Face(scene.North).Texture)
	if wood == nil || !wood.IsPlaceholder() || wood.Error != scene.TextureEmpty {
		t.Errorf("wood = %+v", wood)
	}
	cloth := p.Texture(b.Face(scene.South).Texture)
	if cloth == nil || cloth.ID != "cloth" || !cloth.IsPlaceholder() {
		t.Errorf("cloth = %+v", cloth)
	}
	up := b.Face(scene.Up)
	if !up.Assigned || up.HasTexture() {
		t.Errorf("up face = %+v", up)
	}
	if b.Face(scene.East).Assigned {
		t.Error("absent face imported as assigned")
	}
}

func TestInvalidTextureImage(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry:      `{"textures": {"wood": "block/oak"}}`,
		"block/oak.png": "not an image",
	})
	_, res, err := newTestCodec().Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	if tex := res.Textures["wood"]; tex.Error != scene.TextureInvalid {
		t.Errorf("texture state = %s", tex.Error)
	}
}

func TestCompileSkipsInvalidTexture(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry: `{"textures": {"wood": "block/oak", "cloth": "block/wool"}, "elements": [{"from": [0,0,0], "to": [1,1,1], "faces": {` +
			`"north": {"uv": [0,0,1,1], "texture": "#wood"},` +
			`"south": {"uv": [0,0,1,1], "texture": "#cloth"}}}]}`,
		"block/oak.png":  "not an image",
		"block/wool.png": string(testPNG(t, 16, 16)),
	})
	c := newTestCodec()
	p, _, err := c.Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	res, out, err := c.Compile(context.Background(), p, ExportOptions{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	a := unpack(t, out)
	if a.Contains("block/oak.png") {
		t.Error("unreadable texture written to the package")
	}
	if !a.Contains("block/wool.png") {
		t.Error("readable texture missing from the package")
	}
	if link, ok := res.Model.Textures.Get("wood"); !ok || link != "block/oak" {
		t.Errorf("wood slot = %q %t", link, ok)
	}
}

func TestParseCanceledBeforeMutation(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry:      `{"credit": "New credit", "textures": {"wood": "block/oak"}, "custom": 1}`,
		PropertiesEntry: `{"display_name": "New"}`,
		"block/oak.png": string(testPNG(t, 16, 16)),
	})
	p := scene.NewProject("old")
	p.Properties.DisplayName = "Old"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := newTestCodec().Parse(ctx, data, p, ImportOptions{
		Name:    "new",
		OnParse: func(*Document) { cancel() },
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if p.Name != "old" || p.Properties.DisplayName != "Old" || p.Credit != "" {
		t.Errorf("project modified: name %q display %q credit %q", p.Name, p.Properties.DisplayName, p.Credit)
	}
	if len(p.Textures) != 0 || len(p.Unhandled) != 0 {
		t.Errorf("project modified: %d textures, unhandled %v", len(p.Textures), p.Unhandled)
	}
}

func TestParseCompletesOnceStarted(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry:      `{"textures": {"wood": "block/oak", "stone": "block/stone"}}`,
		"block/oak.png": string(testPNG(t, 16, 16)),
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := scene.NewProject("")
	c := newTestCodec()
	c.Images = cancelingCodec{cancel: cancel}
	res, err := c.Parse(ctx, data, p, ImportOptions{})
	if err != nil {
		t.Fatalf("Parse returned %v after the project was modified", err)
	}
	if len(res.Textures) != 2 || len(p.Textures) != 2 {
		t.Errorf("textures = %d in result, %d in project; want 2", len(res.Textures), len(p.Textures))
	}
}

// cancelingCodec cancels the import context the first time an image is
// decoded.
type cancelingCodec struct {
	pngCodec
	cancel context.CancelFunc
}

func (c cancelingCodec) Decode(data []byte) (image.Image, error) {
	c.cancel()
	return c.pngCodec.Decode(data)
}

func TestParticleImport(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry:       `{"textures": {"wood": "block/oak", "particle": "#wood", "dust": "block/dirt"}}`,
		"block/oak.png":  string(testPNG(t, 16, 16)),
		"block/dirt.png": string(testPNG(t, 16, 16)),
	})
	p, _, err := newTestCodec().Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Textures) != 2 {
		t.Fatalf("textures = %d, want 2", len(p.Textures))
	}
	if pt := p.ParticleTexture(); pt == nil || pt.ID != "wood" {
		t.Errorf("particle = %+v", pt)
	}

	data = pack(t, map[string]string{
		ModelEntry:       `{"textures": {"particle": "block/dirt"}}`,
		"block/dirt.png": string(testPNG(t, 16, 16)),
	})
	p, _, err = newTestCodec().Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	if pt := p.ParticleTexture(); pt == nil || pt.ID != ParticleSlot || pt.IsPlaceholder() {
		t.Errorf("standalone particle = %+v", pt)
	}
}

func TestParseFatalErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not an archive", []byte("garbage"), ErrOpenArchive},
		{"no model", pack(t, map[string]string{PropertiesEntry: `{}`}), ErrMissingModel},
		{"model not an object", pack(t, map[string]string{ModelEntry: `[1, 2]`}), ErrInvalidModel},
		{"model not json", pack(t, map[string]string{ModelEntry: `{"elements": `}), ErrInvalidModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scene.NewProject("keep")
			p.Properties.DisplayName = "Kept"
			p.AddTexture(scene.NewTexture("wood"))

			_, err := newTestCodec().Parse(context.Background(), tt.data, p, ImportOptions{Name: "other"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if p.Name != "keep" || p.Properties.DisplayName != "Kept" || len(p.Textures) != 1 || p.AddedModels != 0 {
				t.Errorf("project modified: %+v", p)
			}
		})
	}
}

func TestParseProperties(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry:      `{}`,
		PropertiesEntry: `{"display_name": "Lamp", "can_hanging": true, "function": {"type": "illumination", "light_level": 20}}`,
	})
	p := scene.NewProject("")
	p.Properties.CanRotate = true
	if _, err := newTestCodec().Parse(context.Background(), data, p, ImportOptions{}); err != nil {
		t.Fatal(err)
	}
	if p.Properties.DisplayName != "Lamp" || !p.Properties.CanHanging || p.Properties.CanRotate {
		t.Errorf("properties = %+v", p.Properties)
	}
	l, ok := p.Properties.Function.(*behavior.Illumination)
	if !ok || l.LightLevel != behavior.MaxLightLevel {
		t.Errorf("function = %#v", p.Properties.Function)
	}

	bad := pack(t, map[string]string{ModelEntry: `{}`, PropertiesEntry: `[]`})
	res, err := newTestCodec().Parse(context.Background(), bad, p, ImportOptions{Add: true})
	if err != nil {
		t.Fatal(err)
	}
	if !hasNotice(res.Notices, MalformedField) {
		t.Errorf("notices = %v", noticeKinds(res.Notices))
	}
}

func TestParseModelFields(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry: `{
			"__comment": "Legacy credit",
			"parent": "block/block",
			"ambientocclusion": false,
			"gui_light": "front",
			"texture_size": [0, 32],
			"display": {"head": {"rotation": [0, 180, 0]}},
			"overrides": [{"model": "item/x"}],
			"render_type": "cutout"
		}`,
	})
	var parsed *Document
	var done *ImportResult
	p := scene.NewProject("")
	res, err := newTestCodec().Parse(context.Background(), data, p, ImportOptions{
		Name:     "block",
		OnParse:  func(doc *Document) { parsed = doc },
		OnParsed: func(r *ImportResult) { done = r },
	})
	if err != nil {
		t.Fatal(err)
	}
	if parsed != res.Model || done != res {
		t.Error("callbacks not invoked with the parse state")
	}
	if p.Name != "block" || p.Credit != "Legacy credit" || p.Parent != "block/block" {
		t.Errorf("project = %q %q %q", p.Name, p.Credit, p.Parent)
	}
	if p.AmbientOcclusion || !p.FrontGUILight {
		t.Errorf("ao %t gui light %t", p.AmbientOcclusion, p.FrontGUILight)
	}
	if p.TextureWidth != 1 || p.TextureHeight != 32 {
		t.Errorf("texture size = %dx%d", p.TextureWidth, p.TextureHeight)
	}
	head := p.Display["head"]
	if head == nil || head.Rotation != (mgl64.Vec3{0, 180, 0}) || head.Scale != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("head = %+v", head)
	}
	if len(p.Overrides) != 1 {
		t.Errorf("overrides = %v", p.Overrides)
	}
	if string(p.Unhandled["render_type"]) != `"cutout"` {
		t.Errorf("unhandled = %v", p.Unhandled)
	}
}

func TestParseMergeUnhandled(t *testing.T) {
	p := scene.NewProject("base")
	p.Unhandled["render_type"] = []byte(`"solid"`)
	data := pack(t, map[string]string{
		ModelEntry: `{"render_type": "cutout", "loader": "custom"}`,
	})
	res, err := newTestCodec().Parse(context.Background(), data, p, ImportOptions{Add: true})
	if err != nil {
		t.Fatal(err)
	}
	if string(p.Unhandled["render_type"]) != `"solid"` || string(p.Unhandled["loader"]) != `"custom"` {
		t.Errorf("unhandled = %v", p.Unhandled)
	}
	if res.Group == nil || res.Group.Name != "model" {
		t.Errorf("group = %+v", res.Group)
	}
	if p.Name != "base" {
		t.Errorf("merge renamed the project to %q", p.Name)
	}
}

func TestParseMalformedElement(t *testing.T) {
	data := pack(t, map[string]string{
		ModelEntry: `{"elements": [{"from": "x"}, {"from": [0,0,0], "to": [1,1,1], "faces": {}}],` +
			`"groups": [{"name": "g", "origin": [0,0,0], "color": 0, "children": [0, 1, 7]}]}`,
	})
	p, res, err := newTestCodec().Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Elements) != 2 || res.Elements[0] != nil || res.Elements[1] == nil {
		t.Fatalf("elements = %v", res.Elements)
	}
	if !hasNotice(res.Notices, MalformedField) {
		t.Errorf("notices = %v", noticeKinds(res.Notices))
	}
	g := p.Groups()[0]
	if len(g.Children) != 1 || g.Children[0] != res.Elements[1] {
		t.Errorf("group children = %v", g.Children)
	}
}

func TestParseModelWithoutUV(t *testing.T) {
	model := []byte(`{"texture_size": [32, 32], "elements": [{"from": [0,0,0], "to": [8,4,2], "faces": {"up": {"texture": "#missing"}}}]}`)
	p := scene.NewProject("")
	if _, err := newTestCodec().ParseModel(context.Background(), model, nil, nil, p, ImportOptions{}); err != nil {
		t.Fatal(err)
	}
	b := p.Boxes()[0]
	if b.AutoUV != scene.AutoUVRelative {
		t.Errorf("auto uv = %d", b.AutoUV)
	}
	if got := b.Face(scene.Up).UV; got != ([4]float64{0, 0, 16, 4}) {
		t.Errorf("up uv = %v", got)
	}
}

type schemaStub struct{ model, props error }

func (s schemaStub) ValidateModel([]byte) error      { return s.model }
func (s schemaStub) ValidateProperties([]byte) error { return s.props }

func TestParseSchemaNotices(t *testing.T) {
	c := newTestCodec()
	c.Schema = schemaStub{model: errors.New("bad model"), props: errors.New("bad props")}
	data := pack(t, map[string]string{ModelEntry: `{}`, PropertiesEntry: `{}`})
	_, res, err := c.Load(context.Background(), data, "")
	if err != nil {
		t.Fatal(err)
	}
	var fields []string
	for _, n := range res.Notices {
		if n.Kind == SchemaMismatch {
			fields = append(fields, n.Field)
		}
	}
	if len(fields) != 2 || fields[0] != ModelEntry || fields[1] != PropertiesEntry {
		t.Errorf("schema notices = %v", fields)
	}
}

type mapResolver map[string][]byte

func (m mapResolver) ResolveParent(_ context.Context, parent string) ([]byte, error) {
	data, ok := m[parent]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func TestFollowParent(t *testing.T) {
	c := newTestCodec()
	ctx := context.Background()
	child := pack(t, map[string]string{
		ModelEntry:           `{"parent": "furniture:chair_base", "textures": {"seat": "block/red_wool"}}`,
		"block/red_wool.png": string(testPNG(t, 16, 16)),
	})
	base := pack(t, map[string]string{
		ModelEntry: `{"textures": {"seat": "block/placeholder"}, "elements": [` +
			`{"from": [0,0,0], "to": [16,8,16], "faces": {"up": {"uv": [0,0,16,16], "texture": "#seat"}}}]}`,
	})
	resolver := mapResolver{"furniture:chair_base": base}

	_, childRes, err := c.Load(ctx, child, "red_chair")
	if err != nil {
		t.Fatal(err)
	}
	if !hasNotice(childRes.Notices, ChildModelOnly) {
		t.Fatalf("notices = %v", noticeKinds(childRes.Notices))
	}

	p, _, err := c.FollowParent(ctx, childRes, "furniture:chair_base", resolver, false)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "chair_base" || len(p.Boxes()) != 1 {
		t.Errorf("parent project = %q with %d boxes", p.Name, len(p.Boxes()))
	}
	if !p.Textures[0].IsPlaceholder() {
		t.Error("placeholder filled without textures")
	}

	p, _, err = c.FollowParent(ctx, childRes, "furniture:chair_base", resolver, true)
	if err != nil {
		t.Fatal(err)
	}
	seat := p.Textures[0]
	if seat.IsPlaceholder() || seat.ID != "seat" || seat.Name != "red_wool" {
		t.Errorf("seat = %+v", seat)
	}
	if p.Boxes()[0].Face(scene.Up).Texture != seat.UUID {
		t.Error("face binding lost when carrying the texture over")
	}

	if _, _, err := c.FollowParent(ctx, childRes, "block/none", resolver, false); err == nil {
		t.Error("unresolvable parent succeeded")
	}
}

func TestDirResolver(t *testing.T) {
	var asked string
	r := DirResolver{Dir: "lib", Read: func(name string) ([]byte, error) {
		asked = name
		return []byte("zip"), nil
	}}
	data, err := r.ResolveParent(context.Background(), "minecraft:block/base")
	if err != nil || string(data) != "zip" {
		t.Fatalf("ResolveParent = %q, %v", data, err)
	}
	if asked != "lib/block/base.zip" {
		t.Errorf("read %q", asked)
	}
}
