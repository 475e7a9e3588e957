package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/furniture-core/pkg/scene"
)

// supportedFields are the top-level keys the codec models itself. Everything
// else round-trips through Project.Unhandled.
var supportedFields = map[string]bool{
	"textures": true, "elements": true, "groups": true, "parent": true,
	"display": true, "__comment": true, "credit": true, "texture_size": true,
	"overrides": true, "ambientocclusion": true, "gui_light": true,
}

// Document is the content of model.json.
type Document struct {
	Credit           string
	Comment          string // Legacy spelling of Credit
	Parent           *string
	AmbientOcclusion *bool
	TextureSize      *[2]int
	Textures         TextureSlots
	Elements         []*Element // Nil entries mark elements that failed to decode
	GUILight         string
	Overrides        []map[string]any
	Display          DisplayMap
	Groups           []GroupEntry

	// Extra holds unrecognized top-level keys verbatim.
	Extra map[string]json.RawMessage
}

// Element is one compiled box.
type Element struct {
	Name          string           `json:"name,omitempty"`
	From          mgl64.Vec3       `json:"from"`
	To            mgl64.Vec3       `json:"to"`
	Shade         *bool            `json:"shade,omitempty"`
	LightEmission int              `json:"light_emission,omitempty"`
	Rotation      *ElementRotation `json:"rotation,omitempty"`
	Rotated       *mgl64.Vec3      `json:"rotated,omitempty"`
	Color         *int             `json:"color,omitempty"`
	Faces         FaceMap          `json:"faces"`
	Comment       string           `json:"__comment,omitempty"`
}

// ElementFace is one face of a compiled element.
type ElementFace struct {
	UV        *[4]float64 `json:"uv,omitempty"`
	Rotation  float64     `json:"rotation,omitempty"`
	Texture   string      `json:"texture,omitempty"`
	CullFace  string      `json:"cullface,omitempty"`
	TintIndex *float64    `json:"tintindex,omitempty"`
}

// FaceMap holds element faces keyed by direction name.
type FaceMap map[string]*ElementFace

// MarshalJSON writes faces in canonical direction order.
func (m FaceMap) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(m))
	for _, d := range scene.FaceDirs {
		if _, ok := m[string(d)]; ok {
			keys = append(keys, string(d))
		}
	}
	return marshalOrdered(keys, func(k string) any { return m[k] })
}

// TextureSlot maps a slot id to a resource link or a "#slot" indirection.
type TextureSlot struct {
	ID   string
	Link string
}

// TextureSlots is the ordered textures object.
type TextureSlots []TextureSlot

// Get returns the link for id.
func (s TextureSlots) Get(id string) (string, bool) {
	for _, t := range s {
		if t.ID == id {
			return t.Link, true
		}
	}
	return "", false
}

// MarshalJSON implements json.Marshaler.
func (s TextureSlots) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(s))
	links := make(map[string]string, len(s))
	for _, t := range s {
		if _, dup := links[t.ID]; !dup {
			keys = append(keys, t.ID)
		}
		links[t.ID] = t.Link
	}
	return marshalOrdered(keys, func(k string) any { return links[k] })
}

// UnmarshalJSON keeps document order and skips non-string values.
func (s *TextureSlots) UnmarshalJSON(data []byte) error {
	keys, values, err := decodeObject(data)
	if err != nil {
		return err
	}
	*s = (*s)[:0]
	for _, k := range keys {
		var link string
		if json.Unmarshal(values[k], &link) != nil {
			continue
		}
		*s = append(*s, TextureSlot{ID: k, Link: link})
	}
	return nil
}

// DisplayTransform is the exported form of a display slot.
type DisplayTransform struct {
	Rotation    *mgl64.Vec3 `json:"rotation,omitempty"`
	Translation *mgl64.Vec3 `json:"translation,omitempty"`
	Scale       *mgl64.Vec3 `json:"scale,omitempty"`
}

// DisplayMap holds display transforms keyed by slot name.
type DisplayMap map[string]*DisplayTransform

// MarshalJSON writes known slots first, in display order.
func (m DisplayMap) MarshalJSON() ([]byte, error) {
	var keys []string
	known := make(map[string]bool)
	for _, slot := range scene.DisplaySlots {
		known[slot] = true
		if _, ok := m[slot]; ok {
			keys = append(keys, slot)
		}
	}
	var rest []string
	for k := range m {
		if !known[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)
	return marshalOrdered(keys, func(k string) any { return m[k] })
}

// GroupNode is a group in the nested groups structure.
type GroupNode struct {
	Name     string       `json:"name"`
	Origin   mgl64.Vec3   `json:"origin"`
	Rotation *mgl64.Vec3  `json:"rotation,omitempty"`
	Color    int          `json:"color"`
	Export   *bool        `json:"export,omitempty"`
	Children []GroupEntry `json:"children"`
}

// GroupEntry is either an element index or a nested group.
type GroupEntry struct {
	Index int // Valid when Group is nil and Index >= 0
	Group *GroupNode
}

// MarshalJSON implements json.Marshaler.
func (e GroupEntry) MarshalJSON() ([]byte, error) {
	if e.Group != nil {
		return json.Marshal(e.Group)
	}
	return json.Marshal(e.Index)
}

// UnmarshalJSON accepts numbers and objects. Anything else (such as the uuid
// strings written by editors) decodes to an entry that references nothing.
func (e *GroupEntry) UnmarshalJSON(data []byte) error {
	e.Index, e.Group = -1, nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '{':
		var g GroupNode
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		e.Group = &g
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		if f >= 0 && f == math.Trunc(f) {
			e.Index = int(f)
		}
	}
	return nil
}

// DecodeDocument parses model.json. Only a document that is not a JSON object
// is an error; fields that fail to decode are left unset and reported.
func DecodeDocument(data []byte) (*Document, []Notice, error) {
	keys, values, err := decodeObject(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}

	doc := &Document{Extra: make(map[string]json.RawMessage)}
	var notices []Notice
	field := func(key string, dst any) {
		raw, ok := values[key]
		if !ok {
			return
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			reflect.ValueOf(dst).Elem().SetZero()
			notices = append(notices, Notice{
				Kind:    MalformedField,
				Field:   key,
				Message: fmt.Sprintf("field %q ignored: %v", key, err),
			})
		}
	}

	var credit, comment any
	field("credit", &credit)
	field("__comment", &comment)
	if s, ok := credit.(string); ok {
		doc.Credit = s
	}
	if s, ok := comment.(string); ok {
		doc.Comment = s
	}

	field("parent", &doc.Parent)
	field("ambientocclusion", &doc.AmbientOcclusion)
	field("gui_light", &doc.GUILight)
	field("textures", &doc.Textures)
	field("overrides", &doc.Overrides)
	field("display", &doc.Display)
	field("groups", &doc.Groups)

	var size []float64
	field("texture_size", &size)
	if len(size) >= 2 {
		doc.TextureSize = &[2]int{int(size[0]), int(size[1])}
	}

	var elements []json.RawMessage
	field("elements", &elements)
	for i, raw := range elements {
		var el Element
		if err := json.Unmarshal(raw, &el); err != nil {
			notices = append(notices, Notice{
				Kind:    MalformedField,
				Field:   "elements",
				Message: fmt.Sprintf("element %d ignored: %v", i, err),
			})
			doc.Elements = append(doc.Elements, nil)
			continue
		}
		doc.Elements = append(doc.Elements, &el)
	}

	for _, k := range keys {
		if !supportedFields[k] {
			doc.Extra[k] = values[k]
		}
	}
	return doc, notices, nil
}

// MarshalJSON writes the document with keys in a stable order followed by
// the pass-through keys.
func (d *Document) MarshalJSON() ([]byte, error) {
	var keys []string
	vals := make(map[string]any)
	put := func(k string, v any) {
		keys = append(keys, k)
		vals[k] = v
	}

	if d.Credit != "" {
		put("credit", d.Credit)
	}
	if d.Comment != "" {
		put("__comment", d.Comment)
	}
	if d.Parent != nil {
		put("parent", *d.Parent)
	}
	if d.AmbientOcclusion != nil {
		put("ambientocclusion", *d.AmbientOcclusion)
	}
	if rt, ok := d.Extra["render_type"]; ok {
		put("render_type", rt)
	}
	if d.TextureSize != nil {
		put("texture_size", *d.TextureSize)
	}
	if d.Textures != nil {
		put("textures", d.Textures)
	}
	if d.Elements != nil {
		put("elements", d.Elements)
	}
	if d.GUILight != "" {
		put("gui_light", d.GUILight)
	}
	if d.Overrides != nil {
		put("overrides", d.Overrides)
	}
	if d.Display != nil {
		put("display", d.Display)
	}
	if d.Groups != nil {
		put("groups", d.Groups)
	}

	extra := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		if _, done := vals[k]; !done {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		put(k, d.Extra[k])
	}
	return marshalOrdered(keys, func(k string) any { return vals[k] })
}

// Encode returns the tab-indented JSON form of the document.
func (d *Document) Encode() ([]byte, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "\t"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HasGeometry reports whether the document declares at least one element.
func (d *Document) HasGeometry() bool {
	return len(d.Elements) > 0
}

func marshalOrdered(keys []string, value func(string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(value(k))
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var errNotObject = errors.New("expected a JSON object")

// decodeObject splits a JSON object into its raw values, keeping key order.
// Later duplicates win.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errNotObject
	}
	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}
