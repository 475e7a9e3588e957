package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Node is anything that can live in the outliner tree.
type Node interface {
	ID() uuid.UUID
	Parent() *Group
	setParent(g *Group)
}

// Element is a node that is also tracked in the project's element arena.
type Element interface {
	Node
	isElement()
}

// Group is a named container of boxes and nested groups.
type Group struct {
	UUID     uuid.UUID
	Name     string
	Origin   mgl64.Vec3
	Rotation mgl64.Vec3
	Color    int
	Export   bool
	Children []Node

	parent *Group
}

// NewGroup creates an empty exportable group.
func NewGroup(name string) *Group {
	if name == "" {
		name = "group"
	}
	return &Group{
		UUID:   uuid.New(),
		Name:   name,
		Export: true,
	}
}

// ID implements Node.
func (g *Group) ID() uuid.UUID { return g.UUID }

// Parent implements Node.
func (g *Group) Parent() *Group { return g.parent }

func (g *Group) setParent(p *Group) { g.parent = p }

// Add detaches n from its current parent and appends it to g.
func (g *Group) Add(n Node) {
	Detach(n)
	g.Children = append(g.Children, n)
	n.setParent(g)
}

// Remove drops n from g's children. It reports whether n was found.
func (g *Group) Remove(n Node) bool {
	for i, c := range g.Children {
		if c.ID() == n.ID() {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			n.setParent(nil)
			return true
		}
	}
	return false
}

// Detach removes n from its parent, if any.
func Detach(n Node) {
	if p := n.Parent(); p != nil {
		p.Remove(n)
	}
}

// Walk visits every descendant of g depth-first in child order.
// Returning false from fn skips the children of a group.
func (g *Group) Walk(fn func(n Node) bool) {
	for _, c := range g.Children {
		descend := fn(c)
		if sub, ok := c.(*Group); ok && descend {
			sub.Walk(fn)
		}
	}
}

// TextureMesh is a flat textured quad used to display item models that have
// no geometry of their own.
type TextureMesh struct {
	UUID       uuid.UUID
	Name       string
	Rotation   mgl64.Vec3
	LocalPivot mgl64.Vec3
	Locked     bool
	Export     bool
	Texture    uuid.UUID

	parent *Group
}

// NewTextureMesh creates a locked, non-exported display quad.
func NewTextureMesh(name string) *TextureMesh {
	return &TextureMesh{
		UUID:       uuid.New(),
		Name:       name,
		Rotation:   mgl64.Vec3{90, 180, 0},
		LocalPivot: mgl64.Vec3{0, -7.5, -16},
		Locked:     true,
		Export:     false,
	}
}

// ID implements Node.
func (m *TextureMesh) ID() uuid.UUID { return m.UUID }

// Parent implements Node.
func (m *TextureMesh) Parent() *Group { return m.parent }

func (m *TextureMesh) setParent(g *Group) { m.parent = g }

func (m *TextureMesh) isElement() {}
