package codec

import (
	"github.com/Faultbox/furniture-core/pkg/scene"
)

// CompileGroups builds the nested groups structure below root. Boxes are
// referenced by their compiled element index; groups without any emitted box
// below them are left out.
func CompileGroups(root *scene.Group, index *IndexMap) []GroupEntry {
	return compileChildren(root.Children, index)
}

func compileChildren(children []scene.Node, index *IndexMap) []GroupEntry {
	out := []GroupEntry{}
	for _, c := range children {
		switch n := c.(type) {
		case *scene.Group:
			if !n.Export {
				continue
			}
			kids := compileChildren(n.Children, index)
			if len(kids) == 0 {
				continue
			}
			node := &GroupNode{
				Name:     n.Name,
				Origin:   n.Origin,
				Color:    n.Color,
				Children: kids,
			}
			if !isZero(n.Rotation) {
				rot := n.Rotation
				node.Rotation = &rot
			}
			out = append(out, GroupEntry{Group: node})
		case *scene.Box:
			if i, ok := index.Lookup(n.UUID); ok {
				out = append(out, GroupEntry{Index: i})
			}
		}
	}
	return out
}

// HasBranch reports whether entries contain at least one group.
func HasBranch(entries []GroupEntry) bool {
	for _, e := range entries {
		if e.Group != nil {
			return true
		}
	}
	return false
}

// ParseGroups rebuilds groups under target. Index entries pick the element
// at that position of elements, which holds the boxes of one import in
// document order (so index 0 is the first element of that import, whatever
// the project already contained), and move it into the group being built.
// Out-of-range indices and nil elements are ignored.
func ParseGroups(entries []GroupEntry, elements []scene.Element, target *scene.Group) {
	for _, e := range entries {
		if e.Group == nil {
			if e.Index < 0 || e.Index >= len(elements) || elements[e.Index] == nil {
				continue
			}
			target.Add(elements[e.Index])
			continue
		}
		g := scene.NewGroup(e.Group.Name)
		g.Origin = e.Group.Origin
		if e.Group.Rotation != nil {
			g.Rotation = *e.Group.Rotation
		}
		g.Color = e.Group.Color
		if e.Group.Export != nil {
			g.Export = *e.Group.Export
		}
		target.Add(g)
		ParseGroups(e.Group.Children, elements, g)
	}
}
