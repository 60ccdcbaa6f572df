package psd

import (
	"fmt"
	"strings"
)

// Node types
const (
	NodeTypeRoot  = "root"
	NodeTypeGroup = "group"
	NodeTypeLayer = "layer"
)

// Node represents a node in the layer tree. Children are ordered top
// to bottom, the way they appear in the layers panel.
type Node struct {
	Type     string
	Name     string
	Layer    *Layer
	Parent   *Node
	Children []*Node

	Visible   bool
	Opacity   uint8
	BlendMode BlendMode

	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

func newRootNode(header *Header, children []*Node) *Node {
	root := &Node{
		Type:      NodeTypeRoot,
		Name:      "Root",
		Children:  children,
		Right:     int32(header.Width()),
		Bottom:    int32(header.Height()),
		Visible:   true,
		Opacity:   255,
		BlendMode: BlendModeNormal,
	}
	for _, child := range children {
		child.Parent = root
	}
	root.UpdateDimensions()
	return root
}

func newLayerNode(nodeType string, layer *Layer, children []*Node) *Node {
	node := &Node{
		Type:      nodeType,
		Name:      layer.Name,
		Layer:     layer,
		Children:  children,
		Visible:   layer.Visible(),
		Opacity:   layer.Opacity,
		BlendMode: layer.BlendMode,
		Left:      layer.Left,
		Top:       layer.Top,
		Right:     layer.Right,
		Bottom:    layer.Bottom,
	}
	for _, child := range children {
		child.Parent = node
	}
	return node
}

// buildLayerTree folds the flat bottom-up layer list into a forest.
// A bounding divider opens a group when walking bottom-up; an open or
// closed folder layer is the group itself and closes it. The returned
// forest and every child list are ordered top-down.
func buildLayerTree(layers []*Layer, warn WarnFunc) ([]*Node, error) {
	stack := [][]*Node{nil}
	for _, layer := range layers {
		switch dividerRole(layer, warn) {
		case roleGroupStart:
			stack = append(stack, nil)
		case roleGroupEnd:
			if len(stack) < 2 {
				return nil, fmt.Errorf("%w: folder layer %q closes no group", ErrStructure, layer.Name)
			}
			children := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			reverseNodes(children)
			node := newLayerNode(NodeTypeGroup, layer, children)
			stack[len(stack)-1] = append(stack[len(stack)-1], node)
		default:
			stack[len(stack)-1] = append(stack[len(stack)-1], newLayerNode(NodeTypeLayer, layer, nil))
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: %d unterminated groups in layer list", ErrStructure, len(stack)-1)
	}
	top := stack[0]
	reverseNodes(top)
	return top, nil
}

type dividerRoleKind int

const (
	roleNone dividerRoleKind = iota
	roleGroupStart
	roleGroupEnd
)

// dividerRole inspects a layer's additional info for the first section
// divider that marks a group boundary.
func dividerRole(layer *Layer, warn WarnFunc) dividerRoleKind {
	for _, info := range layer.AdditionalInfo {
		divider, ok := info.(*SectionDivider)
		if !ok {
			continue
		}
		switch divider.Type {
		case SectionDividerBounding:
			return roleGroupStart
		case SectionDividerOpenFolder, SectionDividerClosedFolder:
			return roleGroupEnd
		case SectionDividerAnyOther:
			warn("layer %q: section divider of type AnyOtherType", layer.Name)
		}
	}
	return roleNone
}

func reverseNodes(nodes []*Node) {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
}

// Root returns the root node of the tree.
func (n *Node) Root() *Node {
	current := n
	for current.Parent != nil {
		current = current.Parent
	}
	return current
}

// IsRoot returns whether this is the root node.
func (n *Node) IsRoot() bool {
	return n.Type == NodeTypeRoot
}

// HasChildren returns whether this node has children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// IsChildless returns whether this node has no children.
func (n *Node) IsChildless() bool {
	return !n.HasChildren()
}

// Descendants returns all descendant nodes (not including this node).
func (n *Node) Descendants() []*Node {
	var result []*Node
	for _, child := range n.Children {
		result = append(result, child)
		result = append(result, child.Descendants()...)
	}
	return result
}

// DescendantLayers returns all descendant layer nodes.
func (n *Node) DescendantLayers() []*Node {
	var result []*Node
	for _, node := range n.Descendants() {
		if node.Type == NodeTypeLayer {
			result = append(result, node)
		}
	}
	return result
}

// DescendantGroups returns all descendant group nodes.
func (n *Node) DescendantGroups() []*Node {
	var result []*Node
	for _, node := range n.Descendants() {
		if node.Type == NodeTypeGroup {
			result = append(result, node)
		}
	}
	return result
}

// Subtree returns all nodes in the subtree (including this node).
func (n *Node) Subtree() []*Node {
	result := []*Node{n}
	result = append(result, n.Descendants()...)
	return result
}

// SubtreeLayers returns all layer nodes in the subtree.
func (n *Node) SubtreeLayers() []*Node {
	var result []*Node
	if n.Type == NodeTypeLayer {
		result = append(result, n)
	}
	result = append(result, n.DescendantLayers()...)
	return result
}

// SubtreeGroups returns all group nodes in the subtree.
func (n *Node) SubtreeGroups() []*Node {
	var result []*Node
	if n.Type == NodeTypeGroup {
		result = append(result, n)
	}
	result = append(result, n.DescendantGroups()...)
	return result
}

// Siblings returns all siblings including this node.
func (n *Node) Siblings() []*Node {
	if n.Parent == nil {
		return []*Node{n}
	}
	return n.Parent.Children
}

// HasSiblings returns whether this node has siblings.
func (n *Node) HasSiblings() bool {
	return len(n.Siblings()) > 1
}

// IsOnlyChild returns whether this node is an only child.
func (n *Node) IsOnlyChild() bool {
	return !n.HasSiblings()
}

// Depth returns the depth of this node in the tree (root is 0).
func (n *Node) Depth() int {
	depth := 0
	for current := n; current.Parent != nil; current = current.Parent {
		depth++
	}
	return depth
}

// PathParts returns the names on the path from the root to this node.
func (n *Node) PathParts() []string {
	var parts []string
	for current := n; current.Parent != nil; current = current.Parent {
		parts = append([]string{current.Name}, parts...)
	}
	return parts
}

// Path returns the slash-joined path to this node.
func (n *Node) Path() string {
	return strings.Join(n.PathParts(), "/")
}

// ChildrenAtPath finds nodes at the given slash-separated path.
func (n *Node) ChildrenAtPath(path string) []*Node {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return n.findAtPath(strings.Split(path, "/"))
}

func (n *Node) findAtPath(parts []string) []*Node {
	if len(parts) == 0 {
		return []*Node{n}
	}

	target := parts[0]
	remaining := parts[1:]

	var results []*Node
	for _, child := range n.Children {
		if child.Name == target {
			if len(remaining) == 0 {
				results = append(results, child)
			} else {
				results = append(results, child.findAtPath(remaining)...)
			}
		}
	}
	return results
}

// Width returns the width of the node.
func (n *Node) Width() int32 {
	return n.Right - n.Left
}

// Height returns the height of the node.
func (n *Node) Height() int32 {
	return n.Bottom - n.Top
}

// IsEmpty returns whether this node is empty (zero size).
func (n *Node) IsEmpty() bool {
	return n.Width() == 0 || n.Height() == 0
}

// UpdateDimensions recursively updates the dimensions of group nodes
// from their non-empty children.
func (n *Node) UpdateDimensions() {
	if n.Type == NodeTypeLayer {
		return
	}

	for _, child := range n.Children {
		child.UpdateDimensions()
	}

	// Root node dimensions are the document bounds.
	if n.Type == NodeTypeRoot {
		return
	}

	var nonEmpty []*Node
	for _, child := range n.Children {
		if !child.IsEmpty() {
			nonEmpty = append(nonEmpty, child)
		}
	}
	if len(nonEmpty) == 0 {
		n.Left, n.Top, n.Right, n.Bottom = 0, 0, 0, 0
		return
	}

	n.Left, n.Top, n.Right, n.Bottom = nonEmpty[0].Left, nonEmpty[0].Top, nonEmpty[0].Right, nonEmpty[0].Bottom
	for _, child := range nonEmpty[1:] {
		if child.Left < n.Left {
			n.Left = child.Left
		}
		if child.Top < n.Top {
			n.Top = child.Top
		}
		if child.Right > n.Right {
			n.Right = child.Right
		}
		if child.Bottom > n.Bottom {
			n.Bottom = child.Bottom
		}
	}
}
