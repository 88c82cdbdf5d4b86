package domain

import (
	"encoding/json"
	"fmt"
)

type NodeType string

const (
	NodeTypeDecorItem NodeType = "decorItem"
	NodeTypeText      NodeType = "text"
)

// MinNodeSize is the floor for width and height after any transform.
const MinNodeSize = 20.0

type DisplayMode string

const (
	DisplayModeCard  DisplayMode = "card"
	DisplayModeClean DisplayMode = "clean"
)

// NodeContent is the variant payload of a Node. Only DecorItem and
// TextContent implement it.
type NodeContent interface {
	NodeType() NodeType
	cloneContent() NodeContent
}

// DecorItem is a catalog product placed on a page.
type DecorItem struct {
	ProductID   string      `json:"productId"`
	ProductName string      `json:"productName"`
	ProductSKU  string      `json:"productSku"`
	ImageURL    string      `json:"imageUrl"`
	Quantity    int         `json:"quantity"`
	DisplayMode DisplayMode `json:"displayMode"`
}

func (*DecorItem) NodeType() NodeType { return NodeTypeDecorItem }

func (d *DecorItem) cloneContent() NodeContent {
	c := *d
	return &c
}

// TextContent is a free text label.
type TextContent struct {
	Content         string  `json:"content"`
	FontSize        float64 `json:"fontSize"`
	FontFamily      string  `json:"fontFamily"`
	FontWeight      string  `json:"fontWeight"`
	TextAlign       string  `json:"textAlign"`
	Fill            string  `json:"fill"`
	BackgroundColor string  `json:"backgroundColor"`
}

func (*TextContent) NodeType() NodeType { return NodeTypeText }

func (t *TextContent) cloneContent() NodeContent {
	c := *t
	return &c
}

// Node is one placeable element. Geometry is in canvas pixels of a single page.
// ZIndex orders nodes within their page only.
type Node struct {
	ID        string
	X         float64
	Y         float64
	Width     float64
	Height    float64
	Rotation  float64
	Opacity   float64
	ZIndex    int
	PageIndex int
	Locked    bool
	Visible   bool
	Content   NodeContent
}

// Type returns the variant tag, or "" for a node without content.
func (n Node) Type() NodeType {
	if n.Content == nil {
		return ""
	}
	return n.Content.NodeType()
}

// Decor returns the decor payload, or nil when n is not a decor item.
func (n Node) Decor() *DecorItem {
	d, _ := n.Content.(*DecorItem)
	return d
}

// Text returns the text payload, or nil when n is not a text node.
func (n Node) Text() *TextContent {
	t, _ := n.Content.(*TextContent)
	return t
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	if n.Content != nil {
		n.Content = n.Content.cloneContent()
	}
	return n
}

// ClampSize raises width and height to MinNodeSize.
func (n *Node) ClampSize() {
	if n.Width < MinNodeSize {
		n.Width = MinNodeSize
	}
	if n.Height < MinNodeSize {
		n.Height = MinNodeSize
	}
}

// CloneNodes deep-copies a node slice. A nil slice stays nil.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// nodeBase is the shared part of the persisted node shape.
type nodeBase struct {
	ID        string   `json:"id"`
	Type      NodeType `json:"type"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	Rotation  float64  `json:"rotation"`
	Opacity   *float64 `json:"opacity,omitempty"`
	ZIndex    int      `json:"zIndex"`
	PageIndex int      `json:"pageIndex"`
	Locked    bool     `json:"locked"`
	Visible   *bool    `json:"visible,omitempty"`
}

// nodeJSON flattens the variant payload next to the base fields.
type nodeJSON struct {
	nodeBase
	*DecorItem
	*TextContent
}

func (n Node) MarshalJSON() ([]byte, error) {
	visible, opacity := n.Visible, n.Opacity
	out := nodeJSON{nodeBase: nodeBase{
		ID:        n.ID,
		Type:      n.Type(),
		X:         n.X,
		Y:         n.Y,
		Width:     n.Width,
		Height:    n.Height,
		Rotation:  n.Rotation,
		Opacity:   &opacity,
		ZIndex:    n.ZIndex,
		PageIndex: n.PageIndex,
		Locked:    n.Locked,
		Visible:   &visible,
	}}
	switch c := n.Content.(type) {
	case *DecorItem:
		out.DecorItem = c
	case *TextContent:
		out.TextContent = c
	default:
		return nil, fmt.Errorf("marshal node %s: %w", n.ID, ErrUnknownNodeType)
	}
	return json.Marshal(out)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = Node{
		ID:        in.ID,
		X:         in.X,
		Y:         in.Y,
		Width:     in.Width,
		Height:    in.Height,
		Rotation:  in.Rotation,
		Opacity:   1,
		ZIndex:    in.ZIndex,
		PageIndex: in.PageIndex,
		Locked:    in.Locked,
		// missing "visible" means visible
		Visible: in.Visible == nil || *in.Visible,
	}
	if in.Opacity != nil {
		n.Opacity = *in.Opacity
	}
	switch in.Type {
	case NodeTypeDecorItem:
		if in.DecorItem == nil {
			in.DecorItem = &DecorItem{}
		}
		n.Content = in.DecorItem
	case NodeTypeText:
		if in.TextContent == nil {
			in.TextContent = &TextContent{}
		}
		n.Content = in.TextContent
	default:
		return fmt.Errorf("node %s has type %q: %w", in.ID, in.Type, ErrUnknownNodeType)
	}
	return nil
}
