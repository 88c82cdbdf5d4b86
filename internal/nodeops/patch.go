package nodeops

import "moodboard/internal/domain"

// NodePatch lists the fields to overwrite; nil fields are kept. Variant
// patches only apply to nodes of the matching type.
type NodePatch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	ZIndex   *int     `json:"zIndex,omitempty"`
	Locked   *bool    `json:"locked,omitempty"`
	Visible  *bool    `json:"visible,omitempty"`

	Decor *DecorPatch `json:"decor,omitempty"`
	Text  *TextPatch  `json:"text,omitempty"`
}

type DecorPatch struct {
	ProductName *string             `json:"productName,omitempty"`
	ImageURL    *string             `json:"imageUrl,omitempty"`
	Quantity    *int                `json:"quantity,omitempty"`
	DisplayMode *domain.DisplayMode `json:"displayMode,omitempty"`
}

type TextPatch struct {
	Content         *string  `json:"content,omitempty"`
	FontSize        *float64 `json:"fontSize,omitempty"`
	FontFamily      *string  `json:"fontFamily,omitempty"`
	FontWeight      *string  `json:"fontWeight,omitempty"`
	TextAlign       *string  `json:"textAlign,omitempty"`
	Fill            *string  `json:"fill,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
}

// Geometry builds a patch that only moves and resizes.
func Geometry(x, y, width, height float64) NodePatch {
	return NodePatch{X: &x, Y: &y, Width: &width, Height: &height}
}

// Move builds a patch that only changes position.
func Move(x, y float64) NodePatch {
	return NodePatch{X: &x, Y: &y}
}

// IsEmpty reports whether p changes nothing.
func (p NodePatch) IsEmpty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil &&
		p.Rotation == nil && p.Opacity == nil && p.ZIndex == nil &&
		p.Locked == nil && p.Visible == nil && p.Decor == nil && p.Text == nil
}

func (p NodePatch) apply(n *domain.Node) {
	setF(&n.X, p.X)
	setF(&n.Y, p.Y)
	setF(&n.Width, p.Width)
	setF(&n.Height, p.Height)
	setF(&n.Rotation, p.Rotation)
	if p.Opacity != nil {
		n.Opacity = clamp01(*p.Opacity)
	}
	if p.ZIndex != nil {
		n.ZIndex = *p.ZIndex
	}
	if p.Locked != nil {
		n.Locked = *p.Locked
	}
	if p.Visible != nil {
		n.Visible = *p.Visible
	}
	n.ClampSize()

	if d := n.Decor(); d != nil && p.Decor != nil {
		setS(&d.ProductName, p.Decor.ProductName)
		setS(&d.ImageURL, p.Decor.ImageURL)
		if p.Decor.Quantity != nil {
			d.Quantity = max(*p.Decor.Quantity, 1)
		}
		if p.Decor.DisplayMode != nil {
			d.DisplayMode = *p.Decor.DisplayMode
		}
	}
	if t := n.Text(); t != nil && p.Text != nil {
		setS(&t.Content, p.Text.Content)
		setF(&t.FontSize, p.Text.FontSize)
		setS(&t.FontFamily, p.Text.FontFamily)
		setS(&t.FontWeight, p.Text.FontWeight)
		setS(&t.TextAlign, p.Text.TextAlign)
		setS(&t.Fill, p.Text.Fill)
		setS(&t.BackgroundColor, p.Text.BackgroundColor)
	}
}

func setF(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setS(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
