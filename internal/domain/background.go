package domain

import (
	"encoding/json"
	"fmt"
)

type BackgroundType string

const (
	BackgroundTypeColor    BackgroundType = "color"
	BackgroundTypeGradient BackgroundType = "gradient"
	BackgroundTypeImage    BackgroundType = "image"
)

type ImageFit string

const (
	ImageFitCover   ImageFit = "cover"
	ImageFitContain ImageFit = "contain"
	ImageFitStretch ImageFit = "stretch"
)

// DefaultBackgroundColor paints new scenes.
const DefaultBackgroundColor = "#ffffff"

// BackgroundFill is the variant payload of a Background.
type BackgroundFill interface {
	BackgroundType() BackgroundType
	cloneFill() BackgroundFill
}

type ColorFill struct {
	Value string `json:"value"`
}

func (*ColorFill) BackgroundType() BackgroundType { return BackgroundTypeColor }
func (c *ColorFill) cloneFill() BackgroundFill {
	cp := *c
	return &cp
}

type GradientFill struct {
	Colors    []string `json:"colors"`
	Direction string   `json:"direction"`
}

func (*GradientFill) BackgroundType() BackgroundType { return BackgroundTypeGradient }
func (g *GradientFill) cloneFill() BackgroundFill {
	cp := *g
	cp.Colors = append([]string(nil), g.Colors...)
	return &cp
}

type ImageFill struct {
	URL     string   `json:"url"`
	Fit     ImageFit `json:"fit"`
	Opacity float64  `json:"opacity"`
}

func (*ImageFill) BackgroundType() BackgroundType { return BackgroundTypeImage }
func (i *ImageFill) cloneFill() BackgroundFill {
	cp := *i
	return &cp
}

// Background is painted beneath every node of every page.
type Background struct {
	Fill BackgroundFill
}

func ColorBackground(value string) Background {
	return Background{Fill: &ColorFill{Value: value}}
}

func GradientBackground(colors []string, direction string) Background {
	return Background{Fill: &GradientFill{Colors: append([]string(nil), colors...), Direction: direction}}
}

func ImageBackground(url string, fit ImageFit, opacity float64) Background {
	return Background{Fill: &ImageFill{URL: url, Fit: fit, Opacity: opacity}}
}

// DefaultBackground is a plain white fill.
func DefaultBackground() Background {
	return ColorBackground(DefaultBackgroundColor)
}

func (b Background) Type() BackgroundType {
	if b.Fill == nil {
		return ""
	}
	return b.Fill.BackgroundType()
}

func (b Background) Clone() Background {
	if b.Fill != nil {
		b.Fill = b.Fill.cloneFill()
	}
	return b
}

type backgroundJSON struct {
	Type BackgroundType `json:"type"`
	*ColorFill
	*GradientFill
	*ImageFill
}

func (b Background) MarshalJSON() ([]byte, error) {
	out := backgroundJSON{Type: b.Type()}
	switch f := b.Fill.(type) {
	case *ColorFill:
		out.ColorFill = f
	case *GradientFill:
		out.GradientFill = f
	case *ImageFill:
		out.ImageFill = f
	default:
		return nil, ErrUnknownBackground
	}
	return json.Marshal(out)
}

func (b *Background) UnmarshalJSON(data []byte) error {
	var in backgroundJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Type {
	case BackgroundTypeColor:
		if in.ColorFill == nil {
			in.ColorFill = &ColorFill{Value: DefaultBackgroundColor}
		}
		b.Fill = in.ColorFill
	case BackgroundTypeGradient:
		if in.GradientFill == nil {
			in.GradientFill = &GradientFill{}
		}
		b.Fill = in.GradientFill
	case BackgroundTypeImage:
		if in.ImageFill == nil {
			in.ImageFill = &ImageFill{Fit: ImageFitCover, Opacity: 1}
		}
		b.Fill = in.ImageFill
	default:
		return fmt.Errorf("background type %q: %w", in.Type, ErrUnknownBackground)
	}
	return nil
}
