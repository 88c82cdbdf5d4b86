// Package export rasterises a page's paint list into a PNG wireframe.
// Product images are not fetched; decor items are drawn as labelled
// placeholders.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"moodboard/internal/domain"
)

var (
	placeholderFill = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	placeholderLine = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	cardBorder      = color.RGBA{0xd1, 0xd5, 0xdb, 0xff}
	captionColor    = color.RGBA{0x37, 0x41, 0x51, 0xff}
)

const captionHeight = 28.0

// RenderPNG paints state at the given scale and encodes it to w. Only the
// nodes in state are drawn, in order, over the background.
func RenderPNG(w io.Writer, state domain.PageState, scale float64) error {
	if scale <= 0 {
		scale = 1
	}
	width := int(math.Ceil(state.Width * scale))
	height := int(math.Ceil(state.Height * scale))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render page: empty size %vx%v", state.Width, state.Height)
	}

	dc := gg.NewContext(width, height)
	dc.Scale(scale, scale)

	paintBackground(dc, state.Background, state.Width, state.Height)
	for _, n := range state.Nodes {
		if !n.Visible {
			continue
		}
		paintNode(dc, n)
	}
	return dc.EncodePNG(w)
}

// WritePNG renders state into the file at path.
func WritePNG(path string, state domain.PageState, scale float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := RenderPNG(f, state, scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func paintBackground(dc *gg.Context, bg domain.Background, w, h float64) {
	dc.SetColor(color.White)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	switch f := bg.Fill.(type) {
	case *domain.ColorFill:
		if c, ok := parseColor(f.Value, 1); ok {
			dc.SetColor(c)
			dc.DrawRectangle(0, 0, w, h)
			dc.Fill()
		}
	case *domain.GradientFill:
		if len(f.Colors) == 0 {
			return
		}
		x0, y0, x1, y1 := gradientAxis(f.Direction, w, h)
		grad := gg.NewLinearGradient(x0, y0, x1, y1)
		for i, hex := range f.Colors {
			c, ok := parseColor(hex, 1)
			if !ok {
				continue
			}
			stop := 0.0
			if len(f.Colors) > 1 {
				stop = float64(i) / float64(len(f.Colors)-1)
			}
			grad.AddColorStop(stop, c)
		}
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
	case *domain.ImageFill:
		opacity := f.Opacity
		if opacity <= 0 || opacity > 1 {
			opacity = 1
		}
		placeholder(dc, 0, 0, w, h, opacity)
	}
}

// gradientAxis maps a CSS-like direction onto a line across the page.
func gradientAxis(direction string, w, h float64) (x0, y0, x1, y1 float64) {
	d := strings.ToLower(strings.TrimSpace(direction))
	switch d {
	case "to right", "horizontal", "90deg":
		return 0, 0, w, 0
	case "to left", "270deg":
		return w, 0, 0, 0
	case "to top", "0deg":
		return 0, h, 0, 0
	case "to bottom right", "diagonal", "135deg":
		return 0, 0, w, h
	case "to bottom left", "225deg":
		return w, 0, 0, h
	default:
		return 0, 0, 0, h
	}
}

func paintNode(dc *gg.Context, n domain.Node) {
	opacity := n.Opacity
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}

	dc.Push()
	defer dc.Pop()
	// rotation pivots on the node's top-left corner
	dc.Translate(n.X, n.Y)
	dc.Rotate(gg.Radians(n.Rotation))

	switch c := n.Content.(type) {
	case *domain.DecorItem:
		paintDecor(dc, c, n.Width, n.Height, opacity)
	case *domain.TextContent:
		paintText(dc, c, n.Width, n.Height, opacity)
	}
}

func paintDecor(dc *gg.Context, d *domain.DecorItem, w, h, opacity float64) {
	if d.DisplayMode == domain.DisplayModeClean {
		placeholder(dc, 0, 0, w, h, opacity)
		return
	}

	dc.SetColor(withAlpha(color.White, opacity))
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	imgH := math.Max(h-captionHeight, 0)
	placeholder(dc, 4, 4, math.Max(w-8, 0), math.Max(imgH-4, 0), opacity)

	dc.SetLineWidth(1)
	dc.SetColor(withAlpha(cardBorder, opacity))
	dc.DrawRectangle(0, 0, w, h)
	dc.Stroke()

	caption := d.ProductName
	if d.Quantity > 1 {
		caption = fmt.Sprintf("%s ×%d", caption, d.Quantity)
	}
	if caption == "" || h <= captionHeight {
		return
	}
	dc.SetFontFace(face(12))
	dc.SetColor(withAlpha(captionColor, opacity))
	dc.DrawStringAnchored(truncate(dc, caption, w-8), w/2, h-captionHeight/2, 0.5, 0.35)
}

func paintText(dc *gg.Context, t *domain.TextContent, w, h, opacity float64) {
	if bg, ok := parseColor(t.BackgroundColor, opacity); ok {
		dc.SetColor(bg)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
	}
	if t.Content == "" {
		return
	}
	size := t.FontSize
	if size <= 0 {
		size = 16
	}
	fill, ok := parseColor(t.Fill, opacity)
	if !ok {
		fill = withAlpha(color.Black, opacity)
	}

	align, ax := gg.AlignLeft, 0.0
	x := 0.0
	switch t.TextAlign {
	case "center":
		align, ax, x = gg.AlignCenter, 0.5, w/2
	case "right":
		align, ax, x = gg.AlignRight, 1, w
	}

	dc.SetFontFace(face(size))
	dc.SetColor(fill)
	dc.DrawStringWrapped(t.Content, x, 0, ax, 0, w, 1.2, align)
}

// placeholder draws a grey box with a cross where an image would go.
func placeholder(dc *gg.Context, x, y, w, h, opacity float64) {
	if w <= 0 || h <= 0 {
		return
	}
	dc.SetColor(withAlpha(placeholderFill, opacity))
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()

	dc.SetLineWidth(1)
	dc.SetColor(withAlpha(placeholderLine, opacity))
	dc.DrawLine(x, y, x+w, y+h)
	dc.DrawLine(x+w, y, x, y+h)
	dc.Stroke()
}

func truncate(dc *gg.Context, s string, maxW float64) string {
	if w, _ := dc.MeasureString(s); w <= maxW {
		return s
	}
	r := []rune(s)
	for len(r) > 1 {
		r = r[:len(r)-1]
		if w, _ := dc.MeasureString(string(r) + "…"); w <= maxW {
			return string(r) + "…"
		}
	}
	return string(r)
}

// parseColor reads #rgb / #rrggbb colours. "transparent" and empty
// strings report false.
func parseColor(s string, opacity float64) (color.Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "transparent") || strings.EqualFold(s, "none") {
		return nil, false
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, false
	}
	return withAlpha(c, opacity), true
}

func withAlpha(c color.Color, opacity float64) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(math.Round(opacity * 255)),
	}
}

var (
	fontOnce  sync.Once
	fontErr   error
	baseFont  *truetype.Font
	facesMu   sync.Mutex
	faceCache = map[float64]font.Face{}
)

// face returns a cached Go Regular face. It falls back to gg's built-in
// face if the embedded font cannot be parsed.
func face(size float64) font.Face {
	fontOnce.Do(func() {
		baseFont, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return basicfont.Face7x13
	}

	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faceCache[size]; ok {
		return f
	}
	f := truetype.NewFace(baseFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	faceCache[size] = f
	return f
}
