package export

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard/internal/domain"
)

func textBox(id string, x, y float64, bg string, visible bool) domain.Node {
	return domain.Node{
		ID: id, X: x, Y: y, Width: 40, Height: 40, Opacity: 1, Visible: visible,
		Content: &domain.TextContent{BackgroundColor: bg, Fill: "#000000", FontSize: 12},
	}
}

func render(t *testing.T, state domain.PageState, scale float64) image.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, state, scale))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	return img
}

func rgb(img image.Image, x, y int) [3]uint32 {
	r, g, b, _ := img.At(x, y).RGBA()
	return [3]uint32{r >> 8, g >> 8, b >> 8}
}

func TestRenderPNG_SizeAndBackground(t *testing.T) {
	state := domain.PageState{
		Width: 100, Height: 80,
		Background: domain.ColorBackground("#102030"),
	}

	img := render(t, state, 1)
	assert.Equal(t, image.Rect(0, 0, 100, 80), img.Bounds())
	assert.Equal(t, [3]uint32{0x10, 0x20, 0x30}, rgb(img, 50, 40))

	big := render(t, state, 2)
	assert.Equal(t, image.Rect(0, 0, 200, 160), big.Bounds())
}

func TestRenderPNG_SkipsHiddenNodes(t *testing.T) {
	state := domain.PageState{
		Width: 100, Height: 100,
		Background: domain.ColorBackground("#ffffff"),
		Nodes: []domain.Node{
			textBox("shown", 10, 10, "#ff0000", true),
			textBox("hidden", 55, 55, "#ff0000", false),
		},
	}

	img := render(t, state, 1)
	assert.Equal(t, [3]uint32{0xff, 0, 0}, rgb(img, 30, 30))
	assert.Equal(t, [3]uint32{0xff, 0xff, 0xff}, rgb(img, 75, 75))
}

func TestRenderPNG_LaterNodesPaintOnTop(t *testing.T) {
	state := domain.PageState{
		Width: 100, Height: 100,
		Background: domain.DefaultBackground(),
		Nodes: []domain.Node{
			textBox("below", 10, 10, "#ff0000", true),
			textBox("above", 20, 20, "#0000ff", true),
		},
	}

	img := render(t, state, 1)
	assert.Equal(t, [3]uint32{0, 0, 0xff}, rgb(img, 35, 35))
	assert.Equal(t, [3]uint32{0xff, 0, 0}, rgb(img, 14, 14))
}

func TestRenderPNG_GradientAndImageBackgrounds(t *testing.T) {
	grad := render(t, domain.PageState{
		Width: 100, Height: 100,
		Background: domain.GradientBackground([]string{"#000000", "#ffffff"}, "to right"),
	}, 1)
	left, right := rgb(grad, 2, 50), rgb(grad, 97, 50)
	assert.Less(t, left[0], right[0])

	img := render(t, domain.PageState{
		Width: 60, Height: 40,
		Background: domain.ImageBackground("https://example.com/bg.jpg", domain.ImageFitCover, 1),
	}, 1)
	assert.Equal(t, image.Rect(0, 0, 60, 40), img.Bounds())
}

func TestRenderPNG_DecorCardsAndText(t *testing.T) {
	state := domain.PageState{
		Width: 300, Height: 200,
		Background: domain.DefaultBackground(),
		Nodes: []domain.Node{
			{
				ID: "d", X: 10, Y: 10, Width: 120, Height: 120, Opacity: 1, Visible: true, Rotation: 15,
				Content: &domain.DecorItem{ProductName: "A very long product name for the caption", Quantity: 3, DisplayMode: domain.DisplayModeCard},
			},
			{
				ID: "c", X: 150, Y: 10, Width: 60, Height: 60, Opacity: 0.5, Visible: true,
				Content: &domain.DecorItem{ProductName: "Vase", Quantity: 1, DisplayMode: domain.DisplayModeClean},
			},
			{
				ID: "t", X: 150, Y: 100, Width: 140, Height: 60, Opacity: 1, Visible: true,
				Content: &domain.TextContent{Content: "Spring wedding", FontSize: 18, TextAlign: "center", Fill: "#1f2937", BackgroundColor: "transparent"},
			},
		},
	}
	render(t, state, 1.5)
}

func TestRenderPNG_EmptyPageErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderPNG(&buf, domain.PageState{}, 1))
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.png")
	require.NoError(t, WritePNG(path, domain.PageState{Width: 10, Height: 10, Background: domain.DefaultBackground()}, 1))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"#ff0000", true},
		{"#f00", true},
		{"  #1F2937 ", true},
		{"transparent", false},
		{"", false},
		{"red", false},
		{"#zzzzzz", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := parseColor(tt.in, 1)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestGradientAxis(t *testing.T) {
	x0, y0, x1, y1 := gradientAxis("to right", 100, 50)
	assert.Equal(t, []float64{0, 0, 100, 0}, []float64{x0, y0, x1, y1})

	x0, y0, x1, y1 = gradientAxis("whatever", 100, 50)
	assert.Equal(t, []float64{0, 0, 0, 50}, []float64{x0, y0, x1, y1})
}
