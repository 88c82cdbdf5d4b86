package templates

import "moodboard/internal/domain"

func cell(x, y, w, h float64) domain.TemplateCell {
	return domain.TemplateCell{X: x, Y: y, Width: w, Height: h}
}

// grid builds a rows x cols grid with a gap (in percent) between cells.
func grid(rows, cols int, gap float64) []domain.TemplateCell {
	w := (100 - gap*float64(cols+1)) / float64(cols)
	h := (100 - gap*float64(rows+1)) / float64(rows)
	cells := make([]domain.TemplateCell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells = append(cells, cell(
				gap+float64(c)*(w+gap),
				gap+float64(r)*(h+gap),
				w, h,
			))
		}
	}
	return cells
}

// Builtin returns the templates that ship with the binary, in display order.
func Builtin() []domain.Template {
	return []domain.Template{
		{
			ID:          "grid-2x2",
			Name:        "Grid 2×2",
			Description: "Four equal tiles",
			Cells:       grid(2, 2, 4),
		},
		{
			ID:          "grid-3x3",
			Name:        "Grid 3×3",
			Description: "Nine equal tiles",
			Cells:       grid(3, 3, 3),
		},
		{
			ID:          "hero-left",
			Name:        "Hero left",
			Description: "One large piece on the left, three stacked on the right",
			Cells: []domain.TemplateCell{
				cell(4, 4, 56, 92),
				cell(64, 4, 32, 28.67),
				cell(64, 35.67, 32, 28.67),
				cell(64, 67.33, 32, 28.67),
			},
		},
		{
			ID:          "hero-top",
			Name:        "Hero top",
			Description: "Wide banner over a row of three",
			Cells: []domain.TemplateCell{
				cell(4, 4, 92, 52),
				cell(4, 60, 28, 36),
				cell(36, 60, 28, 36),
				cell(68, 60, 28, 36),
			},
		},
		{
			ID:          "mosaic-5",
			Name:        "Mosaic",
			Description: "Two large tiles over three small ones",
			Cells: []domain.TemplateCell{
				cell(4, 4, 44, 52),
				cell(52, 4, 44, 52),
				cell(4, 60, 28, 36),
				cell(36, 60, 28, 36),
				cell(68, 60, 28, 36),
			},
		},
		{
			ID:          "strip-4",
			Name:        "Strip",
			Description: "Four tall columns",
			Cells:       grid(1, 4, 3),
		},
	}
}
