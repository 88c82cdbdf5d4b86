package domain

// TemplateCell is a rectangle in percent (0-100) of the page dimensions.
type TemplateCell struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Template is a named, ordered list of cells.
type Template struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Cells       []TemplateCell `json:"cells"`
}

// TemplateResult reports what a populate run did. Dropped holds the items
// that found no free cell.
type TemplateResult struct {
	Created []string      `json:"created"`
	Dropped []CatalogItem `json:"dropped,omitempty"`
}
