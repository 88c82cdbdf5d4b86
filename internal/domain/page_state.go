package domain

// PageState is the read-only render snapshot of one page.
// Nodes is the paint list: visible nodes only, in z order, painted over Background.
type PageState struct {
	SceneID    string     `json:"sceneId"`
	PageIndex  int        `json:"pageIndex"`
	TotalPages int        `json:"totalPages"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Background Background `json:"background"`
	Nodes      []Node     `json:"nodes"`
}
