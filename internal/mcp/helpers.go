package mcpserver

import (
	"encoding/json"
	"sort"
	"strings"

	"moodboard/internal/domain"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

func boolPtr(v bool) *bool { return &v }

// splitIDs splits a comma-separated id list, dropping blanks.
func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sortedItems(m map[string]domain.CatalogItem) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(m))
	for _, it := range m {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// nodeSummary is the compact node view returned by tools.
type nodeSummary struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Label     string  `json:"label"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Rotation  float64 `json:"rotation,omitempty"`
	ZIndex    int     `json:"zIndex"`
	PageIndex int     `json:"pageIndex"`
	Locked    bool    `json:"locked,omitempty"`
	Hidden    bool    `json:"hidden,omitempty"`
}

func summarizeNode(n domain.Node) nodeSummary {
	sum := nodeSummary{
		ID:        n.ID,
		Type:      string(n.Type()),
		X:         n.X,
		Y:         n.Y,
		Width:     n.Width,
		Height:    n.Height,
		Rotation:  n.Rotation,
		ZIndex:    n.ZIndex,
		PageIndex: n.PageIndex,
		Locked:    n.Locked,
		Hidden:    !n.Visible,
	}
	if d := n.Decor(); d != nil {
		sum.Label = d.ProductName
	}
	if t := n.Text(); t != nil {
		sum.Label = truncateLabel(t.Content, 40)
	}
	return sum
}

func summarizeNodes(nodes []domain.Node) []nodeSummary {
	out := make([]nodeSummary, len(nodes))
	for i, n := range nodes {
		out[i] = summarizeNode(n)
	}
	return out
}

func truncateLabel(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
