package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default page size: A4 at 96dpi.
const (
	DefaultSceneWidth  = 794.0
	DefaultSceneHeight = 1123.0
	DefaultSceneName   = "Untitled moodboard"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidDocument   = errors.New("invalid document")
	ErrUnknownNodeType   = errors.New("unknown node type")
	ErrUnknownBackground = errors.New("unknown background type")
	ErrUnknownTemplate   = errors.New("unknown template")
	ErrSaveInProgress    = errors.New("save already in progress")
)

// Scene is the whole document: page size, background and the nodes of
// every page. All pages share Width x Height.
type Scene struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Background Background `json:"background"`
	Nodes      []Node     `json:"nodes"`
	TotalPages int        `json:"totalPages"`
}

// Clone returns a deep copy sharing no memory with s.
func (s Scene) Clone() Scene {
	s.Background = s.Background.Clone()
	s.Nodes = CloneNodes(s.Nodes)
	if s.Nodes == nil {
		s.Nodes = []Node{}
	}
	return s
}

// Document is a possibly partial scene supplied by the persistence
// collaborator. Unset fields take defaults in NewScene.
type Document struct {
	ID         string      `json:"id" validate:"required"`
	Name       string      `json:"name"`
	Width      *float64    `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height     *float64    `json:"height,omitempty" validate:"omitempty,gt=0"`
	Background *Background `json:"background,omitempty"`
	Nodes      []Node      `json:"nodes,omitempty"`
	TotalPages *int        `json:"totalPages,omitempty" validate:"omitempty,gte=1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the fields a document must carry to become a scene.
func (d Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// NewScene builds a scene from d, filling defaults and repairing node
// geometry. TotalPages is raised so every node's page exists.
func NewScene(d Document) Scene {
	s := Scene{
		ID:         d.ID,
		Name:       d.Name,
		Width:      DefaultSceneWidth,
		Height:     DefaultSceneHeight,
		Background: DefaultBackground(),
		Nodes:      []Node{},
		TotalPages: 1,
	}
	if s.Name == "" {
		s.Name = DefaultSceneName
	}
	if d.Width != nil && *d.Width > 0 {
		s.Width = *d.Width
	}
	if d.Height != nil && *d.Height > 0 {
		s.Height = *d.Height
	}
	if d.Background != nil && d.Background.Fill != nil {
		s.Background = d.Background.Clone()
	}
	if d.TotalPages != nil && *d.TotalPages > 1 {
		s.TotalPages = *d.TotalPages
	}
	for _, n := range d.Nodes {
		if n.Content == nil {
			continue
		}
		n = n.Clone()
		n.ClampSize()
		if n.PageIndex < 0 {
			n.PageIndex = 0
		}
		if n.PageIndex >= s.TotalPages {
			s.TotalPages = n.PageIndex + 1
		}
		s.Nodes = append(s.Nodes, n)
	}
	return s
}

// Document converts s back into its persisted form.
func (s Scene) Document() Document {
	c := s.Clone()
	return Document{
		ID:         c.ID,
		Name:       c.Name,
		Width:      &c.Width,
		Height:     &c.Height,
		Background: &c.Background,
		Nodes:      c.Nodes,
		TotalPages: &c.TotalPages,
	}
}

// SceneSummary is a listing row for stored scenes.
type SceneSummary struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	TotalPages int       `json:"totalPages" bson:"totalPages"`
	NodeCount  int       `json:"nodeCount" bson:"nodeCount"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}
