package domain

import "fmt"

// CatalogItem is a rentable product supplied by the inventory subsystem.
// Only the fields needed to build a DecorItem are read.
type CatalogItem struct {
	ProductID   string  `json:"productId" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	SKU         string  `json:"sku"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,url"`
	RentalPrice float64 `json:"rentalPrice" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
}

// Validate reports missing or malformed catalog fields.
func (c CatalogItem) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("catalog item %q: %w", c.ProductID, err)
	}
	return nil
}

// DecorContent builds the decor payload for c. Quantity is at least 1.
func (c CatalogItem) DecorContent(mode DisplayMode) *DecorItem {
	qty := c.Quantity
	if qty < 1 {
		qty = 1
	}
	if mode == "" {
		mode = DisplayModeCard
	}
	return &DecorItem{
		ProductID:   c.ProductID,
		ProductName: c.Name,
		ProductSKU:  c.SKU,
		ImageURL:    c.ImageURL,
		Quantity:    qty,
		DisplayMode: mode,
	}
}
