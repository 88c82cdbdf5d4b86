package catalog

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"moodboard/internal/domain"
)

// fieldAliases maps item fields to the column names seen in inventory
// exports, first match wins.
var fieldAliases = map[string][]string{
	"productId":   {"productId", "product_id", "id"},
	"name":        {"name", "productName", "product_name", "title"},
	"sku":         {"sku", "productSku", "product_sku"},
	"imageUrl":    {"imageUrl", "image_url", "image", "thumbnail"},
	"rentalPrice": {"rentalPrice", "rental_price", "price"},
	"quantity":    {"quantity", "qty", "stock"},
}

// Rejected is a row that could not become a catalog item.
type Rejected struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result is the outcome of one import run.
type Result struct {
	Items    []domain.CatalogItem `json:"items"`
	Rejected []Rejected           `json:"rejected,omitempty"`
}

// Import reads every record from the source of type typ, maps it to a
// catalog item and validates it. Invalid rows are reported, not fatal.
func Import(ctx context.Context, typ string, cfg Config) (*Result, error) {
	src, err := Get(typ)
	if err != nil {
		return nil, err
	}

	records, errCh := src.Read(ctx, cfg)
	res := &Result{Items: []domain.CatalogItem{}}
	row := 0
	for rec := range records {
		row++
		item := ItemFromRecord(rec)
		if err := item.Validate(); err != nil {
			res.Rejected = append(res.Rejected, Rejected{Row: row, Reason: err.Error()})
			continue
		}
		res.Items = append(res.Items, item)
	}
	if err := <-errCh; err != nil {
		return nil, fmt.Errorf("read %s: %w", typ, err)
	}
	return res, nil
}

// ItemFromRecord maps a raw record onto a catalog item using the known
// column aliases. It does not validate.
func ItemFromRecord(rec Record) domain.CatalogItem {
	return domain.CatalogItem{
		ProductID:   asString(lookup(rec, "productId")),
		Name:        asString(lookup(rec, "name")),
		SKU:         asString(lookup(rec, "sku")),
		ImageURL:    asString(lookup(rec, "imageUrl")),
		RentalPrice: asFloat(lookup(rec, "rentalPrice")),
		Quantity:    int(math.Round(asFloat(lookup(rec, "quantity")))),
	}
}

func lookup(rec Record, field string) any {
	for _, key := range fieldAliases[field] {
		if v, ok := rec[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f
	default:
		return 0
	}
}
