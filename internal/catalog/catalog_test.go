package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestList_RegistersBuiltinSources(t *testing.T) {
	var types []string
	for _, s := range List() {
		types = append(types, s.Type)
	}
	assert.Equal(t, []string{"csv_file", "http", "json_file"}, types)

	_, err := Get("ftp")
	assert.Error(t, err)
}

func TestImport_CSV(t *testing.T) {
	path := writeTemp(t, "products.csv", `product_id,name,sku,image_url,price,qty
101,Velvet armchair,CH-101,https://cdn.example.com/ch.png,45.5,2
102,Brass lamp,LP-7,,12,0
,Missing id,X-1,,1,1
103,Bad image,B-3,not-a-url,1,1
`)

	res, err := Import(context.Background(), "csv_file", Config{"filePath": path})
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	first := res.Items[0]
	assert.Equal(t, "101", first.ProductID)
	assert.Equal(t, "Velvet armchair", first.Name)
	assert.Equal(t, "CH-101", first.SKU)
	assert.Equal(t, 45.5, first.RentalPrice)
	assert.Equal(t, 2, first.Quantity)

	require.Len(t, res.Rejected, 2)
	assert.Equal(t, 3, res.Rejected[0].Row)
	assert.Equal(t, 4, res.Rejected[1].Row)
}

func TestImport_JSONWithDataPath(t *testing.T) {
	path := writeTemp(t, "products.json", `{"data":{"items":[
		{"productId":"a1","name":"Rug","quantity":3,"rentalPrice":20},
		{"id":"a2","title":"Mirror"},
		"skip me"
	]}}`)

	res, err := Import(context.Background(), "json_file", Config{"filePath": path, "dataPath": "data.items"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "a2", res.Items[1].ProductID)
	assert.Equal(t, "Mirror", res.Items[1].Name)
	assert.Empty(t, res.Rejected)
}

func TestImport_MissingFile(t *testing.T) {
	_, err := Import(context.Background(), "json_file", Config{"filePath": filepath.Join(t.TempDir(), "none.json")})
	assert.Error(t, err)

	_, err = Import(context.Background(), "csv_file", Config{})
	assert.ErrorContains(t, err, "filePath is required")
}

func TestImport_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"productId":"h1","name":"Stool","sku":"ST-1","quantity":1}]`))
	}))
	defer srv.Close()

	res, err := Import(context.Background(), "http", Config{
		"url":     srv.URL,
		"headers": `{"Authorization":"Bearer tok"}`,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Stool", res.Items[0].Name)
}

func TestImport_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := Import(context.Background(), "http", Config{"url": srv.URL})
	assert.ErrorContains(t, err, "http 502")
}

func TestItemFromRecord_Conversions(t *testing.T) {
	item := ItemFromRecord(Record{"id": 42.0, "name": "  Vase ", "qty": "3", "price": "9.5"})
	assert.Equal(t, "42", item.ProductID)
	assert.Equal(t, "Vase", item.Name)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, 9.5, item.RentalPrice)
}
