package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/catalog-service/internal/adapter/cache"
	"github.com/rl1809/catalog-service/internal/adapter/handler"
	"github.com/rl1809/catalog-service/internal/adapter/imagestore"
	"github.com/rl1809/catalog-service/internal/core/domain"
	"github.com/rl1809/catalog-service/internal/core/service"
)

// In-memory ItemRepository with the same filter semantics as the MySQL
// adapter, so the whole HTTP stack runs without external services.
type memRepo struct {
	mu    sync.Mutex
	seq   int
	items []domain.Item
}

func (m *memRepo) matches(f domain.ItemFilter, it domain.Item) bool {
	if f.NameContains != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.MaxPrice != nil && it.Price > *f.MaxPrice {
		return false
	}
	if f.Category != "" && it.Category != f.Category {
		return false
	}
	return true
}

func (m *memRepo) FindAll(_ context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Item
	for _, it := range m.items {
		if m.matches(f, it) {
			out = append(out, it)
		}
	}

	switch {
	case f.NewestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	case f.Sort == domain.SortAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case f.Sort == domain.SortDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}

	if f.Skip > 0 {
		if f.Skip >= len(out) {
			out = nil
		} else {
			out = out[f.Skip:]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memRepo) Count(_ context.Context, f domain.ItemFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, it := range m.items {
		if m.matches(f, it) {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) FindByID(_ context.Context, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.ID == id {
			found := it
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memRepo) DistinctCategories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[string]bool{}
	var out []string
	for _, it := range m.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memRepo) Create(_ context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	item.ID = fmt.Sprintf("item-%d", m.seq)
	item.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
	item.UpdatedAt = item.CreatedAt
	m.items = append(m.items, *item)
	return nil
}

func (m *memRepo) Save(_ context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = item
			return nil
		}
	}
	return fmt.Errorf("item %s not persisted", item.ID)
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %s not persisted", id)
}

type testEnv struct {
	server    *httptest.Server
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	uploadDir := t.TempDir()
	images, err := imagestore.NewLocalStore(uploadDir)
	require.NoError(t, err)

	catalog := service.NewCatalogService(&memRepo{}, cache.NewMemoryCache(), images, zap.NewNop(), 20, 10)
	h := handler.NewHTTPHandler(catalog, images, zap.NewNop(), 8<<20)

	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)

	return &testEnv{server: server, uploadDir: uploadDir}
}

func (e *testEnv) createProduct(t *testing.T, fields map[string]string, withPhoto bool) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withPhoto {
		fw, err := w.CreateFormFile("photo", "photo.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake-image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	resp, err := http.Post(e.server.URL+"/api/products/new", w.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func productFields(name, category string, price float64) map[string]string {
	return map[string]string{
		"name":        name,
		"category":    category,
		"price":       fmt.Sprintf("%g", price),
		"stock":       "5",
		"description": "integration test item",
		"color":       "black",
	}
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v), "body: %s", body)
}

func TestCreateAndReadFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createProduct(t, productFields("Alpine Boot", "Shoes", 80), true)
	var created handler.MessageResponse
	decodeBody(t, resp, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, created.Success)

	// Latest listing includes the new item; category was lowercased.
	resp, err := http.Get(env.server.URL + "/api/products/latest")
	require.NoError(t, err)
	var latest handler.ItemsResponse
	decodeBody(t, resp, &latest)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, latest.Products, 1)
	assert.Equal(t, "Alpine Boot", latest.Products[0].Name)
	assert.Equal(t, "shoes", latest.Products[0].Category)

	// The stored image exists under the upload dir.
	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Distinct categories.
	resp, err = http.Get(env.server.URL + "/api/products/categories")
	require.NoError(t, err)
	var cats handler.CategoriesResponse
	decodeBody(t, resp, &cats)
	assert.Equal(t, []string{"shoes"}, cats.Categories)

	// Admin listing.
	resp, err = http.Get(env.server.URL + "/api/products/admin-products")
	require.NoError(t, err)
	var admin handler.ItemsResponse
	decodeBody(t, resp, &admin)
	assert.Len(t, admin.Products, 1)

	// Detail by id.
	id := latest.Products[0].ID
	resp, err = http.Get(env.server.URL + "/api/products/" + id)
	require.NoError(t, err)
	var detail handler.ItemResponse
	decodeBody(t, resp, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, detail.Product.ID)

	// By category, mixed-case spelling still resolves.
	resp, err = http.Get(env.server.URL + "/api/products/category/Shoes")
	require.NoError(t, err)
	var byCat handler.ItemsResponse
	decodeBody(t, resp, &byCat)
	assert.Len(t, byCat.Products, 1)
}

func TestCreateRequiresPhoto(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createProduct(t, productFields("No Photo", "shoes", 10), false)
	var body handler.MessageResponse
	decodeBody(t, resp, &body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
}

func TestCreateMissingFieldsReleasesUpload(t *testing.T) {
	env := newTestEnv(t)

	fields := productFields("Half Done", "shoes", 10)
	delete(fields, "color")
	resp := env.createProduct(t, fields, true)
	var body handler.MessageResponse
	decodeBody(t, resp, &body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)

	// The rejected upload was cleaned up.
	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// And no item was written.
	resp, err = http.Get(env.server.URL + "/api/products/admin-products")
	require.NoError(t, err)
	var admin handler.ItemsResponse
	decodeBody(t, resp, &admin)
	assert.Empty(t, admin.Products)
}

func TestGetMissingItemIs404(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/api/products/does-not-exist")
	require.NoError(t, err)
	var body handler.MessageResponse
	decodeBody(t, resp, &body)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, body.Success)
}

func TestSearchPagination(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 25; i++ {
		resp := env.createProduct(t, productFields(fmt.Sprintf("Shoe %d", i+1), "shoes", float64(50+i)), true)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	// Noise outside the filter.
	resp := env.createProduct(t, productFields("Luxury Shoe", "shoes", 500), true)
	resp.Body.Close()
	resp = env.createProduct(t, productFields("Beanie", "hats", 10), true)
	resp.Body.Close()

	resp, err := http.Get(env.server.URL + "/api/products/all?category=shoes&price=100")
	require.NoError(t, err)
	var page1 handler.SearchResponse
	decodeBody(t, resp, &page1)
	assert.Len(t, page1.Products, 20)
	assert.Equal(t, 2, page1.TotalPage)

	resp, err = http.Get(env.server.URL + "/api/products/all?category=shoes&price=100&page=2")
	require.NoError(t, err)
	var page2 handler.SearchResponse
	decodeBody(t, resp, &page2)
	assert.Len(t, page2.Products, 5)
	assert.Equal(t, 2, page2.TotalPage)
}

func TestSearchSortAndText(t *testing.T) {
	env := newTestEnv(t)

	for _, p := range []struct {
		name  string
		price float64
	}{
		{"Trail Runner", 90},
		{"City Runner", 40},
		{"Slipper", 20},
	} {
		resp := env.createProduct(t, productFields(p.name, "shoes", p.price), true)
		resp.Body.Close()
	}

	resp, err := http.Get(env.server.URL + "/api/products/all?search=runner&sort=asc")
	require.NoError(t, err)
	var res handler.SearchResponse
	decodeBody(t, resp, &res)
	require.Len(t, res.Products, 2)
	assert.Equal(t, "City Runner", res.Products[0].Name)
	assert.Equal(t, "Trail Runner", res.Products[1].Name)
	assert.Equal(t, 1, res.TotalPage)
}

func TestUpdatePartialThenDelete(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createProduct(t, productFields("Mutable", "shoes", 10), true)
	resp.Body.Close()

	resp, err := http.Get(env.server.URL + "/api/products/latest")
	require.NoError(t, err)
	var latest handler.ItemsResponse
	decodeBody(t, resp, &latest)
	require.Len(t, latest.Products, 1)
	id := latest.Products[0].ID

	// Partial update via urlencoded form: only the price changes.
	form := url.Values{"price": {"12.5"}}
	req, err := http.NewRequest(http.MethodPut, env.server.URL+"/api/products/"+id, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var updated handler.MessageResponse
	decodeBody(t, resp, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, updated.Success)

	resp, err = http.Get(env.server.URL + "/api/products/" + id)
	require.NoError(t, err)
	var detail handler.ItemResponse
	decodeBody(t, resp, &detail)
	assert.Equal(t, 12.5, detail.Product.Price)
	assert.Equal(t, "Mutable", detail.Product.Name)

	// Delete, then the detail read is a 404 and the image is gone.
	req, err = http.NewRequest(http.MethodDelete, env.server.URL+"/api/products/"+id, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var deleted handler.MessageResponse
	decodeBody(t, resp, &deleted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, deleted.Success)

	resp, err = http.Get(env.server.URL + "/api/products/" + id)
	require.NoError(t, err)
	var gone handler.MessageResponse
	decodeBody(t, resp, &gone)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
