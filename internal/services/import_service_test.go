package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	aws_pkg "github.com/QJQnova/Eps-sub001/internal/aws"
	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is a minimal importer.Store.
type memStore struct {
	mu         sync.Mutex
	categories map[string]*models.Category
	products   map[string]models.Product
	cursors    map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		categories: map[string]*models.Category{},
		products:   map[string]models.Product{},
		cursors:    map[string]int{},
	}
}

func (m *memStore) FindCategoryByName(_ context.Context, name string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.categories[name], nil
}

func (m *memStore) CreateCategory(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uint(len(m.categories) + 1)
	m.categories[c.Name] = c
	return nil
}

func (m *memStore) ProductSlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ExistingSKUs(_ context.Context, skus []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]bool{}
	for _, s := range skus {
		if _, ok := m.products[s]; ok {
			out[s] = true
		}
	}
	return out, nil
}

func (m *memStore) WriteProducts(_ context.Context, products []models.Product, upsert bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range products {
		if _, ok := m.products[p.SKU]; ok && !upsert {
			continue
		}
		m.products[p.SKU] = p
		n++
	}
	return n, nil
}

func (m *memStore) RecountCategories(context.Context, []uint) error { return nil }

func (m *memStore) LoadCursor(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursors[key], nil
}

func (m *memStore) SaveCursor(_ context.Context, key string, offset int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[key] = offset
	return nil
}

const catalogCSV = "Название;Артикул;Цена;Категория\nДрель X;D1;1999;Дрели\nПила Y;P1;500;Пилы\n"

func TestImportService_ImportFileInvalidatesCacheAndPublishes(t *testing.T) {
	store := newMemStore()
	cache := &fakeCache{}
	events := &fakePublisher{}
	metrics := newFakeMetrics()
	svc := services.NewImportService(store, zap.NewNop(), services.ImportServiceOptions{
		Cache:       cache,
		Metrics:     metrics,
		Events:      events,
		EventsTopic: "arn:aws:sns:us-east-1:1:imports",
	})

	report, err := svc.ImportFile(context.Background(), "catalog.csv", []byte(catalogCSV), importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Len(t, store.products, 2)
	assert.Equal(t, 1, cache.invalidations)
	assert.Equal(t, float64(2), metrics.counts[aws_pkg.MetricImportRowsImported])

	require.Len(t, events.messages, 1)
	var ev aws_pkg.Event
	require.NoError(t, json.Unmarshal(events.messages[0], &ev))
	assert.Equal(t, services.EventImportCompleted, ev.EventType)
	assert.Equal(t, float64(2), ev.Data.(map[string]interface{})["imported"])
}

func TestImportService_NothingStoredKeepsCache(t *testing.T) {
	cache := &fakeCache{}
	svc := services.NewImportService(newMemStore(), zap.NewNop(), services.ImportServiceOptions{Cache: cache})

	report, err := svc.ImportRecords(context.Background(), "scrape", []importer.Record{
		{Line: 1, Columns: 3, Name: "Дрель", SKU: "D1", Price: "по запросу"},
	}, importer.Options{Mode: importer.ModeUpsert})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, cache.invalidations)
}

func TestImportService_UnsupportedFile(t *testing.T) {
	svc := services.NewImportService(newMemStore(), zap.NewNop(), services.ImportServiceOptions{})

	_, err := svc.ImportFile(context.Background(), "catalog.pdf", []byte("%PDF"), importer.Options{})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFile)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))
}
