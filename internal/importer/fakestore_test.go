package importer_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/repository"
)

// fakeStore is an in-memory importer.Store.
type fakeStore struct {
	mu         sync.Mutex
	categories map[string]*models.Category
	catSlugs   map[string]bool
	products   map[string]models.Product
	slugs      map[string]bool
	cursors    map[string]int
	nextCatID  uint
	nextID     uint

	writeCalls      int
	failWriteOn     map[int]error
	createCatErr    error
	createCatErrFor map[string]error
	recounted       []uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories:  make(map[string]*models.Category),
		catSlugs:    make(map[string]bool),
		products:    make(map[string]models.Product),
		slugs:       make(map[string]bool),
		cursors:     make(map[string]int),
		failWriteOn: make(map[int]error),
	}
}

func (f *fakeStore) addCategory(name, slug string) *models.Category {
	f.nextCatID++
	c := &models.Category{ID: f.nextCatID, Name: name, Slug: slug}
	f.categories[name] = c
	f.catSlugs[slug] = true
	return c
}

func (f *fakeStore) addProduct(p models.Product) {
	f.nextID++
	p.ID = f.nextID
	f.products[p.SKU] = p
	f.slugs[p.Slug] = true
}

func (f *fakeStore) FindCategoryByName(_ context.Context, name string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories[name], nil
}

func (f *fakeStore) CreateCategory(_ context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createCatErr != nil {
		return f.createCatErr
	}
	if err := f.createCatErrFor[c.Name]; err != nil {
		return err
	}
	if f.catSlugs[c.Slug] {
		return fmt.Errorf("insert category: %w", repository.ErrDuplicate)
	}
	f.nextCatID++
	c.ID = f.nextCatID
	cp := *c
	f.categories[c.Name] = &cp
	f.catSlugs[c.Slug] = true
	return nil
}

func (f *fakeStore) ProductSlugExists(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slugs[slug], nil
}

func (f *fakeStore) ExistingSKUs(_ context.Context, skus []string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool)
	for _, s := range skus {
		if _, ok := f.products[s]; ok {
			out[s] = true
		}
	}
	return out, nil
}

func (f *fakeStore) WriteProducts(_ context.Context, products []models.Product, upsert bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	if err := f.failWriteOn[f.writeCalls]; err != nil {
		return 0, err
	}
	var n int64
	for _, p := range products {
		if existing, ok := f.products[p.SKU]; ok {
			if !upsert {
				continue
			}
			p.ID = existing.ID
			p.Slug = existing.Slug
			f.products[p.SKU] = p
			n++
			continue
		}
		if f.slugs[p.Slug] {
			continue
		}
		f.nextID++
		p.ID = f.nextID
		f.products[p.SKU] = p
		f.slugs[p.Slug] = true
		n++
	}
	return n, nil
}

func (f *fakeStore) RecountCategories(_ context.Context, ids []uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recounted = append(f.recounted, ids...)
	return nil
}

func (f *fakeStore) LoadCursor(_ context.Context, key string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursors[key], nil
}

func (f *fakeStore) SaveCursor(_ context.Context, key string, offset int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursors[key] = offset
	return nil
}
