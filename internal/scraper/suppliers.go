package scraper

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
)

// Selectors describe a supplier's catalog markup. Item is required; the
// other selectors are evaluated inside each item. Empty attr fields read
// the element text.
type Selectors struct {
	Item        string `json:"item"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	SKUAttr     string `json:"skuAttr,omitempty"`
	Price       string `json:"price"`
	Image       string `json:"image,omitempty"`
	ImageAttr   string `json:"imageAttr,omitempty"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Supplier is one catalog source. Pages without Selectors go through the
// LLM extractor; catalog URLs ending in an import file extension (.xlsx,
// .xml, .csv, ...) are parsed by the importer directly.
type Supplier struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	BaseURL             string     `json:"baseUrl"`
	CatalogURLs         []string   `json:"catalogUrls"`
	UpdateIntervalHours int        `json:"updateIntervalHours"`
	IsActive            bool       `json:"isActive"`
	Selectors           *Selectors `json:"selectors,omitempty"`
}

// DefaultSuppliers is the built-in registry.
func DefaultSuppliers() []Supplier {
	return []Supplier{
		{ID: "bojet", Name: "BOJET", BaseURL: "https://bojet.ru", CatalogURLs: []string{"/catalog/"}, UpdateIntervalHours: 24, IsActive: true},
		{ID: "dck", Name: "DCK", BaseURL: "https://dck-tools.ru", CatalogURLs: []string{"/catalog/"}, UpdateIntervalHours: 24, IsActive: true},
		{ID: "senix", Name: "SENIX", BaseURL: "https://senix.ru", CatalogURLs: []string{"/catalog/"}, UpdateIntervalHours: 12, IsActive: true},
		{ID: "prosvar", Name: "ПРОСВАР", BaseURL: "https://prosvar.ru", CatalogURLs: []string{"/catalog/"}, UpdateIntervalHours: 24, IsActive: true},
		{ID: "staniks", Name: "СТАНИКС", BaseURL: "https://stanix.ru", CatalogURLs: []string{"/catalog/"}, UpdateIntervalHours: 12, IsActive: true},
	}
}

// ResolveURL makes ref absolute against the supplier's BaseURL.
func (s Supplier) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() {
		return ref
	}
	base, err := url.Parse(strings.TrimSuffix(s.BaseURL, "/") + "/")
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// Registry holds suppliers by id.
type Registry struct {
	suppliers map[string]Supplier
}

func NewRegistry(list []Supplier) *Registry {
	r := &Registry{suppliers: make(map[string]Supplier, len(list))}
	for _, s := range list {
		r.suppliers[s.ID] = s
	}
	return r
}

// LoadRegistry returns the built-in suppliers, replaced or extended by the
// JSON array in path when path is not empty.
func LoadRegistry(path string) (*Registry, error) {
	r := NewRegistry(DefaultSuppliers())
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read supplier file: %w", err)
	}
	var overrides []Supplier
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("invalid supplier file %s: %w", path, err)
	}
	for _, s := range overrides {
		if s.ID == "" || s.BaseURL == "" {
			return nil, fmt.Errorf("supplier entry without id or baseUrl in %s", path)
		}
		r.suppliers[s.ID] = s
	}
	return r, nil
}

func (r *Registry) Get(id string) (Supplier, bool) {
	s, ok := r.suppliers[strings.ToLower(strings.TrimSpace(id))]
	return s, ok
}

// All returns every supplier sorted by id.
func (r *Registry) All() []Supplier {
	out := make([]Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Active() []Supplier {
	var out []Supplier
	for _, s := range r.All() {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}
