package importer

import (
	"context"
	"fmt"
)

const maxSlugSuffix = 10000

// SlugExistsFunc reports whether a product slug is already stored.
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// Deduper tracks slugs and SKUs used during one import run.
type Deduper struct {
	usedSlugs map[string]struct{}
	seenSKUs  map[string]struct{}
	exists    SlugExistsFunc
}

func NewDeduper(exists SlugExistsFunc) *Deduper {
	return &Deduper{
		usedSlugs: make(map[string]struct{}),
		seenSKUs:  make(map[string]struct{}),
		exists:    exists,
	}
}

// UniqueSlug returns base if it is free in this run and in the store,
// otherwise the first free of base-1, base-2, ...
func (d *Deduper) UniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= maxSlugSuffix; i++ {
		if _, used := d.usedSlugs[candidate]; !used {
			taken := false
			if d.exists != nil {
				var err error
				if taken, err = d.exists(ctx, candidate); err != nil {
					return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
				}
			}
			if !taken {
				d.usedSlugs[candidate] = struct{}{}
				return candidate, nil
			}
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q", base)
}

// HasSKU reports whether sku was claimed by an earlier row of this run.
func (d *Deduper) HasSKU(sku string) bool {
	_, ok := d.seenSKUs[sku]
	return ok
}

// ClaimSKU marks sku as taken by a row that passed validation.
func (d *Deduper) ClaimSKU(sku string) {
	d.seenSKUs[sku] = struct{}{}
}
