package importer_test

import (
	"context"
	"testing"

	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCategoryResolver_CreatesOnceAndCaches(t *testing.T) {
	store := newFakeStore()
	r := importer.NewCategoryResolver(store, zap.NewNop())
	ctx := context.Background()

	id1, err := r.Resolve(ctx, "Сварочное оборудование")
	require.NoError(t, err)
	id2, err := r.Resolve(ctx, "  Сварочное   оборудование ")
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, r.Created(), 1)
	c := store.categories["Сварочное оборудование"]
	require.NotNil(t, c)
	assert.Equal(t, "svarochnoe-oborudovanie", c.Slug)
	assert.Equal(t, "sparkles", c.Icon)
	require.NotNil(t, c.Description)
	assert.Equal(t, "Категория Сварочное оборудование", *c.Description)
}

func TestCategoryResolver_UsesExistingByName(t *testing.T) {
	store := newFakeStore()
	existing := store.addCategory("Дрели", "dreli")
	r := importer.NewCategoryResolver(store, zap.NewNop())

	id, err := r.Resolve(context.Background(), "Дрели")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, id)
	assert.Empty(t, r.Created())
}

func TestCategoryResolver_SlugCollisionRetries(t *testing.T) {
	store := newFakeStore()
	store.catSlugs["dreli"] = true
	store.catSlugs["dreli-1"] = true
	r := importer.NewCategoryResolver(store, zap.NewNop())

	_, err := r.Resolve(context.Background(), "Дрели")
	require.NoError(t, err)
	assert.Equal(t, "dreli-2", store.categories["Дрели"].Slug)
}

func TestGuessCategory(t *testing.T) {
	assert.Equal(t, "Дрели", importer.GuessCategory("Дрель ударная DCK"))
	assert.Equal(t, "Болгарки", importer.GuessCategory("УШМ 125 мм"))
	assert.Equal(t, "Шуруповерты", importer.GuessCategory("Аккумуляторный шуруповерт"))
	assert.Equal(t, "Сварочное оборудование", importer.GuessCategory("Сварочный аппарат"))
	assert.Equal(t, "Инструменты", importer.GuessCategory("Кувалда"))
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, "drill", importer.IconFor("Дрели"))
	assert.Equal(t, "ruler", importer.IconFor("Измерительные инструменты"))
	assert.Equal(t, "tool", importer.IconFor("Прочее"))
}
