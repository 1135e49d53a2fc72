package importer_test

import (
	"testing"

	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapHeader_SupplierExport(t *testing.T) {
	header := []string{"Изображение", "Наименование", "Артикул", "Цена", "Валюта", "Наличие",
		"Категория", "Подкатегория", "Раздел", "Ссылка", "Описание"}
	m := importer.MapHeader(header)

	want := map[importer.Field]int{
		importer.FieldImageURL:     0,
		importer.FieldName:         1,
		importer.FieldSKU:          2,
		importer.FieldPrice:        3,
		importer.FieldCurrency:     4,
		importer.FieldAvailability: 5,
		importer.FieldCategory:     6,
		importer.FieldSubcategory:  7,
		importer.FieldSection:      8,
		importer.FieldURL:          9,
		importer.FieldDescription:  10,
	}
	for field, col := range want {
		got, ok := m.Column(field)
		require.True(t, ok, field)
		assert.Equal(t, col, got, field)
	}
}

func TestMapHeader_SpecificRulesWin(t *testing.T) {
	m := importer.MapHeader([]string{"Ссылка на изображение", "Подкатегория", "Product name"})

	col, _ := m.Column(importer.FieldImageURL)
	assert.Equal(t, 0, col)
	col, _ = m.Column(importer.FieldSubcategory)
	assert.Equal(t, 1, col)
	_, ok := m.Column(importer.FieldCategory)
	assert.False(t, ok)
	_, ok = m.Column(importer.FieldURL)
	assert.False(t, ok)
}

func TestMapHeader_PositionalFallbackOnlyForUnmapped(t *testing.T) {
	m := importer.MapHeader([]string{"foo", "bar", "baz", "Цена"})

	col, _ := m.Column(importer.FieldName)
	assert.Equal(t, 0, col)
	col, _ = m.Column(importer.FieldSKU)
	assert.Equal(t, 1, col)
	col, _ = m.Column(importer.FieldPrice)
	assert.Equal(t, 3, col)
}

func TestHeaderMap_Record(t *testing.T) {
	m := importer.MapHeader([]string{"Название", "Артикул", "Цена", "Категория"})
	rec := m.Record([]string{"  Дрель   ударная ", "D1", "1 999", "Дрели"}, 2)

	assert.Equal(t, 2, rec.Line)
	assert.Equal(t, 4, rec.Columns)
	assert.Equal(t, "Дрель ударная", rec.Name)
	assert.Equal(t, "D1", rec.SKU)
	assert.Equal(t, "1 999", rec.Price)
	assert.Equal(t, "Дрели", rec.Category)
	assert.Empty(t, rec.Description)
}
