package importer_test

import (
	"testing"

	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"1 234,56 ₽", "1234.56", true},
		{"12990", "12990", true},
		{"12 990 руб.", "12990", true},
		{"1.234.567,89", "1234567.89", true},
		{"1,234.50", "1234.5", true},
		{"12.990 ₽", "12990", true},
		{"12.990 руб.", "12990", true},
		{"12.99", "12.99", true},
		{"1.5", "1.5", true},
		{",5", "0.5", true},
		{"0", "0", true},
		{"", "0", false},
		{"По запросу", "0", false},
		{"...", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := importer.ParsePrice(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseStock(t *testing.T) {
	assert.Equal(t, 15, importer.ParseStock("15 шт"))
	assert.Equal(t, 10, importer.ParseStock("В наличии"))
	assert.Equal(t, 0, importer.ParseStock("Нет в наличии"))
	assert.Equal(t, 10, importer.ParseStock("Да"))
	assert.Equal(t, 0, importer.ParseStock(""))
	assert.Equal(t, 0, importer.ParseStock("под заказ"))
}
