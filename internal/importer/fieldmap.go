package importer

import "strings"

// Field is a canonical product attribute a source column can map to.
type Field string

const (
	FieldName         Field = "name"
	FieldSKU          Field = "sku"
	FieldPrice        Field = "price"
	FieldCurrency     Field = "currency"
	FieldAvailability Field = "availability"
	FieldCategory     Field = "category"
	FieldSubcategory  Field = "subcategory"
	FieldSection      Field = "section"
	FieldURL          Field = "url"
	FieldDescription  Field = "description"
	FieldImageURL     Field = "image_url"
)

type headerRule struct {
	field Field
	keys  []string
}

// Most specific first: "Подкатегория" must not land in category and
// "Ссылка на изображение" must not land in url.
var headerRules = []headerRule{
	{FieldImageURL, []string{"изображ", "картинк", "image"}},
	{FieldSubcategory, []string{"подкатегор", "subcategory"}},
	{FieldName, []string{"назван", "наименован", "name"}},
	{FieldSKU, []string{"артикул", "sku", "код"}},
	{FieldPrice, []string{"цена", "стоимость", "price"}},
	{FieldCurrency, []string{"валют", "currency"}},
	{FieldAvailability, []string{"наличи", "остат", "availability", "stock"}},
	{FieldCategory, []string{"категор", "category"}},
	{FieldSection, []string{"раздел", "section"}},
	{FieldURL, []string{"ссылк", "url", "link"}},
	{FieldDescription, []string{"описан", "description"}},
}

// positional fallback for fields no header named
var fallbackColumns = []struct {
	field Field
	col   int
}{
	{FieldName, 0},
	{FieldSKU, 1},
	{FieldPrice, 2},
}

// HeaderMap maps canonical fields to column indexes.
type HeaderMap struct {
	index map[Field]int
}

// MapHeader builds a HeaderMap from a header row. The first column matching
// a field wins; unrecognised headers are ignored.
func MapHeader(header []string) HeaderMap {
	m := HeaderMap{index: make(map[Field]int)}
	for i, h := range header {
		lh := strings.ToLower(strings.TrimSpace(h))
		if lh == "" {
			continue
		}
		for _, rule := range headerRules {
			if containsAny(lh, rule.keys) {
				if _, taken := m.index[rule.field]; !taken {
					m.index[rule.field] = i
				}
				break
			}
		}
	}
	for _, fb := range fallbackColumns {
		if _, ok := m.index[fb.field]; !ok {
			m.index[fb.field] = fb.col
		}
	}
	return m
}

// Column returns the column index of f.
func (m HeaderMap) Column(f Field) (int, bool) {
	i, ok := m.index[f]
	return i, ok
}

// Record builds the raw record for one data row.
func (m HeaderMap) Record(values []string, line int) Record {
	get := func(f Field) string {
		i, ok := m.index[f]
		if !ok || i >= len(values) {
			return ""
		}
		return cleanCell(values[i])
	}
	return Record{
		Line:         line,
		Columns:      len(values),
		Name:         get(FieldName),
		SKU:          get(FieldSKU),
		Price:        get(FieldPrice),
		Currency:     get(FieldCurrency),
		Availability: get(FieldAvailability),
		Category:     get(FieldCategory),
		Subcategory:  get(FieldSubcategory),
		Section:      get(FieldSection),
		URL:          get(FieldURL),
		Description:  get(FieldDescription),
		ImageURL:     get(FieldImageURL),
	}
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// cleanCell collapses runs of whitespace into single spaces.
func cleanCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
