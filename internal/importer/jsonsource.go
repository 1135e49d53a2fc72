package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// JSON keys accepted for each record field, checked in order.
var jsonKeys = map[Field][]string{
	FieldName:         {"name", "title", "название", "наименование"},
	FieldSKU:          {"sku", "article", "vendorCode", "артикул", "code"},
	FieldPrice:        {"price", "цена"},
	FieldCurrency:     {"currency", "currencyId"},
	FieldAvailability: {"stock", "availability", "quantity", "наличие"},
	FieldCategory:     {"category", "categoryName", "категория"},
	FieldSubcategory:  {"subcategory", "subcategoryName"},
	FieldSection:      {"section", "раздел"},
	FieldURL:          {"url", "link"},
	FieldDescription:  {"description", "описание"},
	FieldImageURL:     {"imageUrl", "image_url", "image", "picture"},
}

// JSONSource reads an array of product objects or {"products": [...]}.
type JSONSource struct {
	name string
	data []byte
}

func NewJSONSource(name string, data []byte) *JSONSource {
	return &JSONSource{name: name, data: data}
}

func (s *JSONSource) Name() string        { return s.name }
func (s *JSONSource) Fingerprint() string { return Fingerprint(s.data) }

func (s *JSONSource) Records() ([]Record, error) {
	text, _ := Decode(s.data)
	items, err := decodeProductObjects([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", s.name, err)
	}
	return RecordsFromObjects(items), nil
}

func decodeProductObjects(data []byte) ([]map[string]interface{}, error) {
	data = bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if len(data) > 0 && data[0] == '{' {
		var wrapper struct {
			Products []map[string]interface{} `json:"products"`
		}
		if err := dec.Decode(&wrapper); err != nil {
			return nil, err
		}
		return wrapper.Products, nil
	}
	var items []map[string]interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// RecordsFromObjects converts decoded JSON objects into records. Line is the
// 1-based position in the array.
func RecordsFromObjects(items []map[string]interface{}) []Record {
	records := make([]Record, 0, len(items))
	for i, item := range items {
		get := func(f Field) string {
			for _, k := range jsonKeys[f] {
				if v, ok := lookupFold(item, k); ok {
					return cleanCell(stringify(v))
				}
			}
			return ""
		}
		records = append(records, Record{
			Line:         i + 1,
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
		})
	}
	return records
}

func lookupFold(m map[string]interface{}, key string) (interface{}, bool) {
	if v, ok := m[key]; ok && v != nil {
		return v, true
	}
	for k, v := range m {
		if v != nil && strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []interface{}:
		if len(t) > 0 {
			return stringify(t[0])
		}
		return ""
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
