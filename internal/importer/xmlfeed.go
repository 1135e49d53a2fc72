package importer

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// XMLSource reads Yandex Market YML feeds (<yml_catalog><shop><categories>
// and <offers>) and plain feeds of <product> or <item> elements. The
// document's declared charset is honoured.
type XMLSource struct {
	name string
	data []byte
}

func NewXMLSource(name string, data []byte) *XMLSource {
	return &XMLSource{name: name, data: data}
}

func (s *XMLSource) Name() string        { return s.name }
func (s *XMLSource) Fingerprint() string { return Fingerprint(s.data) }

type ymlCategory struct {
	ID       string `xml:"id,attr"`
	ParentID string `xml:"parentId,attr"`
	Name     string `xml:",chardata"`
}

type ymlOffer struct {
	ID          string   `xml:"id,attr"`
	Available   string   `xml:"available,attr"`
	Name        string   `xml:"name"`
	TypePrefix  string   `xml:"typePrefix"`
	Vendor      string   `xml:"vendor"`
	Model       string   `xml:"model"`
	VendorCode  string   `xml:"vendorCode"`
	Price       string   `xml:"price"`
	CurrencyID  string   `xml:"currencyId"`
	CategoryID  string   `xml:"categoryId"`
	Pictures    []string `xml:"picture"`
	Description string   `xml:"description"`
	URL         string   `xml:"url"`
	Count       string   `xml:"count"`
}

type feedProduct struct {
	Name        string `xml:"name"`
	Title       string `xml:"title"`
	SKU         string `xml:"sku"`
	Article     string `xml:"article"`
	Price       string `xml:"price"`
	Currency    string `xml:"currency"`
	Category    string `xml:"category"`
	Subcategory string `xml:"subcategory"`
	Description string `xml:"description"`
	Image       string `xml:"image"`
	ImageURL    string `xml:"imageUrl"`
	Picture     string `xml:"picture"`
	Stock       string `xml:"stock"`
	URL         string `xml:"url"`
}

func (s *XMLSource) Records() ([]Record, error) {
	dec := xml.NewDecoder(bytes.NewReader(s.data))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false

	categories := make(map[string]ymlCategory)
	var offers []ymlOffer
	var records []Record
	line := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid XML in %s: %w", s.name, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "category":
			var c ymlCategory
			if err := dec.DecodeElement(&c, &start); err != nil {
				return nil, fmt.Errorf("invalid <category> in %s: %w", s.name, err)
			}
			if c.ID != "" {
				c.Name = cleanCell(c.Name)
				categories[c.ID] = c
			}
		case "offer":
			var o ymlOffer
			if err := dec.DecodeElement(&o, &start); err != nil {
				return nil, fmt.Errorf("invalid <offer> in %s: %w", s.name, err)
			}
			offers = append(offers, o)
		case "product", "item":
			var p feedProduct
			if err := dec.DecodeElement(&p, &start); err != nil {
				return nil, fmt.Errorf("invalid <%s> in %s: %w", start.Name.Local, s.name, err)
			}
			line++
			records = append(records, p.record(line))
		}
	}

	// categories may follow offers in hand-made feeds, so offers resolve last
	for _, o := range offers {
		line++
		records = append(records, o.record(line, categories))
	}
	return records, nil
}

func (o ymlOffer) record(line int, categories map[string]ymlCategory) Record {
	name := o.Name
	if name == "" {
		name = strings.TrimSpace(strings.Join([]string{o.TypePrefix, o.Vendor, o.Model}, " "))
	}
	sku := o.VendorCode
	if sku == "" {
		sku = o.ID
	}

	var category, subcategory string
	if c, ok := categories[o.CategoryID]; ok {
		category = c.Name
		if parent, ok := categories[c.ParentID]; ok && parent.Name != "" {
			category, subcategory = parent.Name, c.Name
		}
	}

	availability := o.Count
	if availability == "" {
		switch strings.ToLower(o.Available) {
		case "true":
			availability = "в наличии"
		case "false":
			availability = "нет в наличии"
		}
	}

	var image string
	if len(o.Pictures) > 0 {
		image = strings.TrimSpace(o.Pictures[0])
	}

	return Record{
		Line:         line,
		Name:         cleanCell(name),
		SKU:          cleanCell(sku),
		Price:        cleanCell(o.Price),
		Currency:     cleanCell(o.CurrencyID),
		Availability: cleanCell(availability),
		Category:     category,
		Subcategory:  subcategory,
		URL:          strings.TrimSpace(o.URL),
		Description:  o.Description,
		ImageURL:     image,
	}
}

func (p feedProduct) record(line int) Record {
	return Record{
		Line:         line,
		Name:         cleanCell(firstNonEmpty(p.Name, p.Title)),
		SKU:          cleanCell(firstNonEmpty(p.SKU, p.Article)),
		Price:        cleanCell(p.Price),
		Currency:     cleanCell(p.Currency),
		Availability: cleanCell(p.Stock),
		Category:     cleanCell(p.Category),
		Subcategory:  cleanCell(p.Subcategory),
		URL:          strings.TrimSpace(p.URL),
		Description:  p.Description,
		ImageURL:     strings.TrimSpace(firstNonEmpty(p.ImageURL, p.Image, p.Picture)),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
