package importer

// Record is one raw product row as read from a source, before validation.
// Columns is the number of values of a tabular row and 0 for structured
// sources (JSON, XML, scraped pages).
type Record struct {
	Line         int    `json:"line"`
	Columns      int    `json:"-"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Price        string `json:"price"`
	Currency     string `json:"currency,omitempty"`
	Availability string `json:"availability,omitempty"`
	Category     string `json:"category,omitempty"`
	Subcategory  string `json:"subcategory,omitempty"`
	Section      string `json:"section,omitempty"`
	URL          string `json:"url,omitempty"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
}
