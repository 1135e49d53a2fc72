package importer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXSource reads the first sheet of a workbook; row 1 is the header and
// goes through the same header mapping as CSV.
type XLSXSource struct {
	name string
	data []byte
}

func NewXLSXSource(name string, data []byte) *XLSXSource {
	return &XLSXSource{name: name, data: data}
}

func (s *XLSXSource) Name() string        { return s.name }
func (s *XLSXSource) Fingerprint() string { return Fingerprint(s.data) }

func (s *XLSXSource) Records() ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(s.data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", s.name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	var header HeaderMap
	headerSeen := false
	var records []Record
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if !headerSeen {
			header = MapHeader(row)
			headerSeen = true
			continue
		}
		records = append(records, header.Record(row, i+1))
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if cleanCell(c) != "" {
			return false
		}
	}
	return true
}
