package importer

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions no source handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// maxArchiveEntry bounds how much of one zip entry is read.
const maxArchiveEntry = 100 << 20

// Source yields raw product records.
type Source interface {
	Name() string
	// Fingerprint identifies the content for the resume cursor.
	Fingerprint() string
	Records() ([]Record, error)
}

// SupportedExtensions lists the file extensions SourceFromFile accepts.
var SupportedExtensions = []string{".csv", ".txt", ".json", ".xml", ".yml", ".xlsx", ".xls", ".zip"}

// IsSupported reports whether the file name has a supported extension.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// SourceFromFile picks a source by file extension.
func SourceFromFile(name string, data []byte) (Source, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return NewCSVSource(name, data), nil
	case ".json":
		return NewJSONSource(name, data), nil
	case ".xml", ".yml":
		return NewXMLSource(name, data), nil
	case ".xlsx", ".xls":
		return NewXLSXSource(name, data), nil
	case ".zip":
		return sourceFromZip(name, data)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
}

// sourceFromZip opens the first supported non-archive file in the archive.
func sourceFromZip(name string, data []byte) (Source, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", name, err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.EqualFold(filepath.Ext(f.Name), ".zip") || !IsSupported(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in %s: %w", f.Name, name, err)
		}
		content, err := io.ReadAll(io.LimitReader(rc, maxArchiveEntry))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s in %s: %w", f.Name, name, err)
		}
		return SourceFromFile(f.Name, content)
	}
	return nil, fmt.Errorf("%w: archive %s has no importable file", ErrUnsupportedFormat, name)
}

// CSVSource reads ';' or ',' separated text with a header row.
type CSVSource struct {
	name string
	data []byte
	enc  Encoding
}

func NewCSVSource(name string, data []byte) *CSVSource {
	return &CSVSource{name: name, data: data}
}

func (s *CSVSource) Name() string        { return s.name }
func (s *CSVSource) Fingerprint() string { return Fingerprint(s.data) }
func (s *CSVSource) Encoding() Encoding  { return s.enc }

func (s *CSVSource) Records() ([]Record, error) {
	text, enc := Decode(s.data)
	s.enc = enc

	lines := SplitNumberedLines(text)
	if len(lines) == 0 {
		return nil, nil
	}
	header := MapHeader(ParseLine(lines[0].Text))

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		records = append(records, header.Record(ParseLine(line.Text), line.Number))
	}
	return records, nil
}

// RecordSource wraps records that are already in memory, such as a JSON
// request body or scraped pages.
type RecordSource struct {
	name    string
	records []Record
}

func NewRecordSource(name string, records []Record) *RecordSource {
	return &RecordSource{name: name, records: records}
}

func (s *RecordSource) Name() string { return s.name }

func (s *RecordSource) Fingerprint() string {
	b, _ := json.Marshal(s.records)
	return Fingerprint(b)
}

func (s *RecordSource) Records() ([]Record, error) {
	return s.records, nil
}
