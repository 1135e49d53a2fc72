package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxPageNumber = 1000000
	MaxUploadSize = 50 * 1024 * 1024 // 50MB
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// RequestValidator parses and checks query strings and uploads.
type RequestValidator struct{}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// parsePage reads page and limit. Missing or malformed values are left at
// zero for the service to default; limits are capped by the services.
func (rv *RequestValidator) parsePage(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page > MaxPageNumber {
		page = MaxPageNumber
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}

// ParseProductSearch validates the GET /api/products query.
func (rv *RequestValidator) ParseProductSearch(c *gin.Context) (models.ProductSearchParams, error) {
	p := models.ProductSearchParams{
		Query: strings.TrimSpace(c.Query("query")),
		Sort:  strings.TrimSpace(c.Query("sort")),
	}
	p.Page, p.Limit = rv.parsePage(c)

	if raw := strings.TrimSpace(c.Query("categoryId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return p, errors.New("invalid categoryId")
		}
		p.CategoryID = uint(id)
	}

	var err error
	if p.MinPrice, err = parseDecimal(c.Query("minPrice")); err != nil {
		return p, errors.New("invalid minPrice value")
	}
	if p.MaxPrice, err = parseDecimal(c.Query("maxPrice")); err != nil {
		return p, errors.New("invalid maxPrice value")
	}
	if p.MinPrice != nil && p.MaxPrice != nil && p.MinPrice.GreaterThan(*p.MaxPrice) {
		return p, errors.New("minPrice must be less than or equal to maxPrice")
	}

	p.IncludeInactive = c.Query("includeInactive") == "true"
	return p, nil
}

func parseDecimal(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseOrderSearch validates the GET /api/orders query. Dates accept
// YYYY-MM-DD or RFC 3339; a bare endDate covers the whole day.
func (rv *RequestValidator) ParseOrderSearch(c *gin.Context) (models.OrderSearchParams, error) {
	p := models.OrderSearchParams{
		Query:  strings.TrimSpace(c.Query("query")),
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
	}
	p.Page, p.Limit = rv.parsePage(c)

	if raw := strings.TrimSpace(c.Query("startDate")); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			return p, errors.New("invalid startDate")
		}
		p.StartDate = &t
	}
	if raw := strings.TrimSpace(c.Query("endDate")); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			return p, errors.New("invalid endDate")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		p.EndDate = &t
	}
	if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
		return p, errors.New("startDate must be before endDate")
	}
	return p, nil
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}

// ValidateImportFile checks the upload's extension and size.
func (rv *RequestValidator) ValidateImportFile(file *multipart.FileHeader) error {
	if !importer.IsSupported(file.Filename) {
		return fmt.Errorf("unsupported file type. Allowed: %s", strings.Join(importer.SupportedExtensions, ", "))
	}
	return rv.ValidateFileSize(file)
}

// ValidateFileSize checks if file size is within limits
func (rv *RequestValidator) ValidateFileSize(file *multipart.FileHeader) error {
	if file.Size > MaxUploadSize {
		return fmt.Errorf("file too large (max %dMB)", MaxUploadSize/(1024*1024))
	}
	return nil
}

// IsAllowedImage accepts a known image content type, or an image extension
// when the content type is empty.
func (rv *RequestValidator) IsAllowedImage(contentType, filename string) bool {
	if contentType != "" {
		return allowedImageTypes[strings.ToLower(contentType)]
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}
