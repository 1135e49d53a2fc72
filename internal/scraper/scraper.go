package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/llm"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (compatible; EPSCatalogBot/1.0)"
	DefaultInterval  = 2 * time.Second

	maxPageBytes  = 20 << 20
	maxImageBytes = 10 << 20
)

var ErrSupplierInactive = errors.New("supplier is not active")

// Extractor turns a catalog page into products. llm.AnthropicClient
// satisfies it.
type Extractor interface {
	ExtractProducts(ctx context.Context, html, supplier string) []llm.ExtractedProduct
}

// ImageMirror stores downloaded product images. aws.ImageStore satisfies it.
type ImageMirror interface {
	Key(sku, filename string) string
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type Options struct {
	UserAgent string
	// Interval is the minimum gap between two requests to the same host.
	Interval   time.Duration
	HTTPClient *http.Client
	Extractor  Extractor
	Images     ImageMirror
	Logger     *zap.Logger
}

// Scraper downloads supplier catalogs and turns them into import records.
type Scraper struct {
	client    *http.Client
	userAgent string
	interval  time.Duration
	extractor Extractor
	images    ImageMirror
	logger    *zap.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func New(opts Options) *Scraper {
	s := &Scraper{
		client:    opts.HTTPClient,
		userAgent: opts.UserAgent,
		interval:  opts.Interval,
		extractor: opts.Extractor,
		images:    opts.Images,
		logger:    opts.Logger,
		limiters:  make(map[string]*rate.Limiter),
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: 30 * time.Second}
	}
	if s.userAgent == "" {
		s.userAgent = DefaultUserAgent
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.logger == nil {
		s.logger = zap.L()
	}
	return s
}

// limiter returns the limiter for host. Every supplier lives on its own
// host, so this throttles per supplier.
func (s *Scraper) limiter(host string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(s.interval), 1)
		s.limiters[host] = l
	}
	return l
}

// fetch performs a throttled GET and returns at most limit bytes of the body.
func (s *Scraper) fetch(ctx context.Context, rawURL string, limit int64) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, "", fmt.Errorf("invalid url %q", rawURL)
	}
	if err := s.limiter(u.Host).Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", rawURL, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// FetchPage downloads a page and decodes it to UTF-8 using the declared
// or sniffed charset. Supplier sites are often windows-1251.
func (s *Scraper) FetchPage(ctx context.Context, rawURL string) (string, error) {
	data, contentType, err := s.fetch(ctx, rawURL, maxPageBytes)
	if err != nil {
		return "", err
	}
	r, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return string(data), nil
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return string(decoded), nil
}

// ScrapeSupplier collects records from every catalog URL of sup. A failing
// page is logged and skipped; an error is returned only when nothing
// could be collected.
func (s *Scraper) ScrapeSupplier(ctx context.Context, sup Supplier) ([]importer.Record, error) {
	if !sup.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrSupplierInactive, sup.ID)
	}
	log := s.logger.With(zap.String("supplier", sup.ID))

	var (
		out     []importer.Record
		lastErr error
	)
	for _, ref := range sup.CatalogURLs {
		pageURL := sup.ResolveURL(ref)
		records, err := s.scrapeURL(ctx, sup, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.Warn("catalog page failed", zap.String("url", pageURL), zap.Error(err))
			lastErr = err
			continue
		}
		log.Info("catalog page scraped", zap.String("url", pageURL), zap.Int("records", len(records)))
		for _, rec := range records {
			rec.Name = strings.TrimSpace(rec.Name)
			rec.SKU = strings.TrimSpace(rec.SKU)
			if rec.Name == "" || rec.SKU == "" {
				continue
			}
			if rec.ImageURL != "" {
				rec.ImageURL = sup.ResolveURL(rec.ImageURL)
			}
			if rec.URL != "" {
				rec.URL = sup.ResolveURL(rec.URL)
			} else {
				rec.URL = pageURL
			}
			if rec.Description == "" {
				rec.Description = "Профессиональный инструмент " + rec.Name
			}
			rec.Line = len(out) + 1
			out = append(out, rec)
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (s *Scraper) scrapeURL(ctx context.Context, sup Supplier, pageURL string) ([]importer.Record, error) {
	if name := catalogFileName(pageURL); name != "" {
		data, _, err := s.fetch(ctx, pageURL, maxPageBytes)
		if err != nil {
			return nil, err
		}
		src, err := importer.SourceFromFile(name, data)
		if err != nil {
			return nil, err
		}
		return src.Records()
	}

	html, err := s.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if sup.Selectors != nil && sup.Selectors.Item != "" {
		return ExtractWithSelectors(html, *sup.Selectors)
	}
	if s.extractor == nil {
		return nil, fmt.Errorf("no selectors configured and no extractor available")
	}
	var records []importer.Record
	for _, p := range s.extractor.ExtractProducts(ctx, html, sup.Name) {
		records = append(records, importer.Record{
			Name:        p.Name,
			SKU:         p.SKU,
			Price:       string(p.Price),
			Category:    p.Category,
			Description: p.Description,
			ImageURL:    p.ImageURL,
		})
	}
	return records, nil
}

// catalogFileName returns the file name of a price-list URL the importer
// can parse directly, or "" for an HTML page.
func catalogFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || !importer.IsSupported(name) {
		return ""
	}
	return name
}

// ExtractWithSelectors reads products from html using CSS selectors.
func ExtractWithSelectors(html string, sel Selectors) ([]importer.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var records []importer.Record
	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		rec := importer.Record{
			Name:        selectText(item, sel.Name, ""),
			SKU:         selectText(item, sel.SKU, sel.SKUAttr),
			Price:       selectText(item, sel.Price, ""),
			Description: selectText(item, sel.Description, ""),
			Category:    selectText(item, sel.Category, ""),
			URL:         selectText(item, sel.Link, "href"),
		}
		if sel.Image != "" {
			img := item.Find(sel.Image).First()
			attrs := []string{"data-src", "src"}
			if sel.ImageAttr != "" {
				attrs = []string{sel.ImageAttr}
			}
			for _, a := range attrs {
				if v, ok := img.Attr(a); ok && strings.TrimSpace(v) != "" {
					rec.ImageURL = strings.TrimSpace(v)
					break
				}
			}
		}
		records = append(records, rec)
	})
	return records, nil
}

// selectText reads attr (or the text when attr is empty) of the first match
// of query inside item. An empty query reads item itself.
func selectText(item *goquery.Selection, query, attr string) string {
	if query == "" && attr == "" {
		return ""
	}
	target := item
	if query != "" {
		target = item.Find(query).First()
	}
	if attr != "" {
		v, _ := target.Attr(attr)
		return strings.TrimSpace(v)
	}
	return strings.Join(strings.Fields(target.Text()), " ")
}

// MirrorImages downloads every record image and replaces ImageURL with the
// stored copy. Failures keep the supplier URL. It returns how many images
// were mirrored.
func (s *Scraper) MirrorImages(ctx context.Context, records []importer.Record) int {
	if s.images == nil {
		return 0
	}
	mirrored := 0
	for i := range records {
		rec := &records[i]
		if rec.ImageURL == "" || rec.SKU == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		data, contentType, err := s.fetch(ctx, rec.ImageURL, maxImageBytes)
		if err != nil {
			s.logger.Warn("image download failed", zap.String("sku", rec.SKU), zap.Error(err))
			continue
		}
		mediaType, _, _ := mime.ParseMediaType(contentType)
		if !strings.HasPrefix(mediaType, "image/") {
			mediaType = http.DetectContentType(data)
			if !strings.HasPrefix(mediaType, "image/") {
				s.logger.Warn("not an image", zap.String("sku", rec.SKU), zap.String("type", mediaType))
				continue
			}
		}
		key := s.images.Key(rec.SKU, imageFileName(rec.ImageURL, mediaType))
		stored, err := s.images.Put(ctx, key, mediaType, data)
		if err != nil {
			s.logger.Warn("image upload failed", zap.String("sku", rec.SKU), zap.Error(err))
			continue
		}
		rec.ImageURL = stored
		mirrored++
	}
	return mirrored
}

func imageFileName(rawURL, mediaType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if name := path.Base(u.Path); path.Ext(name) != "" {
			return name
		}
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return "image" + exts[0]
	}
	return "image.jpg"
}
