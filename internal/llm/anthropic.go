package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	anthropicVersion = "2023-06-01"
	maxTokens        = 4000
	// MaxHTMLChars bounds the page text sent with one request.
	MaxHTMLChars = 50000
)

const systemPrompt = "Ты эксперт по структурированию данных каталогов товаров. Отвечай только JSON без дополнительных комментариев."

var (
	jsonArrayRe   = regexp.MustCompile(`\[[\s\S]*\]`)
	htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// RetryConfig controls backoff for transient API failures.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
	}
}

// ExtractedProduct is one product the model found on a page.
type ExtractedProduct struct {
	Name        string     `json:"name"`
	SKU         string     `json:"sku"`
	Price       flexString `json:"price"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// AnthropicClient calls the Messages API.
type AnthropicClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	retry      RetryConfig
}

type Option func(*AnthropicClient)

func WithBaseURL(u string) Option {
	return func(c *AnthropicClient) { c.baseURL = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *AnthropicClient) { c.httpClient = h }
}

func WithRetryConfig(r RetryConfig) Option {
	return func(c *AnthropicClient) { c.retry = r }
}

func NewAnthropicClient(apiKey, model string, opts ...Option) *AnthropicClient {
	if model == "" {
		model = DefaultModel
	}
	c := &AnthropicClient{
		baseURL:    DefaultBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		retry:      DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *AnthropicClient) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// ExtractProducts asks the model for the products listed in html. Every
// failure is logged and yields an empty list.
func (c *AnthropicClient) ExtractProducts(ctx context.Context, html, supplier string) []ExtractedProduct {
	log := zap.L().With(zap.String("supplier", supplier))
	if !c.Enabled() {
		log.Warn("ANTHROPIC_API_KEY not set, skipping extraction")
		return []ExtractedProduct{}
	}

	text, err := c.complete(ctx, buildPrompt(CleanHTML(html), supplier))
	if err != nil {
		log.Error("Product extraction request failed", zap.Error(err))
		return []ExtractedProduct{}
	}

	products, err := ParseProducts(text)
	if err != nil {
		log.Warn("Could not parse extraction reply", zap.Error(err), zap.Int("reply_len", len(text)))
		return []ExtractedProduct{}
	}
	log.Info("Products extracted", zap.Int("count", len(products)))
	return products
}

func buildPrompt(html, supplier string) string {
	return fmt.Sprintf(`Извлеки товары со страницы каталога поставщика %s (интернет-магазин инструментов).

HTML:
%s

Для каждого товара верни поля:
- name: название на русском
- sku: артикул
- price: цена числом, "0" если не указана
- category: категория (Электроинструмент, Ручной инструмент, Садовый инструмент, Сварочные аппараты, Компрессоры, Расходные материалы)
- description: описание с характеристиками
- imageUrl: ссылка на изображение как в HTML

Ответ: JSON массив без комментариев.`, supplier, html)
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// statusError is a non-2xx reply.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("anthropic API returned %d: %s", e.code, e.body)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	// transport errors
	return true
}

// complete sends one prompt, retrying transient failures with exponential
// backoff.
func (c *AnthropicClient) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	delay := c.retry.InitialDelay

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			zap.L().Warn("Retrying anthropic request",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.retry.Multiplier)
			if delay > c.retry.MaxDelay {
				delay = c.retry.MaxDelay
			}
		}

		text, err := c.send(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("all retry attempts failed: %w", lastErr)
}

func (c *AnthropicClient) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &statusError{code: resp.StatusCode, body: truncate(string(raw), 300)}
	}

	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// ParseProducts reads the first JSON array in a model reply.
func ParseProducts(text string) ([]ExtractedProduct, error) {
	match := jsonArrayRe.FindString(text)
	if match == "" {
		return nil, errors.New("no JSON array in reply")
	}
	var products []ExtractedProduct
	if err := json.Unmarshal([]byte(match), &products); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}
	out := products[:0]
	for _, p := range products {
		p.Name = strings.TrimSpace(p.Name)
		p.SKU = strings.TrimSpace(p.SKU)
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// CleanHTML drops scripts, styles and comments, collapses whitespace and
// caps the result at MaxHTMLChars characters.
func CleanHTML(html string) string {
	cleaned := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("script, style, noscript, svg").Remove()
		if h, err := doc.Html(); err == nil {
			cleaned = h
		}
	}
	cleaned = htmlCommentRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
	return truncate(cleaned, MaxHTMLChars)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
