package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/QJQnova/Eps-sub001/internal/controllers"
	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/routes"
	"github.com/QJQnova/Eps-sub001/internal/services"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	router     *gin.Engine
	categories *fakeCategoryService
	products   *fakeProductService
	carts      *fakeCartService
	orders     *fakeOrderService
	imports    *fakeImportService
	jobs       *fakeJobQueue
	presigner  *fakePresigner
	adminToken string
	userToken  string
}

type harnessOptions struct {
	redis     *redis.Client
	noQueue   bool
	noPresign bool
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()

	tokens := services.NewTokenService("controller-test-secret")
	admin := &models.User{ID: 1, Username: "admin", IsAdmin: true}
	user := &models.User{ID: 2, Username: "ivan"}
	adminToken, err := tokens.Generate(admin)
	require.NoError(t, err)
	userToken, err := tokens.Generate(user)
	require.NoError(t, err)

	h := &harness{
		categories: &fakeCategoryService{categories: []models.Category{{ID: 1, Name: "Дрели", Slug: "dreli"}}},
		products:   newFakeProductService(),
		carts:      &fakeCartService{},
		orders:     &fakeOrderService{},
		imports: &fakeImportService{report: &importer.Report{
			Source: "catalog.csv", Mode: importer.ModeInsert, Imported: 2, Skipped: 1,
			Skips: map[importer.SkipReason]int{importer.ReasonInvalidPrice: 1}, Errors: []importer.RowError{},
		}},
		jobs:       &fakeJobQueue{jobs: map[string]*models.BulkImportJob{}},
		presigner:  &fakePresigner{},
		adminToken: adminToken,
		userToken:  userToken,
	}

	validator := controllers.NewRequestValidator()
	var jobs controllers.JobQueueAPI = h.jobs
	if opts.noQueue {
		jobs = nil
	}
	var images controllers.ImagePresigner = h.presigner
	if opts.noPresign {
		images = nil
	}
	auth := &fakeAuthService{tokens: tokens, users: map[string]*models.User{"admin": admin, "ivan": user}}

	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	routes.Register(r, routes.Handlers{
		Categories: controllers.NewCategoryController(h.categories),
		Products:   controllers.NewProductController(h.products, controllers.NewCacheManager(opts.redis, time.Minute), validator),
		BulkImport: controllers.NewBulkImportHandler(h.imports, jobs, validator),
		Presign:    controllers.NewPresignedURLHandler(images, validator),
		Cart:       controllers.NewCartController(h.carts),
		Orders:     controllers.NewOrderController(h.orders, validator),
		Auth:       controllers.NewAuthController(auth, false),
	}, tokens)
	h.router = r
	return h
}

func (h *harness) do(method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) doJSON(method, path, body, token string) *httptest.ResponseRecorder {
	return h.do(method, path, strings.NewReader(body), "application/json", token)
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	w := h.do(http.MethodGet, "/health", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())
}

func TestGetProducts_ParsesQuery(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.do(http.MethodGet, "/api/products?query="+url.QueryEscape(" дрель ")+"&categoryId=3&minPrice=100&maxPrice=5000.5&sort=price-low&page=2&limit=500", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p := h.products.lastParams
	assert.Equal(t, "дрель", p.Query)
	assert.Equal(t, uint(3), p.CategoryID)
	assert.Equal(t, "100", p.MinPrice.String())
	assert.Equal(t, "5000.5", p.MaxPrice.String())
	assert.Equal(t, models.SortPriceLow, p.Sort)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, services.MaxProductLimit, p.Limit)

	body := decode(t, w)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["page"])
}

func TestGetProducts_Defaults(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	w := h.do(http.MethodGet, "/api/products?sort=bogus", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	p := h.products.lastParams
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, services.DefaultProductLimit, p.Limit)
	assert.Equal(t, models.SortFeatured, p.Sort)
}

func TestGetProducts_InvalidFilters(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	for _, q := range []string{"minPrice=abc", "maxPrice=1e", "minPrice=10&maxPrice=5", "categoryId=x"} {
		w := h.do(http.MethodGet, "/api/products?"+q, nil, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	assert.Zero(t, h.products.searchCalls)
}

func TestGetProducts_IncludeInactiveOnlyForAdmins(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	h.do(http.MethodGet, "/api/products?includeInactive=true", nil, "", "")
	assert.False(t, h.products.lastParams.IncludeInactive)

	h.do(http.MethodGet, "/api/products?includeInactive=true", nil, "", h.userToken)
	assert.False(t, h.products.lastParams.IncludeInactive)

	h.do(http.MethodGet, "/api/products?includeInactive=true", nil, "", h.adminToken)
	assert.True(t, h.products.lastParams.IncludeInactive)
}

func TestGetProducts_CachedUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	h := newHarness(t, harnessOptions{redis: rdb})

	first := h.do(http.MethodGet, "/api/products?page=1", nil, "", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	// the list is stored asynchronously
	require.Eventually(t, func() bool {
		for _, k := range mr.Keys() {
			if strings.HasPrefix(k, controllers.ProductListCachePrefix) {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	hit := h.do(http.MethodGet, "/api/products?page=1", nil, "", "")
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), hit.Body.String())
	assert.Equal(t, 1, h.products.searchCalls)

	w := h.doJSON(http.MethodPost, "/api/products", `{"sku":"NEW-1","name":"Лобзик","price":"1990.00","categoryId":1}`, h.adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	again := h.do(http.MethodGet, "/api/products?page=1", nil, "", "")
	assert.Equal(t, "MISS", again.Header().Get("X-Cache"))
	assert.Equal(t, 2, h.products.searchCalls)
}

func TestProductRoutes(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.do(http.MethodGet, "/api/products/1", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/api/products/99", nil, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, w.Body.String())

	w = h.do(http.MethodGet, "/api/products/abc", nil, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/api/products/slug/drel", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/api/products/featured", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestProductWrites_RequireAdmin(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	body := `{"sku":"NEW-1","name":"Лобзик","price":1990,"categoryId":1}`

	assert.Equal(t, http.StatusUnauthorized, h.doJSON(http.MethodPost, "/api/products", body, "").Code)
	assert.Equal(t, http.StatusForbidden, h.doJSON(http.MethodPost, "/api/products", body, h.userToken).Code)

	w := h.doJSON(http.MethodPost, "/api/products", body, h.adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "1990", h.products.created.Price.String())

	w = h.doJSON(http.MethodPost, "/api/products", `{"name":"без sku"}`, h.adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusOK, h.doJSON(http.MethodPatch, "/api/products/1", `{"stock":5}`, h.adminToken).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/products/1", nil, "", h.adminToken).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/products/1", nil, "", h.adminToken).Code)
}

func TestCategoryRoutes(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.do(http.MethodGet, "/api/categories", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"dreli"`)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/categories/9", nil, "", "").Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/categories/1/products", nil, "", "").Code)

	assert.Equal(t, http.StatusForbidden, h.doJSON(http.MethodPost, "/api/categories", `{"name":"Пилы"}`, h.userToken).Code)
	w = h.doJSON(http.MethodPost, "/api/categories", `{"name":"Пилы"}`, h.adminToken)
	assert.Equal(t, http.StatusCreated, w.Code)

	h.categories.deleteErr = apperrors.ErrCategoryHasProducts
	w = h.do(http.MethodDelete, "/api/categories/1", nil, "", h.adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Cannot delete category with associated products"}`, w.Body.String())

	h.categories.deleteErr = nil
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/categories/1", nil, "", h.adminToken).Code)
}

func TestBulkImport_SyncMultipart(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	body, ct := multipartBody(t, "file", "catalog.csv", "Наименование;Артикул;Цена\nДрель;DR-1;100\n")

	w := h.do(http.MethodPost, "/api/products/bulk-import?mode=upsert&category=Инструмент", body, ct, h.adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode(t, w)
	assert.Equal(t, float64(2), out["success"])
	assert.Equal(t, float64(1), out["failed"])
	report := out["report"].(map[string]interface{})
	assert.Equal(t, float64(1), report["skips"].(map[string]interface{})["invalid_price"])

	assert.Equal(t, "catalog.csv", h.imports.lastName)
	assert.Contains(t, string(h.imports.lastData), "DR-1")
	assert.Equal(t, importer.ModeUpsert, h.imports.lastOpts.Mode)
	assert.Equal(t, "Инструмент", h.imports.lastOpts.DefaultCategory)
}

func TestBulkImport_SyncJSON(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	w := h.doJSON(http.MethodPost, "/api/products/bulk-import",
		`{"products":[{"name":"Дрель","sku":"DR-1","price":"100"},{"name":"Пила","sku":"SAW-1","price":200}]}`, h.adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, h.imports.lastRecords, 2)
	assert.Equal(t, "SAW-1", h.imports.lastRecords[1].SKU)
	assert.Equal(t, "200", h.imports.lastRecords[1].Price)
	assert.Equal(t, importer.ModeInsert, h.imports.lastOpts.Mode)
}

func TestBulkImport_RejectsBadInput(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	tests := []struct {
		name string
		req  func() *httptest.ResponseRecorder
	}{
		{"bad mode", func() *httptest.ResponseRecorder {
			body, ct := multipartBody(t, "file", "catalog.csv", "a;b;c\n")
			return h.do(http.MethodPost, "/api/products/bulk-import?mode=merge", body, ct, h.adminToken)
		}},
		{"unsupported extension", func() *httptest.ResponseRecorder {
			body, ct := multipartBody(t, "file", "catalog.pdf", "%PDF")
			return h.do(http.MethodPost, "/api/products/bulk-import", body, ct, h.adminToken)
		}},
		{"missing file", func() *httptest.ResponseRecorder {
			body, ct := multipartBody(t, "other", "catalog.csv", "a;b;c\n")
			return h.do(http.MethodPost, "/api/products/bulk-import", body, ct, h.adminToken)
		}},
		{"empty products", func() *httptest.ResponseRecorder {
			return h.doJSON(http.MethodPost, "/api/products/bulk-import", `{"products":[]}`, h.adminToken)
		}},
		{"broken json", func() *httptest.ResponseRecorder {
			return h.doJSON(http.MethodPost, "/api/products/bulk-import", `{"products":`, h.adminToken)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, tt.req().Code)
		})
	}
	assert.Empty(t, h.imports.lastName)
}

func TestBulkImport_ServiceErrorStatus(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.imports.err = apperrors.ErrUnsupportedFile.Wrap(importer.ErrUnsupportedFormat)

	body, ct := multipartBody(t, "file", "catalog.zip", "PK")
	w := h.do(http.MethodPost, "/api/products/bulk-import", body, ct, h.adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Unsupported file type"}`, w.Body.String())
}

func TestBulkImport_Async(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	body, ct := multipartBody(t, "file", "price.xlsx", "xlsx-bytes")

	w := h.do(http.MethodPost, "/api/products/bulk-import?async=true&mode=upsert&category="+url.QueryEscape("Новинки"), body, ct, h.adminToken)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "job-1", decode(t, w)["job_id"])
	assert.Equal(t, "upsert", h.jobs.jobs["job-1"].Mode)
	assert.Equal(t, "Новинки", h.jobs.jobs["job-1"].DefaultCategory)
	assert.Equal(t, "price.xlsx", h.jobs.jobs["job-1"].FileName)

	w = h.do(http.MethodGet, "/api/products/bulk-import/jobs/job-1", nil, "", h.adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", decode(t, w)["status"])

	w = h.do(http.MethodGet, "/api/products/bulk-import/jobs/nope", nil, "", h.adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBulkImport_AsyncWithoutQueue(t *testing.T) {
	h := newHarness(t, harnessOptions{noQueue: true})
	w := h.doJSON(http.MethodPost, "/api/products/bulk-import?async=true", `{"products":[{"name":"a","sku":"b","price":1}]}`, h.adminToken)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPresignUpload(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.doJSON(http.MethodPost, "/api/products/images/presign", `{"sku":"DR-1","filename":"front.png","contentType":"image/png","expires":99999}`, h.adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, "products/DR-1/front.png", out["key"])
	assert.Equal(t, "https://cdn.example/products/DR-1/front.png", out["publicUrl"])
	assert.Equal(t, "PUT", out["method"])
	assert.Equal(t, time.Hour, h.presigner.lastExpires)

	w = h.doJSON(http.MethodPost, "/api/products/images/presign", `{"sku":"DR-1","contentType":"application/pdf"}`, h.adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.doJSON(http.MethodPost, "/api/products/images/presign", `{}`, h.adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresignUpload_NotConfigured(t *testing.T) {
	h := newHarness(t, harnessOptions{noPresign: true})
	w := h.doJSON(http.MethodPost, "/api/products/images/presign", `{"sku":"DR-1"}`, h.adminToken)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCartRoutes(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.doJSON(http.MethodPost, "/api/cart/items", `{"cartId":"c-1","productId":1,"quantity":2}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNotFound, h.doJSON(http.MethodPost, "/api/cart/items", `{"cartId":"c-1","productId":7}`, "").Code)
	w = h.doJSON(http.MethodPost, "/api/cart/items", `{"productId":1}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	details, ok := decode(t, w)["details"].([]interface{})
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, map[string]interface{}{"field": "CartID", "rule": "required"}, details[0])

	w = h.do(http.MethodGet, "/api/cart/c-1", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["itemCount"])

	assert.Equal(t, http.StatusBadRequest, h.doJSON(http.MethodPatch, "/api/cart/items/1", `{"quantity":0}`, "").Code)
	assert.Equal(t, http.StatusOK, h.doJSON(http.MethodPatch, "/api/cart/items/1", `{"quantity":5}`, "").Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/cart/items/1", nil, "", "").Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/cart/c-1", nil, "", "").Code)
}

const checkoutBody = `{"cartId":"%s","customerName":"Иван Петров","customerEmail":"ivan@example.ru",
"customerPhone":"+79990001122","address":"ул. Ленина, 1","city":"Москва","paymentMethod":"cash"}`

func TestOrderRoutes(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.doJSON(http.MethodPost, "/api/orders", strings.Replace(checkoutBody, "%s", "empty", 1), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Корзина пуста"}`, w.Body.String())

	w = h.doJSON(http.MethodPost, "/api/orders", strings.Replace(checkoutBody, "%s", "c-1", 1), "")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/orders", nil, "", "").Code)

	w = h.do(http.MethodGet, "/api/orders?status=shipped&startDate=2026-01-01&endDate=2026-01-31&query="+url.QueryEscape("Иван"), nil, "", h.adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s := h.orders.lastSearch
	assert.Equal(t, "shipped", s.Status)
	assert.Equal(t, "Иван", s.Query)
	require.NotNil(t, s.EndDate)
	assert.Equal(t, 23, s.EndDate.Hour())

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/orders?startDate=yesterday", nil, "", h.adminToken).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/orders?startDate=2026-02-01&endDate=2026-01-01", nil, "", h.adminToken).Code)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/orders/10", nil, "", h.adminToken).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/orders/11", nil, "", h.adminToken).Code)

	assert.Equal(t, http.StatusBadRequest, h.doJSON(http.MethodPatch, "/api/orders/10/status", `{"status":"lost"}`, h.adminToken).Code)
	assert.Equal(t, http.StatusOK, h.doJSON(http.MethodPatch, "/api/orders/10/status", `{"status":"delivered"}`, h.adminToken).Code)
	assert.Equal(t, "delivered", h.orders.lastStatus)
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

func TestAuthRoutes(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	w := h.doJSON(http.MethodPost, "/api/auth/register", `{"username":"petr","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	require.NotNil(t, sessionCookie(w))

	assert.Equal(t, http.StatusConflict, h.doJSON(http.MethodPost, "/api/auth/register", `{"username":"petr","password":"secret1"}`, "").Code)

	w = h.doJSON(http.MethodPost, "/api/auth/login", `{"username":"ivan","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for _, path := range []string{"/api/auth/login", "/api/simple-login"} {
		w = h.doJSON(http.MethodPost, path, `{"username":"ivan","password":"secret1"}`, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		cookie := sessionCookie(w)
		require.NotNil(t, cookie, path)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, 86400, cookie.MaxAge)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(cookie)
		me := httptest.NewRecorder()
		h.router.ServeHTTP(me, req)
		require.Equal(t, http.StatusOK, me.Code)
		assert.Equal(t, "ivan", decode(t, me)["username"])
	}

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/me", nil, "", "").Code)

	w = h.do(http.MethodPost, "/api/auth/logout", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}
