package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catalog/internal/config"
	"catalog/internal/domain/model"
	"catalog/internal/events"
	"catalog/internal/handler"
	"catalog/internal/infra/memstore"
	"catalog/internal/observability"
	"catalog/internal/server"
	"catalog/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, cfg config.Config) *echo.Echo {
	t.Helper()

	store := memstore.New()
	reg := prometheus.NewRegistry()
	tracer := noop.NewTracerProvider().Tracer("test")
	uc := usecase.NewProductUsecase(store, store, store, events.NopPublisher{}, observability.NewMetrics(reg), zap.NewNop(), tracer)

	_, err := uc.Seed(context.Background())
	require.NoError(t, err)

	return server.New(cfg, uc, zap.NewNop(), tracer, reg)
}

func do(t *testing.T, e *echo.Echo, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	} else {
		buf = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeProducts(t *testing.T, rec *httptest.ResponseRecorder) []model.Product {
	t.Helper()
	var v handler.ProductListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body=%s", rec.Body.String())
	return v.Items
}

func decodeProduct(t *testing.T, rec *httptest.ResponseRecorder) model.Product {
	t.Helper()
	var v model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body=%s", rec.Body.String())
	return v
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var v handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body=%s", rec.Body.String())
	return v.Error
}

func stock(n int64) map[string]int64 {
	return map[string]int64{"stock": n}
}

func TestProducts_List(t *testing.T) {
	e := newTestServer(t, config.Config{})

	rec := do(t, e, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeProducts(t, rec), 4)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestProducts_ListByCategory(t *testing.T) {
	e := newTestServer(t, config.Config{})

	rec := do(t, e, http.MethodGet, "/products?category=Electronics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeProducts(t, rec)
	require.Len(t, items, 2)
	assert.Equal(t, "Laptop", items[0].Name)
	assert.Equal(t, "SmartPhone", items[1].Name)

	rec = do(t, e, http.MethodGet, "/products?category=NoSuchCategory", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestProducts_UpdateStock(t *testing.T) {
	e := newTestServer(t, config.Config{})

	rec := do(t, e, http.MethodPut, "/products/1/stock", "", stock(3))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(3), decodeProduct(t, rec).Stock)

	rec = do(t, e, http.MethodGet, "/products/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), decodeProduct(t, rec).Stock)
}

func TestProducts_ReceiveShipment(t *testing.T) {
	e := newTestServer(t, config.Config{})

	rec := do(t, e, http.MethodPost, "/products/2/shipments", "", stock(5))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(15), decodeProduct(t, rec).Stock)

	rec = do(t, e, http.MethodPost, "/products/2/shipments", "", stock(-20))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(-5), decodeProduct(t, rec).Stock)

	rec = do(t, e, http.MethodGet, "/products/2/adjustments?limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var adjs handler.AdjustmentListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &adjs))
	require.Len(t, adjs.Items, 1)
	assert.Equal(t, int64(-20), adjs.Items[0].Quantity)
	assert.Equal(t, model.AnonymousActor, adjs.Items[0].ActorID)
}

func TestProducts_StockOps_NotFound(t *testing.T) {
	e := newTestServer(t, config.Config{})

	rec := do(t, e, http.MethodPut, "/products/99/stock", "", stock(1))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", decodeError(t, rec))

	rec = do(t, e, http.MethodPost, "/products/99/shipments", "", stock(1))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodGet, "/products", "", nil)
	assert.Len(t, decodeProducts(t, rec), 4)
}

func TestProducts_BadRequests(t *testing.T) {
	e := newTestServer(t, config.Config{})

	rec := do(t, e, http.MethodPut, "/products/abc/stock", "", stock(1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", decodeError(t, rec))

	rec = do(t, e, http.MethodPut, "/products/1/stock", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "stock required", decodeError(t, rec))

	rec = do(t, e, http.MethodGet, "/products/1/adjustments?limit=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/products", "", map[string]any{"name": " ", "category": "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name required", decodeError(t, rec))
}

func TestProducts_Create(t *testing.T) {
	e := newTestServer(t, config.Config{})

	rec := do(t, e, http.MethodPost, "/products", "", map[string]any{
		"name": "Desk", "category": "Furniture", "price": "350.50", "stock": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decodeProduct(t, rec)
	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, "350.5", p.Price.String())

	rec = do(t, e, http.MethodGet, "/products?category=Furniture", "", nil)
	assert.Len(t, decodeProducts(t, rec), 2)
}

func TestMutations_RequireAdminWhenSecretSet(t *testing.T) {
	const secret = "s3cret"
	e := newTestServer(t, config.Config{JWTSecret: secret})

	rec := do(t, e, http.MethodPut, "/products/1/stock", "", stock(1))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops-7",
		"role": string(model.RoleAdmin),
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)

	rec = do(t, e, http.MethodPut, "/products/1/stock", signed, stock(1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/products/1/adjustments", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"actor_id":"ops-7"`)

	// 参照系は認証なし
	rec = do(t, e, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestServer(t, config.Config{})

	rec := do(t, e, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	do(t, e, http.MethodPost, "/products/1/shipments", "", stock(2))

	rec = do(t, e, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `catalog_stock_operations_total{kind="RECEIVE_SHIPMENT",result="ok"} 1`), body)
	assert.Contains(t, body, `catalog_shipment_units_received_total{category="Electronics"} 2`)
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	e := newTestServer(t, config.Config{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.Start(ctx, e, "127.0.0.1:0", time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
