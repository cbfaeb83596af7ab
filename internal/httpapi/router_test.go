package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/pos/internal/health"
	"github.com/vladislavdragonenkov/pos/internal/httpapi"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
	"github.com/vladislavdragonenkov/pos/internal/service/commands"
	"github.com/vladislavdragonenkov/pos/internal/service/pos"
	"github.com/vladislavdragonenkov/pos/internal/storage/sqlite"
)

func newTestRouter(t *testing.T) (http.Handler, *sqlite.Store) {
	t.Helper()

	fixtures := domain.Fixtures{
		Categories: []domain.Category{{ID: "drinks", Label: "Drinks", Color: "#3b82f6"}},
		Products:   []domain.Product{{ID: "soda", Name: "Soda", Price: 200, CategoryID: "drinks"}},
	}
	store, err := sqlite.Open(context.Background(), sqlite.MemoryPath, sqlite.WithFixtures(fixtures))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc, err := pos.New(pos.Repositories{
		Categories: sqlite.NewCategoryRepository(store),
		Products:   sqlite.NewProductRepository(store),
		Orders:     sqlite.NewOrderRepository(store),
		Reports:    sqlite.NewReportRepository(store),
		Admin:      store,
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	dispatcher := commands.New(svc, commands.WithMetrics(metrics.NewPosMetricsWithRegisterer(reg)))

	health := healthcheck.NewHandler("test")
	health.RegisterChecker("store", healthcheck.NewStoreChecker(store))

	return httpapi.NewRouter(dispatcher, httpapi.Options{
		Health:         health,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AllowedOrigins: []string{"http://localhost:5173"},
	}), store
}

func post(t *testing.T, h http.Handler, command, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/commands/"+command, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestInvokeCommand_CreateOrder(t *testing.T) {
	h, _ := newTestRouter(t)

	w := post(t, h, commands.CreateOrder, `{"items":[{"product_id":"soda","product_name":"Soda","unit_price":50,"quantity":3}],"payment_method":"cash"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var order domain.OrderWithItems
	require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
	require.Equal(t, int64(150), order.Total)
	require.Equal(t, domain.PaymentMethodCash, order.PaymentMethod)

	w = post(t, h, commands.GetDashboardSummary, ``)
	require.Equal(t, http.StatusOK, w.Code)
	var summary domain.DashboardSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	require.Equal(t, int64(150), summary.TotalRevenue)
}

func TestInvokeCommand_Errors(t *testing.T) {
	h, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, post(t, h, commands.CreateOrder,
		`{"items":[{"product_id":"soda","product_name":"Soda","unit_price":200,"quantity":1}],"payment_method":"card"}`).Code)

	cases := []struct {
		name    string
		command string
		body    string
		status  int
	}{
		{"unknown command", "drop_everything", `{}`, http.StatusBadRequest},
		{"validation", commands.CreateOrder, `{"items":[],"payment_method":"cash"}`, http.StatusBadRequest},
		{"not found", commands.ToggleProductAvailability, `{"product_id":"ghost"}`, http.StatusNotFound},
		{"conflict", commands.DeleteProduct, `{"product_id":"soda"}`, http.StatusConflict},
		{"already exists", commands.CreateCategory, `{"id":"drinks","label":"Drinks","color":"#000"}`, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(t, h, tc.command, tc.body)
			require.Equal(t, tc.status, w.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			require.NotEmpty(t, body["error"])
		})
	}
}

func TestInvokeCommand_PayloadTooLarge(t *testing.T) {
	h, _ := newTestRouter(t)

	big := `{"id":"x","label":"` + strings.Repeat("a", 2<<20) + `"}`
	w := post(t, h, commands.CreateCategory, big)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestListCommands(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/commands", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Contains(t, body["commands"], commands.CreateOrder)
}

func TestHealthEndpoints(t *testing.T) {
	h, store := newTestRouter(t)

	for _, path := range []string{"/healthz", "/livez", "/readyz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, path)
	}

	require.NoError(t, store.Close())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/commands/list_products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, http.StatusOK, httpapi.StatusOf(nil))
	require.Equal(t, http.StatusServiceUnavailable, httpapi.StatusOf(domain.ErrStoreClosed))
	require.Equal(t, http.StatusInternalServerError, httpapi.StatusOf(domain.ErrRowMapping))
	require.Equal(t, http.StatusInternalServerError, httpapi.StatusOf(errors.New("boom")))
}
