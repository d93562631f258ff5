package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/bot-builder/internal/backtest"
	"github.com/ducminhle1904/bot-builder/internal/catalog"
	builderrors "github.com/ducminhle1904/bot-builder/internal/errors"
	"github.com/ducminhle1904/bot-builder/internal/monitoring"
	"github.com/ducminhle1904/bot-builder/internal/persistence"
	"github.com/ducminhle1904/bot-builder/pkg/dca"
	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/indicators", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"indicators": [
				{"id": "rsi", "name": "RSI", "type": "momentum", "params": ["period"]}
			],
			"timeframes": [{"id": "1h", "name": "1 hour"}]
		}`))
	})
	mux.HandleFunc("/presets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"presets": [
				{"id": "tight-dca", "name": "Tight DCA", "bot_type": "dca",
				 "dca_spec": {
					"base_order_size": 100, "safety_order_size": 50,
					"safety_order_step_percent": 1.5,
					"safety_order_step_scale": 1.0, "safety_order_volume_scale": 1.0,
					"max_safety_orders": 3, "take_profit_percent": 1.0,
					"take_profit_basis": "average_entry"
				 }},
				{"id": "loose-grid", "name": "Loose Grid", "bot_type": "grid"}
			]
		}`))
	})
	return httptest.NewServer(mux)
}

func TestStart_FetchesCatalogs(t *testing.T) {
	server := catalogServer(t)
	defer server.Close()

	s := New(Options{Catalogs: catalog.NewClient(server.URL, nil)})
	s.Start(context.Background())

	cat := s.Catalog()
	require.NotNil(t, cat)
	require.Len(t, cat.Indicators, 1)
	assert.Equal(t, "rsi", cat.Indicators[0].ID)

	s.NewDCADraft("BTCUSDT")
	presets := s.PresetsForDraft()
	require.Len(t, presets, 1)
	assert.Equal(t, "tight-dca", presets[0].ID)
}

func TestStart_FallsBackToBuiltinCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := New(Options{Catalogs: catalog.NewClient(server.URL, nil)})
	s.Start(context.Background())

	cat := s.Catalog()
	require.NotNil(t, cat)
	_, ok := cat.Indicator("rsi")
	assert.True(t, ok, "builtin catalog should still resolve rsi")
	assert.Empty(t, s.PresetsForDraft())
}

func TestStart_NoCatalogClient(t *testing.T) {
	s := New(Options{})
	s.Start(context.Background())
	require.NotNil(t, s.Catalog())
}

func TestApplyPreset(t *testing.T) {
	server := catalogServer(t)
	defer server.Close()

	s := New(Options{Catalogs: catalog.NewClient(server.URL, nil)})
	s.Start(context.Background())

	draft := s.NewDCADraft("BTCUSDT")
	require.NoError(t, s.ApplyPreset("tight-dca"))
	assert.Equal(t, 100.0, draft.Spec.BaseOrderSize)
	assert.Equal(t, 3, draft.Spec.MaxSafetyOrders)

	// Wrong bot type is rejected without touching the draft.
	err := s.ApplyPreset("loose-grid")
	require.Error(t, err)
	assert.Equal(t, 100.0, draft.Spec.BaseOrderSize)

	assert.Error(t, s.ApplyPreset("does-not-exist"))
}

func TestApplyPreset_NoDraft(t *testing.T) {
	s := New(Options{})
	assert.Error(t, s.ApplyPreset("anything"))
}

func TestGridPreview(t *testing.T) {
	s := New(Options{})
	draft := s.NewGridDraft("BTCUSDT")
	draft.Spec.LowerPrice = 100
	draft.Spec.UpperPrice = 200
	draft.Spec.GridCount = 5
	draft.Spec.InvestmentAmount = 1000

	levels, perGrid, err := s.GridPreview()
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 125, 150, 175, 200}, levels)
	assert.Equal(t, 200.0, perGrid)
}

func TestGridPreview_WrongDraftType(t *testing.T) {
	s := New(Options{})
	s.NewDCADraft("BTCUSDT")
	_, _, err := s.GridPreview()
	assert.Error(t, err)
}

func TestDCAPreview(t *testing.T) {
	s := New(Options{})
	draft := s.NewDCADraft("BTCUSDT")
	draft.Spec = dca.Spec{
		BaseOrderSize:          100,
		SafetyOrderSize:        50,
		SafetyOrderStepPercent: 2,
		SafetyOrderStepScale:   1.0,
		SafetyOrderVolumeScale: 1.0,
		MaxSafetyOrders:        2,
		TakeProfitPercent:      1.5,
		TakeProfitBasis:        dca.BasisAverageEntry,
	}

	plan, capital, err := s.DCAPreview()
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, 200.0, capital)
}

func TestValidate_NoDraft(t *testing.T) {
	s := New(Options{})
	violations := s.Validate()
	require.Len(t, violations, 1)
	assert.Equal(t, "draft", violations[0].Field)
}

func TestValidate_CatalogChecksIncluded(t *testing.T) {
	s := New(Options{})
	draft := s.NewSignalDraft("BTCUSDT", "1h")
	draft.OrderAmount = 100
	cond := draft.Entry.AddCondition()
	require.True(t, draft.Entry.UpdateCondition(cond.ID, strategy.FieldIndicator, "not_a_real_indicator"))

	violations := s.Validate()
	require.NotEmpty(t, violations)

	found := false
	for _, v := range violations {
		if v.Constraint == `indicator "not_a_real_indicator" is not in the catalog` {
			found = true
		}
	}
	assert.True(t, found, "catalog violation missing from %v", violations)
}

func TestSubmitBacktest(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "backtest": {"total_return": 5.0, "trade_count": 12}}`))
	}))
	defer engine.Close()

	s := New(Options{Backtest: backtest.NewClient(engine.URL, nil)})
	draft := s.NewDCADraft("BTCUSDT")
	draft.Spec = dca.Spec{
		BaseOrderSize:          100,
		SafetyOrderSize:        50,
		SafetyOrderStepPercent: 2,
		SafetyOrderStepScale:   1.0,
		SafetyOrderVolumeScale: 1.0,
		MaxSafetyOrders:        2,
		TakeProfitPercent:      1.5,
		TakeProfitBasis:        dca.BasisAverageEntry,
	}

	result, err := s.SubmitBacktest(context.Background(), 1000, 0.001)
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.TotalReturn)
	assert.Equal(t, 12, result.TradeCount)
}

func TestSubmitBacktest_InvalidDraftNotSent(t *testing.T) {
	hit := false
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer engine.Close()

	s := New(Options{Backtest: backtest.NewClient(engine.URL, nil)})
	s.NewGridDraft("") // missing pair, empty spec

	_, err := s.SubmitBacktest(context.Background(), 1000, 0.001)
	require.Error(t, err)
	assert.False(t, hit, "invalid draft must not reach the engine")
}

func TestSubmitBacktest_NoCollaborator(t *testing.T) {
	s := New(Options{})
	s.NewDCADraft("BTCUSDT")
	_, err := s.SubmitBacktest(context.Background(), 1000, 0.001)
	require.Error(t, err)

	var berr *builderrors.BuilderError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, builderrors.CategoryConfig, berr.Category)
	assert.False(t, berr.IsRetryable())
}

func validDCASpec() dca.Spec {
	return dca.Spec{
		BaseOrderSize:          100,
		SafetyOrderSize:        50,
		SafetyOrderStepPercent: 2,
		SafetyOrderStepScale:   1.0,
		SafetyOrderVolumeScale: 1.0,
		MaxSafetyOrders:        2,
		TakeProfitPercent:      1.5,
		TakeProfitBasis:        dca.BasisAverageEntry,
	}
}

func healthStatus(t *testing.T, health *monitoring.HealthChecker) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	health.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body.Status
}

func TestSubmitBacktest_FailureReportedOnHealth(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine down", http.StatusBadGateway)
	}))
	defer engine.Close()

	health := monitoring.NewHealthChecker()
	health.SetCatalogLoaded(true)
	s := New(Options{Backtest: backtest.NewClient(engine.URL, nil), Health: health})
	draft := s.NewDCADraft("BTCUSDT")
	draft.Spec = validDCASpec()

	_, err := s.SubmitBacktest(context.Background(), 1000, 0.001)
	require.Error(t, err)

	code, status := healthStatus(t, health)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "unhealthy", status)
}

func TestSubmitBacktest_SuccessClearsHealthErrors(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "backtest": {"trade_count": 1}}`))
	}))
	defer engine.Close()

	health := monitoring.NewHealthChecker()
	health.SetCatalogLoaded(true)
	health.RecordError("earlier engine outage")

	s := New(Options{Backtest: backtest.NewClient(engine.URL, nil), Health: health})
	draft := s.NewDCADraft("BTCUSDT")
	draft.Spec = validDCASpec()

	_, err := s.SubmitBacktest(context.Background(), 1000, 0.001)
	require.NoError(t, err)

	code, status := healthStatus(t, health)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status)
}

func TestSaveStrategy_NoCollaborator(t *testing.T) {
	s := New(Options{})
	s.NewDCADraft("BTCUSDT")
	err := s.SaveStrategy(context.Background())
	require.Error(t, err)

	var berr *builderrors.BuilderError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, builderrors.CategoryConfig, berr.Category)
}

func TestSaveStrategy_FailureReportedOnHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "store unavailable"}`))
	}))
	defer server.Close()

	health := monitoring.NewHealthChecker()
	health.SetCatalogLoaded(true)
	s := New(Options{Persist: persistence.NewClient(server.URL, nil), Health: health})
	draft := s.NewDCADraft("BTCUSDT")
	draft.Spec = validDCASpec()

	require.Error(t, s.SaveStrategy(context.Background()))

	code, status := healthStatus(t, health)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "unhealthy", status)
}

func TestDraftStoreRoundTripThroughSession(t *testing.T) {
	store, err := persistence.NewDraftStore(t.TempDir())
	require.NoError(t, err)

	s := New(Options{DraftStore: store})
	draft := s.NewGridDraft("ETHUSDT")
	draft.Spec.LowerPrice = 50
	draft.Spec.UpperPrice = 100
	require.NoError(t, s.SaveDraftLocal("current"))

	fresh := New(Options{DraftStore: store})
	require.NoError(t, fresh.LoadDraftLocal("current"))

	loaded, ok := fresh.Draft().(*strategy.GridConfig)
	require.True(t, ok)
	assert.Equal(t, "ETHUSDT", loaded.TradingPair())
	assert.Equal(t, 50.0, loaded.Spec.LowerPrice)
}
