package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/bot-builder/internal/logger"
)

func TestFetchIndicators(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/indicators", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"indicators": [
				{"id": "rsi", "name": "RSI", "type": "momentum", "params": ["period"]},
				{"id": "macd", "name": "MACD", "type": "trend", "params": ["fast", "slow", "signal"]}
			],
			"timeframes": [
				{"id": "1h", "name": "1 hour"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger.NewNop())
	catalog, err := client.FetchIndicators(context.Background())
	require.NoError(t, err)

	require.Len(t, catalog.Indicators, 2)
	spec, ok := catalog.Indicator("macd")
	require.True(t, ok)
	assert.Equal(t, []string{"fast", "slow", "signal"}, spec.Params)
	assert.True(t, catalog.HasTimeframe("1h"))
	assert.False(t, catalog.HasTimeframe("5m"))
}

func TestFetchIndicators_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, logger.NewNop())
	catalog, err := client.FetchIndicators(context.Background())
	assert.Error(t, err)
	assert.Nil(t, catalog)
}

func TestFetchPresets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/presets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"presets": [
				{"id": "conservative", "name": "Conservative", "bot_type": "signal",
				 "risk": {"stop_loss_percent": 1.5}},
				{"id": "wide-grid", "name": "Wide Grid", "bot_type": "grid"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger.NewNop())
	presets, err := client.FetchPresets(context.Background())
	require.NoError(t, err)

	require.Len(t, presets, 2)
	assert.Equal(t, "conservative", presets[0].ID)
	require.NotNil(t, presets[0].Risk)
	assert.Equal(t, 1.5, *presets[0].Risk.StopLossPercent)
	assert.Nil(t, presets[1].Risk)
}

func TestFetchPresets_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, logger.NewNop())
	_, err := client.FetchPresets(ctx)
	assert.Error(t, err)
}
