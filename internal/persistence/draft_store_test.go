package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

func TestDraftStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := NewDraftStore(t.TempDir())
	require.NoError(t, err)

	draft := strategy.NewDCAConfig("ETHUSDT")
	draft.Spec.BaseOrderSize = 75
	draft.Spec.MaxSafetyOrders = 4

	require.NoError(t, store.SaveDraft("current", draft))

	loaded, err := store.LoadDraft("current")
	require.NoError(t, err)

	dca, ok := loaded.(*strategy.DCAConfig)
	require.True(t, ok)
	assert.Equal(t, "ETHUSDT", dca.TradingPair())
	assert.Equal(t, 75.0, dca.Spec.BaseOrderSize)
	assert.Equal(t, 4, dca.Spec.MaxSafetyOrders)
}

func TestDraftStore_SaveOverwritesPrevious(t *testing.T) {
	store, err := NewDraftStore(t.TempDir())
	require.NoError(t, err)

	first := strategy.NewGridConfig("BTCUSDT")
	require.NoError(t, store.SaveDraft("current", first))

	second := strategy.NewGridConfig("SOLUSDT")
	require.NoError(t, store.SaveDraft("current", second))

	loaded, err := store.LoadDraft("current")
	require.NoError(t, err)
	assert.Equal(t, "SOLUSDT", loaded.TradingPair())
}

func TestDraftStore_LoadMissingDraft(t *testing.T) {
	store, err := NewDraftStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.LoadDraft("nope")
	assert.Error(t, err)
}

func TestDraftStore_DeleteDraft(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDraftStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveDraft("current", strategy.NewDCAConfig("BTCUSDT")))
	require.NoError(t, store.DeleteDraft("current"))

	_, err = os.Stat(filepath.Join(dir, "current.json"))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	assert.NoError(t, store.DeleteDraft("current"))
}

func TestDraftStore_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDraftStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveDraft("current", strategy.NewSignalConfig("BTCUSDT", "1h")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "current.json", entries[0].Name())
}
