// Package persistence saves finalized strategy configurations, remotely
// through the persistence collaborator and locally as draft files.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/bot-builder/internal/errors"
	"github.com/ducminhle1904/bot-builder/internal/logger"
	"github.com/ducminhle1904/bot-builder/internal/monitoring"
	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

// DefaultTimeout bounds a single save request.
const DefaultTimeout = 30 * time.Second

// Client saves finalized configurations to the persistence service.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a persistence client for the given base URL.
func NewClient(baseURL string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     log,
	}
}

// saveResponse is the service's wire response; the contract is
// success/failure only.
type saveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Save submits a finalized configuration. The config is snapshotted
// before encoding, so the saved record never aliases the live draft.
func (c *Client) Save(ctx context.Context, cfg strategy.StrategyConfig) error {
	snapshot := cfg.Snapshot()

	body, err := strategy.MarshalConfig(snapshot)
	if err != nil {
		monitoring.RecordStrategySave(string(cfg.Type()), "failed")
		return errors.Wrap(err, errors.CategoryConfig, "persistence", "save")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bots", bytes.NewReader(body))
	if err != nil {
		monitoring.RecordStrategySave(string(cfg.Type()), "failed")
		return errors.Wrap(err, errors.CategoryCollaborator, "persistence", "save")
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		monitoring.RecordStrategySave(string(cfg.Type()), "failed")
		return errors.Wrap(err, errors.CategoryCollaborator, "persistence", "save")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		monitoring.RecordStrategySave(string(cfg.Type()), "failed")
		return errors.Wrap(
			fmt.Errorf("persistence service returned status %d: %s", httpResp.StatusCode, string(data)),
			errors.CategoryCollaborator, "persistence", "save",
		)
	}

	var resp saveResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		monitoring.RecordStrategySave(string(cfg.Type()), "failed")
		return errors.Wrap(err, errors.CategoryCollaborator, "persistence", "save")
	}
	if !resp.Success {
		monitoring.RecordStrategySave(string(cfg.Type()), "failed")
		return errors.Wrap(fmt.Errorf("save rejected: %s", resp.Error),
			errors.CategoryCollaborator, "persistence", "save")
	}

	c.log.Info("strategy saved",
		zap.String("bot_type", string(cfg.Type())),
		zap.String("pair", cfg.TradingPair()),
	)
	monitoring.RecordStrategySave(string(cfg.Type()), "ok")
	return nil
}
