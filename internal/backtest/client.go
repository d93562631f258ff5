// Package backtest submits validated strategy configurations to the
// external backtest engine and reports its results.
package backtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/bot-builder/internal/errors"
	"github.com/ducminhle1904/bot-builder/internal/logger"
	"github.com/ducminhle1904/bot-builder/internal/monitoring"
)

// DefaultTimeout bounds a single backtest request end to end.
const DefaultTimeout = 2 * time.Minute

// ErrSubmissionInFlight is returned when a submission is attempted while
// another one is still pending. The session keeps at most one in-flight
// backtest; callers cancel the pending one before resubmitting.
var ErrSubmissionInFlight = fmt.Errorf("a backtest submission is already in flight")

// Client submits backtest requests. A single failed attempt is reported
// and left to the user to retry explicitly; the client never retries on
// its own.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger

	mu       sync.Mutex
	inflight context.CancelFunc
}

// NewClient creates a backtest client for the given base URL.
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

// Submit sends one backtest request and blocks until the engine responds
// or ctx is cancelled. A second Submit while one is pending returns
// ErrSubmissionInFlight without touching the pending request.
// Resubmitting the same request after completion is safe; the engine
// treats identical configs idempotently.
func (c *Client) Submit(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.inflight != nil {
		c.mu.Unlock()
		cancel()
		monitoring.RecordBacktestSubmission(string(req.BotType), "rejected")
		return nil, ErrSubmissionInFlight
	}
	c.inflight = cancel
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inflight = nil
		c.mu.Unlock()
		cancel()
	}()

	c.log.Info("submitting backtest",
		zap.String("bot_type", string(req.BotType)),
		zap.String("pair", req.Pair),
	)

	result, err := c.post(ctx, req)
	switch {
	case ctx.Err() == context.Canceled:
		monitoring.RecordBacktestSubmission(string(req.BotType), "cancelled")
		return nil, errors.Wrap(ctx.Err(), errors.CategoryCollaborator, "backtest", "submit")
	case err != nil:
		monitoring.RecordBacktestSubmission(string(req.BotType), "failed")
		return nil, errors.Wrap(err, errors.CategoryCollaborator, "backtest", "submit")
	}

	monitoring.RecordBacktestSubmission(string(req.BotType), "ok")
	return result, nil
}

// Cancel aborts the pending submission, if any. Safe to call at any
// time; editing the draft or navigating away cancels through here.
func (c *Client) Cancel() {
	c.mu.Lock()
	cancel := c.inflight
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// InFlight reports whether a submission is currently pending.
func (c *Client) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != nil
}

func (c *Client) post(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/backtest", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("backtest service returned status %d: %s", httpResp.StatusCode, string(data))
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("could not parse response: %w", err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("backtest failed: %s", resp.Error)
	}
	if resp.Backtest == nil {
		return nil, fmt.Errorf("backtest succeeded but no result returned")
	}

	return resp.Backtest, nil
}
