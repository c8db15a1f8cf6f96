package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/utils"
	"github.com/MKhiriev/go-farrier-sync/models"
	"github.com/go-resty/resty/v2"
)

const (
	pushPath      = "/api/backup/{store}"
	pullPath      = "/api/transfer"
	telemetryPath = "/api/errors"

	headerRequestID = "X-Request-ID"
	headerHash      = "HashSHA256"
)

type httpServerAdapter struct {
	client *utils.HTTPClient
	ids    *utils.UUIDGenerator

	signer         *utils.Signer
	requestTimeout time.Duration
	authTimeout    time.Duration

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress,
// configures the underlying HTTP client with the resolved base URL, and
// keys the HMAC signer of pushed batches when a hash key is set.
//
// Push and Pull run under adapterCfg.AuthRequestTimeout, telemetry under
// adapterCfg.RequestTimeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpServerAdapter{
		client:         utils.NewHTTPClient(utils.WithBaseURL(baseURL), utils.WithHeader("Accept", "application/json")),
		ids:            utils.NewUUIDGenerator(),
		signer:         utils.NewSigner(appCfg.HashKey),
		requestTimeout: adapterCfg.RequestTimeout,
		authTimeout:    adapterCfg.AuthRequestTimeout,
		token:          strings.TrimSpace(appCfg.Token),
		logger:         logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token (whitespace-trimmed) for
// use in the Authorization header of all subsequent requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Push implements [ServerAdapter]. It POSTs records as a JSON array to
// POST /api/backup/{store}, signed with the HashSHA256 header when a hash key
// is configured.
//
// The response is either an array of outcomes or a single outcome object
// (e.g. {"status":"auth-error"}). A non-2xx response whose body still decodes
// to outcomes is returned as those outcomes, so the server's own statuses
// drive acknowledgement.
func (h *httpServerAdapter) Push(ctx context.Context, store schema.StoreName, records []models.Record) ([]models.Outcome, error) {
	if records == nil {
		records = []models.Record{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode push batch: %w", err)
	}

	ctx, cancel := h.withTimeout(ctx, h.authTimeout)
	defer cancel()

	req := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("store", string(store)).
		SetBody(payload)
	if sig := h.signer.Sign(payload); sig != "" {
		req.SetHeader(headerHash, sig)
	}

	resp, err := req.Post(pushPath)
	if err != nil {
		err = mapTransportError(err)
		h.logger.Err(err).Str("func", "*httpServerAdapter.Push").Str("store", string(store)).Msg("push request failed")
		return nil, err
	}

	httpErr := mapHTTPError(resp)
	if errors.Is(httpErr, ErrAuth) || errors.Is(httpErr, ErrRequestTimeout) {
		return nil, httpErr
	}

	outcomes, decodeErr := decodeOutcomes(resp.Body())
	if httpErr != nil && (decodeErr != nil || len(outcomes) == 0) {
		h.logger.Err(httpErr).Str("func", "*httpServerAdapter.Push").Str("store", string(store)).Msg("server rejected push batch")
		return nil, httpErr
	}
	if decodeErr != nil {
		h.logger.Err(decodeErr).Str("func", "*httpServerAdapter.Push").Str("store", string(store)).Msg("undecodable push response")
		return nil, decodeErr
	}

	for _, outcome := range outcomes {
		if outcome.Status == models.StatusAuthError {
			return nil, fmt.Errorf("%w: %s", ErrAuth, outcome.Msg)
		}
	}

	return outcomes, nil
}

// Pull implements [ServerAdapter]. It POSTs {"table": ...} to POST /api/transfer
// and decodes the snapshot envelope.
func (h *httpServerAdapter) Pull(ctx context.Context, pullReq models.PullRequest) (models.PullResponse, error) {
	ctx, cancel := h.withTimeout(ctx, h.authTimeout)
	defer cancel()

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(pullReq).
		Post(pullPath)
	if err != nil {
		err = mapTransportError(err)
		h.logger.Err(err).Str("func", "*httpServerAdapter.Pull").Str("table", string(pullReq.Table)).Msg("pull request failed")
		return models.PullResponse{}, err
	}

	httpErr := mapHTTPError(resp)
	if errors.Is(httpErr, ErrAuth) || errors.Is(httpErr, ErrRequestTimeout) {
		return models.PullResponse{}, httpErr
	}

	var snapshot models.PullResponse
	if err = json.Unmarshal(resp.Body(), &snapshot); err != nil {
		if httpErr != nil {
			return models.PullResponse{}, httpErr
		}
		if !errors.Is(err, ErrUnknownStatus) {
			err = fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
		}
		h.logger.Err(err).Str("func", "*httpServerAdapter.Pull").Str("table", string(pullReq.Table)).Msg("undecodable pull response")
		return models.PullResponse{}, fmt.Errorf("decode pull response: %w", err)
	}

	if snapshot.Status == models.StatusAuthError {
		return models.PullResponse{}, ErrAuth
	}
	if httpErr != nil && snapshot.Status == 0 {
		return models.PullResponse{}, httpErr
	}

	return snapshot, nil
}

// SendError implements [ServerAdapter]. It POSTs one entry to POST /api/errors
// under the short request timeout. The local errorID is not transmitted.
func (h *httpServerAdapter) SendError(ctx context.Context, entry models.TelemetryEntry) error {
	ctx, cancel := h.withTimeout(ctx, h.requestTimeout)
	defer cancel()

	entry.ErrorID = 0
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(entry).
		Post(telemetryPath)
	if err != nil {
		return mapTransportError(err)
	}

	return mapHTTPError(resp)
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	requestID, ok := utils.GetTraceIDFromContext(ctx)
	if !ok {
		requestID = h.ids.Generate()
	}

	req := h.client.R().
		SetContext(ctx).
		SetHeader(headerRequestID, requestID)
	if token := h.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

func (h *httpServerAdapter) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// decodeOutcomes accepts an outcome array, a single outcome object, or an
// empty body (no outcomes).
func decodeOutcomes(body []byte) ([]models.Outcome, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var outcomes []models.Outcome
	var err error
	switch body[0] {
	case '[':
		err = json.Unmarshal(body, &outcomes)
	case '{':
		var single models.Outcome
		err = json.Unmarshal(body, &single)
		outcomes = []models.Outcome{single}
	default:
		return nil, fmt.Errorf("%w: push response is neither array nor object", ErrUnexpectedResponse)
	}

	if err != nil {
		if errors.Is(err, ErrUnknownStatus) {
			return nil, fmt.Errorf("decode push response: %w", err)
		}
		return nil, fmt.Errorf("%w: decode push response: %w", ErrUnexpectedResponse, err)
	}

	return outcomes, nil
}
