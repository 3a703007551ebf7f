package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/models"
)

type httpRemoteClient struct {
	client *resty.Client

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPRemoteClient constructs an HTTP/REST implementation of [RemoteClient].
// It normalises and validates the base URL from cfg.BaseURL and configures the
// underlying client with the resolved base URL and request timeout.
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a valid URL.
func NewHTTPRemoteClient(cfg config.Remote, log *logger.Logger) (RemoteClient, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote base url: %w", err)
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	return &httpRemoteClient{client: cli, logger: log}, nil
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

// SetToken implements [RemoteClient]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent requests.
func (h *httpRemoteClient) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [RemoteClient]. It returns the bearer token currently held
// by the client, or an empty string if none has been set.
func (h *httpRemoteClient) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// CreateAccount implements [RemoteClient]. It POSTs the signup data to
// POST /api/accounts. On success the bearer token is extracted from the
// Authorization response header and stored via SetToken. A 409 response maps
// to a result with AlreadyExists set plus a wrapped [ErrAlreadyExists].
func (h *httpRemoteClient) CreateAccount(ctx context.Context, req models.AccountCreationRequest) (models.AccountResult, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/accounts")
	if err != nil {
		return models.AccountResult{}, fmt.Errorf("create account request: %w: %v", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return models.AccountResult{AlreadyExists: true}, err
		}
		return models.AccountResult{}, err
	}

	var result models.AccountResult
	if len(resp.Body()) > 0 {
		if err = json.Unmarshal(resp.Body(), &result); err != nil {
			return models.AccountResult{}, fmt.Errorf("decode create account response: %w", err)
		}
	}

	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.AccountResult{}, fmt.Errorf("create account parse bearer token: %w", err)
	}
	if result.UserID == 0 {
		if result.UserID, err = parseUserIDFromJWT(token); err != nil {
			return models.AccountResult{}, fmt.Errorf("create account parse user id: %w", err)
		}
	}

	h.SetToken(token)
	result.Token = token
	return result, nil
}

// BatchUpsertRecords implements [RemoteClient]. It POSTs records to
// POST /api/records/batch and decodes the per-record outcome. A 404 or 405
// response means the backend predates the batch endpoint and maps to
// [ErrBatchUnsupported].
func (h *httpRemoteClient) BatchUpsertRecords(ctx context.Context, records []models.AnalysisRecord) (models.BatchResult, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(records).
		Post("/api/records/batch")
	if err != nil {
		return models.BatchResult{}, fmt.Errorf("batch upsert request: %w: %v", ErrTransport, err)
	}
	if resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusMethodNotAllowed {
		return models.BatchResult{}, fmt.Errorf("%w: http %d", ErrBatchUnsupported, resp.StatusCode())
	}
	if err = mapHTTPError(resp); err != nil {
		return models.BatchResult{}, err
	}

	var result models.BatchResult
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return models.BatchResult{}, fmt.Errorf("decode batch upsert response: %w", err)
	}

	return result, nil
}

// UpsertRecord implements [RemoteClient]. It PUTs one record to
// PUT /api/records/{record_id}.
func (h *httpRemoteClient) UpsertRecord(ctx context.Context, record models.AnalysisRecord) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		Put("/api/records/" + url.PathEscape(record.RecordID))
	if err != nil {
		return fmt.Errorf("upsert record request: %w: %v", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

// UploadBlob implements [RemoteClient]. It streams the referenced image file
// as multipart form data to POST /api/blobs and returns the URL the backend
// assigned to the stored blob.
func (h *httpRemoteClient) UploadBlob(ctx context.Context, payload models.BlobUploadPayload) (string, error) {
	resp, err := h.authedRequest(ctx).
		SetFile("file", payload.FilePath).
		SetFormData(map[string]string{
			"record_id":    payload.RecordID,
			"slot":         payload.Slot,
			"content_type": payload.ContentType,
		}).
		Post("/api/blobs")
	if err != nil {
		return "", fmt.Errorf("upload blob request: %w: %v", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var result struct {
		URL string `json:"url"`
	}
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("decode upload blob response: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("upload blob response carries no url")
	}

	return result.URL, nil
}

// FetchSince implements [RemoteClient]. It GETs /api/records with the cursor
// query parameter and decodes one page of the change feed.
func (h *httpRemoteClient) FetchSince(ctx context.Context, cursor string) (models.FetchResult, error) {
	req := h.authedRequest(ctx)
	if cursor != "" {
		req.SetQueryParam("cursor", cursor)
	}

	resp, err := req.Get("/api/records")
	if err != nil {
		return models.FetchResult{}, fmt.Errorf("fetch records request: %w: %v", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.FetchResult{}, err
	}

	var result models.FetchResult
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return models.FetchResult{}, fmt.Errorf("decode fetch records response: %w", err)
	}

	return result, nil
}

// GetAssetVersion implements [RemoteClient]. It GETs /model_info and decodes
// the canonical asset descriptor.
func (h *httpRemoteClient) GetAssetVersion(ctx context.Context) (models.AssetInfo, error) {
	resp, err := h.authedRequest(ctx).Get("/model_info")
	if err != nil {
		return models.AssetInfo{}, fmt.Errorf("asset version request: %w: %v", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AssetInfo{}, err
	}

	var info models.AssetInfo
	if err = json.Unmarshal(resp.Body(), &info); err != nil {
		return models.AssetInfo{}, fmt.Errorf("decode asset version response: %w", err)
	}

	return info, nil
}

// DownloadAsset implements [RemoteClient]. It streams the asset body into
// dest. An empty info.DownloadURL falls back to GET /get_global_model on the
// configured base URL.
func (h *httpRemoteClient) DownloadAsset(ctx context.Context, info models.AssetInfo, dest string) error {
	target := info.DownloadURL
	if target == "" {
		target = "/get_global_model"
	}

	resp, err := h.authedRequest(ctx).
		SetOutput(dest).
		Get(target)
	if err != nil {
		return fmt.Errorf("download asset request: %w: %v", ErrTransport, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: download asset: http %d", ErrTransport, resp.StatusCode())
	}

	return nil
}

// Ping implements [RemoteClient]. It probes GET /health.
func (h *httpRemoteClient) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("health request: %w: %v", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteClient) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func parseBearerToken(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

func parseUserIDFromJWT(tokenString string) (int64, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, err
	}
	return id, nil
}
