package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/nota-sync/internal/config"
	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/models"
)

type httpRemoteStore struct {
	client    *resty.Client
	wsBaseURL string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewHTTPRemoteStore constructs an HTTP/REST implementation of
// [RemoteStore]. It normalises and validates the base URL from cfg.BaseURL
// and configures the underlying HTTP client with the resolved base URL and
// request timeout.
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a valid
// URL.
func NewHTTPRemoteStore(cfg config.Remote, log *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote base url: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	return &httpRemoteStore{
		client:    client,
		wsBaseURL: strings.TrimRight(cfg.WSBaseURL, "/"),
		logger:    log,
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

// SetToken implements [RemoteStore]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent authenticated
// requests.
func (h *httpRemoteStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [RemoteStore]. It returns the bearer token currently
// held by the adapter, or an empty string if none has been set.
func (h *httpRemoteStore) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// SignUp implements [RemoteStore]. It POSTs the credentials to
// POST /api/auth/register. On success the bearer token is extracted from
// the Authorization response header, stored via SetToken, and the session
// identity is read from the token claims.
func (h *httpRemoteStore) SignUp(ctx context.Context, email, password string) (models.Session, error) {
	return h.authenticate(ctx, "/api/auth/register", email, password)
}

// SignIn implements [RemoteStore]. It POSTs the credentials to
// POST /api/auth/login. On success the bearer token is extracted from the
// Authorization response header, stored via SetToken, and the session
// identity is read from the token claims.
func (h *httpRemoteStore) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	return h.authenticate(ctx, "/api/auth/login", email, password)
}

func (h *httpRemoteStore) authenticate(ctx context.Context, path, email, password string) (models.Session, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(credentials{Email: email, Password: password}).
		Post(path)
	if err != nil {
		return models.Session{}, fmt.Errorf("auth request: %w", err)
	}
	if err = mapAuthError(resp); err != nil {
		return models.Session{}, err
	}

	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Session{}, fmt.Errorf("auth parse bearer token: %w", err)
	}

	session, err := SessionFromToken(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("auth parse session claims: %w", err)
	}
	if session.Email == "" {
		session.Email = email
	}

	h.SetToken(token)
	return session, nil
}

// PushCollection implements [RemoteStore]. It PUTs the whole JSON array to
// PUT /api/users/{uid}/{collection}, overwriting the remote contents.
// Requires a valid bearer token.
func (h *httpRemoteStore) PushCollection(ctx context.Context, uid, collection string, records json.RawMessage) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(records).
		Put(collectionPath(uid, collection))
	if err != nil {
		return fmt.Errorf("push %s request: %w", collection, err)
	}

	return mapHTTPError(resp)
}

// PullCollection implements [RemoteStore]. It GETs the whole collection
// from GET /api/users/{uid}/{collection}. A 404 maps to an empty array:
// a user who has never pushed simply has nothing stored remotely.
// Requires a valid bearer token.
func (h *httpRemoteStore) PullCollection(ctx context.Context, uid, collection string) (json.RawMessage, error) {
	resp, err := h.authedRequest(ctx).Get(collectionPath(uid, collection))
	if err != nil {
		return nil, fmt.Errorf("pull %s request: %w", collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return json.RawMessage("[]"), nil
		}
		return nil, err
	}

	records := json.RawMessage(resp.Body())
	if len(records) == 0 {
		records = json.RawMessage("[]")
	}
	return records, nil
}

// PutRecord implements [RemoteStore]. It PUTs one record to
// PUT /api/users/{uid}/{collection}/{id}. Requires a valid bearer token.
func (h *httpRemoteStore) PutRecord(ctx context.Context, uid, collection, id string, record json.RawMessage) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		Put(collectionPath(uid, collection) + "/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("put %s record request: %w", collection, err)
	}

	return mapHTTPError(resp)
}

// DeleteRecord implements [RemoteStore]. It DELETEs one record from
// DELETE /api/users/{uid}/{collection}/{id}. A 404 is treated as success:
// the record is gone either way. Requires a valid bearer token.
func (h *httpRemoteStore) DeleteRecord(ctx context.Context, uid, collection, id string) error {
	resp, err := h.authedRequest(ctx).
		Delete(collectionPath(uid, collection) + "/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("delete %s record request: %w", collection, err)
	}

	if err = mapHTTPError(resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// Ping implements [RemoteStore]. It GETs the unauthenticated health
// endpoint; any response at all means the remote is reachable.
func (h *httpRemoteStore) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func collectionPath(uid, collection string) string {
	return "/api/users/" + url.PathEscape(uid) + "/" + url.PathEscape(collection)
}

func parseBearerToken(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// SessionFromToken extracts the session identity from an unverified JWT.
// Verification is the remote's job; the client only needs the claims to
// address its per-user collections.
func SessionFromToken(tokenString string) (models.Session, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return models.Session{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Session{}, errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return models.Session{}, err
	}
	if sub == "" {
		return models.Session{}, errors.New("token has no subject")
	}

	session := models.Session{UserID: sub, IDToken: tokenString}
	if email, ok := claims["email"].(string); ok {
		session.Email = email
	}
	return session, nil
}

// SessionExpired reports whether the token's exp claim has passed. An
// unreadable token counts as expired; a token without an exp claim does
// not — the remote rejects it if it is in fact stale.
func SessionExpired(tokenString string, now time.Time) bool {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return true
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}
