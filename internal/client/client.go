// Package client is the typed REST client for the learning platform
// backend. All state machines talk to the server through it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"studypath/internal/config"
	"studypath/internal/domain"
	"studypath/internal/dto"
	"studypath/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TokenProvider supplies the current session tokens and accepts refreshed
// ones. Implemented by the auth manager.
type TokenProvider interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
}

// Client is a bearer-token REST client. A 401 triggers at most one
// concurrent token refresh; requests that 401 while a refresh is in
// flight queue behind it and retry once with the new token.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	tokens        TokenProvider
	onAuthExpired func()
	refreshGroup  singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAuthExpiredHook registers the callback invoked when a token refresh
// fails, which forces a local logout.
func WithAuthExpiredHook(hook func()) Option {
	return func(c *Client) { c.onAuthExpired = hook }
}

// New creates a Client for the configured API.
func New(cfg config.APIConfig, tokens TokenProvider, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request. authed requests carry the bearer token and get
// the single refresh-and-retry on 401.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) (dto.PageMeta, error) {
	status, raw, err := c.roundTrip(ctx, method, path, query, body, authed)
	if err != nil {
		return dto.PageMeta{}, err
	}

	if status == http.StatusUnauthorized && authed {
		if err := c.refresh(ctx); err != nil {
			if c.onAuthExpired != nil {
				c.onAuthExpired()
			}
			return dto.PageMeta{}, domain.NewUnauthorizedError("session expired")
		}
		status, raw, err = c.roundTrip(ctx, method, path, query, body, authed)
		if err != nil {
			return dto.PageMeta{}, err
		}
	}

	if status >= 400 {
		return dto.PageMeta{}, apiError(status, raw)
	}
	if out == nil {
		return dto.PageMeta{}, nil
	}
	return decodeBody(raw, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any, authed bool) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, domain.NewInternalError("failed to encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, domain.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.bearerToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, domain.NewNetworkError(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, domain.NewNetworkError(fmt.Sprintf("%s %s: failed to read response", method, path), err)
	}
	return resp.StatusCode, raw, nil
}

// bearerToken returns the access token, refreshing it first when its
// claims say it has already expired. An unparsable token is sent as-is;
// the server's 401 drives the fallback refresh path.
func (c *Client) bearerToken(ctx context.Context) string {
	token := c.tokens.AccessToken()
	if token == "" {
		return ""
	}
	if tokenExpired(token) && c.tokens.RefreshToken() != "" {
		if err := c.refresh(ctx); err != nil {
			logger.Get().Warn("Pre-emptive token refresh failed", zap.Error(err))
			return token
		}
		return c.tokens.AccessToken()
	}
	return token
}

func tokenExpired(tokenString string) bool {
	claims := &dto.AuthClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}

// refresh performs the token-refresh round trip. singleflight guarantees
// at most one refresh is in flight; concurrent callers share its result.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		refreshToken := c.tokens.RefreshToken()
		if refreshToken == "" {
			return nil, domain.NewUnauthorizedError("no refresh token available")
		}

		var resp dto.TokenResponse
		if _, err := c.do(ctx, http.MethodPost, "/auth/refresh", nil,
			dto.RefreshTokenRequest{RefreshToken: refreshToken}, &resp, false); err != nil {
			return nil, err
		}
		if err := c.tokens.SetTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
			return nil, err
		}
		logger.Get().Info("Session tokens refreshed")
		return nil, nil
	})
	return err
}

// decodeBody unwraps the backend's response envelopes. Both the
// `{success, data, message}` and `{data[], meta}` shapes are handled;
// unwrapped payloads decode directly.
func decodeBody(raw []byte, out any) (dto.PageMeta, error) {
	if len(raw) == 0 {
		return dto.PageMeta{}, nil
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Meta    *dto.PageMeta   `json:"meta"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return dto.PageMeta{}, domain.NewInternalError("failed to decode response data", err)
		}
		if envelope.Meta != nil {
			return *envelope.Meta, nil
		}
		return dto.PageMeta{}, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return dto.PageMeta{}, domain.NewInternalError("failed to decode response", err)
	}
	return dto.PageMeta{}, nil
}

// apiError converts a non-2xx response into a DomainError.
func apiError(status int, raw []byte) error {
	message := http.StatusText(status)
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			message = body.Message
		} else if body.Error != "" {
			message = body.Error
		}
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.NewUnauthorizedError(message)
	case http.StatusNotFound:
		return domain.NewNotFoundError(message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.NewInvalidInputError(message)
	default:
		return domain.NewError(domain.ErrInternal, message, fmt.Errorf("status %d", status))
	}
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}
