package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"studypath/internal/config"
	"studypath/internal/domain"
	"studypath/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokens is an in-memory TokenProvider.
type fakeTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	sets    int
}

func (f *fakeTokens) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeTokens) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeTokens) SetTokens(_ context.Context, accessToken, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = accessToken
	if refreshToken != "" {
		f.refresh = refreshToken
	}
	f.sets++
	return nil
}

func newTestClient(serverURL string, tokens TokenProvider, opts ...Option) *Client {
	cfg := config.APIConfig{BaseURL: serverURL, Timeout: 5 * time.Second}
	return New(cfg, tokens, opts...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var req dto.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "student@example.com", req.Email)

		writeJSON(w, http.StatusOK, dto.Envelope{
			Success: true,
			Data: mustMarshal(t, dto.AuthResponse{
				AccessToken:  "access",
				RefreshToken: "refresh",
				User:         dto.UserPayload{ID: "user1", Name: "Test", Email: req.Email},
			}),
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeTokens{})
	user, err := c.Login(context.Background(), "student@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "user1", user.ID)
	assert.Equal(t, "access", user.AccessToken)
	// Provider defaults to email when the backend omits it.
	assert.Equal(t, domain.ProviderEmail, user.Provider)
}

func TestClient_AuthedRequestCarriesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, dto.UserPayload{ID: "user1"})
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeTokens{access: "token123"})
	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user1", me.ID)
}

func TestClient_RefreshAndRetryOn401(t *testing.T) {
	var meCalls, refreshCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			atomic.AddInt32(&meCalls, 1)
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Message: "token expired"})
				return
			}
			writeJSON(w, http.StatusOK, dto.UserPayload{ID: "user1"})
		case "/auth/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			var req dto.RefreshTokenRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "refresh1", req.RefreshToken)
			writeJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: "fresh", RefreshToken: "refresh2"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	tokens := &fakeTokens{access: "stale", refresh: "refresh1"}
	c := newTestClient(server.URL, tokens)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user1", me.ID)
	assert.EqualValues(t, 2, atomic.LoadInt32(&meCalls), "request retried exactly once")
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
	assert.Equal(t, "fresh", tokens.AccessToken())
	assert.Equal(t, "refresh2", tokens.RefreshToken())
}

func TestClient_RefreshFailureFiresAuthExpiredHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Message: "token expired"})
		case "/auth/refresh":
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Message: "refresh token revoked"})
		}
	}))
	defer server.Close()

	expired := false
	tokens := &fakeTokens{access: "stale", refresh: "revoked"}
	c := newTestClient(server.URL, tokens, WithAuthExpiredHook(func() { expired = true }))

	_, err := c.Me(context.Background())
	assert.True(t, domain.IsCode(err, domain.ErrUnauthorized))
	assert.True(t, expired, "auth expired hook must fire when the refresh fails")
}

func TestClient_PreemptiveRefreshOfExpiredAccessToken(t *testing.T) {
	expiredAccess := testJWT(t, time.Now().Add(-time.Minute))

	var refreshCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			writeJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: "fresh", RefreshToken: ""})
		case "/auth/me":
			assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, dto.UserPayload{ID: "user1"})
		}
	}))
	defer server.Close()

	tokens := &fakeTokens{access: expiredAccess, refresh: "refresh1"}
	c := newTestClient(server.URL, tokens)

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
	// An empty refresh token in the response keeps the old one.
	assert.Equal(t, "refresh1", tokens.RefreshToken())
}

func TestClient_Quizzes_ListEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quizzes", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))

		writeJSON(w, http.StatusOK, map[string]any{
			"data": []dto.QuizResponse{
				{ID: "quiz1", Title: "Fractions", Type: "PRACTICE", TimeLimit: 10, QuestionCount: 5},
			},
			"meta": dto.PageMeta{Page: 2, Limit: 20, Total: 41, TotalPages: 3},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeTokens{access: "token"})
	quizzes, meta, err := c.Quizzes(context.Background(), 2, 20)
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	assert.Equal(t, "quiz1", quizzes[0].ID)
	assert.Equal(t, domain.QuizPractice, quizzes[0].Type)
	assert.Equal(t, 10, quizzes[0].TimeLimit)
	assert.Equal(t, dto.PageMeta{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, meta)
}

func TestClient_QuizzesBySubject_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "math", r.URL.Query().Get("subjectId"))
		writeJSON(w, http.StatusOK, map[string]any{"data": []dto.QuizResponse{}})
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeTokens{access: "token"})
	_, _, err := c.QuizzesBySubject(context.Background(), "math", 1, 20)
	require.NoError(t, err)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     dto.ErrorResponse
		wantCode domain.ErrorCode
		wantMsg  string
	}{
		{"not found", http.StatusNotFound, dto.ErrorResponse{Message: "quiz not found"}, domain.ErrNotFound, "quiz not found"},
		{"bad request", http.StatusBadRequest, dto.ErrorResponse{Error: "invalid grade"}, domain.ErrInvalidInput, "invalid grade"},
		{"unprocessable", http.StatusUnprocessableEntity, dto.ErrorResponse{}, domain.ErrInvalidInput, "Unprocessable Entity"},
		{"forbidden", http.StatusForbidden, dto.ErrorResponse{}, domain.ErrUnauthorized, "Forbidden"},
		{"server error", http.StatusInternalServerError, dto.ErrorResponse{}, domain.ErrInternal, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			defer server.Close()

			c := newTestClient(server.URL, &fakeTokens{})
			_, err := c.Quiz(context.Background(), "quiz1")
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, tt.wantCode), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // connection refused from here on

	c := newTestClient(server.URL, &fakeTokens{})
	_, err := c.Subjects(context.Background())
	assert.True(t, domain.IsCode(err, domain.ErrNetwork), "got %v", err)
}

func TestClient_SubmitAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quiz-attempts/att1/submit", r.URL.Path)

		var req dto.SubmitAttemptRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Answers, 1)
		assert.Equal(t, "q1", req.Answers[0].QuestionID)

		writeJSON(w, http.StatusOK, dto.Envelope{
			Success: true,
			Data: mustMarshal(t, dto.AttemptResponse{
				ID: "att1", QuizID: "quiz1", Score: 80, CorrectAnswers: 4, Status: "COMPLETED",
			}),
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL, &fakeTokens{access: "token"})
	attempt, err := c.SubmitAttempt(context.Background(), "att1", dto.SubmitAttemptRequest{
		Answers:   []dto.AnswerPayload{{QuestionID: "q1", SelectedOption: "a"}},
		TimeSpent: 95,
	})
	require.NoError(t, err)
	assert.Equal(t, 80, attempt.Score)
	assert.Equal(t, domain.AttemptCompleted, attempt.Status)
}

func TestDecodeBody_Shapes(t *testing.T) {
	var payload dto.UserPayload

	// Enveloped object.
	_, err := decodeBody([]byte(`{"success":true,"data":{"id":"user1"}}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, "user1", payload.ID)

	// Raw object.
	payload = dto.UserPayload{}
	_, err = decodeBody([]byte(`{"id":"user2"}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, "user2", payload.ID)

	// List with meta.
	var list []dto.QuizResponse
	meta, err := decodeBody([]byte(`{"data":[{"id":"q1"}],"meta":{"page":1,"limit":20,"total":1,"totalPages":1}}`), &list)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, meta.TotalPages)

	// Empty body.
	_, err = decodeBody(nil, &payload)
	assert.NoError(t, err)
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func testJWT(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, dto.AuthClaims{
		UserID:    "user1",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
