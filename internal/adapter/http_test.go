// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/nota-sync/internal/config"
	"github.com/MKhiriev/nota-sync/internal/logger"
)

func newTestRemote(t *testing.T, serverURL string) *httpRemoteStore {
	t.Helper()

	cfg := config.Remote{
		BaseURL:        serverURL,
		WSBaseURL:      "ws" + strings.TrimPrefix(serverURL, "http"),
		RequestTimeout: 5 * time.Second,
	}
	r, err := NewHTTPRemoteStore(cfg, logger.Nop())
	require.NoError(t, err)
	return r.(*httpRemoteStore)
}

func testJWT(t *testing.T, claims map[string]any) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

// ── SignUp / SignIn ─────────────────────────────────────────────────────────

func TestSignUp_Success(t *testing.T) {
	token := testJWT(t, map[string]any{"sub": "uid-1", "email": "alice@example.com"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/register", r.URL.Path)

		var creds credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice@example.com", creds.Email)

		w.Header().Set("Authorization", "Bearer "+token)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	session, err := r.SignUp(context.Background(), "alice@example.com", "secret123")

	require.NoError(t, err)
	assert.Equal(t, "uid-1", session.UserID)
	assert.Equal(t, "alice@example.com", session.Email)
	assert.Equal(t, token, r.Token())
}

func TestSignUp_EmailExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"EMAIL_EXISTS"}}`))
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	_, err := r.SignUp(context.Background(), "alice@example.com", "secret123")

	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSignIn_InvalidPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"INVALID_PASSWORD"}}`))
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	_, err := r.SignIn(context.Background(), "alice@example.com", "wrong")

	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestSignIn_TooManyAttemptsWithSuffix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled."}}`))
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	_, err := r.SignIn(context.Background(), "alice@example.com", "wrong")

	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestSignIn_UnrecognisedErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	_, err := r.SignIn(context.Background(), "alice@example.com", "secret123")

	assert.ErrorIs(t, err, ErrInternalServerError)
}

// ── Collections ─────────────────────────────────────────────────────────────

func TestPushCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/users/uid-1/notes", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"n1"}]`, string(body))

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	r.SetToken("tok")

	err := r.PushCollection(context.Background(), "uid-1", "notes", json.RawMessage(`[{"id":"n1"}]`))
	assert.NoError(t, err)
}

func TestPullCollection_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/users/uid-1/todos", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"t1"}]`))
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	r.SetToken("tok")

	records, err := r.PullCollection(context.Background(), "uid-1", "todos")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"t1"}]`, string(records))
}

func TestPullCollection_NotFoundYieldsEmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	r.SetToken("tok")

	records, err := r.PullCollection(context.Background(), "uid-1", "folders")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(records))
}

func TestPutRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/users/uid-1/notes/n1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	r.SetToken("tok")

	err := r.PutRecord(context.Background(), "uid-1", "notes", "n1", json.RawMessage(`{"id":"n1"}`))
	assert.NoError(t, err)
}

func TestDeleteRecord_NotFoundIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/users/uid-1/notes/gone", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	r.SetToken("tok")

	err := r.DeleteRecord(context.Background(), "uid-1", "notes", "gone")
	assert.NoError(t, err)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	assert.NoError(t, r.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	r := newTestRemote(t, srv.URL)
	assert.Error(t, r.Ping(context.Background()))
}

// ── Watch ───────────────────────────────────────────────────────────────────

func TestWatch_DeliversUpdatesUntilCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/uid-1/notes/watch", r.URL.Path)

		conn, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)
		defer conn.Close(websocket.StatusNormalClosure, "")

		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, conn.Write(writeCtx, websocket.MessageText, []byte(`[{"id":"n1"}]`)))

		// hold the connection open until the client goes away
		_, _, _ = conn.Read(writeCtx)
	}))
	defer srv.Close()

	r := newTestRemote(t, srv.URL)
	r.SetToken("tok")

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan json.RawMessage, 1)

	done := make(chan error, 1)
	go func() {
		done <- r.Watch(ctx, "uid-1", "notes", func(records json.RawMessage) {
			received <- records
		})
	}()

	select {
	case records := <-received:
		assert.JSONEq(t, `[{"id":"n1"}]`, string(records))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch update")
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch to stop")
	}
}

// ── Session claims ──────────────────────────────────────────────────────────

func TestSessionFromToken(t *testing.T) {
	token := testJWT(t, map[string]any{"sub": "uid-9", "email": "bob@example.com"})

	session, err := SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-9", session.UserID)
	assert.Equal(t, "bob@example.com", session.Email)
	assert.Equal(t, token, session.IDToken)
}

func TestSessionFromToken_MissingSubject(t *testing.T) {
	token := testJWT(t, map[string]any{"email": "bob@example.com"})

	_, err := SessionFromToken(token)
	assert.Error(t, err)
}
