package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/plate-checker/go/internal/core/domain/plate"
	"github.com/avatarctic/plate-checker/go/internal/core/ports"
	"github.com/avatarctic/plate-checker/go/internal/infrastructure/upstream"
)

func newRegistryServer(t *testing.T, check http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/check", check)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, timeout time.Duration) *upstream.Client {
	return upstream.NewClient(&upstream.RegistryConfig{
		SessionURL: srv.URL + "/session",
		CheckURL:   srv.URL + "/check",
		Timeout:    timeout,
		UserAgent:  "plate-checker-test",
	}, srv.Client(), logrus.New())
}

func TestClient_SessionThenCheck(t *testing.T) {
	srv := newRegistryServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if ck, err := r.Cookie("JSESSIONID"); assert.NoError(t, err) {
			assert.Equal(t, "abc123", ck.Value)
		}
		assert.Equal(t, "plate-checker-test", r.UserAgent())
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "A", r.PostForm.Get("character1"))
		assert.Equal(t, "B", r.PostForm.Get("character2"))
		assert.Equal(t, "1", r.PostForm.Get("character3"))
		assert.Equal(t, "", r.PostForm.Get("character4"))
		_, present := r.PostForm["character14"]
		assert.True(t, present, "unset positions are still sent")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"available": true}`))
	})
	c := newTestClient(srv, time.Second)
	ctx := context.Background()

	session, err := c.StartSession(ctx)
	require.NoError(t, err)
	require.Len(t, session.Cookies, 1)

	resp, err := c.Check(ctx, session, plate.Key("AB1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, map[string]any{"available": true}, resp.Payload)
	assert.Equal(t, plate.StatusAvailable, plate.Interpret(resp.Payload, resp.Status).Status)
}

func TestClient_ServerErrorIsNotTransportError(t *testing.T) {
	srv := newRegistryServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	c := newTestClient(srv, time.Second)
	resp, err := c.Check(context.Background(), nil, plate.Key("AB1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.Status)
	assert.Equal(t, "<html>bad gateway</html>", resp.Payload)
}

func TestClient_TimeoutIsAnError(t *testing.T) {
	srv := newRegistryServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c := newTestClient(srv, 50*time.Millisecond)
	_, err := c.Check(context.Background(), nil, plate.Key("AB1"))
	require.Error(t, err)
}

func TestClient_SessionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := newTestClient(srv, time.Second)
	_, err := c.StartSession(context.Background())
	var statusErr *ports.SessionStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Status)
}

func TestClient_SessionTransportFailureHasNoStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(srv, time.Second)
	srv.Close()
	_, err := c.StartSession(context.Background())
	require.Error(t, err)
	var statusErr *ports.SessionStatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestEncodeCheckForm(t *testing.T) {
	form := upstream.EncodeCheckForm(plate.Key("A/B 12"))
	assert.Equal(t, "A/B 12", form.Get("plate"))
	assert.Equal(t, "6", form.Get("plateLength"))
	assert.Equal(t, "/", form.Get("character2"))
	assert.Equal(t, " ", form.Get("character4"))
	assert.Equal(t, "", form.Get("character7"))
	assert.Equal(t, "personalised", form.Get("plateType"))
}

func TestDecodePayload(t *testing.T) {
	assert.Nil(t, upstream.DecodePayload("application/json", []byte("  ")))
	assert.Equal(t, "can be requested", upstream.DecodePayload("text/plain", []byte("can be requested")))
	assert.Equal(t, map[string]any{"code": "TAKEN"}, upstream.DecodePayload("text/html", []byte(`{"code":"TAKEN"}`)))
	assert.Equal(t, "not available", upstream.DecodePayload("application/json", []byte(`"not available"`)))
	assert.Equal(t, "{broken", upstream.DecodePayload("application/json", []byte("{broken")))
	assert.Nil(t, upstream.DecodePayload("application/json", []byte("null")))
}
