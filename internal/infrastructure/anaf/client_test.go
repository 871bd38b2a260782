package anaf

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

type uploadCounter struct {
	mu      sync.Mutex
	results []string
}

func (u *uploadCounter) ObserveUpload(result string, _ time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.results = append(u.results, result)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.EFacturaConfig{
		BaseURL:    srv.URL,
		OAuthToken: "token-123",
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
	}
	return NewClient(cfg, zap.NewNop(), opts...)
}

func TestBackoff(t *testing.T) {
	base := 2 * time.Second
	assert.Equal(t, 2*time.Second, Backoff(base, 1))
	assert.Equal(t, 4*time.Second, Backoff(base, 2))
	assert.Equal(t, 8*time.Second, Backoff(base, 3))
	assert.Equal(t, 2*time.Second, Backoff(base, 0))
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient(config.EFacturaConfig{Environment: "prod"}, nil)
	assert.Equal(t, "https://api.anaf.ro/prod/FCTEL/rest", c.baseURL)
	assert.Equal(t, defaultMaxRetries, c.maxRetries)
	assert.Equal(t, defaultBaseDelay, c.baseDelay)

	c = NewClient(config.EFacturaConfig{}, nil)
	assert.Equal(t, "https://api.anaf.ro/test/FCTEL/rest", c.baseURL)
}

func TestClient_UploadJSON(t *testing.T) {
	var gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, "UBL", r.URL.Query().Get("standard"))
		assert.Equal(t, "18547290", r.URL.Query().Get("cif"))
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"dateResponse":"202410181200","ExecutionStatus":0,"index_incarcare":"5001234"}`))
	})

	res, err := c.Upload(context.Background(), "18547290", []byte("<Invoice/>"))
	require.NoError(t, err)
	assert.Equal(t, "5001234", res.UploadIndex)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "<Invoice/>", gotBody)
}

func TestClient_UploadXMLHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<header xmlns="mfp:anaf:dgti:spv:respUploadFisier:v1" dateResponse="202410181200" ExecutionStatus="0" index_incarcare="3828"/>`))
	})

	res, err := c.Upload(context.Background(), "18547290", []byte("<Invoice/>"))
	require.NoError(t, err)
	assert.Equal(t, "3828", res.UploadIndex)
}

func TestClient_UploadRejectedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	observer := &uploadCounter{}
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`<header ExecutionStatus="1"><Errors errorMessage="Fisierul transmis nu este valid"/></header>`))
	}, WithObserver(observer))

	_, err := c.Upload(context.Background(), "18547290", []byte("<Invoice/>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUploadRejected))
	assert.Contains(t, err.Error(), "Fisierul transmis nu este valid")
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{UploadResultRejected}, observer.results)
}

func TestClient_UploadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	sleeps := &recordedSleeps{}
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ExecutionStatus":0,"index_incarcare":"42"}`))
	}, WithSleep(sleeps.sleep))

	res, err := c.Upload(context.Background(), "18547290", []byte("<Invoice/>"))
	require.NoError(t, err)
	assert.Equal(t, "42", res.UploadIndex)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeps.delays)
}

func TestClient_UploadGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	sleeps := &recordedSleeps{}
	observer := &uploadCounter{}
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithSleep(sleeps.sleep), WithObserver(observer))

	_, err := c.Upload(context.Background(), "18547290", []byte("<Invoice/>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, sleeps.delays, 2)
	assert.Equal(t, []string{UploadResultError}, observer.results)
}

func TestClient_UploadClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid token"))
	})

	_, err := c.Upload(context.Background(), "18547290", []byte("<Invoice/>"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.False(t, apiErr.Temporary())
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Status(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantState  string
		wantDownID string
		wantMsg    string
	}{
		{
			name:       "json ok",
			body:       `{"stare":"ok","id_descarcare":"9001"}`,
			wantState:  "ok",
			wantDownID: "9001",
		},
		{
			name:      "xml in progress",
			body:      `<header xmlns="mfp:anaf:dgti:efactura:stareMesajFactura:v1" stare="in prelucrare"/>`,
			wantState: "in prelucrare",
		},
		{
			name:       "json nok with errors",
			body:       `{"stare":"nok","id_descarcare":"9002","Errors":[{"errorMessage":"BR-RO-010"}]}`,
			wantState:  "nok",
			wantDownID: "9002",
			wantMsg:    "BR-RO-010",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/stareMesaj", r.URL.Path)
				assert.Equal(t, "5001234", r.URL.Query().Get("id_incarcare"))
				_, _ = w.Write([]byte(tt.body))
			})

			res, err := c.Status(context.Background(), "5001234")
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, res.State)
			assert.Equal(t, tt.wantDownID, res.DownloadID)
			assert.Equal(t, tt.wantMsg, res.Message)
		})
	}
}

func TestClient_StatusErrorsOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Errors":[{"errorMessage":"Nu aveti dreptul de interogare"}]}`))
	})

	_, err := c.Status(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nu aveti dreptul")
}

func TestClient_CanceledContextStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		cancel()
		w.WriteHeader(http.StatusBadGateway)
	}, WithSleep(sleepContext))

	_, err := c.Upload(ctx, "18547290", []byte("<Invoice/>"))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
