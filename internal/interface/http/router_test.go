package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
	"github.com/caustin-usgs/lcmap-gaia/internal/domain/landcover"
	"github.com/caustin-usgs/lcmap-gaia/internal/infra/config"
	apperrors "github.com/caustin-usgs/lcmap-gaia/pkg/errors"
)

func TestRouter_GenerateSuccess(t *testing.T) {
	runID := uuid.New()
	svc := &stubProducts{
		generateFn: func(ctx context.Context, req chip.Request) (chip.Result, error) {
			require.Equal(t, chip.Request{Cx: -585, Cy: 2805, Years: []int{2001}}, req)
			return chip.Result{RunID: runID, Cx: req.Cx, Cy: req.Cy, Outputs: []chip.Output{
				{Date: "2001-07-01", Key: "annual/-585/2805/2001-07-01.json", Records: 10000},
			}}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/products", `{"cx":-585,"cy":2805,"years":[2001]}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got chip.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, runID, got.RunID)
	require.Len(t, got.Outputs, 1)
}

func TestRouter_GenerateInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/v1/products", `{"cx":"left"}`, newRouterUnderTest(t, &stubProducts{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_GenerateDataGenerationError(t *testing.T) {
	svc := &stubProducts{
		generateFn: func(context.Context, chip.Request) (chip.Result, error) {
			return chip.Result{}, apperrors.WrapWith(landcover.CodeDataGeneration, "fetch chip inputs failed",
				errors.New("segments request error: status=500"),
				map[string]any{"operation": "fetch", "cx": 1, "cy": 2})
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/products", `{"cx":1,"cy":2,"dates":["2001-07-01"]}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "data_generation_error", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "status=500")
	details, ok := errBody["error"]["details"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "fetch", details["operation"])
}

func TestRouter_GenerateInvalidInput(t *testing.T) {
	svc := &stubProducts{
		generateFn: func(context.Context, chip.Request) (chip.Result, error) {
			return chip.Result{}, apperrors.Wrap("invalid_input", "at least one date or year is required", nil)
		},
	}
	recorder := performRequest(http.MethodPost, "/api/v1/products", `{"cx":1,"cy":2}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_GetRun(t *testing.T) {
	runID := uuid.New()
	svc := &stubProducts{
		describeFn: func(_ context.Context, id uuid.UUID) (chip.Run, error) {
			if id != runID {
				return chip.Run{}, apperrors.Wrap("not_found", "run not found", nil)
			}
			return chip.Run{ID: id, Status: chip.RunStatusComplete}, nil
		},
	}
	server := newRouterUnderTest(t, svc)

	recorder := performRequest(http.MethodGet, "/api/v1/runs/"+runID.String(), "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	var run chip.Run
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &run))
	require.Equal(t, chip.RunStatusComplete, run.Status)

	recorder = performRequest(http.MethodGet, "/api/v1/runs/"+uuid.NewString(), "", server)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = performRequest(http.MethodGet, "/api/v1/runs/not-a-uuid", "", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_GetProduct(t *testing.T) {
	svc := &stubProducts{
		productFn: func(_ context.Context, cx, cy int64, date string) ([]landcover.Product, error) {
			require.Equal(t, int64(-585), cx)
			require.Equal(t, int64(2805), cy)
			return []landcover.Product{{Px: 1, Py: 2, Date: date, LCPri: 4}}, nil
		},
	}
	server := newRouterUnderTest(t, svc)

	recorder := performRequest(http.MethodGet, "/api/v1/products/-585/2805/2001-07-01", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Products []landcover.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, 4, body.Products[0].LCPri)

	recorder = performRequest(http.MethodGet, "/api/v1/products/x/2805/2001-07-01", "", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_HealthzAndMetrics(t *testing.T) {
	server := newRouterUnderTest(t, &stubProducts{})

	recorder := performRequest(http.MethodGet, "/healthz", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performRequest(http.MethodGet, "/metrics", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "go_goroutines")
}

func TestRouter_RateLimit(t *testing.T) {
	handler := NewHandler(&stubProducts{}, newTestLogger())
	cfg := &config.Config{HTTP: config.HTTPConfig{
		Address:   ":0",
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1},
	}}
	server := NewRouter(cfg, handler)

	require.Equal(t, http.StatusOK, performRequest(http.MethodGet, "/api/v1/runs/"+uuid.NewString(), "", server).Code)
	recorder := performRequest(http.MethodGet, "/api/v1/runs/"+uuid.NewString(), "", server)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc ProductService) *http.Server {
	t.Helper()
	handler := NewHandler(svc, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubProducts struct {
	generateFn func(ctx context.Context, req chip.Request) (chip.Result, error)
	describeFn func(ctx context.Context, id uuid.UUID) (chip.Run, error)
	productFn  func(ctx context.Context, cx, cy int64, date string) ([]landcover.Product, error)
}

func (s *stubProducts) Generate(ctx context.Context, req chip.Request) (chip.Result, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, req)
	}
	return chip.Result{}, nil
}

func (s *stubProducts) Describe(ctx context.Context, id uuid.UUID) (chip.Run, error) {
	if s.describeFn != nil {
		return s.describeFn(ctx, id)
	}
	return chip.Run{ID: id}, nil
}

func (s *stubProducts) Product(ctx context.Context, cx, cy int64, date string) ([]landcover.Product, error) {
	if s.productFn != nil {
		return s.productFn(ctx, cx, cy, date)
	}
	return nil, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]any {
	t.Helper()
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
