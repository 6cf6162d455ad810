package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/config"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/mock"
	"github.com/MKhiriev/go-assembly-sync/internal/service"
	"github.com/MKhiriev/go-assembly-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testSignKey = "test-sign-key"
	testIssuer  = "assembly-test"
)

// newTestHandler builds a handler over real services and a mocked
// repository. An empty signKey disables authentication.
func newTestHandler(repo *mock.MockModelsRepository, signKey string) *Handler {
	cfg := config.ServerConfig{
		App: config.App{
			TokenSignKey:  signKey,
			TokenIssuer:   testIssuer,
			TokenDuration: time.Hour,
		},
		Server: config.Server{PollInterval: 10 * time.Millisecond},
	}
	return NewHandler(service.NewServices(repo, cfg, logger.Nop()), "1.2.3", logger.Nop())
}

// tableRepo answers GetModels from a fixed "collection/id" -> JSON table.
func tableRepo(ctrl *gomock.Controller, table map[string]string) *mock.MockModelsRepository {
	repo := mock.NewMockModelsRepository(ctrl)
	repo.EXPECT().GetModels(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, collection string, ids []int) ([]models.ModelRecord, error) {
			var out []models.ModelRecord
			for _, id := range slices.Sorted(slices.Values(ids)) {
				if data, ok := table[models.FQID(collection, id)]; ok {
					out = append(out, models.ModelRecord{Collection: collection, ID: id, Data: json.RawMessage(data)})
				}
			}
			return out, nil
		}).AnyTimes()
	return repo
}

func serve(h *Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.Init().ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, body []byte) errorDetail {
	t.Helper()
	var msg errorMessage
	require.NoError(t, json.Unmarshal(body, &msg))
	return msg.Error
}

func TestHealth(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHandler(mock.NewMockModelsRepository(ctrl), "")

	rr := serve(h, http.MethodGet, "/system/health", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"healthy":true}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHandler(mock.NewMockModelsRepository(ctrl), "")

	rr := serve(h, http.MethodGet, "/system/version", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1.2.3", rr.Body.String())
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHandler(mock.NewMockModelsRepository(ctrl), "")

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantAllow  string
	}{
		{"GET on stream", http.MethodGet, "/system/autoupdate", http.StatusMethodNotAllowed, "POST"},
		{"POST on health", http.MethodPost, "/system/health", http.StatusMethodNotAllowed, "GET"},
		{"PATCH on model", http.MethodPatch, "/system/models/topic/1", http.StatusMethodNotAllowed, "GET, PUT, DELETE"},
		{"unknown path", http.MethodGet, "/system/unknown", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(h, tt.method, tt.target, "", nil)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllow, rr.Header().Get("Allow"))
			if tt.wantStatus == http.StatusMethodNotAllowed {
				assert.Equal(t, "invalid", decodeError(t, rr.Body.Bytes()).Type)
			}
		})
	}
}

func TestRoutes_TraceIDEchoed(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newTestHandler(mock.NewMockModelsRepository(ctrl), "")

	rr := serve(h, http.MethodGet, "/system/health", "", map[string]string{traceIDHeader: "trace-1"})
	assert.Equal(t, "trace-1", rr.Header().Get(traceIDHeader))

	rr = serve(h, http.MethodGet, "/system/health", "", nil)
	assert.NotEmpty(t, rr.Header().Get(traceIDHeader))
}
