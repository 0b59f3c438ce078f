package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Domenick1991/flightbooking/config"
	backofficeapi "github.com/Domenick1991/flightbooking/internal/api/backoffice_service_api"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type MockBackofficeClient struct {
	mock.Mock
	backofficeapi.BackofficeClient
}

func (m *MockBackofficeClient) ListPendingCancellations(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*structpb.Struct), args.Error(1)
}

func newTestHandler(t *testing.T, client backofficeapi.BackofficeClient) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backoffice.swagger.json"), []byte(`{"swagger":"2.0"}`), 0o644))

	cfg := &config.Config{HTTP: config.HTTPConfig{SwaggerDir: dir}}
	handler, err := newHandler(cfg, Dependencies{}, client)
	require.NoError(t, err)
	return handler
}

func TestHandler_MountsGateway(t *testing.T) {
	client := &MockBackofficeClient{}
	body, err := structpb.NewStruct(map[string]any{"bookings": []any{}})
	require.NoError(t, err)
	client.On("ListPendingCancellations", mock.Anything, mock.Anything).Return(body, nil)

	handler := newTestHandler(t, client)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/backoffice/pending-cancellations", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "bookings").IsArray())
	client.AssertExpectations(t)
}

func TestHandler_ServesDocs(t *testing.T) {
	handler := newTestHandler(t, &MockBackofficeClient{})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/backoffice.swagger.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2.0", gjson.Get(w.Body.String(), "swagger").String())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}

func TestHandler_NoDocsWithoutDir(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, err := newHandler(&config.Config{}, Dependencies{}, &MockBackofficeClient{})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
