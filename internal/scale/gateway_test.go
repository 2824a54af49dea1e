package scale

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/eckscalego/internal/models"
)

func httpHandler(body string, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

func scaleFor(t *testing.T, srv *httptest.Server) *models.WeighingScale {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return &models.WeighingScale{
		Name:           "Test Bridge",
		IPAddress:      u.Hostname(),
		Port:           port,
		IsEnabled:      true,
		TimeoutSeconds: 1,
	}
}

func TestReadWeight(t *testing.T) {
	srv := httptest.NewServer(httpHandler(`{"weight": 32500.5}`, 200))
	defer srv.Close()

	g := NewHTTPGateway()
	weight, err := g.ReadWeight(context.Background(), scaleFor(t, srv))
	require.NoError(t, err)
	assert.Equal(t, 32500.5, weight)
}

func TestReadWeightDisabled(t *testing.T) {
	g := NewHTTPGateway()
	s := &models.WeighingScale{Name: "Off", IsEnabled: false}

	_, err := g.ReadWeight(context.Background(), s)
	assert.ErrorIs(t, err, ErrScaleDisabled)
}

func TestReadWeightUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	s := scaleFor(t, srv)
	srv.Close() // nothing listens anymore

	g := NewHTTPGateway()
	_, err := g.ReadWeight(context.Background(), s)
	assert.ErrorIs(t, err, ErrScaleUnreachable)
}

func TestReadWeightBadStatus(t *testing.T) {
	srv := httptest.NewServer(httpHandler(`oops`, 500))
	defer srv.Close()

	g := NewHTTPGateway()
	_, err := g.ReadWeight(context.Background(), scaleFor(t, srv))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestReadWeightBadPayload(t *testing.T) {
	for name, body := range map[string]string{
		"not json":       `not json at all`,
		"missing weight": `{"value": 12}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(httpHandler(body, 200))
			defer srv.Close()

			g := NewHTTPGateway()
			_, err := g.ReadWeight(context.Background(), scaleFor(t, srv))
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestTestConnection(t *testing.T) {
	srv := httptest.NewServer(httpHandler(`{"weight": 100}`, 200))
	defer srv.Close()

	g := NewHTTPGateway()
	s := scaleFor(t, srv)
	s.ConnectionStatus = models.ScaleDisconnected
	s.ErrorMessage = "stale"

	require.NoError(t, TestConnection(context.Background(), g, s))
	assert.Equal(t, models.ScaleConnected, s.ConnectionStatus)
	assert.Equal(t, 100.0, s.LastReadWeight)
	assert.NotNil(t, s.LastCheckDate)
	assert.NotNil(t, s.LastReadDate)
	assert.Empty(t, s.ErrorMessage)
}

func TestTestConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(nil)
	s := scaleFor(t, srv)
	srv.Close()

	g := NewHTTPGateway()
	err := TestConnection(context.Background(), g, s)
	require.Error(t, err)
	assert.Equal(t, models.ScaleError, s.ConnectionStatus)
	assert.NotEmpty(t, s.ErrorMessage)
	assert.NotNil(t, s.LastCheckDate)
}
