// Package scale talks to the scale-side middleware process over HTTP.
// Every read is synchronous with a bounded timeout; nothing is retried here.
package scale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xelth-com/eckscalego/internal/models"
)

var (
	// ErrScaleDisabled means the scale is configured but switched off.
	ErrScaleDisabled = errors.New("scale is disabled")
	// ErrScaleUnreachable wraps transport failures to the scale process.
	ErrScaleUnreachable = errors.New("scale unreachable")
	// ErrInvalidResponse means the scale answered with something other
	// than {"weight": N}.
	ErrInvalidResponse = errors.New("invalid response from scale")
)

// Gateway reads live weights from weighbridge scales.
type Gateway interface {
	ReadWeight(ctx context.Context, s *models.WeighingScale) (float64, error)
}

// HTTPGateway implements Gateway against the scale middleware's
// GET /get_weight endpoint.
type HTTPGateway struct {
	client *http.Client
}

// NewHTTPGateway creates a gateway. The per-request timeout comes from the
// scale configuration, not from the shared client.
func NewHTTPGateway() *HTTPGateway {
	return &HTTPGateway{client: &http.Client{}}
}

type weightPayload struct {
	Weight *float64 `json:"weight"`
}

// ReadWeight fetches the current weight in KG from the given scale.
func (g *HTTPGateway) ReadWeight(ctx context.Context, s *models.WeighingScale) (float64, error) {
	if !s.IsEnabled {
		return 0, fmt.Errorf("scale %q: %w", s.Name, ErrScaleDisabled)
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint(), nil)
	if err != nil {
		return 0, fmt.Errorf("scale %q: %w: %v", s.Name, ErrScaleUnreachable, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("scale %q: %w: %v", s.Name, ErrScaleUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("scale %q: %w: status %d", s.Name, ErrInvalidResponse, resp.StatusCode)
	}

	var payload weightPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("scale %q: %w: %v", s.Name, ErrInvalidResponse, err)
	}
	if payload.Weight == nil {
		return 0, fmt.Errorf("scale %q: %w: missing 'weight' field", s.Name, ErrInvalidResponse)
	}

	return *payload.Weight, nil
}

// TestConnection reads the scale once and records the outcome on the scale
// record. The caller persists the updated record.
func TestConnection(ctx context.Context, g Gateway, s *models.WeighingScale) error {
	now := time.Now().UTC()
	s.LastCheckDate = &now

	weight, err := g.ReadWeight(ctx, s)
	if err != nil {
		s.ConnectionStatus = models.ScaleError
		s.ErrorMessage = err.Error()
		return err
	}

	s.ConnectionStatus = models.ScaleConnected
	s.LastReadWeight = weight
	s.LastReadDate = &now
	s.ErrorMessage = ""
	return nil
}
