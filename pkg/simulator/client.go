// Package simulator queries the official renovation aid simulator over HTTP.
// It is an independent source of aid amounts and shares no logic with the
// local CEE decision table.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a simulator request when no timeout is configured.
const DefaultTimeout = constants.DefaultSimulatorTimeout

const maxResponseBytes = 1 << 20

// ErrFieldNotFound is returned when the response lacks the requested field.
var ErrFieldNotFound = errors.New("field not found in simulator response")

// Field is the evaluation of one requested field.
type Field struct {
	RawValue         any                `json:"rawValue"`
	FormattedValue   string             `json:"formattedValue"`
	MissingVariables map[string]float64 `json:"missingVariables,omitempty"`
}

// Complete reports whether the simulator had every variable it needed.
func (f Field) Complete() bool {
	return len(f.MissingVariables) == 0
}

// Amount returns the raw value when it is numeric.
func (f Field) Amount() (float64, bool) {
	switch v := f.RawValue.(type) {
	case float64:
		return v, true
	case json.Number:
		amount, err := v.Float64()
		return amount, err == nil
	default:
		return 0, false
	}
}

// Missing lists the missing variables, most important first.
func (f Field) Missing() []string {
	names := make([]string, 0, len(f.MissingVariables))
	for name := range f.MissingVariables {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := f.MissingVariables[names[i]], f.MissingVariables[names[j]]
		if si != sj {
			return si > sj
		}
		return names[i] < names[j]
	})
	return names
}

// Client calls the simulator API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient returns a client for baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid simulator URL %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Evaluate asks the simulator for one field given a situation expressed as
// variable name/value pairs.
func (c *Client) Evaluate(ctx context.Context, situation map[string]string, field string) (Field, error) {
	query := url.Values{}
	for name, value := range situation {
		query.Set(name, value)
	}
	query.Set("fields", field)

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return Field{}, err
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Field{}, fmt.Errorf("failed to create simulator request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Field{}, fmt.Errorf("simulator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Field{}, fmt.Errorf("simulator returned status %d: %s", resp.StatusCode, body)
	}

	var payload map[string]Field
	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return Field{}, fmt.Errorf("failed to decode simulator response: %w", err)
	}

	result, ok := payload[field]
	if !ok {
		return Field{}, fmt.Errorf("%q: %w", field, ErrFieldNotFound)
	}

	if !result.Complete() {
		c.logger.Debug(fmt.Sprintf("simulator evaluated %s with %d missing variables", field, len(result.MissingVariables)),
			zap.String("op", "simulator.Evaluate"),
		)
	}
	return result, nil
}
