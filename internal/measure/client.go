package measure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"go.uber.org/zap"
)

// Point is one measurement sample.
type Point struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Unit      string    `json:"unit"`
}

// Lookup resolves current and historical values for a binding. Absence of
// data is (nil, nil) for Latest and an empty slice for Series — never an
// error. Errors are transport failures only.
type Lookup interface {
	Latest(ctx context.Context, b types.Binding) (*Point, error)
	Series(ctx context.Context, b types.Binding, window time.Duration, maxPoints int) ([]Point, error)
}

// Client talks to the measurement service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Latest returns the most recent sample for the binding, nil if the
// service has no data for it.
func (c *Client) Latest(ctx context.Context, b types.Binding) (*Point, error) {
	points, err := c.fetch(ctx, c.measurementURL(b, url.Values{}))
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, nil
	}
	// Last element is the most recent sample.
	return &points[len(points)-1], nil
}

// Series returns samples within the window, ascending by timestamp, at
// most maxPoints of them.
func (c *Client) Series(ctx context.Context, b types.Binding, window time.Duration, maxPoints int) ([]Point, error) {
	q := url.Values{}
	q.Set("window", window.String())
	q.Set("max_points", fmt.Sprintf("%d", maxPoints))

	points, err := c.fetch(ctx, c.measurementURL(b, q))
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) measurementURL(b types.Binding, q url.Values) string {
	u := fmt.Sprintf("%s/measurements/%s/%s/%s",
		c.baseURL,
		url.PathEscape(b.PlantID),
		url.PathEscape(b.TerminalID),
		url.PathEscape(b.MeasurandID))
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) fetch(ctx context.Context, u string) ([]Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &types.TransportError{Op: "measurement fetch", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &types.TransportError{Op: "measurement fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.TransportError{
			Op:  "measurement fetch",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var points []Point
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, &types.TransportError{Op: "measurement decode", Err: err}
	}

	return points, nil
}
