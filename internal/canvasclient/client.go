// Package canvasclient is a thin wrapper over the remote pixel-placement
// service: fetching full snapshots, single pixels, and exposing the
// server's rate-limit wait time so callers can choose between a snapshot
// read and a point query.
package canvasclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/itsdrike/rickchurch-go/internal/pixel"
)

// Snapshot is a point-in-time copy of the entire canvas held in-process.
type Snapshot struct {
	Width, Height int
	Pixels        []pixel.RGB
	FetchedAt     time.Time
}

// At returns the color at (x, y). Callers must keep x,y in bounds.
func (s *Snapshot) At(x, y int) pixel.RGB {
	return s.Pixels[y*s.Width+x]
}

// ErrUpstream wraps transient failures talking to the remote canvas: I/O
// errors, upstream 5xx, or rate-limit exhaustion. Callers retry with
// backoff.
var ErrUpstream = fmt.Errorf("canvasclient: upstream error")

// ErrRateLimited is returned unwrapped when the server itself reports 429.
// It is a separate sentinel: errors.Is(ErrRateLimited, ErrUpstream) is
// false.
var ErrRateLimited = fmt.Errorf("canvasclient: rate limited")

// Client talks to the external collaborative pixel canvas over HTTP,
// using a bearer token and a client-side limiter tuned to the server's
// advertised rate limits.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string

	mu       sync.Mutex
	limiter  *rate.Limiter
	lastHead time.Time
}

// NewClient builds a Client against baseURL, authorizing with token, and
// self-limiting single-pixel requests to rps requests/second with the
// given burst.
func NewClient(baseURL, token string, rps float64, burst int) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}

// wireCanvas is the JSON shape returned by the remote service's full-canvas
// endpoint: width/height plus a flat row-major array of "RRGGBB" strings.
type wireCanvas struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Pixels []string `json:"pixels"`
}

// GetCanvas fetches the full canvas as a width x height RGB array.
func (c *Client) GetCanvas(ctx context.Context) (*Snapshot, error) {
	var wc wireCanvas
	if err := c.do(ctx, http.MethodGet, "/get_canvas", &wc); err != nil {
		return nil, err
	}
	pixels := make([]pixel.RGB, len(wc.Pixels))
	for i, hex := range wc.Pixels {
		rgb, err := pixel.ParseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("%w: bad pixel in canvas response: %v", ErrUpstream, err)
		}
		pixels[i] = rgb
	}
	return &Snapshot{Width: wc.Width, Height: wc.Height, Pixels: pixels, FetchedAt: time.Now()}, nil
}

type wirePixel struct {
	RGB string `json:"rgb"`
}

// GetPixel fetches a single pixel. Subject to the server's rate limit;
// callers should consult PixelWaitTime first.
func (c *Client) GetPixel(ctx context.Context, x, y int) (pixel.RGB, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return pixel.RGB{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	var wp wirePixel
	path := fmt.Sprintf("/get_pixel?x=%d&y=%d", x, y)
	if err := c.do(ctx, http.MethodGet, path, &wp); err != nil {
		return pixel.RGB{}, err
	}
	return pixel.ParseHex(wp.RGB)
}

// HeadPixel is a side-effect-only preflight that records the last time the
// rate-limit window was probed, without consuming a read.
func (c *Client) HeadPixel(_ context.Context) {
	c.mu.Lock()
	c.lastHead = time.Now()
	c.mu.Unlock()
}

// PixelWaitTime returns the time until GetPixel may be called without
// violating the client-side rate limit; zero if immediate.
func (c *Client) PixelWaitTime() time.Duration {
	r := c.limiter.Reserve()
	delay := r.Delay()
	r.Cancel()
	if delay < 0 {
		return 0
	}
	return delay
}
