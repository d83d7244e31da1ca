package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	xhttp "FxPulse/pkg/http"
	"FxPulse/pkg/logger"

	"github.com/sony/gobreaker"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; fxpulse/1.0)"

// Client reads daily bars and yield closes from the Yahoo Finance chart API.
type Client struct {
	baseURL         string
	rng             string
	timeout         time.Duration
	breakerFailures uint32
	breakerTimeout  time.Duration

	http *xhttp.Client
	cb   *gobreaker.CircuitBreaker
	log  *logger.Logger
}

var _ repository.MarketData = (*Client)(nil)

// Option configures Client.
type Option func(*Client)

func WithRange(r string) Option {
	return func(c *Client) { c.rng = r }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithBreaker trips the circuit after failures consecutive errors and keeps
// it open for timeout.
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(c *Client) {
		c.breakerFailures = failures
		c.breakerTimeout = timeout
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a chart API client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         baseURL,
		rng:             "3mo",
		timeout:         10 * time.Second,
		breakerFailures: 3,
		breakerTimeout:  60 * time.Second,
		log:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = xhttp.NewClient(xhttp.WithTimeout(c.timeout), xhttp.WithUserAgent(defaultUserAgent))

	failures := c.breakerFailures
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "yahoo",
		Timeout: c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// a symbol without data says nothing about the upstream's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, repository.ErrNoData)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return c
}

// LatestBars returns up to n most recent daily bars for symbol. The last bar
// may be the session still in progress. A non-zero asOf fetches the
// historical window ending on that session date instead.
func (c *Client) LatestBars(ctx context.Context, symbol string, n int, asOf time.Time) (models.BarWindow, error) {
	res, err := c.chart(ctx, symbol, asOf)
	if err != nil {
		return nil, err
	}

	window := res.bars(asOf)
	if len(window) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, repository.ErrNoData)
	}
	return window.Tail(n), nil
}

// LatestYields returns up to n most recent daily closes for a yield series,
// one per session.
func (c *Client) LatestYields(ctx context.Context, series string, n int, asOf time.Time) ([]float64, error) {
	res, err := c.chart(ctx, series, asOf)
	if err != nil {
		return nil, err
	}

	closes := res.closes(asOf)
	if len(closes) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", series, repository.ErrNoData)
	}
	if len(closes) > n {
		closes = closes[len(closes)-n:]
	}
	return closes, nil
}

// window returns the chart query for the latest range, or for the same span
// ending on asOf.
func (c *Client) window(asOf time.Time) map[string][]string {
	q := map[string][]string{"interval": {"1d"}}
	if asOf.IsZero() {
		q["range"] = []string{c.rng}
		return q
	}
	// period2 is exclusive; a spare day covers sessions dated ahead of UTC
	end := asOf.AddDate(0, 0, 2)
	start := asOf.AddDate(0, 0, -rangeDays(c.rng))
	q["period1"] = []string{strconv.FormatInt(start.Unix(), 10)}
	q["period2"] = []string{strconv.FormatInt(end.Unix(), 10)}
	return q
}

func rangeDays(r string) int {
	switch r {
	case "1mo":
		return 31
	case "6mo":
		return 183
	case "1y":
		return 366
	default:
		return 92
	}
}

func (c *Client) chart(ctx context.Context, symbol string, asOf time.Time) (*chartResult, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		var resp chartResponse
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol),
			QueryParams: c.window(asOf),
			Headers:     map[string]string{"Accept": "application/json"},
		}, &resp)
		if err != nil {
			var se *xhttp.StatusError
			if errors.As(err, &se) && se.Code == http.StatusNotFound {
				return nil, fmt.Errorf("yahoo %s: %w", symbol, repository.ErrNoData)
			}
			return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
		}
		if resp.Chart.Error != nil {
			return nil, fmt.Errorf("yahoo %s: %s: %w", symbol, resp.Chart.Error.Description, repository.ErrNoData)
		}
		if len(resp.Chart.Result) == 0 {
			return nil, fmt.Errorf("yahoo %s: %w", symbol, repository.ErrNoData)
		}
		return &resp.Chart.Result[0], nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*chartResult), nil
}
