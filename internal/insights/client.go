// ABOUTME: Insight client wrapping a selected provider with a hard timeout.
// ABOUTME: Failures become the fixed fallback text; the cause rides along in Result.Err.
package insights

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/habits/internal/config"
	"github.com/harperreed/habits/internal/logging"
	"github.com/harperreed/habits/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// FallbackMessage is returned whenever generation fails.
const FallbackMessage = "Unable to generate insights at this time."

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 30 * time.Second

const meterScope = "github.com/harperreed/habits/insights"

// Result is the outcome of one insight request. Text is always set.
type Result struct {
	Text     string `json:"insights"`
	Provider string `json:"provider"`
	Err      error  `json:"-"`
}

// Client generates insights through one provider.
type Client struct {
	provider Provider
	logger   *log.Logger
	timeout  time.Duration
}

type options struct {
	logger     *log.Logger
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the logger used for swallowed errors.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient sets the HTTP client providers use.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func buildOptions(opts []Option) options {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	return o
}

// NewClient selects a provider from cfg. It returns a *ConfigurationError
// when no provider is usable.
func NewClient(cfg config.AIConfig, opts ...Option) (*Client, error) {
	o := buildOptions(opts)
	p, err := SelectProvider(cfg, o.httpClient)
	if err != nil {
		return nil, err
	}
	o.logger.Info("using AI provider", "provider", p.Name(), "model", p.Model())
	return &Client{provider: p, logger: o.logger, timeout: o.timeout}, nil
}

// New wraps an already constructed provider.
func New(p Provider, opts ...Option) *Client {
	o := buildOptions(opts)
	return &Client{provider: p, logger: o.logger, timeout: o.timeout}
}

// ProviderName returns the active provider's name.
func (c *Client) ProviderName() string {
	if c == nil || c.provider == nil {
		return "none"
	}
	return c.provider.Name()
}

// Insights builds a prompt from data and asks the provider for analysis.
// It never fails; on error Text is FallbackMessage and Err holds the cause.
func (c *Client) Insights(ctx context.Context, data HabitData) Result {
	if c == nil || c.provider == nil {
		return Result{Text: FallbackMessage, Provider: "none", Err: ErrNoProvider}
	}

	instrumentsOnce.Do(initInstruments)

	name := c.provider.Name()
	attrs := metric.WithAttributes(
		attribute.String("habits.ai.provider", name),
		attribute.String("habits.ai.model", c.provider.Model()),
	)

	ctx, span := telemetry.Tracer(meterScope).Start(ctx, "insights.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("habits.ai.provider", name),
		attribute.String("habits.ai.model", c.provider.Model()),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := BuildPrompt(data, c.provider.Style())
	start := time.Now()
	text, err := c.provider.Generate(ctx, prompt)
	elapsed := time.Since(start)

	record(ctx, attrs, elapsed, err != nil)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(errTimeout, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("insight generation failed", "provider", name, "elapsed", elapsed, "err", err)
		return Result{Text: FallbackMessage, Provider: name, Err: err}
	}

	c.logger.Debug("insight generated", "provider", name, "elapsed", elapsed, "chars", len(text))
	return Result{Text: text, Provider: name}
}

var errTimeout = errors.New("insight request timed out")

var instruments struct {
	requests  metric.Int64Counter
	fallbacks metric.Int64Counter
	duration  metric.Float64Histogram
}

var instrumentsOnce sync.Once

func record(ctx context.Context, attrs metric.MeasurementOption, elapsed time.Duration, fallback bool) {
	if instruments.requests == nil {
		return
	}
	instruments.requests.Add(ctx, 1, attrs)
	instruments.duration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	if fallback {
		instruments.fallbacks.Add(ctx, 1, attrs)
	}
}

func initInstruments() {
	m := telemetry.Meter(meterScope)
	instruments.requests, _ = m.Int64Counter("habits.insights.requests",
		metric.WithDescription("Insight generation requests"),
	)
	instruments.fallbacks, _ = m.Int64Counter("habits.insights.fallbacks",
		metric.WithDescription("Insight requests answered with the fallback text"),
	)
	instruments.duration, _ = m.Float64Histogram("habits.insights.duration",
		metric.WithDescription("Provider call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
}
