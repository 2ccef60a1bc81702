package csrgraph

import "log/slog"

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Graph construction behavior.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for load operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &csrgraph.BasicMetricsCollector{}
//	g := csrgraph.New[int, string, csrgraph.None](csrgraph.WithMetricsCollector(metrics))
//	// ... load ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for load operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

// LoadOption configures a single load operation.
type LoadOption func(*loadOptions)

type loadOptions struct {
	vertexCountHint int
	edgeCountHint   int
}

// WithVertexCountHint pre-reserves row storage for n vertices. For edge
// loads the hint is also a floor: a non-empty graph ends up with at least n
// vertices even when the edges reference fewer. An empty edge stream ignores
// the hint entirely.
func WithVertexCountHint(n int) LoadOption {
	return func(o *loadOptions) {
		o.vertexCountHint = n
	}
}

// WithEdgeCountHint pre-reserves column storage for n edges.
func WithEdgeCountHint(n int) LoadOption {
	return func(o *loadOptions) {
		o.edgeCountHint = n
	}
}

func applyLoadOptions(optFns []LoadOption) loadOptions {
	var o loadOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
