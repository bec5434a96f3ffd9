package vm

import (
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultMaxCallDepth bounds the nesting of calls inside a single transaction
const DefaultMaxCallDepth = 64

// LogSink receives the logs of every committed transaction, in order
type LogSink interface {
	Append(logs []*types.Log)
}

type Config struct {
	Logger       *zap.Logger
	Sink         LogSink
	Registerer   prometheus.Registerer
	StartTime    time.Time
	MaxCallDepth int
}

func NewConfig(opts ...Option) Config {
	cfg := Config{
		Logger:       zap.NewNop(),
		MaxCallDepth: DefaultMaxCallDepth,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type Option func(*Config)

func WithLogger(l *zap.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

func WithSink(s LogSink) Option {
	return func(cfg *Config) {
		cfg.Sink = s
	}
}

// WithMetrics registers the VM collectors with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *Config) {
		cfg.Registerer = reg
	}
}

func WithStartTime(t time.Time) Option {
	return func(cfg *Config) {
		cfg.StartTime = t
	}
}

func WithMaxCallDepth(n int) Option {
	return func(cfg *Config) {
		cfg.MaxCallDepth = n
	}
}
