package tsched

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

const (
	DefaultMaxWorkers   = 10
	defaultAttempts     = 3
	defaultInitialRetry = 200 * time.Millisecond
	defaultMaxRetry     = 5 * time.Second
	defaultTimeout      = 30 * time.Second
	defaultQueueCap     = 1024
)

// QueueType selects the dispatcher queue strategy.
//
// QueuePriority is the default: strict (priority, sequence) ordering.
// QueueFifo ignores priority and processes tasks in submission order.
type QueueType int

const (
	QueuePriority QueueType = iota
	QueueFifo
)

func (qt QueueType) String() string {
	switch qt {
	case QueuePriority:
		return "priority"
	case QueueFifo:
		return "fifo"
	default:
		return "unknown"
	}
}

// UnmarshalText lets a QueueType be parsed from configuration.
func (qt *QueueType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "priority":
		*qt = QueuePriority
	case "fifo":
		*qt = QueueFifo
	default:
		return fmt.Errorf("tsched: unknown queue type %q", text)
	}
	return nil
}

// Options configure a Scheduler.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// Workers is the number of concurrent worker goroutines.
	Workers int `env:"TSCHED_WORKERS"`

	// QueueCapacity bounds the ingestion channel. When it is full,
	// Submit blocks and TrySubmit returns ErrQueueFull.
	QueueCapacity int `env:"TSCHED_QUEUE_CAPACITY"`

	// Queue selects the dispatcher queue strategy.
	Queue QueueType `env:"TSCHED_QUEUE_TYPE"`

	// DefaultTimeout bounds a single attempt when TaskConfig.Timeout is zero.
	DefaultTimeout time.Duration `env:"TSCHED_DEFAULT_TIMEOUT"`

	// DefaultRetry is applied where per-task config values are zero.
	DefaultRetry RetryPolicy
}

func (o *Options) FillDefaults() {
	if o.Workers <= 0 {
		o.Workers = DefaultMaxWorkers
	}
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = defaultQueueCap
	}
	if o.DefaultTimeout <= 0 {
		o.DefaultTimeout = defaultTimeout
	}
	if o.DefaultRetry.Attempts <= 0 {
		o.DefaultRetry.Attempts = defaultAttempts
	}
	if o.DefaultRetry.Initial <= 0 {
		o.DefaultRetry.Initial = defaultInitialRetry
	}
	if o.DefaultRetry.Max <= 0 {
		o.DefaultRetry.Max = defaultMaxRetry
	}
}

// OptionsFromEnv builds Options from TSCHED_* environment variables,
// falling back to defaults for anything unset.
func OptionsFromEnv() (Options, error) {
	var o Options
	if err := env.Parse(&o); err != nil {
		return Options{}, fmt.Errorf("tsched: parse env options: %w", err)
	}
	o.FillDefaults()
	return o, nil
}
