package pool

import (
	"context"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/taskpool/internal/queue"
	"github.com/utkarsh5026/taskpool/internal/retry"
)

// Backend selects the queue implementation tasks flow through.
type Backend = queue.Backend

const (
	// BackendChan is a buffered Go channel. The default; best all-rounder.
	BackendChan = queue.BackendChan
	// BackendMPMC is a lock-free multi-producer multi-consumer ring buffer.
	BackendMPMC = queue.BackendMPMC
	// BackendList is a mutex-guarded list queue. Supports unbounded capacity.
	BackendList = queue.BackendList
	// BackendHybrid is the MPMC ring with channel-based parking instead of
	// spinning when empty or full.
	BackendHybrid = queue.BackendHybrid
)

// BackoffType selects the delay schedule between retry attempts.
type BackoffType = retry.Type

const (
	BackoffNone         = retry.TypeNone
	BackoffFixed        = retry.TypeFixed
	BackoffExponential  = retry.TypeExponential
	BackoffJittered     = retry.TypeJittered
	BackoffDecorrelated = retry.TypeDecorrelated
)

// RetryClassifier decides whether a failed attempt should be retried.
// err is the attempt's error (for panics, the wrapped panic error) and
// panicked tells the two apart.
type RetryClassifier func(err error, panicked bool) bool

const (
	defaultBackoffInitialDelay = 100 * time.Millisecond
	defaultBackoffMaxDelay     = 5 * time.Second
	defaultJitterFactor        = 0.1
)

type retryConfig struct {
	maxAttempts  int
	backoffType  BackoffType
	initialDelay time.Duration
	maxDelay     time.Duration
	jitterFactor float64
	classify     RetryClassifier
}

type config struct {
	workerCount int
	capacity    int
	unbounded   bool
	backend     Backend
	blockOnFull bool
	baseCtx     context.Context
	logger      *logrus.Logger
	rateLimiter *rate.Limiter
	retry       *retryConfig
	affinity    []int
	pinWorkers  bool
	onRetry     func(taskID uint64, attempt int, err error)
}

// Option configures a pool at construction time.
type Option func(*config)

func newConfig(opts ...Option) *config {
	workers := runtime.GOMAXPROCS(0)
	cfg := &config{
		workerCount: workers,
		capacity:    workers * 2,
		backend:     BackendChan,
		blockOnFull: true,
		baseCtx:     context.Background(),
		logger:      defaultLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func defaultLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}

func (c *config) validate() error {
	if c.workerCount <= 0 {
		return &ConfigError{Reason: "worker count must be positive"}
	}
	if !c.unbounded && c.capacity <= 0 {
		return &ConfigError{Reason: "bounded queue capacity must be positive"}
	}
	if c.backend != BackendChan && c.backend != BackendMPMC &&
		c.backend != BackendList && c.backend != BackendHybrid {
		return &ConfigError{Reason: "unknown queue backend"}
	}
	if rc := c.retry; rc != nil {
		if rc.maxAttempts < 1 {
			return &ConfigError{Reason: "retry attempt limit must be at least 1"}
		}
		if rc.initialDelay < 0 || rc.maxDelay < 0 {
			return &ConfigError{Reason: "backoff delays must not be negative"}
		}
	}
	return nil
}

// buildBackoff constructs the shared backoff strategy for the pool, or nil
// when retries are disabled.
func (c *config) buildBackoff() retry.Strategy {
	rc := c.retry
	if rc == nil {
		return nil
	}
	return retry.New(rc.backoffType, rc.initialDelay, rc.maxDelay, rc.jitterFactor)
}

func (c *config) queueCapacity() int {
	if c.unbounded {
		return 0
	}
	return c.capacity
}

// ensureRetry lazily creates the retry config with defaults, so retry options
// compose in any order.
func (c *config) ensureRetry() *retryConfig {
	if c.retry == nil {
		c.retry = &retryConfig{
			maxAttempts:  1,
			backoffType:  BackoffExponential,
			initialDelay: defaultBackoffInitialDelay,
			maxDelay:     defaultBackoffMaxDelay,
			jitterFactor: defaultJitterFactor,
		}
	}
	return c.retry
}

// WithWorkerCount sets the number of workers. Defaults to GOMAXPROCS.
func WithWorkerCount(count int) Option {
	return func(c *config) {
		c.workerCount = count
	}
}

// WithQueueCapacity bounds the queue to the given number of pending tasks.
// Defaults to twice the worker count.
func WithQueueCapacity(capacity int) Option {
	return func(c *config) {
		c.capacity = capacity
		c.unbounded = false
	}
}

// WithUnboundedQueue removes the queue capacity limit. Submissions always
// succeed immediately while the pool is running, at the cost of unbounded
// memory growth under sustained overload.
func WithUnboundedQueue() Option {
	return func(c *config) {
		c.unbounded = true
	}
}

// WithBackend selects the queue backend. Unbounded pools always use the list
// backend regardless of this setting, since the ring-based backends require
// a fixed capacity.
func WithBackend(b Backend) Option {
	return func(c *config) {
		c.backend = b
	}
}

// WithNonBlockingSubmit makes Submit return ErrQueueFull when the queue is at
// capacity, instead of the default behavior of blocking until space frees up.
func WithNonBlockingSubmit() Option {
	return func(c *config) {
		c.blockOnFull = false
	}
}

// WithContext sets the base context passed to the process function and
// observed while waiting out rate limits and retry backoffs. Defaults to
// context.Background().
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// WithLogger sets the logger used for pool lifecycle and worker events.
// The default logger only emits warnings.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit caps task execution at tasksPerSecond across all workers,
// with the given burst allowance.
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(c *config) {
		c.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
	}
}

// WithRetryPolicy enables retries with exponential backoff: a failed task is
// re-executed up to maxAttempts times in total, doubling the delay from
// initialDelay between attempts.
func WithRetryPolicy(maxAttempts int, initialDelay time.Duration) Option {
	return func(c *config) {
		rc := c.ensureRetry()
		rc.maxAttempts = maxAttempts
		rc.initialDelay = initialDelay
	}
}

// WithBackoff selects the delay schedule used between retry attempts.
// Only meaningful together with WithRetryPolicy.
func WithBackoff(t BackoffType, initialDelay, maxDelay time.Duration) Option {
	return func(c *config) {
		rc := c.ensureRetry()
		rc.backoffType = t
		rc.initialDelay = initialDelay
		rc.maxDelay = maxDelay
	}
}

// WithRetryClassifier installs a predicate deciding which failed attempts are
// retried. The default retries errors and never retries panics.
func WithRetryClassifier(classify RetryClassifier) Option {
	return func(c *config) {
		c.ensureRetry().classify = classify
	}
}

// WithOnRetry installs a hook invoked after each failed attempt that will be
// retried, with the task id, the attempt number that just failed, and its
// error. Runs on the worker goroutine; keep it fast.
func WithOnRetry(fn func(taskID uint64, attempt int, err error)) Option {
	return func(c *config) {
		c.onRetry = fn
	}
}

// WithAffinity pins worker OS threads to CPU cores, assigned round-robin
// from the given core ids. An empty list means "all cores". Pinning is best
// effort: on unsupported platforms or for invalid core ids the pool still
// starts and the failures are reported through Warnings.
func WithAffinity(cores ...int) Option {
	return func(c *config) {
		c.pinWorkers = true
		c.affinity = cores
	}
}
