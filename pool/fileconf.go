package pool

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the construction options in a YAML-friendly shape, for
// tools that tune the pool from a config file rather than code. Zero values
// mean "use the default"; durations are strings in time.ParseDuration form.
type FileConfig struct {
	Workers       int    `yaml:"workers"`
	QueueCapacity int    `yaml:"queue_capacity"`
	Unbounded     bool   `yaml:"unbounded"`
	Backend       string `yaml:"backend"`
	NonBlocking   bool   `yaml:"non_blocking_submit"`

	RateLimit struct {
		TasksPerSecond float64 `yaml:"tasks_per_second"`
		Burst          int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Retry struct {
		MaxAttempts  int    `yaml:"max_attempts"`
		Backoff      string `yaml:"backoff"`
		InitialDelay string `yaml:"initial_delay"`
		MaxDelay     string `yaml:"max_delay"`
	} `yaml:"retry"`

	Affinity struct {
		Enabled bool  `yaml:"enabled"`
		Cores   []int `yaml:"cores"`
	} `yaml:"affinity"`
}

// LoadFileConfig reads and parses a YAML pool configuration.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	return &fc, nil
}

// ParseBackend maps a backend name from configuration to its Backend value.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "", "chan", "channel":
		return BackendChan, nil
	case "mpmc":
		return BackendMPMC, nil
	case "list":
		return BackendList, nil
	case "hybrid":
		return BackendHybrid, nil
	default:
		return BackendChan, &ConfigError{Reason: fmt.Sprintf("unknown backend %q", name)}
	}
}

// ParseBackoff maps a backoff name from configuration to its BackoffType.
func ParseBackoff(name string) (BackoffType, error) {
	switch name {
	case "", "exponential":
		return BackoffExponential, nil
	case "none":
		return BackoffNone, nil
	case "fixed":
		return BackoffFixed, nil
	case "jittered":
		return BackoffJittered, nil
	case "decorrelated":
		return BackoffDecorrelated, nil
	default:
		return BackoffExponential, &ConfigError{Reason: fmt.Sprintf("unknown backoff %q", name)}
	}
}

// Options converts the file configuration into construction options. Extra
// options appended by the caller override the file's settings.
func (fc *FileConfig) Options() ([]Option, error) {
	var opts []Option

	if fc.Workers > 0 {
		opts = append(opts, WithWorkerCount(fc.Workers))
	}
	if fc.Unbounded {
		opts = append(opts, WithUnboundedQueue())
	} else if fc.QueueCapacity > 0 {
		opts = append(opts, WithQueueCapacity(fc.QueueCapacity))
	}
	if fc.Backend != "" {
		backend, err := ParseBackend(fc.Backend)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithBackend(backend))
	}
	if fc.NonBlocking {
		opts = append(opts, WithNonBlockingSubmit())
	}
	if fc.RateLimit.TasksPerSecond > 0 {
		burst := fc.RateLimit.Burst
		if burst <= 0 {
			burst = 1
		}
		opts = append(opts, WithRateLimit(fc.RateLimit.TasksPerSecond, burst))
	}

	if fc.Retry.MaxAttempts > 1 {
		initial, err := parseDuration(fc.Retry.InitialDelay, defaultBackoffInitialDelay)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithRetryPolicy(fc.Retry.MaxAttempts, initial))

		if fc.Retry.Backoff != "" || fc.Retry.MaxDelay != "" {
			backoff, err := ParseBackoff(fc.Retry.Backoff)
			if err != nil {
				return nil, err
			}
			maxDelay, err := parseDuration(fc.Retry.MaxDelay, defaultBackoffMaxDelay)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithBackoff(backoff, initial, maxDelay))
		}
	}

	if fc.Affinity.Enabled {
		opts = append(opts, WithAffinity(fc.Affinity.Cores...))
	}
	return opts, nil
}

// OptionsFromFile is LoadFileConfig followed by Options, for the common case.
func OptionsFromFile(path string) ([]Option, error) {
	fc, err := LoadFileConfig(path)
	if err != nil {
		return nil, err
	}
	return fc.Options()
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &ConfigError{Reason: fmt.Sprintf("bad duration %q: %v", s, err)}
	}
	return d, nil
}
