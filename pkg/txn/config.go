package txn

import "time"

// Config holds the manager-wide defaults and maintenance knobs.
type Config struct {
	DefaultTimeout   time.Duration  `yaml:"default_timeout"`
	DefaultIsolation IsolationLevel `yaml:"default_isolation"`

	// MaxNestedDepth bounds live savepoint scopes per root transaction.
	MaxNestedDepth int `yaml:"max_nested_depth"`

	EnableStats   bool `yaml:"enable_stats"`
	EnableLogging bool `yaml:"enable_logging"`

	// CleanupInterval is how often the registry sweep runs; MaxContextAge
	// is how old a live context may get before it is forcibly reclaimed.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	MaxContextAge   time.Duration `yaml:"max_context_age"`
}

const (
	defaultMaxNestedDepth  = 10
	defaultCleanupInterval = 5 * time.Minute
	defaultMaxContextAge   = 30 * time.Minute
)

func DefaultConfig() Config {
	return Config{
		MaxNestedDepth:  defaultMaxNestedDepth,
		EnableStats:     true,
		EnableLogging:   true,
		CleanupInterval: defaultCleanupInterval,
		MaxContextAge:   defaultMaxContextAge,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxNestedDepth <= 0 {
		c.MaxNestedDepth = defaultMaxNestedDepth
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = defaultCleanupInterval
	}
	if c.MaxContextAge <= 0 {
		c.MaxContextAge = defaultMaxContextAge
	}
	return c
}

// Patch is a partial Config; nil fields keep their current value.
type Patch struct {
	DefaultTimeout   *time.Duration
	DefaultIsolation *IsolationLevel
	MaxNestedDepth   *int
	EnableStats      *bool
	EnableLogging    *bool
	CleanupInterval  *time.Duration
	MaxContextAge    *time.Duration
}

func (p Patch) apply(c Config) Config {
	if p.DefaultTimeout != nil {
		c.DefaultTimeout = *p.DefaultTimeout
	}
	if p.DefaultIsolation != nil {
		c.DefaultIsolation = *p.DefaultIsolation
	}
	if p.MaxNestedDepth != nil {
		c.MaxNestedDepth = *p.MaxNestedDepth
	}
	if p.EnableStats != nil {
		c.EnableStats = *p.EnableStats
	}
	if p.EnableLogging != nil {
		c.EnableLogging = *p.EnableLogging
	}
	if p.CleanupInterval != nil {
		c.CleanupInterval = *p.CleanupInterval
	}
	if p.MaxContextAge != nil {
		c.MaxContextAge = *p.MaxContextAge
	}
	return c.withDefaults()
}
