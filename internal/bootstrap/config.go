package bootstrap

import (
	"time"

	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/txn"
)

// Config describes one datasource to install. Driver-specific knobs are
// translated in build().
type Config struct {
	// Name is the registration name; empty means txn.DefaultSource.
	Name string `yaml:"name"`

	// Type selects the driver; required.
	Type string `yaml:"type"`

	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     uint16 `yaml:"port"`
	Database string `yaml:"database"`

	Auth struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`

	Pool struct {
		MinSize int32 `yaml:"minSize"`
		MaxSize int32 `yaml:"maxSize"`
	} `yaml:"pool"`

	Timeout   time.Duration `yaml:"timeout"`
	Logging   bool          `yaml:"logging"`
	SlowQuery time.Duration `yaml:"slow_query"`
}

// embedded engines carry their storage with them and need no host,
// URL or database name to reach it.
var embedded = map[string]bool{
	"sqlite": true,
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = txn.DefaultSource
	}
	return c
}

func (c Config) validate() error {
	if c.Type == "" {
		return errors.Fail("install datasource " + c.Name + ": no type configured")
	}
	if embedded[c.Type] {
		return nil
	}
	if c.Host == "" && c.URL == "" {
		return errors.Fail("install datasource " + c.Name + ": neither host nor url configured")
	}
	if c.Database == "" {
		return errors.Fail("install datasource " + c.Name + ": no database configured")
	}
	return nil
}
