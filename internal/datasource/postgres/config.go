package postgres

import (
	"fmt"
	"time"
)

type Config struct {
	// URL wins over the host fields when both are set.
	URL string `yaml:"url"`

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

	// Logging wires the query log adapter into every connection;
	// SlowQuery raises queries beyond it to warnings.
	Logging   bool          `yaml:"logging"`
	SlowQuery time.Duration `yaml:"slow_query"`
}

func (c Config) dsn() string {
	if c.URL != "" {
		return c.URL
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		c.Auth.Username, c.Auth.Password, host, port, c.Database,
	)
}
