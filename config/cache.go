package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CacheDriver selects the local session cache backend.
type CacheDriver string

const (
	// CacheDriverSQLite stores the session in an on-device SQLite file.
	CacheDriverSQLite CacheDriver = "sqlite"
	// CacheDriverRedis stores the session in a Redis reachable from the device.
	CacheDriverRedis CacheDriver = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for CacheDriver.
func (d *CacheDriver) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "sqlite", "redis":
		*d = CacheDriver(v)
		return nil
	default:
		return fmt.Errorf("invalid CacheDriver: %q (valid options: sqlite, redis)", v)
	}
}

// CacheConfig contains local session cache configuration.
type CacheConfig struct {
	Driver CacheDriver `env:"DRIVER" envDefault:"sqlite"`

	// SQLitePath defaults to ~/.profilegate/session.db.
	SQLitePath string `env:"SQLITE_PATH"`

	// RedisPrefix namespaces every key written by the redis driver.
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"profilegate:"`
}

// Sanitize fills the default SQLite path.
func (c *CacheConfig) Sanitize() {
	c.SQLitePath = strings.TrimSpace(c.SQLitePath)
	if c.SQLitePath == "" {
		c.SQLitePath = DefaultSQLitePath()
	}
	if c.Driver == "" {
		c.Driver = CacheDriverSQLite
	}
}

// DefaultSQLitePath returns the per-user cache location, falling back to the
// temp directory when no home directory is known.
func DefaultSQLitePath() string {
	base, err := os.UserHomeDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, ".profilegate", "session.db")
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
