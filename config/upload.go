package config

const (
	defaultUploadConcurrency = 4
	maxUploadConcurrency     = 16
)

// UploadConfig bounds attachment and document I/O.
type UploadConfig struct {
	// MaxConcurrency caps parallel attachment reads and document fetches.
	MaxConcurrency int `env:"MAX_CONCURRENCY" envDefault:"4"`
}

// Sanitize clamps MaxConcurrency to [1, 16].
func (c *UploadConfig) Sanitize() {
	switch {
	case c.MaxConcurrency <= 0:
		c.MaxConcurrency = defaultUploadConcurrency
	case c.MaxConcurrency > maxUploadConcurrency:
		c.MaxConcurrency = maxUploadConcurrency
	}
}
