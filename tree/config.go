package tree

import "github.com/nomasters/mailtree/logger"

// Config carries the tree's tunables, mirroring storage/mmap's
// Config/DefaultConfig pattern: passed once at Create/OpenOrCreate time
// and immutable for the handle's lifetime.
type Config struct {
	// MinRecords is the floor on node-store capacity; MIN_SIZE =
	// headerSize + MinRecords*nodeSize.
	MinRecords int

	// GrowPercentage is the percentage of the owning index's
	// messages_count added as new node slots whenever growth is
	// triggered (_mail_tree_grow).
	GrowPercentage int

	// TruncatePercentage is the fraction of mmap_full_length that must
	// be empty before _mail_tree_truncate acts.
	TruncatePercentage int

	// TruncateKeepPercentage is the fraction of the empty space kept
	// as slack after truncation.
	TruncateKeepPercentage int

	// Anonymous selects an anonymous (in-memory only) backing mapping
	// instead of a file-backed one.
	Anonymous bool

	// Logger is kept on the handle; defaults to a no-op so that
	// importing mailtree never forces a logging framework on a caller
	// that didn't ask for one. The tree's own operations emit no log
	// messages through it.
	Logger logger.Logger
}

// DefaultConfig returns a Config built from the original's own
// INDEX_* defaults.
func DefaultConfig() *Config {
	return &Config{
		MinRecords:             defaultMinRecords,
		GrowPercentage:         defaultGrowPercentage,
		TruncatePercentage:     defaultTruncatePercentage,
		TruncateKeepPercentage: defaultTruncateKeepPercentage,
		Anonymous:              false,
		Logger:                 logger.NewNoOp(),
	}
}

func (c *Config) minSize() int64 {
	return int64(headerSize) + int64(c.MinRecords)*int64(nodeSize)
}

func (c *Config) logger() logger.Logger {
	if c.Logger == nil {
		return logger.NewNoOp()
	}
	return c.Logger
}
