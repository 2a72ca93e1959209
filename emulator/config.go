package emulator

import "github.com/zeozeozeo/psxdma/logger"

// Engine tuning that is not part of the emulated hardware
type Config struct {
	// Number of linked list headers a single transfer may read before the
	// chain is considered broken
	MaxListNodes uint32
	// Consecutive ticks a channel may stay paused before it gets reported
	// as stalled. Zero disables the report
	StallTicks uint64
	// Log channel starts and completions
	Trace bool
	// Receives configuration errors and anomalies. Nil means the central
	// logger
	Diagnostic func(port Port, err error)
}

// Returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		MaxListNodes: 0x10000,
		StallTicks:   1 << 20,
	}
}

func (cfg *Config) report(port Port, err error) {
	if cfg.Diagnostic != nil {
		cfg.Diagnostic(port, err)
		return
	}
	logger.Logf(logger.Allow, "dma", "%s: %v", port, err)
}
