package common

import (
	"fmt"
	"strings"
)

const (
	// DefaultBaseDir is the directory socket names are resolved against when
	// Config.BaseDir is empty.
	DefaultBaseDir = "/tmp"

	// DefaultBufferSize is the size of the internal buffer used by text
	// reads. One read returns at most this many bytes on the text path.
	DefaultBufferSize = 1024
)

// --------------------------------------------------------------------------
// IPC configuration struct
// --------------------------------------------------------------------------

// Config holds all configuration parameters for listeners, connections and
// clients. The zero value is usable; empty or zero fields fall back to the
// defaults via Normalized.
type Config struct {
	// BaseDir is the directory relative socket names are resolved against.
	// Names starting with the path separator bypass it entirely.
	BaseDir string

	// BufferSize is the size in bytes of the internal buffer used by text
	// reads.
	BufferSize int

	// TimeoutSecond is the per-operation read/write deadline in seconds for
	// blocking connections. Zero disables deadlines: accept, read and write
	// then block until completion or failure.
	TimeoutSecond int64

	// Logging configuration
	LogLevel string
}

// DefaultConfig returns a configuration with all defaults filled in.
func DefaultConfig() Config {
	return Config{
		BaseDir:    DefaultBaseDir,
		BufferSize: DefaultBufferSize,
		LogLevel:   "info",
	}
}

// Normalized returns a copy of the configuration with empty fields replaced
// by their defaults.
func (c Config) Normalized() Config {
	if c.BaseDir == "" {
		c.BaseDir = DefaultBaseDir
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// String returns a formatted string representation of the configuration
func (c Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	c = c.Normalized()

	addSection("Sockets")
	addField("Base Directory", c.BaseDir)
	addField("Buffer Size", fmt.Sprintf("%d bytes", c.BufferSize))
	if c.TimeoutSecond > 0 {
		addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	} else {
		addField("Timeout", "none")
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
