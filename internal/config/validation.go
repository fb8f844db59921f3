package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Validate reports settings outside their allowed ranges.
func (c *Config) Validate() error {
	if c == nil || c.Settings == nil {
		return fmt.Errorf("missing 'settings' field")
	}
	s := c.Settings

	if s.DebounceMs < 0 || s.DebounceMs > 5000 {
		return fmt.Errorf("debounceMs must be between 0 and 5000, got %d", s.DebounceMs)
	}
	if s.RecentLimit < 0 || s.RecentLimit > 50 {
		return fmt.Errorf("recentLimit must be between 0 and 50, got %d", s.RecentLimit)
	}
	if s.SearchLimit < 0 {
		return fmt.Errorf("searchLimit must not be negative, got %d", s.SearchLimit)
	}
	if s.LogLevel != "" {
		if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
			return fmt.Errorf("logLevel %q is not a valid level", s.LogLevel)
		}
	}

	// Threshold, weights, match length and backend are checked by the
	// search package itself.
	if err := c.SearchConfig().Validate(); err != nil {
		return err
	}

	return nil
}
