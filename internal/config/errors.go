package config

import (
	"errors"
	"fmt"
	"strings"
)

// Hints used when an error is built without one.
const (
	initHint    = "Run 'tulz config init' to write ~/.tulz.json, or run without a config to use built-in defaults"
	restoreHint = "Restore ~/.tulz.json from ~/.tulz.json.bak, or delete it and run 'tulz config init'"
)

// PermissionError reports a config file tulz cannot read or write.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string // shell command that restores access
	Details string
}

func (e *PermissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tulz: permission denied (cannot %s config): %s\n", e.Op, e.Path)
	if e.Details != "" {
		b.WriteString(e.Details + "\n")
	}
	if e.Fix != "" {
		b.WriteString("💡 Fix: " + e.Fix)
	}
	return b.String()
}

// ConfigNotFoundError is returned by LoadFrom for a missing file. Callers
// that can run on defaults check for it with IsNotFound.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	hint := e.Hint
	if hint == "" {
		hint = initHint
	}
	return fmt.Sprintf("tulz: config file not found: %s\n\n💡 %s", e.Path, hint)
}

// InvalidConfigError reports a config that does not parse or validate.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string

	// Err is the underlying parse or validation error, if any.
	Err error
}

func (e *InvalidConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tulz: invalid config: %s\n", e.Path)
	if e.Message != "" {
		b.WriteString(e.Message + "\n")
	}
	hint := e.Hint
	if hint == "" {
		hint = restoreHint
	}
	b.WriteString("💡 " + hint)
	return b.String()
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is, or wraps, a ConfigNotFoundError.
func IsNotFound(err error) bool {
	var notFound *ConfigNotFoundError
	return errors.As(err, &notFound)
}
