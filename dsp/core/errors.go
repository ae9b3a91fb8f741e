package core

import (
	"errors"
	"fmt"
)

// ErrConfig is matched by every [ConfigError] via errors.Is.
var ErrConfig = errors.New("invalid configuration")

// ConfigError reports an invalid configuration value. It is only returned
// from construction, Configure and Prepare calls, never from processing.
type ConfigError struct {
	Component string
	Param     string
	Value     any
	Reason    string
}

// NewConfigError returns a ConfigError for component/param.
func NewConfigError(component, param string, value any, reason string) *ConfigError {
	return &ConfigError{Component: component, Param: param, Value: value, Reason: reason}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Component, e.Param, e.Reason, e.Value)
}

// Is reports whether target is [ErrConfig].
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
