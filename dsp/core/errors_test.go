package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigErrorMatchesSentinel(t *testing.T) {
	err := NewConfigError("stft", "hop size", 3000, "must be <= transformSize/2")

	if !errors.Is(err, ErrConfig) {
		t.Fatal("errors.Is(err, ErrConfig) = false, want true")
	}

	wrapped := fmt.Errorf("prepare: %w", err)
	if !errors.Is(wrapped, ErrConfig) {
		t.Fatal("wrapped ConfigError no longer matches ErrConfig")
	}

	var cfgErr *ConfigError
	if !errors.As(wrapped, &cfgErr) || cfgErr.Param != "hop size" {
		t.Fatalf("errors.As() = %v, want ConfigError for hop size", cfgErr)
	}

	want := "stft: hop size must be <= transformSize/2: 3000"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
