package util

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const MaxURLLength = 2048

var ErrInvalidURL = errors.New("invalid URL")

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("%w: URL cannot be empty", ErrInvalidURL)
	}

	if len(raw) > MaxURLLength {
		return fmt.Errorf("%w: URL exceeds maximum length of %d characters", ErrInvalidURL, MaxURLLength)
	}

	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w: malformed URL", ErrInvalidURL)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: URL must use http or https (include http:// or https://)", ErrInvalidURL)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%w: URL must have a host", ErrInvalidURL)
	}

	return nil
}
