package services

import "fmt"

// ConfigError reports a service constructed without a required credential
// or endpoint. Fatal at construction time, never at call time.
type ConfigError struct {
	Service string
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s service: missing %s", e.Service, e.Missing)
}

// TransportError reports an HTTP-level failure from a remote API. Detail
// carries the server-provided error body when one was readable.
type TransportError struct {
	Service    string
	StatusCode int
	Detail     string
}

func (e *TransportError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s API request failed with status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s API request failed with status %d: %s", e.Service, e.StatusCode, e.Detail)
}
