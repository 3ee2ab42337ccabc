package output

// ConfigPort reads process-level settings such as API keys.
type ConfigPort interface {
	// FirstOf returns the first non-empty value among keys.
	FirstOf(keys ...string) string
}
