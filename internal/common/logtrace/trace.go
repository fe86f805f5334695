package logtrace

// IsTraceEnabled reports whether verbose route tracing is on. Kept as a
// switch for local debugging; off in normal operation.
func IsTraceEnabled() bool {
	return false
}
