package engine

// withStamp makes the engine write marker onto new coordinates instead of
// the policy marker.
func withStamp(marker string) Option {
	return func(e *Engine) {
		e.stamp = marker
	}
}
