package transpile

// ResolveSource picks the single authoritative options layer among the places
// options may have been declared. A consuming module's own options strictly
// dominate the hosting application's options; the two are never merged at
// this stage. When neither source declared anything the result is an empty,
// non-nil layer.
func ResolveSource(consumer, host Layer) Layer {
	if consumer != nil {
		return consumer
	}
	if host != nil {
		return host
	}
	return Layer{}
}
