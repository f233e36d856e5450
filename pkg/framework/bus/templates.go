package bus

// Common bus configuration templates for effect plugins

// MonoOrStereoMatched accepts a mono or stereo main output whose input has
// the same channel count.
func MonoOrStereoMatched(l Layout) bool {
	if l.MainOutput != 1 && l.MainOutput != 2 {
		return false
	}
	return l.MainInput == l.MainOutput
}

// NewEffectStereo creates a standard stereo effect configuration that also
// negotiates down to mono.
func NewEffectStereo() *Configuration {
	return NewBuilder().
		WithStereoInput("Stereo In").
		WithStereoOutput("Stereo Out").
		WithLayoutPredicate(MonoOrStereoMatched).
		MustBuild()
}
