package transpile

// Layer is a single source of declared options (consumer-declared,
// host-declared). Layers are treated as immutable: nothing in this package
// writes to a Layer or hands out references to its nested structures.
type Layer map[string]any

// Plugin names one transform in the final ordered sequence, optionally
// carrying per-plugin options. The Name is an opaque identifier resolved by
// the transform engine.
type Plugin struct {
	Name    string
	Options map[string]any
}

// ModuleResolver rewrites a module specifier into the identifier the host
// runtime expects. fromFile is the tree-relative path of the importing file.
type ModuleResolver func(specifier, fromFile string) string

// Environment classifies the build. It is sampled from process-wide state at
// the host boundary only; everything below receives it as a plain value.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Other       Environment = "other"
)

// EnvironmentFromString maps a raw environment string (typically an
// environment variable sampled by the host) onto the recognized values.
func EnvironmentFromString(raw string) Environment {
	switch raw {
	case "development", "dev":
		return Development
	case "production", "prod":
		return Production
	default:
		return Other
	}
}

// VersionComparator exposes the single comparison shouldCompileModules needs:
// whether the host toolchain's declared version is greater than the supplied
// semantic version. Any implementation shape is accepted; callers never see
// how the version is parsed.
type VersionComparator interface {
	GreaterThan(version string) (bool, error)
}

// VersionComparatorFunc adapts a function to VersionComparator.
type VersionComparatorFunc func(version string) (bool, error)

// GreaterThan implements VersionComparator.
func (f VersionComparatorFunc) GreaterThan(version string) (bool, error) {
	return f(version)
}
