package transpile

import (
	goversion "github.com/hashicorp/go-version"
)

// HostVersion is a VersionComparator over the host toolchain's declared
// semantic version.
type HostVersion struct {
	version *goversion.Version
}

// NewHostVersion parses the host toolchain's declared version.
func NewHostVersion(raw string) (*HostVersion, error) {
	v, err := goversion.NewVersion(raw)
	if err != nil {
		return nil, wrapConfigError("host-version", raw, err)
	}
	return &HostVersion{version: v}, nil
}

// GreaterThan reports whether the host version is greater than other.
func (h *HostVersion) GreaterThan(other string) (bool, error) {
	if h == nil || h.version == nil {
		return false, ErrNoComparator
	}
	o, err := goversion.NewVersion(other)
	if err != nil {
		return false, wrapConfigError("host-version", other, err)
	}
	return h.version.GreaterThan(o), nil
}
