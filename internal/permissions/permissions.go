// Package permissions decides which radio capabilities a scan needs on the
// running platform and which of them are still missing. The decision is a
// pure function of the platform version and the grants currently held; the
// interactive grant dialog itself is an external collaborator behind the
// Requester interface.
package permissions

import "sort"

// Capability is a named permission grant required before a radio operation
// is allowed.
type Capability string

const (
	CapRadio          Capability = "radio"
	CapRadioAdmin     Capability = "radio.admin"
	CapRadioScan      Capability = "radio.scan"
	CapCoarseLocation Capability = "location.coarse"
)

// ScanCapabilityVersion is the platform version at which the dedicated scan
// capability replaces the coarse-location requirement.
const ScanCapabilityVersion = 31

// Set is an unordered collection of capabilities.
type Set map[Capability]struct{}

// NewSet builds a Set from the given capabilities.
func NewSet(caps ...Capability) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether the capability is in the set.
func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// IsEmpty reports whether the set holds no capabilities.
func (s Set) IsEmpty() bool {
	return len(s) == 0
}

// Sorted returns the capabilities in deterministic order, for logging and
// for handing to the grant dialog.
func (s Set) Sorted() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Required returns the capability set a scan needs on the given platform
// version. Recomputed on every check, never cached.
func Required(platformVersion int) Set {
	if platformVersion < ScanCapabilityVersion {
		return NewSet(CapRadio, CapRadioAdmin, CapCoarseLocation)
	}
	return NewSet(CapRadio, CapRadioAdmin, CapRadioScan)
}

// Missing returns the required capabilities not present in granted.
func Missing(platformVersion int, granted Set) Set {
	missing := Set{}
	for c := range Required(platformVersion) {
		if !granted.Has(c) {
			missing[c] = struct{}{}
		}
	}
	return missing
}

// HasSufficient reports whether every required capability is granted.
func HasSufficient(platformVersion int, granted Set) bool {
	return Missing(platformVersion, granted).IsEmpty()
}

// Requester asks the platform to grant capabilities. The request surfaces an
// OS-level dialog and completes asynchronously; callers re-check via Missing
// afterwards rather than trusting a return value.
type Requester interface {
	RequestCapabilities(required Set)
}
