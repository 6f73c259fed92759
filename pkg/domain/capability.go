package domain

import dErrors "mintguard/pkg/domain-errors"

// Capability names a privilege an operator may hold. Capability storage and
// assignment live outside this service; callers present capabilities and the
// engine only checks membership.
type Capability string

// Supported capabilities.
const (
	CapabilityAdmin Capability = "ADMIN"
	CapabilityMint  Capability = "MINT"
	CapabilityBurn  Capability = "BURN"
)

// validCapabilities is the single source of truth for valid capabilities.
var validCapabilities = map[Capability]bool{
	CapabilityAdmin: true,
	CapabilityMint:  true,
	CapabilityBurn:  true,
}

// ParseCapability constructs a Capability from external input.
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown capability")
	}
	return c, nil
}

// IsValid checks if the capability is one of the supported enum values.
func (c Capability) IsValid() bool {
	return validCapabilities[c]
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// CapabilitySet is the set of capabilities presented by an operator.
type CapabilitySet map[Capability]bool

// NewCapabilitySet builds a set from parsed capabilities, dropping unknowns.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		if c.IsValid() {
			set[c] = true
		}
	}
	return set
}

// Has reports whether the set contains the capability.
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}
