package depsdev

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateSystem checks that system names a supported package system.
// Matching is case-insensitive. When allowed is non-empty the check runs
// against that subset instead of [Systems]; endpoints restricted upstream
// (requirements, capabilities, ...) pass their own subset.
func ValidateSystem(system string, allowed ...string) error {
	if len(allowed) == 0 {
		allowed = Systems
	}
	if !containsFold(allowed, system) {
		return fmt.Errorf("%w: %q (available for %s)",
			ErrUnsupportedSystem, system, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateHash checks that hashType names a supported hash algorithm.
// Matching is case-insensitive.
func ValidateHash(hashType string) error {
	if !containsFold(Hashes, hashType) {
		return fmt.Errorf("%w: %q (available for %s)",
			ErrUnsupportedHash, hashType, strings.Join(Hashes, ", "))
	}
	return nil
}

// EncodeURLParam percent-encodes a path segment or query value.
// Package names such as "@colors/colors" must be encoded before being
// placed in an endpoint path.
func EncodeURLParam(param string) string {
	return url.QueryEscape(param)
}

func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
