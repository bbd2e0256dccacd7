// Package version stamps reports with the scoring methodology version and
// decides whether two reports' scores are safely comparable.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the scoring methodology version embedded in every report.
// Any change to dimension weight defaults, the dimension set, or the
// aggregation formula bumps the major component; everything else bumps
// minor or patch.
const Version = "1.0.0"

// Compatible reports whether scores produced under the two methodology
// versions can be compared directly: true iff the major components are
// equal. Unparseable versions are never comparable.
func Compatible(a, b string) bool {
	va, vb := canonical(a), canonical(b)
	if va == "" || vb == "" {
		return false
	}
	return semver.Major(va) == semver.Major(vb)
}

// canonical normalizes to the "v"-prefixed form semver expects, returning
// "" for invalid input.
func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
