// Package planlimit implements the plan quota gate: pure checks that
// decide whether a user may create another resource under their
// current plan, and the closed set of plan feature flags.
package planlimit

import (
	"fmt"
	"strings"
)

// CanCreate reports whether a new resource may be created given the
// current count and the plan's limit. The boundary count == limit is a
// denial.
func CanCreate(count, limit int) bool {
	return count < limit
}

// Remaining returns how many more resources the plan allows, never
// negative.
func Remaining(count, limit int) int {
	if limit <= count {
		return 0
	}
	return limit - count
}

// UpgradePath is where the denial message sends the user.
const UpgradePath = "/settings/subscription"

// Decision is the outcome of a quota check. On denial Message carries
// the single user-facing notification with its upgrade call-to-action.
type Decision struct {
	Allowed     bool   `json:"allowed"`
	Remaining   int    `json:"remaining"`
	Message     string `json:"message,omitempty"`
	UpgradePath string `json:"upgrade_path,omitempty"`
}

// Check gates the creation of one resource of the named kind
// ("link", "QR code", "team member").
func Check(resource string, count, limit int) Decision {
	if CanCreate(count, limit) {
		return Decision{Allowed: true, Remaining: Remaining(count, limit)}
	}
	return Decision{
		Allowed:     false,
		Message:     fmt.Sprintf("%s limit reached (%d). Upgrade your plan to create more.", capitalize(resource), limit),
		UpgradePath: UpgradePath,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
