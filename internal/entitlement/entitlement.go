package entitlement

import (
	"strings"
	"time"
)

// Plan is the normalized membership tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPlus Plan = "plus"
	PlanX    Plan = "x"
)

// ParsePlan classifies a raw plan string against known aliases.
// Unknown values fall back to free.
func ParsePlan(raw string) Plan {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "plus", "myanmatch+", "myanmatch plus", "plus_monthly":
		return PlanPlus
	case "x", "myanmatchx", "myanmatch x", "x_monthly":
		return PlanX
	default:
		return PlanFree
	}
}

// Paid reports whether the plan is a paid tier.
func (p Plan) Paid() bool { return p == PlanPlus || p == PlanX }

// Status is the gate result for a profile's plan columns.
type Status struct {
	Plan      Plan
	ExpiresAt *time.Time
	Active    bool
}

// Resolve computes the entitlement gate: active iff a paid plan whose
// expiry is strictly after now. A paid plan with no expiry set is treated
// as expired. No grace period.
func Resolve(rawPlan string, expiresAt *time.Time, now time.Time) Status {
	plan := ParsePlan(rawPlan)
	st := Status{Plan: plan, ExpiresAt: expiresAt}
	if !plan.Paid() {
		return st
	}
	if expiresAt != nil && expiresAt.After(now) {
		st.Active = true
	}
	return st
}
