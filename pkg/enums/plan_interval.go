package enums

import "fmt"

// PlanInterval defines the cadence for a club billing plan.
type PlanInterval string

const (
	PlanIntervalMonthly PlanInterval = "monthly"
	PlanIntervalYearly  PlanInterval = "yearly"
)

var validPlanIntervals = []PlanInterval{
	PlanIntervalMonthly,
	PlanIntervalYearly,
}

// String implements fmt.Stringer.
func (p PlanInterval) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanInterval.
func (p PlanInterval) IsValid() bool {
	for _, candidate := range validPlanIntervals {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlanInterval converts the raw string to PlanInterval.
func ParsePlanInterval(value string) (PlanInterval, error) {
	for _, candidate := range validPlanIntervals {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan interval %q", value)
}
