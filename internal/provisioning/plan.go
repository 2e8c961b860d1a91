package provisioning

import (
	"time"

	"repairhub/internal/model"
)

// SubscriptionEnd computes the subscription end date for a plan starting
// at the given time. Unknown or legacy plan values fall back to the
// six-month term rather than failing.
func SubscriptionEnd(plan string, from time.Time) time.Time {
	switch plan {
	case model.PlanMonthly3:
		return from.AddDate(0, 3, 0)
	case model.PlanMonthly6:
		return from.AddDate(0, 6, 0)
	case model.PlanYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 6, 0)
	}
}
