package model

// Subscription plans offered at signup. Unknown values are tolerated at
// approval time and fall back to the six-month term.
const (
	PlanMonthly3 = "monthly_3"
	PlanMonthly6 = "monthly_6"
	PlanYearly   = "yearly"
)

// Organization request statuses. A request is mutated exactly once:
// pending -> approved or pending -> rejected, both terminal.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// User roles. Super admins are organization-less and bypass tenant scoping.
const (
	RoleSuperAdmin = "super_admin"
	RoleOwner      = "owner"
	RoleTechnician = "technician"
)

// ValidPlan reports whether the plan is one of the offered subscription plans
func ValidPlan(plan string) bool {
	switch plan {
	case PlanMonthly3, PlanMonthly6, PlanYearly:
		return true
	}
	return false
}

// ValidRole reports whether the role is a known user role
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleOwner, RoleTechnician:
		return true
	}
	return false
}
