package domain

import "time"

// Role of a user inside a tenant
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// PlanType of a customer's subscription
type PlanType string

const (
	PlanFree    PlanType = "free"
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

// SubscriptionStatus of a customer's plan
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// User is an admin or a customer of a company
type User struct {
	ID        int64
	CompanyID int64
	Name      string
	Email     string
	Role      Role

	PlanType              PlanType
	SubscriptionStatus    SubscriptionStatus
	SubscriptionStartDate *time.Time
	SubscriptionEndDate   *time.Time
	BookingLimit          *int // nil = unbounded
	BookingUsed           int
	FreePlanUsed          bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin returns true for company administrators
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsFreePlan returns true if the booking quota applies
func (u *User) IsFreePlan() bool {
	return u.PlanType == PlanFree
}

// IsSubscriptionExpired returns true if the plan no longer allows bookings
func (u *User) IsSubscriptionExpired() bool {
	return u.SubscriptionStatus == SubscriptionExpired
}

// QuotaReached returns true if a free-plan customer used the whole booking limit
func (u *User) QuotaReached() bool {
	if !u.IsFreePlan() || u.BookingLimit == nil {
		return false
	}
	return u.BookingUsed >= *u.BookingLimit
}

// IsValid returns true for known plans
func (p PlanType) IsValid() bool {
	return p == PlanFree || p == PlanMonthly || p == PlanYearly
}

// IsPaid returns true for plans with an unbounded quota
func (p PlanType) IsPaid() bool {
	return p == PlanMonthly || p == PlanYearly
}

// Quota is the customer's booking counter after an atomic change
type Quota struct {
	PlanType     PlanType `json:"planType"`
	BookingLimit *int     `json:"bookingLimit"`
	BookingUsed  int      `json:"bookingUsed"`
}

// Quota returns the current quota fields of the user
func (u *User) Quota() Quota {
	return Quota{PlanType: u.PlanType, BookingLimit: u.BookingLimit, BookingUsed: u.BookingUsed}
}
