package models

import "time"

type Plan string

const (
	PlanTrial Plan = "trial"
	PlanPro   Plan = "pro"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User mirrors the identity provider's profile. The document id is the provider's user id.
type User struct {
	ID        string    `json:"id" firestore:"-"`
	Email     string    `json:"email" firestore:"email"`
	FirstName string    `json:"firstName,omitempty" firestore:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty" firestore:"lastName,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	Plan      Plan      `json:"plan" firestore:"plan"`
	Role      Role      `json:"role" firestore:"role"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// PlanInfo is the response of GET /api/plan.
type PlanInfo struct {
	Plan         Plan `json:"plan"`
	UsageCount   int  `json:"usageCount"`
	MaxCreations int  `json:"maxCreations"`
	IsAdmin      bool `json:"isAdmin"`
}

// UnlimitedCreations is the MaxCreations sentinel for pro and admin users.
const UnlimitedCreations = -1
