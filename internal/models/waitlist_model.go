package models

import "time"

// WaitlistEntry is a pre-launch signup.
type WaitlistEntry struct {
	ID          string    `json:"id" firestore:"-"`
	Email       string    `json:"email" firestore:"email"`
	VentureName string    `json:"ventureName" firestore:"ventureName"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// JoinWaitlistRequest is the body of POST /api/waitlist.
type JoinWaitlistRequest struct {
	Email       string `json:"email" binding:"required,email,max=320"`
	VentureName string `json:"ventureName" binding:"required,min=1,max=200"`
}
