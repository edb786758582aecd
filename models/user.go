package models

import "time"

// User represents a registered customer.
// Each user owns exactly one Magys account and one ticket account, both
// provisioned with zero balance at registration.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
