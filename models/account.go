package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestState represents the lifecycle state of an account request
type RequestState string

const (
	RequestStatePending  RequestState = "pending"
	RequestStateApproved RequestState = "approved"
	RequestStateRejected RequestState = "rejected"
)

// IsTerminal returns true once the request can no longer transition
func (s RequestState) IsTerminal() bool {
	return s == RequestStateApproved || s == RequestStateRejected
}

// ResolveAction is the admin decision on a pending request
type ResolveAction string

const (
	ResolveActionApprove ResolveAction = "approve"
	ResolveActionReject  ResolveAction = "reject"
)

// ProductTypeCurrentAccount identifies the current-account product in
// product requests and reward rules
const ProductTypeCurrentAccount = "current_account"

// CurrentAccount is a banking current account. It is created in pending
// state by a request and activated (or rejected) by an admin; the one-time
// Magys reward is issued only on approval.
type CurrentAccount struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"-"`
	AccountNumber   string          `db:"account_number" json:"accountNumber"`
	Balance         decimal.Decimal `db:"balance" json:"balance"`
	State           RequestState    `db:"state" json:"state"`
	RequestedAt     time.Time       `db:"requested_at" json:"requestedAt"`
	ResolvedAt      *time.Time      `db:"resolved_at" json:"resolvedAt,omitempty"`
	RejectionReason *string         `db:"rejection_reason" json:"rejectionReason,omitempty"`
	ApprovalNotes   *string         `db:"approval_notes" json:"-"`
}

// PendingRequest is an admin-facing view of a pending account request
type PendingRequest struct {
	ID            int64     `db:"id" json:"id"`
	AccountNumber string    `db:"account_number" json:"accountNumber"`
	UserID        int64     `db:"user_id" json:"userId"`
	UserName      string    `db:"user_name" json:"userName"`
	UserEmail     string    `db:"user_email" json:"userEmail"`
	RequestedAt   time.Time `db:"requested_at" json:"requestedAt"`
}

// ProductRequest is the companion tracking record kept per product request
// for UI display
type ProductRequest struct {
	ID              int64        `db:"id"`
	UserID          int64        `db:"user_id"`
	ProductType     string       `db:"product_type"`
	ProductID       int64        `db:"product_id"`
	State           RequestState `db:"state"`
	RejectionReason *string      `db:"rejection_reason"`
	Notes           *string      `db:"notes"`
	CreatedAt       time.Time    `db:"created_at"`
	ResolvedAt      *time.Time   `db:"resolved_at"`
}

// RewardRule configures the one-time Magys reward per product type.
// An inactive or missing rule yields zero reward, which is a no-op, not an
// error.
type RewardRule struct {
	ID          int64  `db:"id"`
	ProductType string `db:"product_type"`
	MagysAmount int64  `db:"magys_amount"`
	Description string `db:"description"`
	Active      bool   `db:"active"`
}

// RequestAccountResult is returned after a successful account request
type RequestAccountResult struct {
	AccountID     int64        `json:"accountId"`
	AccountNumber string       `json:"accountNumber"`
	State         RequestState `json:"state"`
}

// ResolveRequestResult is returned after an admin resolves a request
type ResolveRequestResult struct {
	AccountID     int64        `json:"accountId"`
	AccountNumber string       `json:"accountNumber"`
	State         RequestState `json:"state"`
	RewardIssued  int64        `json:"rewardIssued"`
}

// Dashboard aggregates the user-facing home view
type Dashboard struct {
	User            *User             `json:"user"`
	Magys           int64             `json:"magys"`
	Accounts        []*CurrentAccount `json:"accounts"`
	PendingRequests []*CurrentAccount `json:"pendingRequests"`
}
