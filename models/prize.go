package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrizeCategory classifies catalog prizes. Magys-category prizes are the
// only ones resolved synchronously at redemption time.
type PrizeCategory string

const (
	PrizeCategoryMagys    PrizeCategory = "magys"
	PrizeCategoryCoupon   PrizeCategory = "coupon"
	PrizeCategoryGiftCard PrizeCategory = "gift_card"
	PrizeCategoryPhysical PrizeCategory = "physical"
)

// IsCurrencyCredit returns true if redeeming the prize credits Magys
// immediately
func (c PrizeCategory) IsCurrencyCredit() bool {
	return c == PrizeCategoryMagys
}

// Prize is a catalog entry. A nil Stock means unlimited; MagysAmount is set
// for magys-category prizes and holds the credited amount.
type Prize struct {
	ID          int64            `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description string           `db:"description" json:"description"`
	ImageURL    *string          `db:"image_url" json:"imageUrl,omitempty"`
	TicketCost  int64            `db:"ticket_cost" json:"ticketCost"`
	Stock       *int             `db:"stock" json:"stock,omitempty"`
	Category    PrizeCategory    `db:"category" json:"category"`
	MagysAmount *int64           `db:"magys_amount" json:"-"`
	RealValue   *decimal.Decimal `db:"real_value" json:"realValue,omitempty"`
	Active      bool             `db:"active" json:"active"`
	CreatedAt   time.Time        `db:"created_at" json:"-"`
}

// RedemptionState represents the fulfillment state of a redemption
type RedemptionState string

const (
	RedemptionStatePending   RedemptionState = "pending"
	RedemptionStateDelivered RedemptionState = "delivered"
	RedemptionStateCancelled RedemptionState = "cancelled"
)

// Redemption records one ticket-for-prize exchange
type Redemption struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"-"`
	PrizeID         int64           `db:"prize_id" json:"prizeId"`
	PrizeName       string          `db:"prize_name" json:"prize,omitempty"`
	TicketsSpent    int64           `db:"tickets_spent" json:"ticketsSpent"`
	State           RedemptionState `db:"state" json:"state"`
	ShippingAddress *string         `db:"shipping_address" json:"-"`
	TrackingCode    *string         `db:"tracking_code" json:"trackingCode,omitempty"`
	RedeemedAt      time.Time       `db:"redeemed_at" json:"redeemedAt"`
	DeliveredAt     *time.Time      `db:"delivered_at" json:"deliveredAt,omitempty"`
}

// RedeemResult is returned after a successful redemption
type RedeemResult struct {
	RedemptionID  int64           `json:"redemptionId"`
	PrizeName     string          `json:"prize"`
	TicketsSpent  int64           `json:"ticketsSpent"`
	State         RedemptionState `json:"state"`
	MagysCredited int64           `json:"magysCredited,omitempty"`
	TicketBalance int64           `json:"ticketBalance"`
}
