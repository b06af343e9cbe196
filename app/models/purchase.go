package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
)

// Purchase records one checkout attempt. Amount is fixed at creation time;
// Status only ever moves out of pending, via the payment webhook.
type Purchase struct {
	ID        string          `json:"id"`
	CourseID  string          `json:"courseId"`
	UserID    string          `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    PurchaseStatus  `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}
