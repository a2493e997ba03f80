package domain

import "time"

type AuditAction string

const (
	AuditCashierOpen     AuditAction = "CASHIER_OPEN"
	AuditCashierClose    AuditAction = "CASHIER_CLOSE"
	AuditCashierEntry    AuditAction = "CASHIER_ENTRY"
	AuditCashierExit     AuditAction = "CASHIER_EXIT"
	AuditCashierCancel   AuditAction = "CASHIER_CANCEL"
	AuditRentalCreate    AuditAction = "RENTAL_CREATE"
	AuditRentalComplete  AuditAction = "RENTAL_COMPLETE"
	AuditRentalCancel    AuditAction = "RENTAL_CANCEL"
	AuditRentalToCashier AuditAction = "RENTAL_TO_CASHIER"
	AuditPaymentCreate   AuditAction = "PAYMENT_CREATE"
	AuditItemCreate      AuditAction = "ITEM_CREATE"
	AuditItemUpdate      AuditAction = "ITEM_UPDATE"
	AuditItemPricing     AuditAction = "ITEM_PRICING"
	AuditItemMaintenance AuditAction = "ITEM_MAINTENANCE"
	AuditClientCreate    AuditAction = "CLIENT_CREATE"
	AuditClientUpdate    AuditAction = "CLIENT_UPDATE"
)

type AuditEvent struct {
	ID         string      `json:"id"`
	UserID     int64       `json:"user_id"`
	Action     AuditAction `json:"action"`
	Resource   string      `json:"resource"`
	ResourceID int64       `json:"resource_id"`
	Details    string      `json:"details"`
	IPAddress  string      `json:"ip_address"`
	RequestID  string      `json:"request_id"`
	CreatedAt  time.Time   `json:"created_at"`
}
