package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationReminderSent NotificationType = "reminder_sent"
	NotificationLatePayment  NotificationType = "late_payment"
	NotificationLeaseEnding  NotificationType = "lease_ending"
	NotificationVacancy      NotificationType = "vacancy"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	RelatedID *uuid.UUID       `json:"related_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
