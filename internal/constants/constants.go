package constants

import (
	"time"
)

// Listing limits
const (
	NotificationsListLimit = 100
	AuditLogsDefaultLimit  = 100
	AuditLogsMaxLimit      = 500
	RevenueChartMonths     = 6
)

// Teams
const (
	InvitationTTL        = 7 * 24 * time.Hour
	InvitationTokenBytes = 32
)

// Delivery
const (
	SMTPDialTimeout    = 15 * time.Second
	ReminderRunTimeout = 10 * time.Minute
)

// Documents
const (
	DefaultMaxUploadBytes = 10 << 20
	DocumentFormField     = "file"
)

// Rate limiter housekeeping
const (
	RateLimiterCleanupEvery = 10 * time.Minute
	RateLimiterMaxIdle      = 30 * time.Minute
)

// Server
const (
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 60 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 20 * time.Second
)
