package dtos

type RevenuePoint struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type DashboardStats struct {
	TotalProperties     int            `json:"total_properties"`
	OccupiedProperties  int            `json:"occupied_properties"`
	VacantProperties    int            `json:"vacant_properties"`
	TotalTenants        int            `json:"total_tenants"`
	ActiveLeases        int            `json:"active_leases"`
	TotalMonthlyRent    float64        `json:"total_monthly_rent"`
	TotalCollected      float64        `json:"total_collected"`
	PendingAmount       float64        `json:"pending_amount"`
	ActiveVacancies     int            `json:"active_vacancies"`
	OccupancyRate       float64        `json:"occupancy_rate"`
	RevenueChart        []RevenuePoint `json:"revenue_chart"`
	UnreadNotifications int            `json:"unread_notifications"`
}

type CalendarEventType string

const (
	EventPaymentDue  CalendarEventType = "payment_due"
	EventPaymentDone CalendarEventType = "payment_done"
	EventLeaseEnd    CalendarEventType = "lease_end"
	EventVacancy     CalendarEventType = "vacancy"
)

type CalendarEvent struct {
	ID           string            `json:"id"`
	Type         CalendarEventType `json:"type"`
	Title        string            `json:"title"`
	Date         string            `json:"date"`
	BusinessDate string            `json:"business_date,omitempty"`
	Amount       float64           `json:"amount,omitempty"`
	PropertyName string            `json:"property_name,omitempty"`
	TenantName   string            `json:"tenant_name,omitempty"`
	RelatedID    string            `json:"related_id"`
}

type CalendarResponse struct {
	Month  int             `json:"month"`
	Year   int             `json:"year"`
	Events []CalendarEvent `json:"events"`
}
