package dtos

// PropertyRequest is the body of create and update; updates replace every
// descriptive field.
type PropertyRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Address      string  `json:"address" validate:"required"`
	City         string  `json:"city" validate:"required"`
	PostalCode   string  `json:"postal_code" validate:"required"`
	PropertyType string  `json:"property_type" validate:"required"`
	Surface      float64 `json:"surface" validate:"gte=0"`
	Rooms        int     `json:"rooms" validate:"gte=0"`
	RentAmount   float64 `json:"rent_amount" validate:"gte=0"`
	Charges      float64 `json:"charges" validate:"gte=0"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"image_url" validate:"omitempty,url"`
}

type TenantRequest struct {
	FirstName        string  `json:"first_name" validate:"required,max=100"`
	LastName         string  `json:"last_name" validate:"required,max=100"`
	Email            string  `json:"email" validate:"omitempty,email"`
	Phone            string  `json:"phone"`
	BirthDate        *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Profession       *string `json:"profession"`
	EmergencyContact *string `json:"emergency_contact"`
	Notes            *string `json:"notes"`
}
