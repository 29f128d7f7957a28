package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/asapfoodtrailer/dealerd/internal/models"
)

// CreateLeadRequest is the request body for submitting a quote request.
type CreateLeadRequest struct {
	CustomerName string `json:"customer_name" example:"Dana Fields"`
	Email        string `json:"email" example:"dana@example.com"`
	Phone        string `json:"phone,omitempty" example:"+1-713-555-0101"`
	VehicleID    string `json:"vehicle_id,omitempty"`
	Message      string `json:"message" example:"Interested in the 16ft trailer"`
}

// Validate checks the lead submission.
func (r CreateLeadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CustomerName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Message, validation.Length(0, 5000)),
	)
}

// Lead converts the request into the domain record.
func (r CreateLeadRequest) Lead() models.Lead {
	return models.Lead{
		CustomerName: r.CustomerName,
		Email:        r.Email,
		Phone:        r.Phone,
		VehicleID:    r.VehicleID,
		Message:      r.Message,
	}
}

// CreateVehicleRequest is the request body for adding a listing.
type CreateVehicleRequest struct {
	Title       string       `json:"title" example:"16ft Concession Trailer"`
	Description string       `json:"description,omitempty"`
	Price       int          `json:"price" example:"24500"`
	Category    string       `json:"category" example:"trailer"`
	Condition   string       `json:"condition,omitempty" example:"new"`
	Usage       string       `json:"usage,omitempty" example:"sale"`
	Status      string       `json:"status,omitempty" example:"available"`
	Featured    bool         `json:"featured,omitempty"`
	Specs       models.Specs `json:"specs,omitempty"`
	Images      []string     `json:"images,omitempty"`
}

// Validate checks the listing fields against the closed vocabularies.
func (r CreateVehicleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Price, validation.Min(0)),
		validation.Field(&r.Category, validation.Required,
			validation.In(models.CategoryTruck, models.CategoryTrailer)),
		validation.Field(&r.Condition,
			validation.In(models.ConditionNew, models.ConditionUsed)),
		validation.Field(&r.Usage,
			validation.In(models.UsageSale, models.UsageRent)),
		validation.Field(&r.Status,
			validation.In(models.StatusAvailable, models.StatusRented, models.StatusSold)),
	)
}

// Vehicle converts the request into the domain record. Derived fields (id,
// slug, primary image) are filled downstream.
func (r CreateVehicleRequest) Vehicle() models.Vehicle {
	return models.Vehicle{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Condition:   r.Condition,
		Usage:       r.Usage,
		Status:      r.Status,
		Featured:    r.Featured,
		Specs:       r.Specs,
		Images:      r.Images,
	}
}

// UpdateVehicleRequest is the partial-update body; absent fields are left
// untouched.
type UpdateVehicleRequest = models.VehiclePatch

// ValidatePatch checks only the supplied fields of a partial update.
func ValidatePatch(p models.VehiclePatch) error {
	return validation.Errors{
		"title":     validateIfSet(p.Title, validation.Length(1, 300)),
		"price":     validateIntIfSet(p.Price, validation.Min(0)),
		"category":  validateIfSet(p.Category, validation.In(models.CategoryTruck, models.CategoryTrailer)),
		"condition": validateIfSet(p.Condition, validation.In(models.ConditionNew, models.ConditionUsed)),
		"usage":     validateIfSet(p.Usage, validation.In(models.UsageSale, models.UsageRent)),
		"status":    validateIfSet(p.Status, validation.In(models.StatusAvailable, models.StatusRented, models.StatusSold)),
	}.Filter()
}

func validateIfSet(s *string, rules ...validation.Rule) error {
	if s == nil {
		return nil
	}
	return validation.Validate(*s, rules...)
}

func validateIntIfSet(n *int, rules ...validation.Rule) error {
	if n == nil {
		return nil
	}
	return validation.Validate(*n, rules...)
}

// LoginRequest is the admin credential exchange body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login body shape.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse carries the bearer token for admin requests.
type LoginResponse struct {
	Token string `json:"token"`
}

// VehicleListResponse wraps inventory listings.
type VehicleListResponse struct {
	Vehicles []models.Vehicle `json:"vehicles"`
	Total    int              `json:"total"`
}

// LeadListResponse wraps stored leads.
type LeadListResponse struct {
	Leads []models.Lead `json:"leads"`
	Total int           `json:"total"`
}

// UploadResponse is returned after a successful image upload.
type UploadResponse struct {
	Images []map[string]string `json:"images"`
}
