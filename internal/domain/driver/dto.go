package driver

// CreateDriverRequest is the driver creation form.
type CreateDriverRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email,omitempty" binding:"omitempty,email"`
	Phone         string `json:"phone,omitempty"`
	LicenseNumber string `json:"license_number" binding:"required"`
	LicenseExpiry string `json:"license_expiry,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Status        Status `json:"status,omitempty" binding:"omitempty,oneof=available assigned inactive"`
}

// UpdateDriverRequest carries only the fields being changed.
type UpdateDriverRequest struct {
	Name          *string `json:"name,omitempty"`
	Email         *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone         *string `json:"phone,omitempty"`
	LicenseNumber *string `json:"license_number,omitempty"`
	LicenseExpiry *string `json:"license_expiry,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Status        *Status `json:"status,omitempty" binding:"omitempty,oneof=available assigned inactive"`
}

type ListResponse struct {
	Drivers []Driver `json:"drivers"`
}

type ItemResponse struct {
	Message string  `json:"message,omitempty"`
	Driver  *Driver `json:"driver,omitempty"`
}
