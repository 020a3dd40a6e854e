package vehicle

// CreateVehicleRequest is the vehicle creation form.
type CreateVehicleRequest struct {
	VehicleNumber string  `json:"vehicle_number" binding:"required"`
	Make          string  `json:"make" binding:"required"`
	Model         string  `json:"model" binding:"required"`
	Year          *int    `json:"year,omitempty" binding:"omitempty,min=1900,max=2100"`
	VIN           string  `json:"vin,omitempty" binding:"omitempty,max=17"`
	LicensePlate  string  `json:"license_plate,omitempty"`
	Mileage       int     `json:"mileage" binding:"min=0"`
	Status        Status  `json:"status,omitempty" binding:"omitempty,oneof=active maintenance inactive"`
	FuelType      string  `json:"fuel_type,omitempty"`
	DriverPhone   *string `json:"driver_phone,omitempty"`
}

// UpdateVehicleRequest carries only the fields being changed.
type UpdateVehicleRequest struct {
	Make         *string `json:"make,omitempty"`
	Model        *string `json:"model,omitempty"`
	Year         *int    `json:"year,omitempty" binding:"omitempty,min=1900,max=2100"`
	LicensePlate *string `json:"license_plate,omitempty"`
	Mileage      *int    `json:"mileage,omitempty" binding:"omitempty,min=0"`
	Status       *Status `json:"status,omitempty" binding:"omitempty,oneof=active maintenance inactive"`
	FuelType     *string `json:"fuel_type,omitempty"`
	DriverPhone  *string `json:"driver_phone,omitempty"`
}

// ListResponse is the body of GET /vehicles/.
type ListResponse struct {
	Vehicles []Vehicle `json:"vehicles"`
}

// ItemResponse is the body of single-vehicle endpoints.
type ItemResponse struct {
	Message string   `json:"message,omitempty"`
	Vehicle *Vehicle `json:"vehicle,omitempty"`
}
