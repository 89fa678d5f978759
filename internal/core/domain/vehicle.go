package domain

// VehicleInfo - расшифровка VIN
type VehicleInfo struct {
	VIN       string
	Make      string
	Model     string
	ModelYear string
	Trim      string
	BodyClass string
	DriveType string
	FuelType  string
}
