package tracking

import "errors"

// ErrVehicleNotFound is returned when no record exists for a vehicle id
var ErrVehicleNotFound = errors.New("vehicle not found")
