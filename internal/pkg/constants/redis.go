package constants

// Redis key formats
const (
	KeyVehicleRecord = "fleet:vehicle:%s" // Format: fleet:vehicle:{vehicle_id}
	KeyVehicleOrder  = "fleet:vehicles"   // Sorted set of vehicle ids scored by first-seen unix nanos
)
