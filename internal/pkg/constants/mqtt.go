package constants

// MQTT topics
const (
	TopicVehicleLocation = "fleet/vehicle/+/location"
)
