package constants

// Broadcast group shared by every location socket
const GroupLocationUpdates = "location_updates"

// PathLocations is the route of the location socket
const PathLocations = "/ws/locations"

// Messages carried by outbound frames
const (
	MessageConnected = "You are now connected!"

	ErrorInvalidJSON      = "Invalid JSON format"
	ErrorValidationFailed = "Validation failed"
)

// Connection close reasons, used in logs
const (
	CloseReasonClientGone   = "client_gone"
	CloseReasonReadError    = "read_error"
	CloseReasonWriteError   = "write_error"
	CloseReasonSlowConsumer = "slow_consumer"
	CloseReasonShutdown     = "shutdown"
)
