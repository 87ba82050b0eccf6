package constants

// NATS Subjects
const (
	SubjectLocationUpdate = "fleet.location.update"
)
