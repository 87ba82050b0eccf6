package models

// Outbound frame types
const (
	FrameConnectionEstablished = "connection_established"
	FrameBatchLocationUpdate   = "batch_location_update"
)

// ConnectionEstablishedFrame is the first frame every connection receives
type ConnectionEstablishedFrame struct {
	Type    string           `json:"type"`
	Message string           `json:"message"`
	Data    []LocationRecord `json:"data"`
}

// BatchLocationFrame carries the full snapshot after a state change
type BatchLocationFrame struct {
	Type string           `json:"type"`
	Data []LocationRecord `json:"data"`
}

// ErrorFrame is sent only to the connection that caused the error
type ErrorFrame struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}
