package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Field names of an inbound location message
const (
	FieldID          = "id"
	FieldVehicleType = "vehicle_type"
	FieldLatitude    = "latitude"
	FieldLongitude   = "longitude"
	FieldReceivedAt  = "received_at"
)

// LocationRecord is the latest known position of one vehicle.
// Fields keeps every producer-supplied key verbatim, the required ones included.
type LocationRecord struct {
	ID          string
	VehicleType string
	Latitude    float64
	Longitude   float64
	ReceivedAt  time.Time
	Fields      map[string]json.RawMessage
}

// MarshalJSON emits the producer payload with received_at stamped by the service
func (r LocationRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Fields)+5)
	for k, v := range r.Fields {
		out[k] = v
	}

	typed := map[string]interface{}{
		FieldID:          r.ID,
		FieldVehicleType: r.VehicleType,
		FieldLatitude:    r.Latitude,
		FieldLongitude:   r.Longitude,
	}
	for k, v := range typed {
		if _, ok := out[k]; ok {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", k, err)
		}
		out[k] = raw
	}

	ts, err := json.Marshal(FormatTime(r.ReceivedAt))
	if err != nil {
		return nil, err
	}
	out[FieldReceivedAt] = ts

	return json.Marshal(out)
}

// UnmarshalJSON restores a record previously produced by MarshalJSON.
// It does not validate; inbound producer messages go through the validator.
func (r *LocationRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var rec LocationRecord
	if raw, ok := fields[FieldID]; ok {
		if err := json.Unmarshal(raw, &rec.ID); err != nil {
			return fmt.Errorf("invalid %s: %w", FieldID, err)
		}
	}
	if raw, ok := fields[FieldVehicleType]; ok {
		if err := json.Unmarshal(raw, &rec.VehicleType); err != nil {
			return fmt.Errorf("invalid %s: %w", FieldVehicleType, err)
		}
	}
	if raw, ok := fields[FieldLatitude]; ok {
		if err := json.Unmarshal(raw, &rec.Latitude); err != nil {
			return fmt.Errorf("invalid %s: %w", FieldLatitude, err)
		}
	}
	if raw, ok := fields[FieldLongitude]; ok {
		if err := json.Unmarshal(raw, &rec.Longitude); err != nil {
			return fmt.Errorf("invalid %s: %w", FieldLongitude, err)
		}
	}
	if raw, ok := fields[FieldReceivedAt]; ok {
		var ts string
		if err := json.Unmarshal(raw, &ts); err != nil {
			return fmt.Errorf("invalid %s: %w", FieldReceivedAt, err)
		}
		parsed, err := ParseTime(ts)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", FieldReceivedAt, err)
		}
		rec.ReceivedAt = parsed
		delete(fields, FieldReceivedAt)
	}

	rec.Fields = fields
	*r = rec
	return nil
}

// Snapshot is the ordered set of all current records, first-seen order
type Snapshot struct {
	Version  uint64           `json:"version"`
	Vehicles []LocationRecord `json:"vehicles"`
}

// SnapshotDelta describes the outcome of one store mutation
type SnapshotDelta struct {
	Version   uint64
	VehicleID string
	Created   bool
}

// LocationEvent is the fan-out message published for every accepted record
type LocationEvent struct {
	Origin string         `json:"origin"`
	Record LocationRecord `json:"record"`
}
