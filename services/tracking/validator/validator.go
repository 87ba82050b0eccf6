// Package validator turns one inbound location message into a LocationRecord.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/piresc/fleetcast/internal/pkg/models"
)

var (
	// ErrMalformedPayload means the payload is not a JSON object
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrValidation means the payload is an object but a required field is missing or mistyped
	ErrValidation = errors.New("validation failed")
)

var requiredFields = []string{
	models.FieldID,
	models.FieldVehicleType,
	models.FieldLatitude,
	models.FieldLongitude,
}

// PayloadError describes why a payload could not be decoded
type PayloadError struct {
	Cause string
}

func (e *PayloadError) Error() string { return "malformed payload: " + e.Cause }

func (e *PayloadError) Is(target error) bool { return target == ErrMalformedPayload }

// FieldError names the offending field of a rejected payload
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + " " + e.Reason }

func (e *FieldError) Is(target error) bool { return target == ErrValidation }

// Details returns the client-facing description of a Validate error
func Details(err error) string {
	var pe *PayloadError
	if errors.As(err, &pe) {
		return pe.Cause
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return err.Error()
}

// Validate parses raw and stamps the resulting record with now
func Validate(raw []byte, now time.Time) (models.LocationRecord, error) {
	// raw field bytes are relayed verbatim in text frames
	if !utf8.Valid(raw) {
		return models.LocationRecord{}, &PayloadError{Cause: "payload is not valid UTF-8"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.LocationRecord{}, &PayloadError{Cause: err.Error()}
	}
	if fields == nil {
		return models.LocationRecord{}, &PayloadError{Cause: "payload must be a JSON object"}
	}

	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return models.LocationRecord{}, &FieldError{Field: name, Reason: "is required"}
		}
	}

	rec := models.LocationRecord{ReceivedAt: now.UTC()}
	var err error
	if rec.ID, err = stringField(fields, models.FieldID); err != nil {
		return models.LocationRecord{}, err
	}
	if rec.ID == "" {
		return models.LocationRecord{}, &FieldError{Field: models.FieldID, Reason: "must not be empty"}
	}
	if rec.VehicleType, err = stringField(fields, models.FieldVehicleType); err != nil {
		return models.LocationRecord{}, err
	}
	if rec.Latitude, err = numberField(fields, models.FieldLatitude); err != nil {
		return models.LocationRecord{}, err
	}
	if rec.Longitude, err = numberField(fields, models.FieldLongitude); err != nil {
		return models.LocationRecord{}, err
	}

	// received_at is always assigned here
	delete(fields, models.FieldReceivedAt)
	rec.Fields = fields

	return rec, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	var v interface{}
	if err := json.Unmarshal(fields[name], &v); err != nil {
		return "", &FieldError{Field: name, Reason: fmt.Sprintf("is invalid: %v", err)}
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: name, Reason: "must be a string"}
	}
	return s, nil
}

func numberField(fields map[string]json.RawMessage, name string) (float64, error) {
	var v interface{}
	if err := json.Unmarshal(fields[name], &v); err != nil {
		return 0, &FieldError{Field: name, Reason: "must be a number"}
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &FieldError{Field: name, Reason: "must be a number"}
	}
	return f, nil
}
