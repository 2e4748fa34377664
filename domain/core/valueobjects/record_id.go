package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// RecordID is a value object identifying a persisted record
// (mood entry, episode, safety plan)
type RecordID struct {
	value string
}

// NewRecordID creates a new random RecordID
func NewRecordID() RecordID {
	return RecordID{value: uuid.New().String()}
}

// ParseRecordID creates a RecordID from an existing string
func ParseRecordID(id string) (RecordID, error) {
	if id == "" {
		return RecordID{}, errors.New("record ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return RecordID{}, errors.New("record ID must be a valid UUID")
	}
	return RecordID{value: id}, nil
}

// RecordIDFromStorage wraps a stored key. Legacy tables use integer
// keys, so only emptiness is checked.
func RecordIDFromStorage(id string) (RecordID, error) {
	if id == "" {
		return RecordID{}, errors.New("record ID cannot be empty")
	}
	return RecordID{value: id}, nil
}

// String returns the string representation of the RecordID
func (id RecordID) String() string {
	return id.value
}

// Equals checks if two RecordIDs are equal
func (id RecordID) Equals(other RecordID) bool {
	return id.value == other.value
}

// IsZero checks if the RecordID is the zero value
func (id RecordID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id RecordID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *RecordID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("RecordID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
