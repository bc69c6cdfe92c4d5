package entities

import (
	"fmt"
	"strings"
)

// FieldType determines the validation applied to a custom sign up field
type FieldType int

const (
	FieldTypeName FieldType = iota
	FieldTypeNumber
	FieldTypePhoneNumber
	FieldTypeEmail
)

func (t FieldType) String() string {
	switch t {
	case FieldTypeNumber:
		return "number"
	case FieldTypePhoneNumber:
		return "phone_number"
	case FieldTypeEmail:
		return "email"
	default:
		return "name"
	}
}

// ParseFieldType converts a string to a FieldType
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(s) {
	case "", "name":
		return FieldTypeName, nil
	case "number":
		return FieldTypeNumber, nil
	case "phone_number", "phone":
		return FieldTypePhoneNumber, nil
	case "email":
		return FieldTypeEmail, nil
	default:
		return FieldTypeName, fmt.Errorf("%w: unknown field type %q", ErrInvalidOptions, s)
	}
}

// FieldStorage is where a custom field value is stored on the user profile
type FieldStorage int

const (
	// StorageUserMetadata stores the value under user_metadata
	StorageUserMetadata FieldStorage = iota
	// StorageProfileRoot stores the value at the root of the user profile
	StorageProfileRoot
)

func (s FieldStorage) String() string {
	if s == StorageProfileRoot {
		return "profile_root"
	}
	return "user_metadata"
}

// ParseFieldStorage converts a string to a FieldStorage
func ParseFieldStorage(s string) (FieldStorage, error) {
	switch strings.ToLower(s) {
	case "", "user_metadata":
		return StorageUserMetadata, nil
	case "profile_root":
		return StorageProfileRoot, nil
	default:
		return StorageUserMetadata, fmt.Errorf("%w: unknown field storage %q", ErrInvalidOptions, s)
	}
}

// CustomField is an extra field shown on the sign up form
type CustomField struct {
	Key     string       `json:"key"`
	Type    FieldType    `json:"-"`
	Hint    string       `json:"hint,omitempty"`
	Icon    string       `json:"icon,omitempty"`
	Storage FieldStorage `json:"-"`
}

// NewCustomField creates a field stored under user_metadata
func NewCustomField(key string, fieldType FieldType, hint string) CustomField {
	return CustomField{Key: key, Type: fieldType, Hint: hint, Storage: StorageUserMetadata}
}
