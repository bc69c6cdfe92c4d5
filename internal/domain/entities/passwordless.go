package entities

import (
	"strings"
	"time"
)

// PasswordlessMode is the channel and delivery method used for passwordless sign in
type PasswordlessMode int

const (
	PasswordlessModeDisabled PasswordlessMode = iota
	PasswordlessModeSMSLink
	PasswordlessModeSMSCode
	PasswordlessModeEmailLink
	PasswordlessModeEmailCode
)

func (m PasswordlessMode) String() string {
	switch m {
	case PasswordlessModeSMSLink:
		return "sms_link"
	case PasswordlessModeSMSCode:
		return "sms_code"
	case PasswordlessModeEmailLink:
		return "email_link"
	case PasswordlessModeEmailCode:
		return "email_code"
	default:
		return "disabled"
	}
}

// ParsePasswordlessMode is the inverse of PasswordlessMode.String. Unknown values map to disabled.
func ParsePasswordlessMode(s string) PasswordlessMode {
	switch strings.ToLower(s) {
	case "sms_link":
		return PasswordlessModeSMSLink
	case "sms_code":
		return PasswordlessModeSMSCode
	case "email_link":
		return PasswordlessModeEmailLink
	case "email_code":
		return PasswordlessModeEmailCode
	default:
		return PasswordlessModeDisabled
	}
}

// MarshalText implements encoding.TextMarshaler
func (m PasswordlessMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *PasswordlessMode) UnmarshalText(text []byte) error {
	*m = ParsePasswordlessMode(string(text))
	return nil
}

// Country is the calling country chosen for an SMS passwordless identity
type Country struct {
	IsoCode  string `json:"iso_code" yaml:"iso_code"`
	DialCode string `json:"dial_code" yaml:"dial_code"`
}

// PasswordlessIdentity is the last identity used to sign in with a passwordless connection
type PasswordlessIdentity struct {
	ClientID  string           `json:"client_id"`
	Identity  string           `json:"identity"`
	Country   *Country         `json:"country,omitempty"`
	Mode      PasswordlessMode `json:"mode"`
	UpdatedAt time.Time        `json:"updated_at"`
}
