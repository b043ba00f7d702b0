package models

import "fmt"

// OTPType tags a one-time token carried by an email link.
type OTPType string

const (
	OTPTypeSignup      OTPType = "signup"
	OTPTypeInvite      OTPType = "invite"
	OTPTypeMagicLink   OTPType = "magiclink"
	OTPTypeRecovery    OTPType = "recovery"
	OTPTypeEmailChange OTPType = "email_change"
	OTPTypeEmail       OTPType = "email"
)

func ParseOTPType(s string) (OTPType, error) {
	switch t := OTPType(s); t {
	case OTPTypeSignup, OTPTypeInvite, OTPTypeMagicLink, OTPTypeRecovery, OTPTypeEmailChange, OTPTypeEmail:
		return t, nil
	default:
		return "", fmt.Errorf("unknown otp type %q", s)
	}
}

func (t OTPType) IsRecovery() bool {
	return t == OTPTypeRecovery
}
