package domain

import (
	"errors"
	"fmt"
)

// Default one-time-passcode preferences sent by the mobile app.
const (
	DefaultOTPFactor = "email"
	DefaultOTPMode   = "request"
)

// Credentials holds the follower account login. It is built once and shared
// read-only by the session manager.
type Credentials struct {
	Username  string
	Password  string
	OTPFactor string
	OTPMode   string
}

// NewCredentials returns credentials with the default OTP preferences.
func NewCredentials(username, password string) Credentials {
	return Credentials{
		Username:  username,
		Password:  password,
		OTPFactor: DefaultOTPFactor,
		OTPMode:   DefaultOTPMode,
	}
}

// Validate reports missing username or password.
func (c Credentials) Validate() error {
	if c.Username == "" {
		return errors.New("username required")
	}
	if c.Password == "" {
		return errors.New("password required")
	}
	return nil
}

// String hides the password so credentials can be logged safely.
func (c Credentials) String() string {
	return fmt.Sprintf("%s (otp %s/%s)", c.Username, c.OTPFactor, c.OTPMode)
}
