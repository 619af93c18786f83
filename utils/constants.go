package utils

// Application constants
const (
	AppName    = "MenuSphere"
	APIVersion = "v1"

	DefaultPort = "8080"

	// ReferralCookieName carries a referral code from the landing page to registration
	ReferralCookieName = "referral_code"
	// ReferralQueryParam is the query parameter read by the attribution middleware
	ReferralQueryParam = "ref"
)

// Error messages
const (
	ErrInvalidCredentials = "Invalid email or password"
	ErrUserBlocked        = "Your account has been blocked"
	ErrInvalidToken       = "Invalid or expired token"
	ErrUnauthorized       = "Unauthorized access"
	ErrForbidden          = "Admin access required"
	ErrInvalidID          = "Invalid ID"
)

// Success messages
const (
	MsgLoginSuccess    = "Login successful"
	MsgRegisterSuccess = "Registration successful"
)
