package config

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleOAuthConfig is nil until InitGoogleOAuth runs with credentials
var GoogleOAuthConfig *oauth2.Config

// InitGoogleOAuth configures Google login when a client id is present
func InitGoogleOAuth(config *Config) *oauth2.Config {
	if config.GoogleClientID == "" {
		return nil
	}
	GoogleOAuthConfig = &oauth2.Config{
		ClientID:     config.GoogleClientID,
		ClientSecret: config.GoogleClientSecret,
		RedirectURL:  config.GoogleCallbackURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
	return GoogleOAuthConfig
}
