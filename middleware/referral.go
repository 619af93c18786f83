package middleware

import (
	"context"
	"net/http"

	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-gonic/gin"
)

// ReferralResolver validates referral codes for tracking
type ReferralResolver interface {
	ResolveTrackable(ctx context.Context, code string) (string, int, bool)
}

// TrackReferral stores a valid ?ref= code in the attribution cookie. It never
// aborts the request.
func TrackReferral(resolver ReferralResolver, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.Query(utils.ReferralQueryParam); raw != "" {
			if code, days, ok := resolver.ResolveTrackable(c.Request.Context(), raw); ok {
				c.SetSameSite(http.SameSiteLaxMode)
				c.SetCookie(utils.ReferralCookieName, code, days*24*60*60, "/", "", secure, true)
				utils.LogDebug("Referral code %s tracked for %d days", code, days)
			}
		}
		c.Next()
	}
}

// ReferralCode returns the tracked referral code, if any
func ReferralCode(c *gin.Context) string {
	code, err := c.Cookie(utils.ReferralCookieName)
	if err != nil {
		return ""
	}
	return code
}

// ClearReferralCookie removes the attribution cookie
func ClearReferralCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.ReferralCookieName, "", -1, "/", "", secure, true)
}
