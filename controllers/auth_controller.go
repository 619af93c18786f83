package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Govind-619/MenuSphere/middleware"
	"github.com/Govind-619/MenuSphere/services"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthController serves local and Google sign-in
type AuthController struct {
	auth          *services.AuthService
	referrals     *services.ReferralService
	oauth         *oauth2.Config
	frontendURL   string
	secureCookies bool
	userInfoURL   string
}

// NewAuthController creates an AuthController. oauth may be nil when Google
// login is not configured.
func NewAuthController(auth *services.AuthService, referrals *services.ReferralService, oauth *oauth2.Config, frontendURL string, secureCookies bool) *AuthController {
	return &AuthController{
		auth:          auth,
		referrals:     referrals,
		oauth:         oauth,
		frontendURL:   frontendURL,
		secureCookies: secureCookies,
		userInfoURL:   googleUserInfoURL,
	}
}

type registerRequest struct {
	services.RegisterInput
	ReferralCode string `json:"referral_code" binding:"omitempty,max=16"`
}

// Register creates an account and attributes it to the tracked referral code
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := utils.BindStrictJSON(c, &req); err != nil {
		utils.LogError("Registration attempt failed - invalid request: %v", err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Registration attempt for email: %s", req.Email)

	result, err := ac.auth.Register(c.Request.Context(), req.RegisterInput)
	if err != nil {
		utils.LogError("Registration failed for %s: %v", req.Email, err)
		utils.RespondError(c, err)
		return
	}

	code := middleware.ReferralCode(c)
	if code == "" {
		code = req.ReferralCode
	}
	ac.consumeReferral(c, code, result.User.ID)

	utils.Created(c, utils.MsgRegisterSuccess, result)
}

// Login authenticates with email and password
func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ac.auth.Login(c.Request.Context(), input)
	if err != nil {
		utils.LogError("Login failed for %s: %v", input.Email, err)
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("User %d logged in", result.User.ID)
	utils.Success(c, utils.MsgLoginSuccess, result)
}

// GoogleLogin redirects to the Google consent screen
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	if ac.oauth == nil {
		utils.RespondError(c, utils.ServiceUnavailableError("Google login is not configured", nil))
		return
	}
	state, err := utils.NewOAuthState(c)
	if err != nil {
		utils.LogError("Failed to store OAuth state: %v", err)
		utils.InternalServerError(c, "Failed to start Google login", nil)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, ac.oauth.AuthCodeURL(state))
}

// GoogleCallback completes Google login and redirects to the frontend with a token
func (ac *AuthController) GoogleCallback(c *gin.Context) {
	if ac.oauth == nil {
		utils.RespondError(c, utils.ServiceUnavailableError("Google login is not configured", nil))
		return
	}
	if err := utils.ConsumeOAuthState(c, c.Query("state")); err != nil {
		utils.LogError("Google callback rejected: %v", err)
		utils.BadRequest(c, "Invalid OAuth state", nil)
		return
	}
	code := c.Query("code")
	if code == "" {
		utils.BadRequest(c, "No code provided", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := ac.oauth.Exchange(ctx, code)
	if err != nil {
		utils.LogError("Failed to exchange Google code: %v", err)
		utils.RespondError(c, utils.UnauthorizedError("Google login failed", err))
		return
	}

	profile, err := ac.fetchGoogleProfile(c, token)
	if err != nil {
		utils.LogError("Failed to fetch Google profile: %v", err)
		utils.RespondError(c, utils.UnauthorizedError("Google login failed", err))
		return
	}

	result, created, err := ac.auth.LoginWithGoogle(ctx, *profile)
	if err != nil {
		utils.LogError("Google login failed for %s: %v", profile.Email, err)
		utils.RespondError(c, err)
		return
	}
	if created {
		ac.consumeReferral(c, middleware.ReferralCode(c), result.User.ID)
	}

	redirectURL := fmt.Sprintf("%s/auth/callback?token=%s", ac.frontendURL, url.QueryEscape(result.Token))
	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

func (ac *AuthController) fetchGoogleProfile(c *gin.Context, token *oauth2.Token) (*services.GoogleProfile, error) {
	client := ac.oauth.Client(c.Request.Context(), token)
	resp, err := client.Get(ac.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}
	var profile services.GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// consumeReferral attributes a new user to code. Failures never fail sign-up.
func (ac *AuthController) consumeReferral(c *gin.Context, code string, userID uint) {
	if code == "" {
		return
	}
	ac.referrals.Consume(c.Request.Context(), code, userID, c.ClientIP(), c.Request.UserAgent())
	middleware.ClearReferralCookie(c, ac.secureCookies)
}
