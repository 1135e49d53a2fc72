package controllers

import (
	"net/http"

	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/middleware"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthController issues the session cookie. secureCookie is set outside
// development so the cookie only travels over HTTPS.
type AuthController struct {
	auth         AuthServiceAPI
	secureCookie bool
}

func NewAuthController(auth AuthServiceAPI, secureCookie bool) *AuthController {
	return &AuthController{auth: auth, secureCookie: secureCookie}
}

func (ac *AuthController) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", ac.secureCookie, true)
}

func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	session, err := ac.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ac.setSessionCookie(c, session.Token, int(services.TokenTTL.Seconds()))
	c.JSON(http.StatusCreated, session.User)
}

// Login serves both /api/auth/login and the legacy /api/simple-login.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and password are required")
		return
	}
	session, err := ac.auth.Login(c.Request.Context(), req)
	if err != nil {
		zap.L().Info("Login failed", zap.String("username", req.Username))
		respondError(c, err)
		return
	}
	ac.setSessionCookie(c, session.Token, int(services.TokenTTL.Seconds()))
	c.JSON(http.StatusOK, session.User)
}

func (ac *AuthController) Logout(c *gin.Context) {
	ac.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the current user; the route runs behind RequireAuth.
func (ac *AuthController) Me(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	user, err := ac.auth.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
