package handlers

import (
	"eartalk/internal/oauth"
	"eartalk/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	userService  *services.UserService
	tokenService *services.TokenService
	oauthService *services.OAuthService
	validate     *validator.Validate
	log          zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService *services.UserService, tokenService *services.TokenService, oauthService *services.OAuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
		oauthService: oauthService,
		validate:     validator.New(),
		log:          log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	loginRoutes := router.Group("/login")
	loginRoutes.Post("/access-token", h.HandleLogin)
	loginRoutes.Post("/kakao-login", h.handleOAuth(oauth.Kakao))
	loginRoutes.Post("/naver-login", h.handleOAuth(oauth.Naver))
	loginRoutes.Post("/google-login", h.handleOAuth(oauth.Google))

	router.Post("/reset-password/:email", h.HandleResetPassword)
}

// LoginRequest is the OAuth2 password-grant form. Username carries the email.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// TokenResponse is returned by every login route.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func bearer(token string) TokenResponse {
	return TokenResponse{AccessToken: token, TokenType: "bearer"}
}

// HandleLogin handles email/password login and issues an access token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	user, err := h.userService.Authenticate(req.Username, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}

	token, err := h.tokenService.IssueAccessToken(user.ID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(bearer(token))
}

// handleOAuth completes a provider login with the ?code= authorization code.
func (h *AuthHandler) handleOAuth(provider string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := h.oauthService.Login(c.UserContext(), provider, c.Query("code"))
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(bearer(token))
	}
}

// HandleResetPassword mails a temporary password to the account's email.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	email := c.Params("email")
	if err := h.validate.Var(email, "required,email"); err != nil {
		return respondValidation(c, err)
	}

	if err := h.userService.ResetPassword(c.UserContext(), email); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Password recovery email sent"})
}
