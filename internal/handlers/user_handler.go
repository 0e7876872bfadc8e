package handlers

import (
	"eartalk/internal/middleware"
	"eartalk/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// UserHandler handles account routes.
type UserHandler struct {
	userService  *services.UserService
	audioService *services.AudioService
	validate     *validator.Validate
	log          zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, audioService *services.AudioService, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService:  userService,
		audioService: audioService,
		validate:     validator.New(),
		log:          log,
	}
}

// RegisterRoutes registers the user routes. auth guards every route but /signup.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Post("/signup", h.HandleSignup)
	router.Post("/password", auth, h.HandleUpdatePassword)

	userRoutes := router.Group("/users", auth)
	userRoutes.Get("/me", h.HandleMe)
	userRoutes.Get("/me/audios", h.HandleMyAudios)
}

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Email          string `json:"email" validate:"required,email,max=255"`
	Password       string `json:"password" validate:"required,min=8,max=40"`
	VerifyPassword string `json:"verify_password" validate:"required"`
	BirthYear      string `json:"birthyear" validate:"required,len=4,numeric"`
	Sex            *bool  `json:"sex" validate:"required"`
}

// UpdatePasswordRequest is the body of POST /password.
type UpdatePasswordRequest struct {
	CurrentPassword   string `json:"current_password" validate:"required"`
	NewPassword       string `json:"new_password" validate:"required,min=8,max=40"`
	VerifyNewPassword string `json:"verify_new_password" validate:"required"`
}

// HandleSignup registers a local account.
func (h *UserHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	user, err := h.userService.CreateLocalUser(req.Email, req.Password, req.VerifyPassword, req.BirthYear, *req.Sex)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Uint("user_id", user.ID).Msg("user registered")
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleUpdatePassword changes the caller's password.
func (h *UserHandler) HandleUpdatePassword(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	var req UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	if err := h.userService.UpdatePassword(userID, req.CurrentPassword, req.NewPassword, req.VerifyNewPassword); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// HandleMe returns the caller's account.
func (h *UserHandler) HandleMe(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	user, err := h.userService.GetByID(userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(user)
}

// HandleMyAudios lists the caller's audios.
func (h *UserHandler) HandleMyAudios(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	list, err := h.audioService.ListByOwner(userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}
