package handlers

import (
	"fmt"
	"io"

	"eartalk/internal/middleware"
	"eartalk/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AudioHandler handles audio submission and lookup.
type AudioHandler struct {
	audioService *services.AudioService
	log          zerolog.Logger
}

// NewAudioHandler creates a new AudioHandler.
func NewAudioHandler(audioService *services.AudioService, log zerolog.Logger) *AudioHandler {
	return &AudioHandler{
		audioService: audioService,
		log:          log,
	}
}

// RegisterRoutes registers the audio routes. optionalAuth identifies the
// submitter when a token is sent.
func (h *AudioHandler) RegisterRoutes(router fiber.Router, optionalAuth fiber.Handler) {
	audioRoutes := router.Group("/audio")
	audioRoutes.Post("/", optionalAuth, h.HandleCreate)
	audioRoutes.Get("/:identifier", h.HandleGet)
}

// HandleCreate accepts multipart input_text or an audio file, never both.
func (h *AudioHandler) HandleCreate(c *fiber.Ctx) error {
	in := services.SubmitAudioInput{
		Text: c.FormValue("input_text"),
	}
	if userID, ok := middleware.UserID(c); ok {
		in.OwnerID = &userID
	}

	if fh, err := c.FormFile("audio"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return respondError(c, h.log, fmt.Errorf("failed to open upload: %w", err))
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return respondError(c, h.log, fmt.Errorf("failed to read upload: %w", err))
		}
		in.Audio = data
		in.AudioFilename = fh.Filename
	}

	audio, err := h.audioService.Submit(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(audio)
}

// HandleGet returns an audio record by its public identifier.
func (h *AudioHandler) HandleGet(c *fiber.Ctx) error {
	audio, err := h.audioService.GetByIdentifier(c.UserContext(), c.Params("identifier"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(audio)
}
