package api

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"authkit/internal/s3"
	"authkit/internal/service"
)

type UserHandler struct {
	authService   service.AuthService
	filePresigner *s3.FilePresigner
	validate      *validator.Validate
}

func NewUserHandler(authService service.AuthService, presigner *s3.FilePresigner) *UserHandler {
	return &UserHandler{
		authService:   authService,
		filePresigner: presigner,
		validate:      validator.New(),
	}
}

type UserProfileResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          *string    `json:"name,omitempty"`
	Email         *string    `json:"email,omitempty"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
	Image         *string    `json:"image,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.authService.GetUserProfile(c.Context(), userID)

	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	response := UserProfileResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Image:         user.Image,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *UserHandler) GetAvatarUploadURL(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	objectKey := "user-avatars/" + userID.String() + "/" + uuid.New().String() + ".jpg"

	uploadURL, err := h.filePresigner.GeneratePresignedUploadURL(c.Context(), objectKey)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not generate upload URL"})
	}

	return c.JSON(fiber.Map{
		"upload_url":      uploadURL,
		"final_image_url": h.filePresigner.ObjectURL(objectKey),
	})
}

type UpdateAvatarRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
}

func (h *UserHandler) UpdateAvatar(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateAvatarRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	if err := h.authService.UpdateAvatar(c.Context(), userID, req.ImageURL); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update avatar"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Avatar updated"})
}
