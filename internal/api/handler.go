package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"

	"authkit/internal/service"
	"authkit/internal/token"
)

type AuthHandler struct {
	authService service.AuthService
	tokens      *token.Manager
	providers   []string
	validate    *validator.Validate
}

func NewAuthHandler(authService service.AuthService, tokens *token.Manager, providers []string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		providers:   providers,
		validate:    validator.New(),
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request RegisterRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid input", "details": err.Error()})
	}

	user, err := h.authService.RegisterUser(c.Context(), request.Name, request.Email, request.Password)

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "Email already exists"})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Something went wrong"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var request SignInRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	sessionJWT, err := h.authService.SignInWithCredentials(c.Context(), request.Email, request.Password)

	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong"})
	}

	setSessionCookie(c, sessionJWT)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	if claims, err := sessionClaims(c, h.tokens); err == nil {
		if sid, ok := claims["sid"].(string); ok {
			if err := h.authService.SignOut(c.Context(), sid); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong"})
			}
		}
	}

	clearSessionCookie(c)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Successfully signed out"})
}

// Session reads the token and projects it into the client-facing session
// object. The user id always comes from the token's "id" claim.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	claims, err := sessionClaims(c, h.tokens)
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "unauthenticated"})
	}

	user := fiber.Map{"id": claims["id"]}
	if email, ok := claims["email"]; ok {
		user["email"] = email
	}
	if name, ok := claims["name"]; ok {
		user["name"] = name
	}
	if picture, ok := claims["picture"]; ok {
		user["image"] = picture
	}

	var expires string
	if exp, ok := claims["exp"].(float64); ok {
		expires = time.Unix(int64(exp), 0).UTC().Format(time.RFC3339)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "authenticated",
		"user":    user,
		"expires": expires,
	})
}

func (h *AuthHandler) Providers(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"providers": h.providers})
}

func (h *AuthHandler) Csrf(c *fiber.Ctx) error {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"csrfToken": hex.EncodeToString(buf)})
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	identifier := c.Query("identifier")
	tokenValue := c.Query("token")
	if identifier == "" || tokenValue == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing identifier or token"})
	}

	err := h.authService.VerifyEmail(c.Context(), identifier, tokenValue)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Token is invalid or expired"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Email verified"})
}

func setSessionCookie(c *fiber.Ctx, sessionJWT string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    sessionJWT,
		Expires:  time.Now().Add(token.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
