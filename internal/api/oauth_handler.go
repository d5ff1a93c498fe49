package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"authkit/internal/service"
	"authkit/internal/token"
)

const stateCookieName = "authkit_oauth_state"

type OAuthHandler struct {
	providers    map[string]*service.Provider
	oauthService service.OAuthService
	tokens       *token.Manager
}

func NewOAuthHandler(providers map[string]*service.Provider, oauthService service.OAuthService, tokens *token.Manager) *OAuthHandler {
	return &OAuthHandler{
		providers:    providers,
		oauthService: oauthService,
		tokens:       tokens,
	}
}

func (h *OAuthHandler) Start(c *fiber.Ctx) error {
	provider, ok := h.providers[c.Params("provider")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown provider"})
	}

	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return c.Redirect(provider.Config.AuthCodeURL(state), fiber.StatusFound)
}

// Callback completes the delegated handshake: state check, code exchange,
// profile fetch, then the adapter sign-in. Failures bounce back to the
// sign-in page with an error code; no provider detail leaks to the client.
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	provider, ok := h.providers[c.Params("provider")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown provider"})
	}

	if errParam := c.Query("error"); errParam != "" {
		return c.Redirect("/signin?error=OAuthSignin", fiber.StatusFound)
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" || state != c.Cookies(stateCookieName) {
		return c.Redirect("/signin?error=OAuthCallback", fiber.StatusFound)
	}
	clearStateCookie(c)

	oauthToken, err := provider.Config.Exchange(c.Context(), code)
	if err != nil {
		slog.WarnContext(c.Context(), "oauth code exchange failed", "provider", provider.Name, "error", err)
		return c.Redirect("/signin?error=OAuthCallback", fiber.StatusFound)
	}

	profile, err := provider.FetchProfile(c.Context(), oauthToken)
	if err != nil {
		slog.WarnContext(c.Context(), "oauth profile fetch failed", "provider", provider.Name, "error", err)
		return c.Redirect("/signin?error=OAuthCallback", fiber.StatusFound)
	}

	user, sessionToken, err := h.oauthService.SignIn(c.Context(), provider.Name, profile, oauthToken)
	if err != nil {
		slog.ErrorContext(c.Context(), "oauth sign-in failed", "provider", provider.Name, "error", err)
		return c.Redirect("/signin?error=OAuthSignin", fiber.StatusFound)
	}

	sessionJWT, err := h.tokens.Issue(user, sessionToken)
	if err != nil {
		return c.Redirect("/signin?error=OAuthSignin", fiber.StatusFound)
	}

	setSessionCookie(c, sessionJWT)

	return c.Redirect("/dashboard", fiber.StatusFound)
}

func clearStateCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
