package api

import "github.com/gofiber/fiber/v2"

// RegisterPages mounts the page routes the edge gate guards. The bodies are
// placeholders; the interesting behavior is the gate in front of them.
func RegisterPages(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("authkit")
	})
	app.Get("/signin", func(c *fiber.Ctx) error {
		return c.SendString("sign in")
	})
	app.Get("/signup", func(c *fiber.Ctx) error {
		return c.SendString("sign up")
	})
	app.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.SendString("dashboard")
	})
}
