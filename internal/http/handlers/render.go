package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if p := principal(c); !p.IsAnonymous() {
		data["User"] = p.Username
	}
	return c.Render(tmpl, data)
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusNotFound, "not found")
	}
	return int64(id), nil
}
