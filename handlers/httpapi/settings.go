package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/madpaura/docker-webui/pkg/validate"
)

func (h *Handler) GetSettings(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	values, err := h.c.GetSettings(c.Context())
	if err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, "", fiber.Map{"settings": values})
}

func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	values := make(map[string]string)
	if err := c.BodyParser(&values); err != nil {
		return h.respondErr(c, validate.Errorf("invalid request body: %v", err))
	}

	if err := h.c.UpdateSettings(c.Context(), h.session, values); err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, "settings updated", nil)
}
