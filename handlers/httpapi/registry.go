package httpapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/madpaura/docker-webui/pkg/validate"
)

func (h *Handler) RegistryStatus(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.c.RegistryStatus(c.Context()); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	return respond(c, "registry reachable", nil)
}

func (h *Handler) RegistryRepositories(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	repositories, err := h.c.RegistryRepositories(c.Context())
	if err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, "", fiber.Map{"repositories": repositories})
}

func (h *Handler) RegistryTags(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	repository := c.Query("repository")
	if repository == "" {
		return h.respondErr(c, validate.Errorf("repository query parameter is required"))
	}

	tags, err := h.c.RegistryTags(c.Context(), repository)
	if err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, "", fiber.Map{"repository": repository, "tags": tags})
}

// RegistryImages lists every repository:tag the registry holds, with
// sizes and creation times.
func (h *Handler) RegistryImages(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	images, err := h.c.RegistryImages(c.Context())
	if err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, "", fiber.Map{"images": images})
}

func (h *Handler) DeleteRegistryImage(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	repository := c.Query("repository")
	tag := c.Query("tag")
	if repository == "" || tag == "" {
		return h.respondErr(c, validate.Errorf("repository and tag query parameters are required"))
	}

	if err := h.c.DeleteRegistryImage(c.Context(), repository, tag); err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, fmt.Sprintf("deleted %s:%s", repository, tag), nil)
}
