package httpapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/madpaura/docker-webui/pkg/validate"
)

type (
	buildRequest struct {
		Repository string `json:"repository"`
		Tag        string `json:"tag"`
		BuildArgs  string `json:"buildArgs"`
	}

	publishRequest struct {
		Repository string `json:"repository"`
		Tag        string `json:"tag"`
	}

	commitRequest struct {
		Message string `json:"message"`
	}
)

// Build runs an image build. A build the engine rejected comes back
// with success false and the captured logs, not as an HTTP error.
func (h *Handler) Build(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req buildRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondErr(c, validate.Errorf("invalid request body: %v", err))
	}

	result, err := h.c.BuildImage(c.Context(), h.session, req.Repository, req.Tag, req.BuildArgs)
	if err != nil {
		return h.respondErr(c, err)
	}

	if !result.Success {
		return c.JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("build of %s failed", result.FullTag),
			"build":   result,
		})
	}
	return respond(c, fmt.Sprintf("built %s", result.FullTag), fiber.Map{"build": result})
}

func (h *Handler) BuildLogs(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session.Build == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "no build has run yet",
		})
	}
	return respond(c, "", fiber.Map{"build": h.session.Build})
}

// Publish tags the last built image for the registry and pushes it.
func (h *Handler) Publish(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req publishRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondErr(c, validate.Errorf("invalid request body: %v", err))
	}

	ref, err := h.c.PublishImage(c.Context(), h.session, req.Repository, req.Tag)
	if err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, fmt.Sprintf("pushed %s", ref), fiber.Map{"ref": ref})
}

// Commit records the active Dockerfile in the repository history and
// pushes the branch.
func (h *Handler) Commit(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req commitRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondErr(c, validate.Errorf("invalid request body: %v", err))
	}

	if err := h.c.CommitDockerfile(c.Context(), h.session, req.Message); err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, fmt.Sprintf("committed and pushed %s", h.session.DockerfilePath), nil)
}

func (h *Handler) ListImages(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	images, err := h.c.ListImages(c.Context())
	if err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, "", fiber.Map{"images": images})
}
