package httpapi

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/madpaura/docker-webui/controller"
	"github.com/madpaura/docker-webui/pkg/validate"
)

type (
	cloneRequest struct {
		URL    string `json:"url"`
		Branch string `json:"branch"`
	}

	saveRequest struct {
		Content string `json:"content"`
	}

	selectRequest struct {
		Path string `json:"path"`
	}
)

// CloneRepository checks out the requested repository and loads its
// Dockerfile. A repository without any build file still clones fine,
// the editor just starts empty.
func (h *Handler) CloneRepository(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req cloneRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondErr(c, validate.Errorf("invalid request body: %v", err))
	}

	if err := h.c.CloneRepo(c.Context(), h.session, req.URL, req.Branch); err != nil {
		return h.respondErr(c, err)
	}

	if _, err := h.c.LoadDockerfile(c.Context(), h.session); err != nil && !errors.Is(err, controller.ErrNoDockerfileFound) {
		return h.respondErr(c, err)
	}

	return respond(c, fmt.Sprintf("cloned %s", req.URL), fiber.Map{"session": h.session})
}

// RepositoryInfo reports the latest commit and branch of the checkout.
func (h *Handler) RepositoryInfo(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	commit, branch, err := h.c.RepoInfo(c.Context(), h.session)
	if err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, "", fiber.Map{"commit": commit, "branch": branch})
}

func (h *Handler) RecentRepositories(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	recents, err := h.c.RecentRepositories(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, "", fiber.Map{"repositories": recents})
}

func (h *Handler) LoadDockerfile(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	content, err := h.c.LoadDockerfile(c.Context(), h.session)
	if err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, "", fiber.Map{
		"path":      h.session.DockerfilePath,
		"content":   content,
		"available": h.session.AvailableDockerfiles,
	})
}

func (h *Handler) SaveDockerfile(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req saveRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondErr(c, validate.Errorf("invalid request body: %v", err))
	}

	if err := h.c.SaveDockerfile(c.Context(), h.session, req.Content); err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, fmt.Sprintf("saved %s", h.session.DockerfilePath), nil)
}

// SelectDockerfile switches the active build file to one of the
// discovered paths and reloads the editor content.
func (h *Handler) SelectDockerfile(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req selectRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondErr(c, validate.Errorf("invalid request body: %v", err))
	}

	content, err := h.c.SelectDockerfile(c.Context(), h.session, req.Path)
	if err != nil {
		return h.respondErr(c, err)
	}
	return respond(c, "", fiber.Map{"path": req.Path, "content": content})
}
