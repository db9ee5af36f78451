// Package httpapi exposes the workflow over HTTP for the web UI.
// Every response carries the uniform {success, message} envelope and
// no error propagates past this layer uncaught.
package httpapi

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/madpaura/docker-webui/controller"
	"github.com/madpaura/docker-webui/model"
	"github.com/madpaura/docker-webui/pkg/validate"
	"github.com/madpaura/docker-webui/providers/registry"
	"github.com/madpaura/docker-webui/providers/vcs"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	c       controller.Workflower
	session *model.Session
	l       *logrus.Logger

	// mu serializes workflow events: the UI drives one operation at a
	// time and the checkout on disk is not safe for concurrent use.
	mu sync.Mutex
}

func NewHandler(c controller.Workflower, session *model.Session, logger *logrus.Logger) *Handler {
	return &Handler{
		c:       c,
		session: session,
		l:       logger,
	}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/session", h.GetSession)

	v1.Post("/repository", h.CloneRepository)
	v1.Get("/repository", h.RepositoryInfo)
	v1.Get("/repositories/recent", h.RecentRepositories)

	v1.Get("/dockerfile", h.LoadDockerfile)
	v1.Put("/dockerfile", h.SaveDockerfile)
	v1.Put("/dockerfile/active", h.SelectDockerfile)

	v1.Post("/build", h.Build)
	v1.Get("/build/logs", h.BuildLogs)
	v1.Post("/publish", h.Publish)
	v1.Post("/commit", h.Commit)
	v1.Get("/images", h.ListImages)

	v1.Get("/registry/status", h.RegistryStatus)
	v1.Get("/registry/repositories", h.RegistryRepositories)
	v1.Get("/registry/tags", h.RegistryTags)
	v1.Get("/registry/images", h.RegistryImages)
	v1.Delete("/registry/images", h.DeleteRegistryImage)

	v1.Get("/settings", h.GetSettings)
	v1.Put("/settings", h.UpdateSettings)
}

func respond(c *fiber.Ctx, message string, data fiber.Map) error {
	body := fiber.Map{"success": true, "message": message}
	for k, v := range data {
		body[k] = v
	}
	return c.JSON(body)
}

func (h *Handler) respondErr(c *fiber.Ctx, err error) error {
	h.l.Warnf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

func statusFor(err error) int {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr),
		errors.Is(err, controller.ErrUnknownSettingKey):
		return fiber.StatusBadRequest
	case errors.Is(err, controller.ErrNoDockerfileFound),
		errors.Is(err, controller.ErrUnknownDockerfile),
		errors.Is(err, registry.ErrRepositoryNotFound),
		errors.Is(err, registry.ErrImageNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, controller.ErrNoRepository),
		errors.Is(err, controller.ErrNoDockerfile),
		errors.Is(err, controller.ErrNothingToPublish),
		errors.Is(err, vcs.ErrNothingToCommit):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// GetSession reports the whole session snapshot the UI renders from.
func (h *Handler) GetSession(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return respond(c, "", fiber.Map{"session": h.session})
}
