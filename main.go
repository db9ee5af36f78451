package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/madpaura/docker-webui/config"
	"github.com/madpaura/docker-webui/controller"
	"github.com/madpaura/docker-webui/handlers/httpapi"
	"github.com/madpaura/docker-webui/handlers/rabbitmq"
	"github.com/madpaura/docker-webui/pkg/logger"
	"github.com/madpaura/docker-webui/providers/builders/docker"
	"github.com/madpaura/docker-webui/providers/registry/distribution"
	"github.com/madpaura/docker-webui/providers/vcs/git"
	"github.com/madpaura/docker-webui/repo/sqlite"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		log.Fatalln(err)
	}

	l := logger.NewLogger(conf.Log.Level, conf.Log.Type)
	l.Debug("initialized logger")

	c := controller.NewController(controller.Options{
		DefaultDockerfile: conf.Git.DefaultDockerfile,
		RegistryURL:       conf.Registry.URL,
		RecentLimit:       5,
	}, l)

	vcsProvider := git.NewGitProvider(conf.Git.WorkDir, conf.Git.Username, conf.Git.Email, conf.Git.Token, l)
	c.AddVCS(vcsProvider)
	l.Infof("succesfully added git provider, checkouts under %s", conf.Git.WorkDir)

	builder, err := docker.NewDockerBuilder(conf.App.Version, conf.Registry.Username, conf.Registry.Password, l)
	if err != nil {
		l.Fatalf("error connecting to the docker engine: %v", err)
	}
	c.AddBuilder(builder)
	l.Info("succesfully added docker as builder")

	reg := distribution.NewClient(conf.Registry.URL, conf.Registry.Username, conf.Registry.Password, conf.Registry.InsecureSkipVerify, conf.Registry.Timeout, l)
	c.AddRegistry(reg)
	l.Infof("succesfully added registry at %s", conf.Registry.URL)

	settings, err := sqlite.NewSettingsRepoer(conf.Storage.Path)
	if err != nil {
		l.Fatalf("error opening settings store %s: %v", conf.Storage.Path, err)
	}
	c.AddSettings(settings)

	var notifier *rabbitmq.Notifier
	if conf.Notify.URI != "" {
		notifier = rabbitmq.NewNotifier(conf.Notify.URI, conf.Notify.Queue, l)
		if err := notifier.Connect(); err != nil {
			l.Errorf("error connecting to rabbitmq, events disabled: %v", err)
			notifier = nil
		} else {
			c.AddNotifier(notifier)
			l.Infof("succesfully publishing events to %s", conf.Notify.Queue)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	session := c.NewSession()
	c.RestoreSession(ctx, session)

	app := fiber.New(fiber.Config{AppName: conf.App.Name})
	httpapi.NewHandler(c, session, l).RegisterRoutes(app)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Listen(conf.HTTP.Address)
	}()
	l.Infof("%s %s listening on %s", conf.App.Name, conf.App.Version, conf.HTTP.Address)

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: " + s.String())
	case err = <-serverErr:
		l.Error(fmt.Errorf("http server: %w", err))
	}
	cancel()

	if err := app.Shutdown(); err != nil {
		l.Errorf("error shutting down http server: %v", err)
	}
	if notifier != nil {
		if err := notifier.Close(); err != nil {
			l.Errorf("error closing rabbitmq connection: %v", err)
		}
	}
}
