package api

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/logger"
)

// NewServer exposes the manager's runtime state over HTTP: statistics,
// effective config, live contexts and datasource pool status.
func NewServer(cfg Config, log logger.Logger, m manager) Server {
	serveLog := log.With("api_http_server")

	fiberCfg := fiber.Config{
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		DisableStartupMessage: true,
		RequestMethods:        []string{fiber.MethodGet, fiber.MethodHead, fiber.MethodPost},
	}

	fiberCfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		serveLog.Warn(errors.WrapFail(err, "handle http request"))
		return c.Status(http.StatusInternalServerError).Send(nil)
	}

	s := &server{
		mgr:  m,
		http: fiber.New(fiberCfg),
		addr: cfg.HTTP.Addr,
		log:  serveLog,
	}

	s.setupRoutes()

	return s
}

type server struct {
	mgr  manager
	http *fiber.App
	addr string
	log  logger.Logger
}

func (s *server) setupRoutes() {
	s.http.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.mgr.Stats())
	})

	s.http.Post("/stats/reset", func(c *fiber.Ctx) error {
		s.mgr.ResetStats()
		return c.SendStatus(http.StatusNoContent)
	})

	s.http.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(s.mgr.Config())
	})

	s.http.Get("/contexts", func(c *fiber.Ctx) error {
		return c.JSON(s.mgr.Contexts())
	})

	s.http.Get("/pool/:name", func(c *fiber.Ctx) error {
		status, ok := s.mgr.SourceStatus(c.Params("name"))
		if !ok {
			return c.SendStatus(http.StatusNotFound)
		}
		return c.JSON(status)
	})
}

func (s *server) Serve(ctx context.Context) error {
	errCh := make(chan error)
	go func() { errCh <- s.http.Listen(s.addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return errors.Error("serve context done")
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	err := s.http.ShutdownWithContext(ctx)
	if err != nil {
		return errors.WrapFail(err, "shutdown http server")
	}
	return nil
}
