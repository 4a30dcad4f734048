// Package callback runs a short-lived loopback HTTP server that receives
// the OAuth2 authorization-code redirect during an interactive login.
package callback

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Result carries the query parameters delivered to the redirect URI.
type Result struct {
	Code  string
	State string
	Error string
}

// Server listens on the configured loopback address for a single
// authorization redirect and hands the result to the caller.
type Server struct {
	app    *fiber.App
	addr   string
	path   string
	logger zerolog.Logger
	result chan Result
}

// New creates a callback server bound to addr (for example
// "localhost:5001") serving the redirect path (for example "/callback").
func New(addr, path string, logger zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})
	app.Use(recover.New())

	s := &Server{
		app:    app,
		addr:   addr,
		path:   path,
		logger: logger.With().Str("component", "callback").Logger(),
		result: make(chan Result, 1),
	}
	app.Get(path, s.handleRedirect)
	return s
}

func (s *Server) handleRedirect(c *fiber.Ctx) error {
	res := Result{
		Code:  c.Query("code"),
		State: c.Query("state"),
		Error: c.Query("error"),
	}

	// A browser may re-request the redirect; only the first hit counts.
	select {
	case s.result <- res:
	default:
	}

	if res.Error != "" {
		s.logger.Warn().Str("error", res.Error).Msg("authorization denied")
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.Status(fiber.StatusBadRequest).
			SendString("<html><body><h2>Authorization failed</h2><p>" + res.Error + "</p></body></html>")
	}

	s.logger.Debug().Msg("authorization code received")
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString("<html><body><h2>Authorization complete</h2><p>You can close this window and return to the terminal.</p></body></html>")
}

// Wait blocks until the redirect arrives, the timeout elapses, or ctx is
// cancelled. The server is listening before Wait is called via Start.
func (s *Server) Wait(ctx context.Context, timeout time.Duration) (Result, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-s.result:
		return res, nil
	case <-timer.C:
		return Result{}, context.DeadlineExceeded
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Start begins listening. Blocks until Shutdown; run it in a goroutine.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.addr).Str("path", s.path).Msg("waiting for authorization redirect")
	return s.app.Listen(s.addr)
}

// Shutdown stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}
