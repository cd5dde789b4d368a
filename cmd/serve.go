package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/desertthunder/genify/internal/server"
	"github.com/desertthunder/genify/internal/shared"
	"github.com/desertthunder/genify/internal/tasks"
	"github.com/desertthunder/genify/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve starts the web front-end and blocks until ctx is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	defaults, err := tasks.OptsFromConfig(r.config)
	if err != nil {
		return err
	}

	handler, err := r.webHandler(engine, defaults, cmd.Bool("no-qr"))
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	url := "http://" + ln.Addr().String()
	r.writePlain("Genify is running on %s\n", url)
	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "url", url, "error", err)
		}
	}

	return server.New(cfg.Addr(), handler, r.logger).Serve(ctx, ln)
}

// webHandler assembles the router: health checks sit in front of the rate limiter, lookups behind it.
func (r *Runner) webHandler(analyzer tasks.Analyzer, defaults tasks.AnalyzeOpts, noQR bool) (http.Handler, error) {
	app, err := web.NewApp(web.AppOpts{
		Analyzer:  analyzer,
		Defaults:  defaults,
		Logger:    shared.WithLogger(r.logger, "component", "web"),
		NoQRCodes: noQR,
	})
	if err != nil {
		return nil, err
	}

	router := server.NewBasicRouter()
	router.Use(server.Recoverer(r.logger), server.RequestLogger(shared.WithLogger(r.logger, "component", "http")))
	router.Handler(web.HealthHandler{})

	router.Use(server.RateLimit(server.NewLimiter(r.config.Server.RateLimit, r.config.Server.Burst)))
	app.Register(router)
	return router, nil
}
