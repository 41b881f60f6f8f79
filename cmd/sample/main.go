// Command sample demonstrates the github.com/bjaus/route engine with a small
// users and posts API.
//
// Run:
//
//	go run ./cmd/sample
//	go run ./cmd/sample --config service.yaml
//
// Print the endpoint table:
//
//	go run ./cmd/sample --routes
//
// Then explore:
//
//	GET    http://localhost:3000/health                  health check
//	POST   http://localhost:3000/login                   issue an access token
//	GET    http://localhost:3000/users                   list users (admin)
//	POST   http://localhost:3000/users                   create user
//	GET    http://localhost:3000/users/{id}              get user (self or admin)
//	DELETE http://localhost:3000/users/{id}              delete user (admin)
//	GET    http://localhost:3000/users/{id}/posts        list posts
//	POST   http://localhost:3000/users/{id}/posts        create a text or link post (self)
//	GET    http://localhost:3000/routes                  endpoint table
//	GET    http://localhost:3000/metrics                 prometheus metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bjaus/route"
	"github.com/bjaus/route/auth"
	"github.com/bjaus/route/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		routesOnly bool
		signingKey string
	)

	cmd := &cobra.Command{
		Use:          "sample",
		Short:        "Run the sample users and posts API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
			slog.SetDefault(logger)

			reg := prometheus.NewRegistry()
			svc, err := newService(cfg, logger, reg, []byte(signingKey))
			if err != nil {
				return err
			}

			if routesOnly {
				return svc.Router().WriteRoutesYAML(cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc.OnStop(func(context.Context) {
				logger.Info("server stopped")
			})
			if err := svc.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().BoolVar(&routesOnly, "routes", false, "print the endpoint table as YAML and exit")
	cmd.Flags().StringVar(&signingKey, "signing-key", "sample-signing-key-change-me", "HS256 key for access tokens")
	return cmd
}

// newService wires the sample API onto a route.Service.
func newService(cfg config.Config, logger *slog.Logger, reg *prometheus.Registry, key []byte) (*route.Service, error) {
	tokens, err := auth.NewManager(key, auth.WithIssuer("sample"))
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	codec := route.NewJSONCodec()
	route.RegisterVariant[Post, TextPost](codec, "text")
	route.RegisterVariant[Post, LinkPost](codec, "link")

	svc := route.New(
		route.WithAddr(cfg.Service.Addr()),
		route.WithBasePath(cfg.Service.BasePath),
		route.WithBodyLimit(1<<20),
		route.WithCodec(codec),
		route.WithLogger(logger),
	)
	svc.Use(route.Recovery(logger), serveMetrics(reg))

	app := newApp(tokens, auth.NewPasswordHasher(0))
	if err := app.seed(); err != nil {
		return nil, err
	}

	r := svc.Router()
	app.register(r)
	r.ServeRoutes("/routes")

	route.CORS(r, route.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{"Content-Type", auth.TokenHeader},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        600,
	})
	r.Around(route.RequestID())
	r.Around(route.Logged(logger))
	r.Around(route.SecureHeaders())
	r.Decorate(route.RateLimit(route.RateLimitConfig{Rate: 20, Burst: 40}))
	route.NewMetrics(reg, "sample").Install(r)

	route.HandleError(svc.Errors(), func(_ *route.Request, err *notFoundError) route.Response {
		return route.NotFound(err.Error())
	})

	return svc, nil
}

// serveMetrics exposes reg at /metrics ahead of the dispatcher.
func serveMetrics(reg *prometheus.Registry) route.Middleware {
	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && r.URL.Path == "/metrics" {
				h.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
