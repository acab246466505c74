package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/pivotree/internal/analysis"
	"github.com/KaramelBytes/pivotree/internal/api"
	cfgpkg "github.com/KaramelBytes/pivotree/internal/config"
	"github.com/KaramelBytes/pivotree/internal/format"
)

var (
	srvAddr      string
	srvBodyLimit string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve pivots over HTTP (POST /api/pivot)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		addr := c.ServeAddr
		if srvAddr != "" {
			addr = srvAddr
		}
		e := newServer(configOptions(c), numberOptions(c))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- e.Start(addr) }()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on http://%s\n", addr)

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("server stopped")
		return nil
	},
}

func newServer(defaults analysis.Options, numbers format.Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(srvBodyLimit))
	srvLog := log.WithName("http")
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			srvLog.V(1).Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	api.NewHandler(defaults, numbers, log).RegisterRoutes(e)
	return e
}

func numberOptions(c *cfgpkg.Global) format.Options {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		tag = language.English
	}
	return format.Options{Symbol: c.CurrencySymbol, Locale: tag}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&srvBodyLimit, "body-limit", "10M", "maximum request body size")
}
