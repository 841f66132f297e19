package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"pomodoro_tui/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timer headless behind an HTTP API",
	Long: `Run the timer without the terminal UI and control it over HTTP.

Examples:
  pomodoro serve
  pomodoro serve --addr :9090
  curl -X POST localhost:8080/api/timer/start`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if err := a.startTimer(logger); err != nil {
		return err
	}

	addr := a.cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(a.engine, a.tasks, a.sessions, a.settings, logger)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("pomodoro listening on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
