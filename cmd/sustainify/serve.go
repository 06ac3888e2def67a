package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aryannaik/sustainify/internal/server"
)

var (
	portFlag      string
	staticDirFlag string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog API and the web front end",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&portFlag, "port", "", "Port to listen on")
	serveCmd.Flags().StringVar(&staticDirFlag, "static-dir", "", "Directory with the web front end")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Port = portFlag
	}
	if cmd.Flags().Changed("static-dir") {
		cfg.StaticDir = staticDirFlag
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctrl, st, err := openSession()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The API answers from contributions alone until the catalog arrives.
	go loadCatalog(ctx, ctrl)

	srv := server.New(cfg.Port, server.NewRouter(ctrl, cfg.StaticDir, logger))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("Goodbye")
	return nil
}
