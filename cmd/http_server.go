package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/budget-ledger/internal/auth"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/category"
	"github.com/frahmantamala/budget-ledger/internal/expense"
	"github.com/frahmantamala/budget-ledger/internal/transport"
	"github.com/frahmantamala/budget-ledger/internal/transport/rest"
	"github.com/frahmantamala/budget-ledger/internal/user"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	router := setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) *chi.Mux {
	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health:   rest.NewHealthHandler(deps.DB),
		Auth:     auth.NewHandler(deps.Auth, deps.Clock),
		User:     user.NewHandler(deps.Users),
		Budget:   budget.NewHandler(deps.Ledger, deps.Clock),
		Expense:  expense.NewHandler(deps.Expenses, deps.Clock),
		Category: category.NewHandler(transport.NewBaseHandler(deps.Logger), deps.Categories),
	}, rest.RouterOptions{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		Logger:         deps.Logger,
	})
	return router
}
