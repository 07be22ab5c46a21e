package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/connectors"
	"tradejournal/src/handler"
	"tradejournal/src/repository"
)

// NewRouter builds the full route table against the production
// repositories. Everything under /api except register/login requires a
// bearer token.
func NewRouter() chi.Router {
	tradeRepo := repository.NewTradeRepository()
	userRepo := repository.NewUserRepository()
	ticker := connectors.NewTickerClient("")

	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck error")
		}
	})

	r.Post("/api/auth/register", handler.RegisterHandler(userRepo))
	r.Post("/api/auth/login", handler.LoginHandler(userRepo))

	// Authenticated routes
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser(userRepo))

		pr.Post("/api/auth/logout", handler.LogoutHandler(userRepo))

		pr.Route("/api/trades", func(tr chi.Router) {
			tr.Get("/", handler.ListTradesHandler(tradeRepo))
			tr.Post("/", handler.CreateTradeHandler(tradeRepo))
			tr.Get("/stats", handler.StatsHandler(tradeRepo))
			tr.Get("/{id}", handler.GetTradeHandler(tradeRepo))
			tr.Put("/{id}", handler.UpdateTradeHandler(tradeRepo))
			tr.Delete("/{id}", handler.DeleteTradeHandler(tradeRepo))
		})

		pr.Get("/api/ticker", handler.TickerHandler(ticker))
	})

	return r
}

func StartServer(port string) {
	r := NewRouter()

	// Graceful server
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
