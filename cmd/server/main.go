package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/configuration"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/middleware"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
	})
	if err := modules.Load(app); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if err := app.Migrations().Run(ctx, logger); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	router := mux.NewRouter()
	router.Use(
		middleware.WithPool(pool),
		middleware.RequestLogger(logger),
		middleware.RequireTenant(app),
		middleware.UserFromHeader(),
		middleware.WithTransaction(),
	)
	router.Use(app.Middleware()...)
	for _, controller := range app.Controllers() {
		controller.Register(router)
	}

	srv := &http.Server{
		Addr:         conf.SocketAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", conf.SocketAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
