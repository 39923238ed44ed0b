package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/configuration"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
)

func main() {
	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
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
	if err := app.Seeder().Seed(ctx, app); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}
	logger.Info("seed completed")
}
