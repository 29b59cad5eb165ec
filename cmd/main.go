package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/beanery/order-service/docs"
	"github.com/beanery/order-service/internal/app"
	"github.com/beanery/order-service/internal/config"
	"github.com/beanery/order-service/internal/handler"
	"github.com/beanery/order-service/internal/middleware"
	"github.com/beanery/order-service/internal/notifier"
	"github.com/beanery/order-service/internal/postgres"
	"github.com/beanery/order-service/internal/repo"
	"github.com/beanery/order-service/internal/service"
	"github.com/beanery/order-service/pkg/trm"

	"github.com/joho/godotenv"
)

// @title           Storefront Order Service API
// @version         1.0
// @description     Заказы и аналитика витрины
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	ordersRepo := repo.NewOrdersRepo(db)
	usersRepo := repo.NewUsersRepo(db)
	summaryRepo := repo.NewSummaryRepo(db)
	txManager := trm.NewManager(db)

	mailNotifier := notifier.NewKafkaNotifier(logger, conf.Kafka, conf.Mail)

	orderService := service.NewOrderService(logger, txManager, ordersRepo, usersRepo, mailNotifier)
	analyticsService := service.NewAnalyticsService(logger, summaryRepo)

	httpHandler := handler.NewHTTPHandler(logger, orderService, analyticsService,
		middleware.Auth(conf.JWT.Secret), middleware.AdminOnly)

	app := app.New(logger, conf)
	app.SetHTTPHandlers(httpHandler)
	app.SetStarters(mailNotifier)
	app.SetClosers(mailNotifier)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
