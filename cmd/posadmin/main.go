package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeRez0/posadmin/internal/adapter/auth"
	"github.com/MikeRez0/posadmin/internal/adapter/client/posapi"
	"github.com/MikeRez0/posadmin/internal/adapter/config"
	"github.com/MikeRez0/posadmin/internal/adapter/handler/http"
	"github.com/MikeRez0/posadmin/internal/adapter/logger"
	"github.com/MikeRez0/posadmin/internal/adapter/metrics"
	"github.com/MikeRez0/posadmin/internal/adapter/storage"
	"github.com/MikeRez0/posadmin/internal/adapter/storage/repository"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/MikeRez0/posadmin/internal/core/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log, err := logger.NewLogger(conf.App)
	if err != nil {
		fmt.Printf("error creating log: %s", err)
		return
	}
	defer func() {
		_ = log.Sync()
	}()

	if conf.App.Mode == config.AppModeProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var journal port.SubmissionJournal
	if conf.Database.DSN == "" {
		log.Warn("DATABASE_URI is not set, submissions are kept in memory")
		journal = repository.NewMemoryJournal(repository.DefaultJournalCapacity)
	} else {
		db, err := storage.NewDBStorage(ctx, conf.Database)
		if err != nil {
			log.Error("database error", zap.Error(err))
			return
		}
		defer db.Close()

		err = db.RunMigrations()
		if err != nil {
			log.Error("database migration error", zap.Error(err))
			return
		}
		journal = repository.NewSubmissionRepository(db)
	}

	taxRate, err := conf.Orders.Rate()
	if err != nil {
		log.Error("tax rate error", zap.Error(err))
		return
	}

	tokenService, err := auth.New(conf.App.TokenKey, conf.App.TokenTTL)
	if err != nil {
		log.Error("token service creating error", zap.Error(err))
		return
	}

	m := metrics.NewMetrics()

	client, err := posapi.NewClient(conf.PosAPI, m, log.Named("POS API"))
	if err != nil {
		log.Error("pos api client creating error", zap.Error(err))
		return
	}

	svc, err := service.NewService(client, tokenService, journal, m, service.Config{
		TaxRate:       taxRate,
		SubmitTimeout: conf.Orders.SubmitTimeout,
		DraftTTL:      conf.Orders.DraftTTL,
	}, log.Named("Service"))
	if err != nil {
		log.Error("service creating error", zap.Error(err))
		return
	}

	userHandler, err := http.NewUserHandler(svc, log.Named("User handler"))
	if err != nil {
		log.Error("user handler creating error", zap.Error(err))
		return
	}
	draftHandler, err := http.NewDraftHandler(svc, log.Named("Draft handler"))
	if err != nil {
		log.Error("draft handler creating error", zap.Error(err))
		return
	}
	productHandler, err := http.NewProductHandler(svc, log.Named("Product handler"))
	if err != nil {
		log.Error("product handler creating error", zap.Error(err))
		return
	}
	customerHandler, err := http.NewCustomerHandler(svc, log.Named("Customer handler"))
	if err != nil {
		log.Error("customer handler creating error", zap.Error(err))
		return
	}
	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(log.Named("Router"), tokenService,
		userHandler, draftHandler, productHandler, customerHandler, orderHandler)
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	log.Info("Starting server",
		zap.String("address", conf.HTTP.HostString),
		zap.String("pos_api", conf.PosAPI.BaseURL))

	err = r.Serve(ctx, conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
	log.Info("Server stopped")
}
