package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/dessertshop/storefront-api/internal/config"
	"github.com/dessertshop/storefront-api/internal/handler"
	"github.com/dessertshop/storefront-api/internal/mailer"
	"github.com/dessertshop/storefront-api/internal/middleware"
	"github.com/dessertshop/storefront-api/internal/payment"
	"github.com/dessertshop/storefront-api/internal/pricing"
	"github.com/dessertshop/storefront-api/internal/repository"
	"github.com/dessertshop/storefront-api/internal/service"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := mailer.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	rates := pricing.Rates{
		Tax:      cfg.Shop.TaxRateDecimal(),
		Shipping: cfg.Shop.ShippingRateDecimal(),
	}

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	unitRepo := repository.NewUnitRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)

	// Infrastructure
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey)
	mailPub := mailer.NewPublisher(amqpCh)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.Shop.AdminUserID)
	catalogSvc := service.NewCatalogService(categoryRepo, productRepo, cartRepo, redisClient)
	categorySvc := service.NewCategoryService(categoryRepo, productRepo, catalogSvc)
	unitSvc := service.NewUnitService(unitRepo, productRepo, cartRepo, orderRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo, unitRepo, cartRepo, orderRepo, catalogSvc)
	userSvc := service.NewUserService(userRepo, cartRepo, orderRepo, cfg.Shop.AdminUserID)
	cartSvc := service.NewCartService(cartRepo, productRepo, rates)
	checkoutSvc := service.NewCheckoutService(
		userRepo, cartRepo, productRepo, orderRepo,
		gateway, mailPub, redisClient, rates, cfg.Stripe.SiteDomain, log,
	)
	orderSvc := service.NewOrderService(orderRepo)
	contactSvc := service.NewContactService(mailPub, cfg.SMTP.From)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	unitH := handler.NewUnitHandler(unitSvc)
	productH := handler.NewProductHandler(productSvc)
	userH := handler.NewUserHandler(userSvc)
	cartH := handler.NewCartHandler(cartSvc)
	checkoutH := handler.NewCheckoutHandler(checkoutSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	contactH := handler.NewContactHandler(contactSvc)
	uploadH := handler.NewUploadHandler(cfg.Server.UploadDir, cfg.Server.BaseURL)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Worker
	mailWorker := mailer.NewWorker(amqpCh, mailer.NewSMTPSender(cfg.SMTP), log)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)
	router.Static("/uploads", cfg.Server.UploadDir)

	authRequired := middleware.AuthMiddleware(cfg.JWT.Secret)
	adminOnly := middleware.AdminOnly()

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)

		v1.GET("/catalog", middleware.OptionalAuth(cfg.JWT.Secret), catalogH.Storefront)
		v1.GET("/catalog/products/:id", catalogH.GetProduct)
		v1.POST("/contact", contactH.Submit)

		cart := v1.Group("/cart", authRequired)
		cart.GET("", cartH.GetCart)
		cart.POST("/lines", cartH.AddLine)
		cart.PUT("/lines/:id", cartH.UpdateLine)
		cart.DELETE("/lines/:id", cartH.DeleteLine)

		checkout := v1.Group("/checkout", authRequired)
		checkout.POST("", checkoutH.Begin)
		checkout.GET("/success", checkoutH.Success)
		checkout.GET("/cancel", checkoutH.Cancel)

		orders := v1.Group("/orders", authRequired)
		orders.GET("", orderH.ListMine)
		orders.GET("/:id", orderH.Get)

		admin := v1.Group("/admin", authRequired, adminOnly)
		{
			admin.GET("/categories", categoryH.List)
			admin.GET("/categories/:id", categoryH.Get)
			admin.POST("/categories", categoryH.Create)
			admin.PUT("/categories/:id", categoryH.Update)
			admin.DELETE("/categories/:id", categoryH.Delete)

			admin.GET("/units", unitH.List)
			admin.GET("/units/:id", unitH.Get)
			admin.POST("/units", unitH.Create)
			admin.PUT("/units/:id", unitH.Update)
			admin.DELETE("/units/:id", unitH.Delete)

			admin.GET("/products", productH.List)
			admin.GET("/products/:id", productH.Get)
			admin.POST("/products", productH.Create)
			admin.PUT("/products/:id", productH.Update)
			admin.DELETE("/products/:id", productH.Delete)

			admin.GET("/users", userH.List)
			admin.GET("/users/:id", userH.Get)
			admin.POST("/users", userH.Create)
			admin.PUT("/users/:id", userH.Update)
			admin.DELETE("/users/:id", userH.Delete)

			admin.GET("/orders", orderH.ListAll)
			admin.PUT("/orders/:id", orderH.Edit)

			admin.POST("/uploads", uploadH.UploadImage)
		}
	}

	if err := mailWorker.Start(ctx); err != nil {
		log.Error("start mail worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	mailWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
