package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/linemk/almost-amazon/internal/app"
	"github.com/linemk/almost-amazon/internal/app/handlers"
	"github.com/linemk/almost-amazon/internal/config"
	"github.com/linemk/almost-amazon/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/almost-amazon/internal/lib/logger"
	"github.com/linemk/almost-amazon/internal/lib/logger/handlers/urllog"
	"github.com/linemk/almost-amazon/internal/service"
	"github.com/linemk/almost-amazon/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	reviewRepo := storage.NewReviewRepository(application.DB)
	collectionRepo := storage.NewCollectionRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(application.Logger, productRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, productRepo, orderRepo)
	reviewService := service.NewReviewService(application.Logger, reviewRepo, productRepo)
	collectionService := service.NewCollectionService(application.Logger, collectionRepo)

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))

	// публичное чтение каталога, отзывов и подборок
	router.Get("/api/products", handlers.ListProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/{id}", handlers.GetProductHandler(application.Logger, catalogService))
	router.Get("/api/product_reviews", handlers.ListReviewsHandler(application.Logger, reviewService))
	router.Get("/api/product_reviews/{id}", handlers.GetReviewHandler(application.Logger, reviewService))
	router.Get("/api/product_collections", handlers.ListCollectionsHandler(application.Logger, collectionService))
	router.Get("/api/product_collections/{id}", handlers.GetCollectionHandler(application.Logger, collectionService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)

		// каталог: запись только для админа (проверяется в сервисном слое)
		r.Post("/api/products", handlers.CreateProductHandler(application.Logger, catalogService))
		r.Patch("/api/products/{id}", handlers.UpdateProductHandler(application.Logger, catalogService))
		r.Put("/api/products/{id}", handlers.UpdateProductHandler(application.Logger, catalogService))
		r.Delete("/api/products/{id}", handlers.DeleteProductHandler(application.Logger, catalogService))

		// заказы: видимость и права — в сервисном слое
		r.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, orderService))
		r.Get("/api/orders/{id}", handlers.GetOrderHandler(application.Logger, orderService))
		r.Patch("/api/orders/{id}", handlers.UpdateOrderHandler(application.Logger, orderService))
		r.Put("/api/orders/{id}", handlers.UpdateOrderHandler(application.Logger, orderService))
		r.Delete("/api/orders/{id}", handlers.DeleteOrderHandler(application.Logger, orderService))

		// отзывы: создать может любой аутентифицированный, править — автор или админ
		r.Post("/api/product_reviews", handlers.CreateReviewHandler(application.Logger, reviewService))
		r.Patch("/api/product_reviews/{id}", handlers.UpdateReviewHandler(application.Logger, reviewService))
		r.Put("/api/product_reviews/{id}", handlers.UpdateReviewHandler(application.Logger, reviewService))
		r.Delete("/api/product_reviews/{id}", handlers.DeleteReviewHandler(application.Logger, reviewService))

		// подборки: запись только для админа
		r.Post("/api/product_collections", handlers.CreateCollectionHandler(application.Logger, collectionService))
		r.Patch("/api/product_collections/{id}", handlers.UpdateCollectionHandler(application.Logger, collectionService))
		r.Put("/api/product_collections/{id}", handlers.UpdateCollectionHandler(application.Logger, collectionService))
		r.Delete("/api/product_collections/{id}", handlers.DeleteCollectionHandler(application.Logger, collectionService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
