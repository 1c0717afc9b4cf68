package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/marceleta/cardapio-checkout/internal/cart"
	"github.com/marceleta/cardapio-checkout/internal/catalog"
	"github.com/marceleta/cardapio-checkout/internal/delivery"
	"github.com/marceleta/cardapio-checkout/internal/domain"
	h "github.com/marceleta/cardapio-checkout/internal/http"
	"github.com/marceleta/cardapio-checkout/internal/order"
	"github.com/marceleta/cardapio-checkout/internal/payment"
	"github.com/marceleta/cardapio-checkout/internal/service"
)

type Config struct {
	HTTPPort        string
	StoreName       string
	WhatsAppNumber  string
	DeliveryFee     decimal.Decimal
	ViaCEPBaseURL   string
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDBName     string
	PostgresHost    string
	PostgresPort    int
	PostgresUser    string
	PostgresPass    string
	PostgresDB      string
	MigrationsDir   string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	fee, err := decimal.NewFromString(getEnv("DELIVERY_FEE", "8.50"))
	if err != nil {
		log.WithError(err).Fatal("invalid DELIVERY_FEE")
	}

	pgPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		log.WithError(err).Fatal("invalid POSTGRES_PORT")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		StoreName:       getEnv("STORE_NAME", "Cardápio Digital"),
		WhatsAppNumber:  getEnv("WHATSAPP_NUMBER", "5511999990000"),
		DeliveryFee:     fee,
		ViaCEPBaseURL:   getEnv("VIACEP_BASE_URL", "https://viacep.com.br"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "menudb"),
		PostgresHost:    getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:    pgPort,
		PostgresUser:    getEnv("POSTGRES_USER", "postgres"),
		PostgresPass:    getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:      getEnv("POSTGRES_DB", "ordersdb"),
		MigrationsDir:   getEnv("MIGRATIONS_DIR", "migrations"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	log.Info("redis ping succeeded")

	mongoDB, err := catalog.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mongo")
	}
	defer mongoDB.Client().Disconnect(ctx)
	log.WithField("uri", cfg.MongoURI).Info("connected to mongo")

	archive, err := order.NewRepository(&order.Credentials{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		DBName:   cfg.PostgresDB,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer archive.Close()
	if err := archive.RunMigrations(cfg.MigrationsDir); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.Info("order archive ready")

	publisher := order.NewKafkaPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()

	catalogSvc := catalog.NewService(
		catalog.NewMongoRepository(mongoDB),
		catalog.NewRedisCache(redisClient),
	)

	cartRepo := cart.NewRedisRepository(redisClient)
	calculator := delivery.NewFlatFeeCalculator(cfg.DeliveryFee)
	validator := payment.NewPlanValidator()
	serializer := order.NewSerializer(cfg.StoreName, cfg.WhatsAppNumber)
	cepClient := delivery.NewViaCEPClient(cfg.ViaCEPBaseURL)

	sessions := h.NewSessionManager(func(ctx context.Context, sessionID string, customer domain.Customer) (*service.Flow, error) {
		store, err := cart.NewStore(ctx, sessionID, cartRepo)
		if err != nil {
			return nil, err
		}
		return service.NewFlow(sessionID, customer, service.Deps{
			Cart:       store,
			Calculator: calculator,
			Payments:   validator,
			Serializer: serializer,
			Archive:    archive,
			Publisher:  publisher,
		}), nil
	})

	router := h.NewRouter(
		h.NewCartHandler(sessions, catalogSvc, cfg.RequestTimeout),
		h.NewCheckoutHandler(sessions, cfg.RequestTimeout),
		h.NewMenuHandler(catalogSvc, cepClient, cfg.RequestTimeout),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}
