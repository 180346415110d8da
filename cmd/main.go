package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-videotube/internal/blobstore"
	"github.com/sbilibin2017/gw-videotube/internal/handlers"
	"github.com/sbilibin2017/gw-videotube/internal/jwt"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/metrics"
	"github.com/sbilibin2017/gw-videotube/internal/middlewares"
	"github.com/sbilibin2017/gw-videotube/internal/migrations"
	"github.com/sbilibin2017/gw-videotube/internal/repositories"
	"github.com/sbilibin2017/gw-videotube/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/sbilibin2017/gw-videotube/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds every setting read from the environment.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisExpSecond    int

	AccessTokenSecret      string
	AccessTokenExpSecond   int
	RefreshTokenSecret     string
	RefreshTokenExpSecond  int
	RevokeOnPasswordChange bool
	CookieSecure           bool

	S3 blobstore.Config

	KafkaBrokers []string
	KafkaTopic   string

	UploadDir string
}

// @title gw-videotube API
// @version 1.0.0
// @description Accounts, sessions, channel subscriptions and watch history of the videotube platform
// @host localhost:8080
// @BasePath /api/v1/users
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns
// the application, database, Redis, token, storage and Kafka configuration.
func parseConfig(path string) (*config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	var err error
	getInt := func(key, defaultValue string) int {
		if err != nil {
			return 0
		}
		var v int
		if v, err = strconv.Atoi(getEnv(key, defaultValue)); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
		}
		return v
	}
	getBool := func(key, defaultValue string) bool {
		if err != nil {
			return false
		}
		var v bool
		if v, err = strconv.ParseBool(getEnv(key, defaultValue)); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
		}
		return v
	}

	cfg := &config{
		// Application config
		AppHost:  getEnv("APP_HOST", "localhost"),
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("APP_LOG_LEVEL", "info"),

		// PostgreSQL config
		PGHost:         getEnv("POSTGRES_HOST", "localhost"),
		PGPort:         getInt("POSTGRES_PORT", "5432"),
		PGUser:         getEnv("POSTGRES_USER", "user"),
		PGPassword:     getEnv("POSTGRES_PASSWORD", "password"),
		PGDB:           getEnv("POSTGRES_DB", "database"),
		PGMaxOpenConns: getInt("POSTGRES_MAX_OPEN_CONNS", "16"),
		PGMaxIdleConns: getInt("POSTGRES_MAX_IDLE_CONNS", "8"),

		// Redis config
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getInt("REDIS_PORT", "6379"),
		RedisDB:           getInt("REDIS_DB", "0"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisPoolSize:     getInt("REDIS_POOL_SIZE", "10"),
		RedisMinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", "2"),
		RedisExpSecond:    getInt("REDIS_EXP_SECOND", "60"),

		// Token config
		AccessTokenSecret:      getEnv("ACCESS_TOKEN_SECRET", "access_secret_key"),
		AccessTokenExpSecond:   getInt("ACCESS_TOKEN_EXP_SECOND", "900"),
		RefreshTokenSecret:     getEnv("REFRESH_TOKEN_SECRET", "refresh_secret_key"),
		RefreshTokenExpSecond:  getInt("REFRESH_TOKEN_EXP_SECOND", "864000"),
		RevokeOnPasswordChange: getBool("AUTH_REVOKE_ON_PASSWORD_CHANGE", "false"),
		CookieSecure:           getBool("COOKIE_SECURE", "true"),

		// Object storage config
		S3: blobstore.Config{
			Region:        getEnv("S3_REGION", "us-east-1"),
			Endpoint:      getEnv("S3_ENDPOINT", "http://localhost:9000"),
			AccessKey:     getEnv("S3_ACCESS_KEY", "minioadmin"),
			SecretKey:     getEnv("S3_SECRET_KEY", "minioadmin"),
			Bucket:        getEnv("S3_BUCKET", "videotube"),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", "http://localhost:9000/videotube"),
			UsePathStyle:  getBool("S3_USE_PATH_STYLE", "true"),
		},

		// Kafka config
		KafkaTopic: getEnv("KAFKA_TOPIC", "account-events"),

		UploadDir: getEnv("UPLOAD_DIR", os.TempDir()),
	}
	if err != nil {
		return nil, err
	}

	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	return cfg, nil
}

// run initializes the logger, database, Redis, object storage, Kafka and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg *config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	log := logger.Log
	log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
	log.Infof("Connecting to PostgreSQL at %s:%d/%s", cfg.PGHost, cfg.PGPort, cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL ping failed: %w", err)
	}

	if err := migrations.Up(ctx, db.DB); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Object storage
	s3Client, err := blobstore.NewS3Client(ctx, cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to configure S3 client: %w", err)
	}
	blobs := blobstore.New(s3Client, cfg.S3.Bucket, cfg.S3.PublicBaseURL)

	if err := os.MkdirAll(cfg.UploadDir, 0o700); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	authOpts := []services.AuthOption{
		services.WithAuthMetrics(collector),
		services.WithRevokeOnPasswordChange(cfg.RevokeOnPasswordChange),
		services.WithAfterCommit(middlewares.AfterCommit),
	}

	// Kafka is optional: without brokers account events are not published
	if len(cfg.KafkaBrokers) > 0 {
		kafkaWriter := &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.KafkaTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
		}
		defer kafkaWriter.Close()
		authOpts = append(authOpts, services.WithKafkaWriter(kafkaWriter))
		log.Infof("Publishing account events to Kafka topic %s", cfg.KafkaTopic)
	}

	// Initialize token codecs
	accessJWT := jwt.New(
		jwt.WithSecretKey(cfg.AccessTokenSecret),
		jwt.WithExpiration(time.Duration(cfg.AccessTokenExpSecond)*time.Second),
		jwt.WithKind(jwt.KindAccess),
	)
	refreshJWT := jwt.New(
		jwt.WithSecretKey(cfg.RefreshTokenSecret),
		jwt.WithExpiration(time.Duration(cfg.RefreshTokenExpSecond)*time.Second),
		jwt.WithKind(jwt.KindRefresh),
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext)
	subReadRepo := repositories.NewSubscriptionReadRepository(db)
	subWriteRepo := repositories.NewSubscriptionWriteRepository(db, middlewares.GetTxFromContext)
	videoReadRepo := repositories.NewVideoReadRepository(db)
	historyRepo := repositories.NewWatchHistoryRepository(db, middlewares.GetTxFromContext)
	statsCache := repositories.NewChannelStatsCacheRepository(rdb, time.Duration(cfg.RedisExpSecond)*time.Second)

	// Initialize services
	svcs := appServices{
		auth:    services.NewAuthService(userReadRepo, userWriteRepo, accessJWT, refreshJWT, blobs, authOpts...),
		account: services.NewAccountService(userReadRepo, userWriteRepo, blobs),
		channel: services.NewChannelService(userReadRepo, subReadRepo, subWriteRepo, statsCache),
		history: services.NewHistoryService(userReadRepo, videoReadRepo, historyRepo),
	}

	r := newRouter(cfg, db, svcs, accessJWT, collector, registry)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	}

	log.Info("HTTP server stopped gracefully")
	return nil
}

type appServices struct {
	auth    *services.AuthService
	account *services.AccountService
	channel *services.ChannelService
	history *services.HistoryService
}

// newRouter mounts every route under /api/v1/users plus /metrics and /swagger.
func newRouter(
	cfg *config,
	db *sqlx.DB,
	svcs appServices,
	tokener middlewares.Tokener,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
) chi.Router {
	cookies := handlers.CookieConfig{
		Secure:        cfg.CookieSecure,
		AccessMaxAge:  time.Duration(cfg.AccessTokenExpSecond) * time.Second,
		RefreshMaxAge: time.Duration(cfg.RefreshTokenExpSecond) * time.Second,
	}
	tx := middlewares.TxMiddleware(db)
	gate := middlewares.AuthMiddleware(tokener, svcs.auth)
	optionalGate := middlewares.OptionalAuthMiddleware(tokener, svcs.auth)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))
	r.Use(middlewares.MetricsMiddleware(collector))

	r.Route("/api/v1/users", func(r chi.Router) {
		// Public routes. Blob uploads never run inside a transaction.
		r.Post("/register", handlers.NewRegisterHandler(svcs.auth, cfg.UploadDir))
		r.With(tx).Post("/login", handlers.NewLoginHandler(svcs.auth, cookies))
		r.With(tx).Post("/refresh-token", handlers.NewRefreshHandler(svcs.auth, cookies))
		r.With(optionalGate).Get("/c/{username}", handlers.NewChannelProfileHandler(svcs.channel))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Get("/current-user", handlers.NewCurrentUserHandler(svcs.account))
			r.Get("/watch-history", handlers.NewWatchHistoryHandler(svcs.history))
			r.Patch("/avatar", handlers.NewUpdateAvatarHandler(svcs.account, cfg.UploadDir))
			r.Patch("/cover-image", handlers.NewUpdateCoverImageHandler(svcs.account, cfg.UploadDir))

			r.Group(func(r chi.Router) {
				r.Use(tx)
				r.Post("/logout", handlers.NewLogoutHandler(svcs.auth, cookies))
				r.Post("/change-password", handlers.NewChangePasswordHandler(svcs.auth))
				r.Patch("/update-account", handlers.NewUpdateAccountHandler(svcs.account))
				r.Post("/c/{username}/subscription", handlers.NewSubscribeHandler(svcs.channel))
				r.Delete("/c/{username}/subscription", handlers.NewUnsubscribeHandler(svcs.channel))
				r.Post("/watch-history/{videoID}", handlers.NewRecordViewHandler(svcs.history))
			})
		})
	})

	r.Handle("/metrics", metrics.Handler(gatherer))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	return r
}
