package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/customer"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/shop-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/media"
)

func main() {
	logger := log.New(os.Stdout, "[shop-service] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatalf("run migrations: %v", err)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	images, mediaDir, err := newMediaStore(cfg)
	if err != nil {
		logger.Fatalf("media store: %v", err)
	}

	products := catalog.NewService(catalog.NewPostgresRepository(pool), images, cfg.Images, logger)
	customers := customer.NewPostgresRepository(pool)
	carts := cart.NewService(pool, cart.NewPostgresRepository(pool), customers, products, logger)

	var publisher httpapi.CartEventPublisher
	if cfg.RabbitMQURL != "" {
		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("open db: %v", err)
		}
		defer database.Close()

		p, closeRabbit, err := newPublisher(cfg.RabbitMQURL, database)
		if err != nil {
			logger.Fatalf("cart events publisher: %v", err)
		}
		defer closeRabbit()
		publisher = p
	} else {
		logger.Printf("RABBITMQ_URL not set, cart events disabled")
	}

	h := httpapi.NewHandler(products, carts, customers, publisher, httpapi.Options{
		Timeout:       cfg.RequestTimeout,
		MaxImageBytes: cfg.Images.MaxBytes,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(h, cfg.CORSAllowOrigins, mediaDir),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("shop-service listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
}

// newMediaStore picks Cloudinary when configured. The returned directory is
// non-empty only for the disk store, whose files the router serves.
func newMediaStore(cfg config.Config) (media.Store, string, error) {
	if cfg.CloudinaryURL != "" {
		s, err := media.NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		return s, "", err
	}
	s, err := media.NewDiskStore(cfg.MediaRoot)
	if err != nil {
		return nil, "", err
	}
	return s, cfg.MediaRoot, nil
}

func newPublisher(url string, database *sql.DB) (*events.Publisher, func(), error) {
	conn, err := events.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	p, err := events.NewPublisher(conn, events.NewSequenceRepository(database), events.ShopServiceProducer)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return p, func() {
		_ = p.Close()
		_ = conn.Close()
	}, nil
}
