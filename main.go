package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventboard/config"
	"eventboard/middlewares"
	"eventboard/models"
	"eventboard/routes"
	"eventboard/storage"
	"eventboard/utils"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}

	// Postgres (users)
	sqldb, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("sql.Open")
	}
	if err := sqldb.Ping(); err != nil {
		log.WithError(err).Fatal("postgres ping")
	}
	sqldb.SetMaxOpenConns(20)
	sqldb.SetMaxIdleConns(10)
	if err := models.EnsureUsersTable(sqldb); err != nil {
		log.WithError(err).Fatal("schema")
	}

	// Mongo (events)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mg, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.WithError(err).Fatal("mongo.Connect")
	}
	if err := mg.Ping(ctx, nil); err != nil {
		log.WithError(err).Fatal("mongo ping")
	}
	defer func() { _ = mg.Disconnect(context.Background()) }()
	eventsCol := mg.Database(cfg.MongoDB).Collection("events")

	// Redis (feed cache + quotas)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	inv := utils.NewCacheInvalidator(rdb)

	// Poster storage is optional: without a token events are created bare.
	var assets storage.AssetStore
	if cfg.DropboxToken != "" {
		assets = storage.NewDropboxStore(cfg.DropboxToken)
	} else {
		log.Warn("DROPBOX_TOKEN not set, poster uploads disabled")
	}

	server := gin.Default()
	server.Use(middlewares.ResponseCache(rdb, 30*time.Second))

	routes.RegisterRoutes(server,
		models.NewSQLUserRepository(sqldb),
		models.NewMongoEventRepository(eventsCol),
		assets, rdb, inv, cfg.JWTSecret, log)

	// Anything outside /api falls back to the SPA entry document.
	server.NoRoute(spaFallback(cfg.StaticDir))

	log.WithField("port", cfg.Port).Info("server starting")
	if err := server.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("gin.Run")
	}
}

func spaFallback(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
			return
		}
		requested := filepath.Join(staticDir, filepath.Clean(c.Request.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			c.File(requested)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	}
}
