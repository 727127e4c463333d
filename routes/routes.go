package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"eventboard/middlewares"
	"eventboard/models"
	"eventboard/storage"
	"eventboard/utils"
)

type deps struct {
	users  models.UserRepository
	events models.EventRepository
	assets storage.AssetStore      // nil disables poster uploads
	inv    *utils.CacheInvalidator // nil disables cache purging
	secret string
	log    *logrus.Logger
}

// RegisterRoutes wires every API endpoint onto server. Repositories and the
// asset store come from main so nothing here touches a concrete backend.
func RegisterRoutes(
	server *gin.Engine,
	u models.UserRepository,
	e models.EventRepository,
	assets storage.AssetStore,
	rdb *redis.Client,
	inv *utils.CacheInvalidator,
	secret string,
	log *logrus.Logger,
) {
	d := &deps{users: u, events: e, assets: assets, inv: inv, secret: secret, log: log}

	// Global per-IP limit.
	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     20,
		Burst:   40,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	server.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Credential endpoints get a much stricter per-IP limit.
	authLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     0.5,
		Burst:   5,
		IdleTTL: 10 * time.Minute,
	})
	server.POST("/api/register",
		authLimiter.Middleware(func(c *gin.Context) string { return "register:" + c.ClientIP() }),
		d.register,
	)
	server.POST("/api/login",
		authLimiter.Middleware(func(c *gin.Context) string { return "login:" + c.ClientIP() }),
		d.login,
	)

	// Public feed.
	server.GET("/api/events", d.getEvents)

	// Authenticated group: bearer gate, then per-user limit and daily quota.
	auth := server.Group("/api")
	auth.Use(middlewares.Authenticate(d.users, d.secret))

	userLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     5,
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	})
	auth.Use(userLimiter.Middleware(func(c *gin.Context) string {
		user, _ := middlewares.CurrentUser(c)
		return "u:" + strconv.FormatInt(user.ID, 10)
	}))

	if rdb != nil {
		auth.Use(middlewares.Quota(rdb, middlewares.QuotaRule{
			Limit:  2000,
			Window: 24 * time.Hour,
			KeyFn: func(c *gin.Context) string {
				user, ok := middlewares.CurrentUser(c)
				if !ok {
					return ""
				}
				return fmt.Sprintf("quota:user:%d:day", user.ID)
			},
		}))
	}

	auth.GET("/profile", d.profile)

	// Admin-only group.
	admin := auth.Group("")
	admin.Use(middlewares.RequireAdmin)

	admin.POST("/events", d.createEvent)
	admin.GET("/admin/events", d.adminEvents)
	admin.DELETE("/events/:id", d.deleteEvent)
}
