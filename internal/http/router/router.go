package router

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tickevo.app/backend/internal/http/handler"
	"tickevo.app/backend/internal/http/middleware"
	"tickevo.app/backend/internal/service"
)

type RouterConfig struct {
	// CORSAllowOrigins of ["*"] allows any origin.
	CORSAllowOrigins []string
	// StaticDir, when set, serves the web client for every unmatched GET.
	StaticDir string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.Use(CORS(cfg.CORSAllowOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	authHandler := handler.NewAuthHandler(services.Auth())
	AuthRouter(api, authHandler)

	authed := api.Group("", middleware.RequireAuth(services.Auth()))
	{
		authed.GET("/me", authHandler.Me)

		ticketHandler := handler.NewTicketHandler(services.Tickets())
		messageHandler := handler.NewMessageHandler(services.Messages())
		TicketRouter(authed, ticketHandler, messageHandler)
		LobbyRouter(authed.Group("/messages"), messageHandler)
	}

	if cfg.StaticDir != "" {
		router.NoRoute(Static(cfg.StaticDir))
	}
}

// CORS exposes the API to the browser client. The Authorization header
// carries the raw session token.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// Static serves files from dir and falls back to index.html so client-side
// routes resolve. Unknown /api paths stay 404.
func Static(dir string) gin.HandlerFunc {
	fs := http.Dir(dir)
	return func(c *gin.Context) {
		method := c.Request.Method
		if (method != http.MethodGet && method != http.MethodHead) || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		name := path.Clean("/" + c.Request.URL.Path)
		if !isFile(fs, name) {
			// "/" makes the file server pick index.html without redirecting.
			name = "/"
		}
		c.FileFromFS(name, fs)
	}
}

func isFile(fs http.FileSystem, name string) bool {
	f, err := fs.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}
