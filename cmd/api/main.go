package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"locamat/internal/config"
	"locamat/internal/database"
	"locamat/internal/middleware"
	"locamat/internal/modules/auth"
	"locamat/internal/modules/catalog"
	"locamat/internal/modules/client"
	"locamat/internal/modules/rental"
	"locamat/internal/modules/reporting"
	jwtsvc "locamat/internal/pkg/jwt"
	"locamat/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)

	catalogRepo := repository.NewCatalogRepository(db)
	clientRepo := repository.NewClientRepository(db)

	authService := auth.NewService(db, j)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	clientService := client.NewService(clientRepo)
	clientHandler := client.NewHandler(clientService)

	rentalService := rental.NewService(db, cfg.PenaltyPerDay)
	rentalHandler := rental.NewHandler(rentalService)

	reportingService := reporting.NewService(db)
	reportingHandler := reporting.NewHandler(reportingService)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(), middleware.RequestLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		catalogHandler.RegisterRoutes(v1)
		clientHandler.RegisterRoutes(v1)
		rentalHandler.RegisterRoutes(v1)
		reportingHandler.RegisterRoutes(v1)

		// reservation and restitution require a logged-in staff user
		protected := v1.Group("/")
		protected.Use(authMiddleware(j))
		{
			rentalHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}

func authMiddleware(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing or invalid Authorization header",
				},
			})
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid token",
				},
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}
