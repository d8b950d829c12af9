package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gutendexer/pkg/logger"
	"gutendexer/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(bookHandler *BookHandler) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("gutendexer"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"https://*", "http://*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Content-Type"},
		ExposeHeaders: []string{"Link"},
		MaxAge:        300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "gutendexer",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	books := router.Group("/books")
	{
		books.GET("/top", bookHandler.GetTopBooks)
		books.GET("/search", bookHandler.SearchBooks)
		books.GET("/search/paginated", bookHandler.SearchBooksPaginated)

		books.GET("/:book_id", bookHandler.GetBook)
		books.GET("/:book_id/reviews/monthly", bookHandler.GetMonthlyAverages)
		books.POST("/:book_id/review", bookHandler.AddReview)
	}

	return router
}
