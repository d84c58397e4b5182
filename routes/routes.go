package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"caravan-share/controllers"
	"caravan-share/middleware"
	"caravan-share/services"
)

// Deps is everything the router wires together.
type Deps struct {
	Registry     *services.SessionRegistry
	Cookie       middleware.CookieOptions
	Origins      []string
	LoginLimiter *middleware.RateLimiter

	Sessions     *controllers.SessionController
	Listings     *controllers.ListingController
	Reservations *controllers.ReservationController
}

func corsConfig(origins []string) cors.Config {
	// browsers refuse credentialed requests to a wildcard origin
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())
	r.Use(cors.New(corsConfig(d.Origins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.Session(d.Registry, d.Cookie))
	{
		session := api.Group("/session")
		{
			session.GET("", d.Sessions.Me)
			session.POST("/login", d.LoginLimiter.Middleware(), d.Sessions.Login)
			session.POST("/logout", d.Sessions.Logout)
			session.GET("/google", d.Sessions.GoogleURL)
		}

		caravans := api.Group("/caravans")
		{
			caravans.GET("", d.Listings.GetListings)
			caravans.GET("/:id", d.Listings.GetListingPage)
			caravans.POST("/:id/reservations", d.Reservations.CreateReservation)
		}

		mypage := api.Group("/mypage")
		{
			mypage.GET("/reservations", d.Reservations.MyReservations)
			mypage.GET("/booking-attempts", d.Reservations.MyAttempts)
		}
	}

	return r
}
