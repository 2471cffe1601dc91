package routes

import (
	"net/http"

	"perch/auth"
	"perch/listings"
	"perch/middleware"
	"perch/notifications"
	"perch/profile"
	"perch/ratelim"
	"perch/reservations"
	"perch/reviews"
	"perch/websock"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/listingpic/*filepath", http.Dir("static/listingpic"))
}

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", ratelim.RateLimit(middleware.Authenticate(auth.RefreshToken)))
}

func AddListingRoutes(router *httprouter.Router) {
	router.POST("/api/listings", ratelim.RateLimit(middleware.Authenticate(listings.CreateListing)))
	router.GET("/api/listings", middleware.OptionalAuth(listings.GetListings))
	router.GET("/api/listings/:id", middleware.OptionalAuth(listings.GetListing))
	router.DELETE("/api/listings/:id", middleware.Authenticate(listings.DeleteListing))
	router.POST("/api/listings/:id/photos", ratelim.RateLimit(middleware.Authenticate(listings.UploadListingPhotos)))
	router.GET("/api/listings/:id/calendar", middleware.OptionalAuth(listings.GetListingCalendar))
	router.PUT("/api/listings/:id/calendar", middleware.Authenticate(listings.SetListingAvailability))

	router.POST("/api/listings/:id/reviews", ratelim.RateLimit(middleware.Authenticate(reviews.AddReview)))
	router.GET("/api/listings/:id/reviews", middleware.OptionalAuth(reviews.GetReviews))
}

func AddReservationRoutes(router *httprouter.Router) {
	router.POST("/api/reservations", ratelim.RateLimit(middleware.Authenticate(reservations.CreateReservation)))
	router.GET("/api/reservations", middleware.Authenticate(reservations.GetReservations))
	router.GET("/api/reservations/:id", middleware.Authenticate(reservations.GetReservation))
	router.PUT("/api/reservations/:id/cancel", ratelim.RateLimit(middleware.Authenticate(reservations.CancelReservation)))
	router.GET("/api/reservations/:id/print", middleware.Authenticate(reservations.PrintConfirmation))
	router.DELETE("/api/reservations/author/:id/canceled", middleware.Authenticate(reservations.DeleteCanceledReservationsByGuest))
}

func AddNotificationRoutes(router *httprouter.Router) {
	router.POST("/api/notifications", middleware.Authenticate(notifications.CreateNotification))
	router.GET("/api/notifications/author/:id", middleware.Authenticate(notifications.GetNotificationsForAuthor))
	// bulk mark is POST so it cannot collide with the :id wildcard
	router.POST("/api/notifications/read", middleware.Authenticate(notifications.MarkNotificationsRead))
	router.PUT("/api/notifications/:id/read", middleware.Authenticate(notifications.MarkNotificationRead))
}

func AddProfileRoutes(router *httprouter.Router) {
	router.GET("/api/profile/:id", middleware.OptionalAuth(profile.GetProfile))
	router.POST("/api/profile/host-request", ratelim.RateLimit(middleware.Authenticate(profile.RequestHostRole)))
	router.PUT("/api/profile/:id/host-approve", middleware.Authenticate(profile.ApproveHostRole))
	router.PUT("/api/profile/:id/host-reject", middleware.Authenticate(profile.RejectHostRole))
	router.PUT("/api/profile/:id/demote", middleware.Authenticate(profile.DemoteToTraveler))
}

func AddWebsockRoutes(router *httprouter.Router) {
	router.GET("/ws", websock.HandleWS)
}
