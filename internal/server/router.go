package server

import (
	handler "auction-house/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(service handler.AuctionServiceInterface) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(service)

	items := router.Group("/api/v1/auctionitem")
	{
		items.GET("/allitems", auctionHandler.GetAllItemsHandler)
		items.GET("/auction/:id", auctionHandler.GetAuctionDetailsHandler)

		authed := items.Group("", IdentityMiddleware)
		{
			authed.POST("/create", auctionHandler.CreateAuctionHandler)
			authed.GET("/myitems", auctionHandler.GetMyItemsHandler)
			authed.DELETE("/delete/:id", auctionHandler.RemoveAuctionHandler)
			authed.PUT("/republish/:id", auctionHandler.RepublishAuctionHandler)
		}
	}

	bids := router.Group("/api/v1/bid", IdentityMiddleware)
	{
		bids.POST("/place/:id", auctionHandler.PlaceBidHandler)
	}

	return router
}
