package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"auction-house/internal/auctionerrors"
	auction "auction-house/internal/auctionService"
	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key under which the identity middleware
// stores the authenticated user id.
const IdentityKey = "userID"

// allowedImageTypes lists the accepted upload mime types for item images.
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, in auction.CreateAuctionInput) (model.Auction, error)
	ListAll(ctx context.Context) ([]model.Auction, error)
	ListMine(ctx context.Context, sellerID string) ([]model.Auction, error)
	GetDetails(ctx context.Context, id string) (model.Auction, []model.Bid, error)
	Remove(ctx context.Context, id string) error
	Republish(ctx context.Context, id, sellerID string, newStart, newEnd time.Time) (model.Auction, error)
	PlaceBid(ctx context.Context, id, bidderID string, amount float64) (model.Bid, model.Auction, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /api/v1/auctionitem/create
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	sellerID := c.GetString(IdentityKey)

	var req helpers.CreateAuctionRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, auctionerrors.ErrMissingField, "auction item image required")
		utils.Warn("CreateAuctionHandler: missing image", map[string]any{"seller_id": sellerID})
		return
	}
	if !allowedImageTypes[fileHeader.Header.Get("Content-Type")] {
		utils.JSONError(c, http.StatusBadRequest, auctionerrors.ErrMissingField, "file format not supported")
		utils.Warn("CreateAuctionHandler: unsupported image format", map[string]any{
			"seller_id":    sellerID,
			"content_type": fileHeader.Header.Get("Content-Type"),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err, "could not read uploaded image")
		return
	}
	defer file.Close()

	created, err := h.service.CreateAuction(c, auction.CreateAuctionInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Condition:   req.Condition,
		StartingBid: req.StartingBid,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		SellerID:    sellerID,
		ImageName:   fileHeader.Filename,
		Image:       file,
	})
	if err != nil {
		status, message, clientErr := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, clientErr, message)
		utils.Error("CreateAuctionHandler: failed to create auction", map[string]any{
			"seller_id": sellerID,
			"error":     err.Error(),
		})
		return
	}

	message := fmt.Sprintf("auction item created and will be listed on the auction page at %s",
		created.StartTime.Format(time.RFC3339))
	utils.JSONResponse(c, http.StatusCreated, created, message)
	helpers.LogSuccess("CreateAuctionHandler", "auction created", map[string]any{
		"auction_id": created.AuctionID,
		"seller_id":  sellerID,
	})
}

// GetAllItemsHandler handles GET /api/v1/auctionitem/allitems
func (h *AuctionHandler) GetAllItemsHandler(c *gin.Context) {
	items, err := h.service.ListAll(c)
	if err != nil {
		status, message, clientErr := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, clientErr, message)
		utils.Warn("GetAllItemsHandler: error listing auctions", map[string]any{"error": err.Error()})
		return
	}

	if items == nil {
		items = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, items, "auctions retrieved successfully")
	helpers.LogSuccess("GetAllItemsHandler", "auctions retrieved successfully", map[string]any{
		"count": len(items),
	})
}

// GetMyItemsHandler handles GET /api/v1/auctionitem/myitems
func (h *AuctionHandler) GetMyItemsHandler(c *gin.Context) {
	sellerID := c.GetString(IdentityKey)

	items, err := h.service.ListMine(c, sellerID)
	if err != nil {
		status, message, clientErr := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, clientErr, message)
		utils.Warn("GetMyItemsHandler: error listing auctions", map[string]any{
			"seller_id": sellerID,
			"error":     err.Error(),
		})
		return
	}

	if items == nil {
		items = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, items, "auctions retrieved successfully")
	helpers.LogSuccess("GetMyItemsHandler", "auctions retrieved successfully", map[string]any{
		"seller_id": sellerID,
		"count":     len(items),
	})
}

// GetAuctionDetailsHandler handles GET /api/v1/auctionitem/auction/:id
func (h *AuctionHandler) GetAuctionDetailsHandler(c *gin.Context) {
	id := c.Param("id")

	item, bidders, err := h.service.GetDetails(c, id)
	if err != nil {
		status, message, clientErr := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, clientErr, message)
		utils.Warn("GetAuctionDetailsHandler: error retrieving auction", map[string]any{
			"auction_id": id,
			"error":      err.Error(),
		})
		return
	}

	if bidders == nil {
		bidders = []model.Bid{}
	}

	resp := helpers.AuctionDetailResponse{Auction: item, Bidders: bidders}
	utils.JSONResponse(c, http.StatusOK, resp, "auction retrieved successfully")
	helpers.LogSuccess("GetAuctionDetailsHandler", "auction retrieved successfully", map[string]any{
		"auction_id": id,
		"bid_count":  len(bidders),
	})
}

// RemoveAuctionHandler handles DELETE /api/v1/auctionitem/delete/:id
func (h *AuctionHandler) RemoveAuctionHandler(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Remove(c, id); err != nil {
		status, message, clientErr := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, clientErr, message)
		utils.Warn("RemoveAuctionHandler: error deleting auction", map[string]any{
			"auction_id": id,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction item deleted successfully")
	helpers.LogSuccess("RemoveAuctionHandler", "auction deleted", map[string]any{"auction_id": id})
}

// RepublishAuctionHandler handles PUT /api/v1/auctionitem/republish/:id
func (h *AuctionHandler) RepublishAuctionHandler(c *gin.Context) {
	id := c.Param("id")
	sellerID := c.GetString(IdentityKey)

	var req helpers.RepublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RepublishAuctionHandler", err)
		return
	}

	item, err := h.service.Republish(c, id, sellerID, req.StartTime, req.EndTime)
	if err != nil {
		status, message, clientErr := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, clientErr, message)
		utils.Error("RepublishAuctionHandler: failed to republish auction", map[string]any{
			"auction_id": id,
			"seller_id":  sellerID,
			"error":      err.Error(),
		})
		return
	}

	message := fmt.Sprintf("auction republished and will be active on %s", item.StartTime.Format(time.RFC3339))
	utils.JSONResponse(c, http.StatusOK, item, message)
	helpers.LogSuccess("RepublishAuctionHandler", "auction republished", map[string]any{
		"auction_id": id,
		"seller_id":  sellerID,
	})
}

// PlaceBidHandler handles POST /api/v1/bid/place/:id
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	id := c.Param("id")
	bidderID := c.GetString(IdentityKey)

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, _, err := h.service.PlaceBid(c, id, bidderID, req.Amount)
	if err != nil {
		status, message, clientErr := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, clientErr, message)
		utils.Warn("PlaceBidHandler: failed to place bid", map[string]any{
			"auction_id": id,
			"bidder_id":  bidderID,
			"amount":     req.Amount,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.BidResponse{
		BidID:     bid.BidID,
		AuctionID: id,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": id,
		"bidder_id":  bidderID,
		"amount":     bid.Amount,
	})
}
