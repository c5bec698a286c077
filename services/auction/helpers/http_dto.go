package helpers

import (
	"time"

	model "auction-house/internal/models"
)

// Request/Response DTOs
type CreateAuctionRequest struct {
	Title       string    `form:"title" binding:"required"`
	Description string    `form:"description" binding:"required"`
	Category    string    `form:"category" binding:"required"`
	Condition   string    `form:"condition" binding:"required"`
	StartingBid float64   `form:"starting_bid" binding:"required,gt=0"`
	StartTime   time.Time `form:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime     time.Time `form:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

type RepublishRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID     string  `json:"bid_id"`
	AuctionID string  `json:"auction_id"`
	BidderID  string  `json:"bidder_id"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"created_at"`
}

// AuctionDetailResponse bundles an auction with its ranked bidders,
// highest amount first.
type AuctionDetailResponse struct {
	Auction model.Auction `json:"auction"`
	Bidders []model.Bid   `json:"bidders"`
}
