package models

import "time"

// Image references an externally stored asset for an auction item.
type Image struct {
	AssetID string `json:"asset_id" bson:"asset_id"`
	URL     string `json:"url" bson:"url"`
}

// Bid represents a user's bid on an auction. Bids are embedded in their
// auction document and never addressed outside of it.
type Bid struct {
	BidID     string    `json:"bid_id" bson:"bid_id"`
	BidderID  string    `json:"bidder_id" bson:"bidder_id"`
	Amount    float64   `json:"amount" bson:"amount"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Auction represents a time-boxed listing accepting bids between StartTime
// and EndTime. Lifecycle state is derived from the window, never stored.
type Auction struct {
	AuctionID            string    `json:"auction_id" bson:"_id"`
	Title                string    `json:"title" bson:"title"`
	Description          string    `json:"description" bson:"description"`
	Category             string    `json:"category" bson:"category"`
	Condition            string    `json:"condition" bson:"condition"`
	StartingBid          float64   `json:"starting_bid" bson:"starting_bid"`
	StartTime            time.Time `json:"start_time" bson:"start_time"`
	EndTime              time.Time `json:"end_time" bson:"end_time"`
	CreatedBy            string    `json:"created_by" bson:"created_by"`
	Image                Image     `json:"image" bson:"image"`
	Bids                 []Bid     `json:"bids" bson:"bids"`
	CommissionCalculated bool      `json:"commission_calculated" bson:"commission_calculated"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at"`

	// Version supports optimistic concurrency in document stores; bumped on
	// every write, never exposed over HTTP.
	Version int64 `json:"-" bson:"version"`
}

// User represents a marketplace participant. Authentication fields live with
// the identity collaborator; this core only touches the two counters.
type User struct {
	UserID           string  `json:"user_id" bson:"_id"`
	UserName         string  `json:"user_name" bson:"user_name"`
	Role             string  `json:"role" bson:"role"`
	UnpaidCommission float64 `json:"unpaid_commission" bson:"unpaid_commission"`
	AuctionsWon      int     `json:"auctions_won" bson:"auctions_won"`

	Version int64 `json:"-" bson:"version"`
}
