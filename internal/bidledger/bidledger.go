// Package bidledger owns the ordered set of bids attached to one auction:
// ranking, the current winner, and the rules for accepting a new bid.
// Everything here is pure; persistence is the caller's problem.
package bidledger

import (
	"fmt"
	"sort"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/utils"
)

// Rank returns a fresh slice of bids sorted by amount descending, ties broken
// by earliest placement time. The input slice is never modified.
func Rank(bids []model.Bid) []model.Bid {
	ranked := append([]model.Bid(nil), bids...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Amount != ranked[j].Amount {
			return ranked[i].Amount > ranked[j].Amount
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})
	return ranked
}

// Winner returns the highest-ranked bid, or false if there are no bids.
func Winner(bids []model.Bid) (model.Bid, bool) {
	if len(bids) == 0 {
		return model.Bid{}, false
	}
	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > winning.Amount || (b.Amount == winning.Amount && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning, true
}

// Place validates and appends a bid to the auction. The auction must be open
// (startTime <= now <= endTime, both ends inclusive) and the amount must
// strictly exceed the current maximum, which is the starting bid when no bids
// exist. Callers run Place inside the store's atomic update so that the
// max-check and the append cannot race with a concurrent bidder.
func Place(a *model.Auction, bidderID string, amount float64, now time.Time) (model.Bid, error) {
	if now.Before(a.StartTime) || now.After(a.EndTime) {
		return model.Bid{}, fmt.Errorf("place bid on auction %s: %w", a.AuctionID, auctionerrors.ErrInvalidState)
	}

	currentMax := a.StartingBid
	if winning, ok := Winner(a.Bids); ok && winning.Amount > currentMax {
		currentMax = winning.Amount
	}
	if amount <= currentMax {
		return model.Bid{}, fmt.Errorf("place bid on auction %s: current maximum is %.2f: %w",
			a.AuctionID, currentMax, auctionerrors.ErrBidTooLow)
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: now,
	}
	a.Bids = append(a.Bids, bid)
	return bid, nil
}
