// Package lifecycle owns the temporal state of an auction and the validation
// rules for creating and republishing one. State is computed from the time
// window at read time; there is no persisted state field to drift from the
// clock.
package lifecycle

import (
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

// State is the derived lifecycle state of an auction.
type State string

const (
	StateScheduled State = "scheduled" // now < startTime
	StateActive    State = "active"    // startTime <= now <= endTime
	StateEnded     State = "ended"     // now > endTime
)

// StateOf computes the lifecycle state of an auction at the given instant.
// An auction exactly at its endTime is still Active (biddable).
func StateOf(a model.Auction, now time.Time) State {
	switch {
	case now.Before(a.StartTime):
		return StateScheduled
	case now.After(a.EndTime):
		return StateEnded
	default:
		return StateActive
	}
}

// CreateInput carries the seller-provided fields checked at creation time.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Condition   string
	StartingBid float64
	StartTime   time.Time
	EndTime     time.Time
}

// ValidateCreate checks the creation fields and the time window. The seller
// conflict check is separate (SellerConflict) because it needs a store query.
func ValidateCreate(in CreateInput, now time.Time) error {
	if in.Title == "" || in.Description == "" || in.Category == "" || in.Condition == "" {
		return fmt.Errorf("validate create: %w - all item details are required", auctionerrors.ErrMissingField)
	}
	if in.StartingBid <= 0 {
		return fmt.Errorf("validate create: %w - starting bid must be positive", auctionerrors.ErrMissingField)
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return fmt.Errorf("validate create: %w - start and end time are required", auctionerrors.ErrMissingField)
	}
	return validateWindow(in.StartTime, in.EndTime, now, "validate create")
}

// SellerConflict is the one-active-auction-per-seller predicate: a seller's
// auction conflicts while its endTime is still in the future.
func SellerConflict(a model.Auction, sellerID string, now time.Time) bool {
	return a.CreatedBy == sellerID && a.EndTime.After(now)
}

// ValidateRepublish checks that an auction may re-enter Scheduled with a new
// window. Only Ended auctions qualify; a live or future auction cannot be
// republished.
func ValidateRepublish(a model.Auction, newStart, newEnd, now time.Time) error {
	if newStart.IsZero() || newEnd.IsZero() {
		return fmt.Errorf("validate republish: %w - start and end time are required", auctionerrors.ErrMissingField)
	}
	if a.EndTime.After(now) {
		return fmt.Errorf("validate republish: auction %s: %w", a.AuctionID, auctionerrors.ErrStillActive)
	}
	return validateWindow(newStart, newEnd, now, "validate republish")
}

// ApplyRepublish replaces the auction window and starts a new lifecycle run:
// bids are cleared and the commission guard is reset.
func ApplyRepublish(a *model.Auction, newStart, newEnd time.Time) {
	a.StartTime = newStart
	a.EndTime = newEnd
	a.Bids = []model.Bid{}
	a.CommissionCalculated = false
}

// validateWindow enforces startTime > now and startTime < endTime. Equality
// with now is rejected: the window must open in the future.
func validateWindow(start, end, now time.Time, op string) error {
	if !start.After(now) {
		return fmt.Errorf("%s: %w - starting time must be greater than present time", op, auctionerrors.ErrInvalidWindow)
	}
	if !start.Before(end) {
		return fmt.Errorf("%s: %w - starting time must be less than ending time", op, auctionerrors.ErrInvalidWindow)
	}
	return nil
}
