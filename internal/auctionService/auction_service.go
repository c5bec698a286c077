package auction

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"auction-house/internal/assetstore"
	"auction-house/internal/auctionerrors"
	"auction-house/internal/bidledger"
	"auction-house/internal/commission"
	"auction-house/internal/lifecycle"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
)

// CreateAuctionInput carries everything needed to list a new auction item.
type CreateAuctionInput struct {
	Title       string
	Description string
	Category    string
	Condition   string
	StartingBid float64
	StartTime   time.Time
	EndTime     time.Time
	SellerID    string
	ImageName   string
	Image       io.Reader
}

// AuctionService orchestrates the auction lifecycle against the store: it
// validates requests through the lifecycle rules, runs the bid ledger inside
// the store's atomic updates, and settles commission when auctions end.
type AuctionService struct {
	store  repository.Store
	assets assetstore.AssetStore
	calc   commission.Calculator
	now    func() time.Time

	// sellerLocks serializes the conflict check and the insert per seller so
	// two concurrent creations by the same seller cannot both pass the
	// one-active-auction check.
	sellerLocks sync.Map // key: sellerID -> *sync.Mutex
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(store repository.Store, assets assetstore.AssetStore, calc commission.Calculator) *AuctionService {
	return &AuctionService{
		store:  store,
		assets: assets,
		calc:   calc,
		now:    time.Now,
	}
}

// SetNowFunc overrides the service clock. Intended for tests only.
func (s *AuctionService) SetNowFunc(now func() time.Time) {
	s.now = now
}

// CreateAuction validates the listing, uploads its image, and persists the
// auction. The image upload happens before the write so a failed upload never
// leaves an auction pointing at a missing asset.
func (s *AuctionService) CreateAuction(ctx context.Context, in CreateAuctionInput) (models.Auction, error) {
	if in.SellerID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing seller", auctionerrors.ErrMissingField)
	}
	if in.Image == nil {
		return models.Auction{}, fmt.Errorf("service: %w - auction item image required", auctionerrors.ErrMissingField)
	}

	now := s.now()
	if err := lifecycle.ValidateCreate(lifecycle.CreateInput{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Condition:   in.Condition,
		StartingBid: in.StartingBid,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
	}, now); err != nil {
		return models.Auction{}, err
	}

	lock := s.sellerLock(in.SellerID)
	lock.Lock()
	defer lock.Unlock()

	conflict, err := s.store.SellerHasActiveAuction(ctx, in.SellerID, now)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: conflict check for seller %s: %w", in.SellerID, err)
	}
	if conflict {
		return models.Auction{}, fmt.Errorf("service: seller %s: %w", in.SellerID, auctionerrors.ErrConflictingAuction)
	}

	image, err := s.assets.Upload(ctx, in.ImageName, in.Image)
	if err != nil {
		utils.Error("CreateAuction: image upload failed", map[string]any{
			"seller_id": in.SellerID,
			"error":     err.Error(),
		})
		return models.Auction{}, fmt.Errorf("service: %w", err)
	}

	a := models.Auction{
		AuctionID:   utils.GenerateID(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Condition:   in.Condition,
		StartingBid: in.StartingBid,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		CreatedBy:   in.SellerID,
		Image:       image,
		Bids:        []models.Bid{},
		CreatedAt:   now,
	}

	if err := s.store.InsertAuction(ctx, a); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction for seller %s: %w", in.SellerID, err)
	}

	utils.Info("CreateAuction: auction created", map[string]any{
		"auction_id": a.AuctionID,
		"seller_id":  in.SellerID,
		"start_time": a.StartTime,
		"end_time":   a.EndTime,
	})
	return a, nil
}

// ListAll returns every auction, unfiltered.
func (s *AuctionService) ListAll(ctx context.Context) ([]models.Auction, error) {
	auctions, err := s.store.ListAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// ListMine returns the auctions owned by the given seller.
func (s *AuctionService) ListMine(ctx context.Context, sellerID string) ([]models.Auction, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("service: %w - missing seller", auctionerrors.ErrMissingField)
	}
	auctions, err := s.store.ListAuctionsBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions for seller %s: %w", sellerID, err)
	}
	return auctions, nil
}

// GetDetails returns an auction together with its ranked bids, highest first.
func (s *AuctionService) GetDetails(ctx context.Context, id string) (models.Auction, []models.Bid, error) {
	if !utils.ValidID(id) {
		return models.Auction{}, nil, fmt.Errorf("service: auction id %q: %w", id, auctionerrors.ErrInvalidID)
	}
	a, err := s.store.GetAuction(ctx, id)
	if err != nil {
		return models.Auction{}, nil, fmt.Errorf("service: failed to get auction %s: %w", id, err)
	}
	return a, bidledger.Rank(a.Bids), nil
}

// Remove deletes an auction unconditionally, whatever its state. Live
// auctions can be removed mid-bidding; that matches the marketplace rules.
func (s *AuctionService) Remove(ctx context.Context, id string) error {
	if !utils.ValidID(id) {
		return fmt.Errorf("service: auction id %q: %w", id, auctionerrors.ErrInvalidID)
	}
	if err := s.store.DeleteAuction(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete auction %s: %w", id, err)
	}
	utils.Info("Remove: auction deleted", map[string]any{"auction_id": id})
	return nil
}

// Republish gives an Ended auction a fresh window and starts a new lifecycle
// run: bids are cleared, the commission guard resets, and the seller's unpaid
// commission balance is zeroed. The auction reset and the balance reset are
// one atomic store update.
func (s *AuctionService) Republish(ctx context.Context, id, sellerID string, newStart, newEnd time.Time) (models.Auction, error) {
	if !utils.ValidID(id) {
		return models.Auction{}, fmt.Errorf("service: auction id %q: %w", id, auctionerrors.ErrInvalidID)
	}

	now := s.now()
	var republished models.Auction
	err := s.store.Atomically(ctx, func(ctx context.Context, store repository.Store) error {
		a, err := store.GetAuction(ctx, id)
		if err != nil {
			return err
		}
		if a.CreatedBy != sellerID {
			return fmt.Errorf("auction %s does not belong to seller %s: %w", id, sellerID, auctionerrors.ErrNotFound)
		}
		if err := lifecycle.ValidateRepublish(a, newStart, newEnd, now); err != nil {
			return err
		}

		republished, err = store.UpdateAuction(ctx, id, func(a *models.Auction) error {
			lifecycle.ApplyRepublish(a, newStart, newEnd)
			return nil
		})
		if err != nil {
			return err
		}

		// Balance reset on republish is the platform rule even when the
		// prior commission was never settled; see DESIGN.md.
		_, err = store.UpdateUser(ctx, sellerID, func(u *models.User) error {
			u.UnpaidCommission = 0
			return nil
		})
		return err
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to republish auction %s: %w", id, err)
	}

	utils.Info("Republish: auction republished", map[string]any{
		"auction_id": id,
		"seller_id":  sellerID,
		"start_time": newStart,
		"end_time":   newEnd,
	})
	return republished, nil
}

// PlaceBid validates and records a bid. The current-maximum check and the
// append run inside the store's atomic update, so two concurrent bidders can
// never both pass the check against the same maximum.
func (s *AuctionService) PlaceBid(ctx context.Context, id, bidderID string, amount float64) (models.Bid, models.Auction, error) {
	if !utils.ValidID(id) {
		return models.Bid{}, models.Auction{}, fmt.Errorf("service: auction id %q: %w", id, auctionerrors.ErrInvalidID)
	}
	if bidderID == "" {
		return models.Bid{}, models.Auction{}, fmt.Errorf("service: %w - missing bidder", auctionerrors.ErrMissingField)
	}

	now := s.now()
	var bid models.Bid
	updated, err := s.store.UpdateAuction(ctx, id, func(a *models.Auction) error {
		var placeErr error
		bid, placeErr = bidledger.Place(a, bidderID, amount, now)
		return placeErr
	})
	if err != nil {
		return models.Bid{}, models.Auction{}, fmt.Errorf("service: failed to place bid on auction %s: %w", id, err)
	}

	utils.Info("PlaceBid: bid placed", map[string]any{
		"auction_id": id,
		"bid_id":     bid.BidID,
		"bidder_id":  bidderID,
		"amount":     amount,
	})
	return bid, updated, nil
}

// SettleEndedAuctions sweeps for Ended auctions with a winning bid whose
// commission has not been charged yet, and settles each one: the seller's
// unpaid commission grows by the computed fee, the winner's auctionsWon
// counter increments, and the commission guard flips - all in one atomic
// update. Returns the number of auctions settled.
func (s *AuctionService) SettleEndedAuctions(ctx context.Context) (int, error) {
	auctions, err := s.store.ListAuctions(ctx)
	if err != nil {
		return 0, fmt.Errorf("service: settlement sweep: %w", err)
	}

	now := s.now()
	settled := 0
	for _, a := range auctions {
		if lifecycle.StateOf(a, now) != lifecycle.StateEnded || a.CommissionCalculated {
			continue
		}
		if _, ok := bidledger.Winner(a.Bids); !ok {
			continue
		}
		if err := s.settleOne(ctx, a.AuctionID); err != nil {
			utils.Error("SettleEndedAuctions: settlement failed", map[string]any{
				"auction_id": a.AuctionID,
				"error":      err.Error(),
			})
			continue
		}
		settled++
	}
	return settled, nil
}

// settleOne settles a single auction. The commission guard is re-checked
// inside the transaction so a concurrent sweep cannot double-charge.
func (s *AuctionService) settleOne(ctx context.Context, id string) error {
	return s.store.Atomically(ctx, func(ctx context.Context, store repository.Store) error {
		a, err := store.GetAuction(ctx, id)
		if err != nil {
			return err
		}
		if a.CommissionCalculated {
			return nil
		}
		winner, ok := bidledger.Winner(a.Bids)
		if !ok {
			return nil
		}

		fee := s.calc.Compute(winner.Amount)

		if _, err := store.UpdateAuction(ctx, id, func(a *models.Auction) error {
			a.CommissionCalculated = true
			return nil
		}); err != nil {
			return err
		}
		if _, err := store.UpdateUser(ctx, a.CreatedBy, func(u *models.User) error {
			u.UnpaidCommission += fee
			return nil
		}); err != nil {
			return err
		}
		if _, err := store.UpdateUser(ctx, winner.BidderID, func(u *models.User) error {
			u.AuctionsWon++
			return nil
		}); err != nil {
			return err
		}

		utils.Info("settleOne: auction settled", map[string]any{
			"auction_id": id,
			"seller_id":  a.CreatedBy,
			"winner_id":  winner.BidderID,
			"amount":     winner.Amount,
			"commission": fee,
		})
		return nil
	})
}

// RunSettlementLoop invokes the settlement sweep on every tick until the
// context is cancelled. main runs this in its own goroutine.
func (s *AuctionService) RunSettlementLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SettleEndedAuctions(ctx); err != nil {
				utils.Error("settlement sweep failed", map[string]any{"error": err.Error()})
			} else if n > 0 {
				utils.Info("settlement sweep completed", map[string]any{"settled": n})
			}
		}
	}
}

func (s *AuctionService) sellerLock(sellerID string) *sync.Mutex {
	lock, _ := s.sellerLocks.LoadOrStore(sellerID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
