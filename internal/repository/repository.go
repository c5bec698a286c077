package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/lifecycle"
	model "auction-house/internal/models"
)

// AuctionStore defines auction document persistence for the auction system
type AuctionStore interface {
	InsertAuction(ctx context.Context, a model.Auction) error
	GetAuction(ctx context.Context, id string) (model.Auction, error)
	ListAuctions(ctx context.Context) ([]model.Auction, error)
	ListAuctionsBySeller(ctx context.Context, sellerID string) ([]model.Auction, error)
	SellerHasActiveAuction(ctx context.Context, sellerID string, now time.Time) (bool, error)
	// UpdateAuction applies fn to the current document as one atomic
	// read-modify-write. If fn returns an error nothing is written and the
	// error is returned unwrapped.
	UpdateAuction(ctx context.Context, id string, apply func(*model.Auction) error) (model.Auction, error)
	DeleteAuction(ctx context.Context, id string) error
}

// UserStore defines user document persistence
type UserStore interface {
	GetUser(ctx context.Context, id string) (model.User, error)
	UpdateUser(ctx context.Context, id string, apply func(*model.User) error) (model.User, error)
}

// Store combines auction and user persistence with a transactional boundary.
type Store interface {
	AuctionStore
	UserStore
	// Atomically runs fn against the store with all-or-nothing semantics.
	// Used where an auction and a user balance must change together
	// (republish + commission reset, settlement).
	Atomically(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// MemoryRepo is a concurrency-safe in-memory implementation of Store
type MemoryRepo struct {
	mu   sync.Mutex
	view memoryView
}

// memoryView holds the raw maps and implements Store without locking; every
// MemoryRepo method takes the lock and delegates here, so Atomically can run
// multi-step updates under one critical section.
type memoryView struct {
	auctions map[string]model.Auction // key: auctionID -> auction document
	users    map[string]model.User    // key: userID -> user document
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		view: memoryView{
			auctions: make(map[string]model.Auction),
			users:    make(map[string]model.User),
		},
	}
}

func (r *MemoryRepo) InsertAuction(ctx context.Context, a model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.InsertAuction(ctx, a)
}

func (r *MemoryRepo) GetAuction(ctx context.Context, id string) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.GetAuction(ctx, id)
}

func (r *MemoryRepo) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.ListAuctions(ctx)
}

func (r *MemoryRepo) ListAuctionsBySeller(ctx context.Context, sellerID string) ([]model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.ListAuctionsBySeller(ctx, sellerID)
}

func (r *MemoryRepo) SellerHasActiveAuction(ctx context.Context, sellerID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.SellerHasActiveAuction(ctx, sellerID, now)
}

func (r *MemoryRepo) UpdateAuction(ctx context.Context, id string, apply func(*model.Auction) error) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.UpdateAuction(ctx, id, apply)
}

func (r *MemoryRepo) DeleteAuction(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.DeleteAuction(ctx, id)
}

func (r *MemoryRepo) GetUser(ctx context.Context, id string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.GetUser(ctx, id)
}

func (r *MemoryRepo) UpdateUser(ctx context.Context, id string, apply func(*model.User) error) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.UpdateUser(ctx, id, apply)
}

// Atomically holds the lock for the whole of fn. A snapshot is restored on
// error so a failed multi-step update leaves no partial write behind.
func (r *MemoryRepo) Atomically(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.view.clone()
	if err := fn(ctx, &r.view); err != nil {
		r.view = snapshot
		return err
	}
	return nil
}

// AddAuction seeds an auction document. This method is intended for tests only.
func (r *MemoryRepo) AddAuction(a model.Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.auctions[a.AuctionID] = a
}

// AddUser seeds a user document. This method is intended for tests only.
func (r *MemoryRepo) AddUser(u model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.users[u.UserID] = u
}

func (v *memoryView) InsertAuction(_ context.Context, a model.Auction) error {
	if a.AuctionID == "" {
		return fmt.Errorf("insert auction: %w", auctionerrors.ErrInvalidID)
	}
	v.auctions[a.AuctionID] = copyAuction(a)
	return nil
}

func (v *memoryView) GetAuction(_ context.Context, id string) (model.Auction, error) {
	a, ok := v.auctions[id]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", id, auctionerrors.ErrNotFound)
	}
	return copyAuction(a), nil
}

func (v *memoryView) ListAuctions(_ context.Context) ([]model.Auction, error) {
	out := make([]model.Auction, 0, len(v.auctions))
	for _, a := range v.auctions {
		out = append(out, copyAuction(a))
	}
	return out, nil
}

func (v *memoryView) ListAuctionsBySeller(_ context.Context, sellerID string) ([]model.Auction, error) {
	out := []model.Auction{}
	for _, a := range v.auctions {
		if a.CreatedBy == sellerID {
			out = append(out, copyAuction(a))
		}
	}
	return out, nil
}

func (v *memoryView) SellerHasActiveAuction(_ context.Context, sellerID string, now time.Time) (bool, error) {
	for _, a := range v.auctions {
		if lifecycle.SellerConflict(a, sellerID, now) {
			return true, nil
		}
	}
	return false, nil
}

func (v *memoryView) UpdateAuction(_ context.Context, id string, apply func(*model.Auction) error) (model.Auction, error) {
	a, ok := v.auctions[id]
	if !ok {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", id, auctionerrors.ErrNotFound)
	}
	updated := copyAuction(a)
	if err := apply(&updated); err != nil {
		return model.Auction{}, err
	}
	updated.Version++
	v.auctions[id] = updated
	return copyAuction(updated), nil
}

func (v *memoryView) DeleteAuction(_ context.Context, id string) error {
	if _, ok := v.auctions[id]; !ok {
		return fmt.Errorf("delete auction %s: %w", id, auctionerrors.ErrNotFound)
	}
	delete(v.auctions, id)
	return nil
}

func (v *memoryView) GetUser(_ context.Context, id string) (model.User, error) {
	u, ok := v.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", id, auctionerrors.ErrNotFound)
	}
	return u, nil
}

func (v *memoryView) UpdateUser(_ context.Context, id string, apply func(*model.User) error) (model.User, error) {
	u, ok := v.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("update user %s: %w", id, auctionerrors.ErrNotFound)
	}
	if err := apply(&u); err != nil {
		return model.User{}, err
	}
	u.Version++
	v.users[id] = u
	return u, nil
}

// Atomically on the view runs fn directly: the caller already holds the lock.
func (v *memoryView) Atomically(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return fn(ctx, v)
}

func (v *memoryView) clone() memoryView {
	out := memoryView{
		auctions: make(map[string]model.Auction, len(v.auctions)),
		users:    make(map[string]model.User, len(v.users)),
	}
	for id, a := range v.auctions {
		out.auctions[id] = copyAuction(a)
	}
	for id, u := range v.users {
		out.users[id] = u
	}
	return out
}

// copyAuction returns a copy whose bid slice does not alias the original.
func copyAuction(a model.Auction) model.Auction {
	a.Bids = append([]model.Bid(nil), a.Bids...)
	return a
}
