package bidledger

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Helper to create a Bid
func newBid(bidID, bidderID string, amount float64, createdAt time.Time) model.Bid {
	return model.Bid{
		BidID:     bidID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: createdAt,
	}
}

// Helper to create an open auction around now
func openAuction(startingBid float64, now time.Time) model.Auction {
	return model.Auction{
		AuctionID:   uuid.NewString(),
		Title:       "title1",
		StartingBid: startingBid,
		StartTime:   now.Add(-time.Hour),
		EndTime:     now.Add(time.Hour),
		Bids:        []model.Bid{},
	}
}

// Test Rank
func TestRank(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name      string
		bids      []model.Bid
		wantOrder []string // expected bid IDs, best first
	}{
		{
			name:      "empty",
			bids:      nil,
			wantOrder: []string{},
		},
		{
			name: "descending_by_amount",
			bids: []model.Bid{
				newBid("b1", "user1", 60, now),
				newBid("b2", "user2", 100, now.Add(time.Second)),
				newBid("b3", "user3", 80, now.Add(2*time.Second)),
			},
			wantOrder: []string{"b2", "b3", "b1"},
		},
		{
			name: "tie_broken_by_earliest_time",
			bids: []model.Bid{
				newBid("late", "user1", 200, now.Add(time.Minute)),
				newBid("early", "user2", 200, now),
			},
			wantOrder: []string{"early", "late"},
		},
		{
			name: "insertion_order_not_monotonic",
			bids: []model.Bid{
				newBid("b1", "user1", 500, now),
				newBid("b2", "user2", 100, now.Add(time.Second)),
				newBid("b3", "user3", 300, now.Add(2*time.Second)),
			},
			wantOrder: []string{"b1", "b3", "b2"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ranked := Rank(tc.bids)
			require.Len(t, ranked, len(tc.wantOrder))
			for i, id := range tc.wantOrder {
				require.Equal(t, id, ranked[i].BidID, "position %d", i)
			}

			// amounts never increase along the ranking
			for i := 1; i < len(ranked); i++ {
				require.LessOrEqual(t, ranked[i].Amount, ranked[i-1].Amount)
			}
		})
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	bids := []model.Bid{
		newBid("b1", "user1", 10, now),
		newBid("b2", "user2", 20, now),
	}

	_ = Rank(bids)

	require.Equal(t, "b1", bids[0].BidID)
	require.Equal(t, "b2", bids[1].BidID)
}

// Test Winner
func TestWinner(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("no_bids", func(t *testing.T) {
		t.Parallel()
		_, ok := Winner(nil)
		require.False(t, ok)
	})

	t.Run("highest_amount_wins", func(t *testing.T) {
		t.Parallel()
		bids := []model.Bid{
			newBid("b1", "user1", 60, now),
			newBid("b2", "user2", 100, now.Add(time.Second)),
		}
		winning, ok := Winner(bids)
		require.True(t, ok)
		require.Equal(t, "b2", winning.BidID)
	})

	t.Run("tie_earliest_wins", func(t *testing.T) {
		t.Parallel()
		bids := []model.Bid{
			newBid("late", "user1", 200, now.Add(time.Minute)),
			newBid("early", "user2", 200, now),
		}
		winning, ok := Winner(bids)
		require.True(t, ok)
		require.Equal(t, "early", winning.BidID)
	})
}

// Test Place
func TestPlace(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name          string
		setup         func() model.Auction
		amount        float64
		at            time.Time
		expectedError error
	}{
		{
			name:   "first_bid_above_starting_bid",
			setup:  func() model.Auction { return openAuction(50, now) },
			amount: 60,
			at:     now,
		},
		{
			name:          "before_start_time",
			setup:         func() model.Auction { a := openAuction(50, now); a.StartTime = now.Add(time.Minute); return a },
			amount:        60,
			at:            now,
			expectedError: auctionerrors.ErrInvalidState,
		},
		{
			name:          "after_end_time",
			setup:         func() model.Auction { a := openAuction(50, now); a.EndTime = now.Add(-time.Minute); return a },
			amount:        60,
			at:            now,
			expectedError: auctionerrors.ErrInvalidState,
		},
		{
			name:   "exactly_at_end_time_still_biddable",
			setup:  func() model.Auction { a := openAuction(50, now); a.EndTime = now; return a },
			amount: 60,
			at:     now,
		},
		{
			name:   "exactly_at_start_time_biddable",
			setup:  func() model.Auction { a := openAuction(50, now); a.StartTime = now; return a },
			amount: 60,
			at:     now,
		},
		{
			name:          "equal_to_starting_bid_rejected",
			setup:         func() model.Auction { return openAuction(50, now) },
			amount:        50,
			at:            now,
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:          "zero_amount_rejected",
			setup:         func() model.Auction { return openAuction(50, now) },
			amount:        0,
			at:            now,
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name: "equal_to_current_max_rejected",
			setup: func() model.Auction {
				a := openAuction(50, now)
				a.Bids = []model.Bid{newBid("b1", "user1", 60, now)}
				return a
			},
			amount:        60,
			at:            now,
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name: "below_current_max_rejected",
			setup: func() model.Auction {
				a := openAuction(50, now)
				a.Bids = []model.Bid{newBid("b1", "user1", 60, now)}
				return a
			},
			amount:        55,
			at:            now,
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name: "above_current_max_accepted",
			setup: func() model.Auction {
				a := openAuction(50, now)
				a.Bids = []model.Bid{newBid("b1", "user1", 60, now)}
				return a
			},
			amount: 100,
			at:     now,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := tc.setup()
			before := len(a.Bids)

			bid, err := Place(&a, "bidder1", tc.amount, tc.at)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				require.Len(t, a.Bids, before, "rejected bid must not be appended")
				return
			}

			require.NoError(t, err)
			require.Len(t, a.Bids, before+1)
			require.Equal(t, "bidder1", bid.BidderID)
			require.Equal(t, tc.amount, bid.Amount)
			require.Equal(t, tc.at, bid.CreatedAt)

			_, parseErr := uuid.Parse(bid.BidID)
			require.NoError(t, parseErr, "BidID should be a valid UUID")

			// accepted bid is the new maximum
			winning, ok := Winner(a.Bids)
			require.True(t, ok)
			require.Equal(t, bid.BidID, winning.BidID)
		})
	}
}

// Scenario from the marketplace rules: starting bid 50, bids 60 / 55 / 60 / 100.
func TestPlace_StrictlyIncreasingMaximum(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	a := openAuction(50, now)

	bidA, err := Place(&a, "userA", 60, now)
	require.NoError(t, err)

	_, err = Place(&a, "userB", 55, now.Add(time.Second))
	require.True(t, errors.Is(err, auctionerrors.ErrBidTooLow))

	_, err = Place(&a, "userC", 60, now.Add(2*time.Second))
	require.True(t, errors.Is(err, auctionerrors.ErrBidTooLow))

	bidD, err := Place(&a, "userD", 100, now.Add(3*time.Second))
	require.NoError(t, err)

	ranked := Rank(a.Bids)
	require.Len(t, ranked, 2)
	require.Equal(t, bidD.BidID, ranked[0].BidID)
	require.Equal(t, bidA.BidID, ranked[1].BidID)
}

// Maximum strictly increases across a long accepted sequence.
func TestPlace_ManyBids(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	a := openAuction(1, now)

	for i := 0; i < 100; i++ {
		_, err := Place(&a, fmt.Sprintf("user-%d", i), float64(2+i), now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	winning, ok := Winner(a.Bids)
	require.True(t, ok)
	require.Equal(t, float64(101), winning.Amount)
	require.Len(t, a.Bids, 100)
}
