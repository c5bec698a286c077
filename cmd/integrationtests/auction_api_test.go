package integrationtests

import (
	"context"
	"net/http"
	"testing"
	"time"

	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"

	"github.com/stretchr/testify/require"
)

// CreateAuctionHandler Tests
func TestCreateAuctionAPI(t *testing.T) {
	t.Run("Valid_Listing", func(t *testing.T) {
		env := SetupTestEnv(t)
		now := env.Clock.Now()

		resp, w := ExecuteCreate(t, env.Router, "seller1", validForm(now))
		require.Equal(t, http.StatusCreated, w.Code)
		require.Contains(t, resp["message"], "will be listed on the auction page at")

		data := resp["data"].(map[string]any)
		require.Equal(t, "seller1", data["created_by"])
		require.NotEmpty(t, data["auction_id"])
		require.NotEmpty(t, data["image"].(map[string]any)["url"])
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := SetupTestEnv(t)

		_, w := ExecuteCreate(t, env.Router, "", validForm(env.Clock.Now()))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Missing_Fields", func(t *testing.T) {
		env := SetupTestEnv(t)
		form := validForm(env.Clock.Now())
		form.Description = ""

		_, w := ExecuteCreate(t, env.Router, "seller1", form)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing_Image", func(t *testing.T) {
		env := SetupTestEnv(t)
		form := validForm(env.Clock.Now())
		form.ImageType = ""

		resp, w := ExecuteCreate(t, env.Router, "seller1", form)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, resp["message"], "auction item image required")
	})

	t.Run("Unsupported_Image_Format", func(t *testing.T) {
		env := SetupTestEnv(t)
		form := validForm(env.Clock.Now())
		form.ImageType = "image/gif"

		resp, w := ExecuteCreate(t, env.Router, "seller1", form)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, resp["message"], "file format not supported")
	})

	t.Run("Start_Time_In_Past", func(t *testing.T) {
		env := SetupTestEnv(t)
		now := env.Clock.Now()
		form := validForm(now)
		form.StartTime = now.Add(-time.Hour)

		resp, w := ExecuteCreate(t, env.Router, "seller1", form)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, resp["message"], "invalid auction time window")
	})

	t.Run("Second_Active_Listing_Rejected", func(t *testing.T) {
		env := SetupTestEnv(t)
		now := env.Clock.Now()

		_, w := ExecuteCreate(t, env.Router, "seller1", validForm(now))
		require.Equal(t, http.StatusCreated, w.Code)

		resp, w := ExecuteCreate(t, env.Router, "seller1", validForm(now))
		require.Equal(t, http.StatusConflict, w.Code)
		require.Contains(t, resp["message"], "you already have one active auction")

		// a different seller is unaffected
		_, w = ExecuteCreate(t, env.Router, "seller2", validForm(now))
		require.Equal(t, http.StatusCreated, w.Code)
	})
}

// Full bidding flow across the auction lifecycle
func TestBiddingFlowAPI(t *testing.T) {
	env := SetupTestEnv(t)
	now := env.Clock.Now()

	resp, w := ExecuteCreate(t, env.Router, "seller1", validForm(now))
	require.Equal(t, http.StatusCreated, w.Code)
	auctionID := resp["data"].(map[string]any)["auction_id"].(string)

	bidURL := "/api/v1/bid/place/" + auctionID

	// scheduled: not open yet
	resp, w = ExecuteJSON(t, env.Router, http.MethodPost, bidURL, "user1", helpers.PlaceBidRequest{Amount: 60})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, resp["message"], "auction is not open for bidding")

	// move into the bidding window
	env.Clock.Advance(90 * time.Minute)

	steps := []struct {
		bidder     string
		amount     float64
		wantStatus int
	}{
		{"user1", 60, http.StatusCreated},  // above the 50 starting bid
		{"user2", 55, http.StatusConflict}, // below the current maximum
		{"user2", 60, http.StatusConflict}, // equal is not enough
		{"user3", 100, http.StatusCreated},
	}
	for _, step := range steps {
		_, w := ExecuteJSON(t, env.Router, http.MethodPost, bidURL, step.bidder, helpers.PlaceBidRequest{Amount: step.amount})
		require.Equal(t, step.wantStatus, w.Code, "bidder %s amount %v", step.bidder, step.amount)
	}

	// unauthenticated bids are rejected before the service runs
	_, w = ExecuteJSON(t, env.Router, http.MethodPost, bidURL, "", helpers.PlaceBidRequest{Amount: 500})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// details list bidders highest first
	resp, w = ExecuteJSON(t, env.Router, http.MethodGet, "/api/v1/auctionitem/auction/"+auctionID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	bidders := resp["data"].(map[string]any)["bidders"].([]any)
	require.Len(t, bidders, 2)
	require.Equal(t, 100.0, bidders[0].(map[string]any)["amount"])
	require.Equal(t, "user3", bidders[0].(map[string]any)["bidder_id"])
	require.Equal(t, 60.0, bidders[1].(map[string]any)["amount"])

	// window closed: bids rejected again
	env.Clock.Advance(2 * time.Hour)
	resp, w = ExecuteJSON(t, env.Router, http.MethodPost, bidURL, "user4", helpers.PlaceBidRequest{Amount: 500})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, resp["message"], "auction is not open for bidding")
}

// Settlement and republish across a full lifecycle run
func TestSettlementAndRepublishAPI(t *testing.T) {
	env := SetupTestEnv(t,
		model.User{UserID: "seller1"},
		model.User{UserID: "user1"},
		model.User{UserID: "user2"},
	)
	now := env.Clock.Now()

	resp, w := ExecuteCreate(t, env.Router, "seller1", validForm(now))
	require.Equal(t, http.StatusCreated, w.Code)
	auctionID := resp["data"].(map[string]any)["auction_id"].(string)

	env.Clock.Advance(90 * time.Minute)
	for _, step := range []struct {
		bidder string
		amount float64
	}{{"user1", 100}, {"user2", 200}} {
		_, w := ExecuteJSON(t, env.Router, http.MethodPost, "/api/v1/bid/place/"+auctionID, step.bidder, helpers.PlaceBidRequest{Amount: step.amount})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// republish is rejected while the window is open
	republishURL := "/api/v1/auctionitem/republish/" + auctionID
	liveReq := helpers.RepublishRequest{
		StartTime: env.Clock.Now().Add(time.Hour),
		EndTime:   env.Clock.Now().Add(2 * time.Hour),
	}
	resp, w = ExecuteJSON(t, env.Router, http.MethodPut, republishURL, "seller1", liveReq)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, resp["message"], "auction is still active")

	// close the window and settle
	env.Clock.Advance(2 * time.Hour)

	settled, err := env.Svc.SettleEndedAuctions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	seller, err := env.Repo.GetUser(context.Background(), "seller1")
	require.NoError(t, err)
	require.Equal(t, 10.0, seller.UnpaidCommission) // 5% of the winning 200

	winner, err := env.Repo.GetUser(context.Background(), "user2")
	require.NoError(t, err)
	require.Equal(t, 1, winner.AuctionsWon)

	// a second sweep finds nothing left to settle
	settled, err = env.Svc.SettleEndedAuctions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, settled)

	// only the owner can republish
	endedReq := helpers.RepublishRequest{
		StartTime: env.Clock.Now().Add(time.Hour),
		EndTime:   env.Clock.Now().Add(2 * time.Hour),
	}
	_, w = ExecuteJSON(t, env.Router, http.MethodPut, republishURL, "seller2", endedReq)
	require.Equal(t, http.StatusNotFound, w.Code)

	// republish starts a fresh lifecycle run
	resp, w = ExecuteJSON(t, env.Router, http.MethodPut, republishURL, "seller1", endedReq)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, resp["message"], "auction republished and will be active on")

	data := resp["data"].(map[string]any)
	require.Empty(t, data["bids"])
	require.Equal(t, false, data["commission_calculated"])

	seller, err = env.Repo.GetUser(context.Background(), "seller1")
	require.NoError(t, err)
	require.Equal(t, 0.0, seller.UnpaidCommission)

	// bidding reopens once the new window starts
	env.Clock.Advance(90 * time.Minute)
	_, w = ExecuteJSON(t, env.Router, http.MethodPost, "/api/v1/bid/place/"+auctionID, "user1", helpers.PlaceBidRequest{Amount: 60})
	require.Equal(t, http.StatusCreated, w.Code)
}

// Listing and removal endpoints
func TestListAndRemoveAPI(t *testing.T) {
	env := SetupTestEnv(t)
	now := env.Clock.Now()

	resp, w := ExecuteCreate(t, env.Router, "seller1", validForm(now))
	require.Equal(t, http.StatusCreated, w.Code)
	firstID := resp["data"].(map[string]any)["auction_id"].(string)

	second := validForm(now)
	second.Title = "antique clock"
	_, w = ExecuteCreate(t, env.Router, "seller2", second)
	require.Equal(t, http.StatusCreated, w.Code)

	// the public catalogue lists both
	resp, w = ExecuteJSON(t, env.Router, http.MethodGet, "/api/v1/auctionitem/allitems", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 2)

	// myitems filters by the caller
	resp, w = ExecuteJSON(t, env.Router, http.MethodGet, "/api/v1/auctionitem/myitems", "seller1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := resp["data"].([]any)
	require.Len(t, mine, 1)
	require.Equal(t, firstID, mine[0].(map[string]any)["auction_id"])

	// removal works in any state, a live auction included
	_, w = ExecuteJSON(t, env.Router, http.MethodDelete, "/api/v1/auctionitem/delete/"+firstID, "seller1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, w = ExecuteJSON(t, env.Router, http.MethodGet, "/api/v1/auctionitem/auction/"+firstID, "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	_, w = ExecuteJSON(t, env.Router, http.MethodDelete, "/api/v1/auctionitem/delete/"+firstID, "seller1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	_, w = ExecuteJSON(t, env.Router, http.MethodDelete, "/api/v1/auctionitem/delete/not-a-uuid", "seller1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
