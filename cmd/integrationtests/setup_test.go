package integrationtests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"auction-house/internal/assetstore"
	auction "auction-house/internal/auctionService"
	"auction-house/internal/commission"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/server"

	"github.com/gin-gonic/gin"
)

// fakeClock drives the service clock so tests can move auctions through
// their lifecycle without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testEnv bundles the full stack: router, store, service, clock.
type testEnv struct {
	Router *gin.Engine
	Repo   *repository.MemoryRepo
	Svc    *auction.AuctionService
	Clock  *fakeClock
}

// SetupTestEnv wires the router against the in-memory repository and a local
// asset store for integration testing.
func SetupTestEnv(t *testing.T, users ...model.User) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	for _, u := range users {
		repo.AddUser(u)
	}

	assets, err := assetstore.NewLocalAssetStore(t.TempDir(), "http://localhost/assets")
	if err != nil {
		t.Fatalf("failed to create asset store: %v", err)
	}

	clock := &fakeClock{t: time.Now().UTC().Truncate(time.Second)}
	svc := auction.NewAuctionService(repo, assets, commission.NewCalculator(0.05))
	svc.SetNowFunc(clock.Now)

	return &testEnv{
		Router: server.SetupRouter(svc),
		Repo:   repo,
		Svc:    svc,
		Clock:  clock,
	}
}

// ExecuteJSON executes a JSON request as the given user and parses the
// response envelope. An empty userID sends the request unauthenticated.
func ExecuteJSON(t *testing.T, router *gin.Engine, method, url, userID string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return parseEnvelope(t, w), w
}

// CreateAuctionForm holds the multipart fields for the create endpoint.
type CreateAuctionForm struct {
	Title       string
	Description string
	Category    string
	Condition   string
	StartingBid string
	StartTime   time.Time
	EndTime     time.Time
	ImageType   string // empty means no image part
}

// ExecuteCreate posts a multipart listing as the given seller.
func ExecuteCreate(t *testing.T, router *gin.Engine, sellerID string, form CreateAuctionForm) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":        form.Title,
		"description":  form.Description,
		"category":     form.Category,
		"condition":    form.Condition,
		"starting_bid": form.StartingBid,
		"start_time":   form.StartTime.Format(time.RFC3339),
		"end_time":     form.EndTime.Format(time.RFC3339),
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write form field %s: %v", k, err)
		}
	}
	if form.ImageType != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="image"; filename="item.png"`)
		hdr.Set("Content-Type", form.ImageType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("failed to create image part: %v", err)
		}
		if _, err := part.Write([]byte("fake png bytes")); err != nil {
			t.Fatalf("failed to write image part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/v1/auctionitem/create", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if sellerID != "" {
		req.Header.Set("X-User-ID", sellerID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return parseEnvelope(t, w), w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	if len(w.Body.Bytes()) == 0 {
		return nil
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

// validForm returns a listing whose window opens one hour from now.
func validForm(now time.Time) CreateAuctionForm {
	return CreateAuctionForm{
		Title:       "vintage radio",
		Description: "working condition",
		Category:    "electronics",
		Condition:   "used",
		StartingBid: "50",
		StartTime:   now.Add(time.Hour),
		EndTime:     now.Add(3 * time.Hour),
		ImageType:   "image/png",
	}
}
