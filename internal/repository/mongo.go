package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

const (
	auctionCollection = "auctions"
	userCollection    = "users"

	// opTimeout bounds every single store call.
	opTimeout = 5 * time.Second

	// casRetries limits the optimistic-concurrency loop in UpdateAuction.
	casRetries = 5
)

// MongoStore is a document-store implementation of Store backed by MongoDB.
// Single-document read-modify-writes use a version-field compare-and-swap;
// cross-document updates run inside a session transaction.
type MongoStore struct {
	client   *mongo.Client
	auctions *mongo.Collection
	users    *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo store: connect: %w", storeErr(err))
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo store: ping: %w", storeErr(err))
	}

	db := client.Database(dbName)
	return &MongoStore{
		client:   client,
		auctions: db.Collection(auctionCollection),
		users:    db.Collection(userCollection),
	}, nil
}

// Close disconnects the underlying client.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoStore) InsertAuction(ctx context.Context, a model.Auction) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := m.auctions.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert auction %s: %w", a.AuctionID, storeErr(err))
	}
	return nil
}

func (m *MongoStore) GetAuction(ctx context.Context, id string) (model.Auction, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var a model.Auction
	if err := m.auctions.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", id, storeErr(err))
	}
	return a, nil
}

func (m *MongoStore) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	return m.findAuctions(ctx, bson.M{})
}

func (m *MongoStore) ListAuctionsBySeller(ctx context.Context, sellerID string) ([]model.Auction, error) {
	return m.findAuctions(ctx, bson.M{"created_by": sellerID})
}

func (m *MongoStore) findAuctions(ctx context.Context, filter bson.M) ([]model.Auction, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := m.auctions.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find auctions: %w", storeErr(err))
	}
	defer cur.Close(ctx)

	auctions := []model.Auction{}
	if err := cur.All(ctx, &auctions); err != nil {
		return nil, fmt.Errorf("decode auctions: %w", storeErr(err))
	}
	return auctions, nil
}

func (m *MongoStore) SellerHasActiveAuction(ctx context.Context, sellerID string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := m.auctions.CountDocuments(ctx, bson.M{
		"created_by": sellerID,
		"end_time":   bson.M{"$gt": now},
	})
	if err != nil {
		return false, fmt.Errorf("seller active auction check for %s: %w", sellerID, storeErr(err))
	}
	return n > 0, nil
}

func (m *MongoStore) UpdateAuction(ctx context.Context, id string, apply func(*model.Auction) error) (model.Auction, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	for attempt := 0; attempt < casRetries; attempt++ {
		var current model.Auction
		if err := m.auctions.FindOne(ctx, bson.M{"_id": id}).Decode(&current); err != nil {
			return model.Auction{}, fmt.Errorf("update auction %s: %w", id, storeErr(err))
		}

		updated := current
		updated.Bids = append([]model.Bid(nil), current.Bids...)
		if err := apply(&updated); err != nil {
			return model.Auction{}, err
		}
		updated.Version = current.Version + 1

		res, err := m.auctions.ReplaceOne(ctx,
			bson.M{"_id": id, "version": current.Version}, updated)
		if err != nil {
			return model.Auction{}, fmt.Errorf("update auction %s: %w", id, storeErr(err))
		}
		if res.ModifiedCount == 1 {
			return updated, nil
		}
		// lost the CAS race to a concurrent writer, reload and retry
	}
	return model.Auction{}, fmt.Errorf("update auction %s: contention retries exhausted: %w",
		id, auctionerrors.ErrPersistence)
}

func (m *MongoStore) DeleteAuction(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := m.auctions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete auction %s: %w", id, storeErr(err))
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete auction %s: %w", id, auctionerrors.ErrNotFound)
	}
	return nil
}

func (m *MongoStore) GetUser(ctx context.Context, id string) (model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var u model.User
	if err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", id, storeErr(err))
	}
	return u, nil
}

func (m *MongoStore) UpdateUser(ctx context.Context, id string, apply func(*model.User) error) (model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	for attempt := 0; attempt < casRetries; attempt++ {
		var current model.User
		if err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&current); err != nil {
			return model.User{}, fmt.Errorf("update user %s: %w", id, storeErr(err))
		}

		updated := current
		if err := apply(&updated); err != nil {
			return model.User{}, err
		}
		updated.Version = current.Version + 1

		res, err := m.users.ReplaceOne(ctx,
			bson.M{"_id": id, "version": current.Version}, updated)
		if err != nil {
			return model.User{}, fmt.Errorf("update user %s: %w", id, storeErr(err))
		}
		if res.ModifiedCount == 1 {
			return updated, nil
		}
	}
	return model.User{}, fmt.Errorf("update user %s: contention retries exhausted: %w",
		id, auctionerrors.ErrPersistence)
}

// Atomically runs fn inside a Mongo session transaction. The driver retries
// transient write conflicts; the callback must be idempotent.
func (m *MongoStore) Atomically(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", storeErr(err))
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc, m)
	})
	if err != nil {
		// domain errors surfaced by fn pass through untouched
		if isDomainErr(err) {
			return err
		}
		return fmt.Errorf("transaction: %w", storeErr(err))
	}
	return nil
}

// storeErr maps driver failures onto the store error taxonomy.
func storeErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return auctionerrors.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return auctionerrors.ErrTimeout
	default:
		return fmt.Errorf("%w: %v", auctionerrors.ErrPersistence, err)
	}
}

func isDomainErr(err error) bool {
	for _, sentinel := range []error{
		auctionerrors.ErrMissingField,
		auctionerrors.ErrInvalidWindow,
		auctionerrors.ErrConflictingAuction,
		auctionerrors.ErrStillActive,
		auctionerrors.ErrInvalidID,
		auctionerrors.ErrInvalidState,
		auctionerrors.ErrBidTooLow,
		auctionerrors.ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
