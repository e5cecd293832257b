// Package storage provides MongoDB storage for CoinPulse.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/leeaandrob/coinpulse/internal/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// Store provides access to all MongoDB collections.
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	users       *mongo.Collection
	preferences *mongo.Collection
	votes       *mongo.Collection
}

// NewStore creates a new storage connection.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	log.Info().Str("db", dbName).Msg("Connected to MongoDB")

	store := &Store{
		client:      client,
		db:          db,
		users:       db.Collection("users"),
		preferences: db.Collection("preferences"),
		votes:       db.Collection("votes"),
	}

	if err := store.createIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create some indexes")
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks the connection, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) createIndexes(ctx context.Context) error {
	var errs []error

	userIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "external_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := s.users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		errs = append(errs, err)
	}

	prefIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := s.preferences.Indexes().CreateMany(ctx, prefIndexes); err != nil {
		errs = append(errs, err)
	}

	voteIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "section", Value: 1}, {Key: "content_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := s.votes.Indexes().CreateMany(ctx, voteIndexes); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ============================================================================
// USER OPERATIONS
// ============================================================================

// EnsureUser returns the user for an external identity, creating it on
// first sight.
func (s *Store) EnsureUser(ctx context.Context, externalID string) (*models.User, error) {
	filter := bson.M{"external_id": externalID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":         uuid.NewString(),
		"external_id": externalID,
		"created_at":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	if err := s.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByExternalID looks up a user without creating one.
func (s *Store) UserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ============================================================================
// PREFERENCE OPERATIONS
// ============================================================================

// GetPreferences returns the onboarding choices of a user.
func (s *Store) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	var prefs models.Preferences
	err := s.preferences.FindOne(ctx, bson.M{"user_id": userID}).Decode(&prefs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// SavePreferences stores onboarding choices, replacing earlier ones.
func (s *Store) SavePreferences(ctx context.Context, prefs *models.Preferences) error {
	if prefs.CreatedAt.IsZero() {
		prefs.CreatedAt = time.Now().UTC()
	}

	filter := bson.M{"user_id": prefs.UserID}
	update := bson.M{"$set": bson.M{
		"assets":        prefs.Assets,
		"investor_type": prefs.InvestorType,
		"content_types": prefs.ContentTypes,
	}, "$setOnInsert": bson.M{
		"created_at": prefs.CreatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := s.preferences.UpdateOne(ctx, filter, update, opts)
	return err
}

// UpdateAssets replaces the tracked assets of an onboarded user.
func (s *Store) UpdateAssets(ctx context.Context, userID string, assets []string) error {
	res, err := s.preferences.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"assets": assets}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================================================
// VOTE OPERATIONS
// ============================================================================

type voteAction int

const (
	voteInsert voteAction = iota
	voteUpdate
	voteRemove
)

// decideVote applies the toggle rule: repeating a vote removes it, a
// different vote replaces it, and a first vote is inserted.
func decideVote(existing *models.Vote, value int) voteAction {
	switch {
	case existing == nil:
		return voteInsert
	case existing.Value == value:
		return voteRemove
	default:
		return voteUpdate
	}
}

// CastVote records a vote with toggle semantics and returns the vote now
// in effect, or 0 when it was removed.
func (s *Store) CastVote(ctx context.Context, userID string, section models.Section, contentID string, value int) (int, error) {
	filter := bson.M{"user_id": userID, "section": section, "content_id": contentID}

	var existing *models.Vote
	var found models.Vote
	err := s.votes.FindOne(ctx, filter).Decode(&found)
	switch {
	case err == nil:
		existing = &found
	case !errors.Is(err, mongo.ErrNoDocuments):
		return 0, err
	}

	now := time.Now().UTC()
	switch decideVote(existing, value) {
	case voteRemove:
		if _, err := s.votes.DeleteOne(ctx, bson.M{"_id": existing.ID}); err != nil {
			return 0, err
		}
		return 0, nil
	case voteUpdate:
		_, err := s.votes.UpdateOne(ctx,
			bson.M{"_id": existing.ID},
			bson.M{"$set": bson.M{"vote": value, "created_at": now}},
		)
		if err != nil {
			return 0, err
		}
		return value, nil
	default:
		_, err := s.votes.InsertOne(ctx, &models.Vote{
			UserID:    userID,
			Section:   section,
			ContentID: contentID,
			Value:     value,
			CreatedAt: now,
		})
		if err != nil {
			return 0, err
		}
		return value, nil
	}
}

// SectionVotes maps content id to vote for one user and section.
func (s *Store) SectionVotes(ctx context.Context, userID string, section models.Section) (map[string]int, error) {
	cursor, err := s.votes.Find(ctx, bson.M{"user_id": userID, "section": section})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var votes []models.Vote
	if err := cursor.All(ctx, &votes); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(votes))
	for _, v := range votes {
		out[v.ContentID] = v.Value
	}
	return out, nil
}

// RecentVotes returns up to limit votes of a user, newest first.
func (s *Store) RecentVotes(ctx context.Context, userID string, limit int) ([]models.Vote, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.votes.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var votes []models.Vote
	if err := cursor.All(ctx, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}
