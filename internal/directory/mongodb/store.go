// Package mongodb stores the user directory in a MongoDB collection, the
// closest self-hosted match to a hosted document store.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/domain"
)

const usersCollection = "users"

// Config holds MongoDB connection settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	ConnectRetries uint64
}

// userDocument is the stored shape of a directory record.
type userDocument struct {
	UserID      string    `bson:"_id"`
	PhotoURL    string    `bson:"photo_url"`
	DisplayName string    `bson:"display_name"`
	Username    string    `bson:"username"`
	Email       string    `bson:"email"`
	Keywords    []string  `bson:"keywords"`
	DateCreated time.Time `bson:"date_created"`
}

// Store implements directory.Directory over MongoDB.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	logger *zap.Logger
}

var _ directory.Directory = (*Store)(nil)

// Open connects to MongoDB, retrying the initial ping with exponential
// backoff, and ensures the collection indexes exist.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, errors.New("mongo uri and database are required")
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("directory")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			logger.Warn("mongo ping failed", zap.Error(err))
			return err
		}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.ConnectRetries), ctx)
	if err := backoff.Retry(ping, policy); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{
		client: client,
		users:  client.Database(cfg.Database).Collection(usersCollection),
		logger: logger,
	}
	if err := s.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// Close disconnects from the server.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) createIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "keywords", Value: 1}, {Key: "display_name", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, q directory.Query) ([]domain.User, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "display_name", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(q.Limit))

	cur, err := s.users.Find(ctx, findFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.User, len(docs))
	for i, d := range docs {
		users[i] = d.toDomain()
	}
	s.logger.Debug("find", zap.String("keyword", q.Keyword), zap.Int("results", len(users)))
	return users, nil
}

func (s *Store) Exists(ctx context.Context, field directory.Field, value string) (bool, error) {
	key, err := fieldKey(field)
	if err != nil {
		return false, err
	}
	n, err := s.users.CountDocuments(ctx, bson.D{{Key: key, Value: value}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check %s: %w", field, err)
	}
	return n > 0, nil
}

func (s *Store) Create(ctx context.Context, u domain.User) error {
	var owner userDocument
	err := s.users.FindOne(ctx, bson.D{{Key: "username", Value: u.Username}}).Decode(&owner)
	switch {
	case err == nil && owner.UserID != u.ID:
		return directory.ErrUsernameTaken
	case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("check username: %w", err)
	}

	doc := newUserDocument(u)
	_, err = s.users.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.UserID}}, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return directory.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID string) (domain.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.User{}, directory.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	res, err := s.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: userID}})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return directory.ErrNotFound
	}
	return nil
}

// findFilter selects records holding q.Keyword, skipping the excluded user
// and everything up to and including the cursor.
func findFilter(q directory.Query) bson.D {
	filter := bson.D{
		{Key: "keywords", Value: q.Keyword},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: q.ExcludeUserID}}},
	}
	if q.After != nil {
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "display_name", Value: bson.D{{Key: "$gt", Value: q.After.DisplayName}}}},
			bson.D{
				{Key: "display_name", Value: q.After.DisplayName},
				{Key: "_id", Value: bson.D{{Key: "$gt", Value: q.After.UserID}}},
			},
		}})
	}
	return filter
}

func fieldKey(f directory.Field) (string, error) {
	switch f {
	case directory.FieldUserID:
		return "_id", nil
	case directory.FieldUsername:
		return "username", nil
	case directory.FieldEmail:
		return "email", nil
	default:
		return "", fmt.Errorf("unknown field %q", f)
	}
}

func newUserDocument(u domain.User) userDocument {
	kw := u.Keywords
	if len(kw) == 0 {
		kw = directory.Keywords(u.DisplayName, u.Username)
	}
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return userDocument{
		UserID:      u.ID,
		PhotoURL:    u.PhotoURL,
		DisplayName: u.DisplayName,
		Username:    u.Username,
		Email:       u.Email,
		Keywords:    kw,
		DateCreated: created.UTC(),
	}
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:          d.UserID,
		PhotoURL:    d.PhotoURL,
		DisplayName: d.DisplayName,
		Username:    d.Username,
		Email:       d.Email,
		Keywords:    d.Keywords,
		CreatedAt:   d.DateCreated,
	}
}
