package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"waitlist-system/config"
	"waitlist-system/internal/status"
	"waitlist-system/models"
)

const (
	usersCollection         = "users"
	tempPasswordsCollection = "temp_passwords"
)

// MongoStore is the persistent AccountStore. The client is created lazily
// on first use and cached for the process lifetime; there is no explicit
// teardown.
type MongoStore struct {
	uri      string
	database string

	mu     sync.Mutex
	client *mongo.Client
}

func NewMongoStore(cfg *config.Config) *MongoStore {
	return &MongoStore{
		uri:      cfg.MongoURI,
		database: cfg.MongoDatabase,
	}
}

func (s *MongoStore) db(ctx context.Context) (*mongo.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client.Database(s.database), nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	db := client.Database(s.database)
	if err := ensureIndexes(ctx, db); err != nil {
		slog.Error("mongo: index creation failed", "error", err)
	}

	slog.Info("mongo: connected", "database", s.database)
	s.client = client
	return db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "phone", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(tempPasswordsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
	})
	return err
}

// Ping connects if needed and verifies the server is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, nil)
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := db.Collection(usersCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return status.ErrUsernameTaken
		}
		return err
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (s *MongoStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) UserByNameAndPhone(ctx context.Context, name, phone string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"name": name, "phone": phone})
}

func (s *MongoStore) UserByUsernameAndEmail(ctx context.Context, username, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username, "email": email})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = db.Collection(usersCollection).FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, status.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	db, err := s.db(ctx)
	if err != nil {
		return false, err
	}

	count, err := db.Collection(usersCollection).CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MongoStore) CreateTempPassword(ctx context.Context, record *models.TempPassword) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}

	coll := db.Collection(tempPasswordsCollection)

	_, err = coll.UpdateMany(ctx,
		bson.M{"userId": record.UserID, "used": false},
		bson.M{"$set": bson.M{"used": true}},
	)
	if err != nil {
		return err
	}

	record.CreatedAt = time.Now()
	result, err := coll.InsertOne(ctx, record)
	if err != nil {
		return err
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = id
	}
	return nil
}

func (s *MongoStore) UpdateUserPassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}

	result, err := db.Collection(usersCollection).UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"password": passwordHash, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return status.ErrUserNotFound
	}
	return nil
}
