package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xeze-org/exercise-tracker/internal/models"
)

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
}

type exerciseDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Date        time.Time          `bson:"date"`
}

// MongoStore keeps users and exercises in two MongoDB collections.
type MongoStore struct {
	users     *mongo.Collection
	exercises *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:     db.Collection("users"),
		exercises: db.Collection("exercises"),
	}
}

// EnsureIndexes creates the unique username index and the log lookup index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo users index: %w", err)
	}
	_, err = s.exercises.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongo exercises index: %w", err)
	}
	return nil
}

func (s *MongoStore) InsertUser(ctx context.Context, username string) (*models.User, error) {
	res, err := s.users.InsertOne(ctx, userDoc{Username: username})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	return &models.User{ID: oid.Hex(), Username: username}, nil
}

func (s *MongoStore) FindUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "username": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode users: %w", err)
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, models.User{ID: d.ID.Hex(), Username: d.Username})
	}
	return users, nil
}

// FindUserByID returns models.ErrNotFound for unknown or malformed ids.
func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return &models.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

func (s *MongoStore) InsertExercise(ctx context.Context, ex *models.Exercise) error {
	res, err := s.exercises.InsertOne(ctx, exerciseDoc{
		UserID:      ex.UserID,
		Description: ex.Description,
		Duration:    ex.Duration,
		Date:        ex.Date,
	})
	if err != nil {
		return fmt.Errorf("mongo insert exercise: %w", err)
	}
	ex.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *MongoStore) FindExercises(ctx context.Context, filter models.ExerciseFilter) ([]models.Exercise, error) {
	cur, err := s.exercises.Find(ctx, exerciseQuery(filter), exerciseFindOptions(filter))
	if err != nil {
		return nil, fmt.Errorf("mongo find exercises: %w", err)
	}
	defer cur.Close(ctx)

	var docs []exerciseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode exercises: %w", err)
	}
	out := make([]models.Exercise, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.Exercise{
			ID:          d.ID.Hex(),
			UserID:      d.UserID,
			Description: d.Description,
			Duration:    d.Duration,
			Date:        d.Date.UTC(),
		})
	}
	return out, nil
}

func exerciseQuery(filter models.ExerciseFilter) bson.M {
	q := bson.M{"user_id": filter.UserID}
	dateRange := bson.M{}
	if filter.From != nil {
		dateRange["$gte"] = *filter.From
	}
	if filter.To != nil {
		dateRange["$lte"] = *filter.To
	}
	if len(dateRange) > 0 {
		q["date"] = dateRange
	}
	return q
}

func exerciseFindOptions(filter models.ExerciseFilter) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return opts
}
