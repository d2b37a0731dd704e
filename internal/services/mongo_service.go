package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/exercise-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
}

func (d userDocument) model() models.User {
	return models.User{ID: d.ID.Hex(), Username: d.Username}
}

type exerciseDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Date        time.Time          `bson:"date"`
}

func (d exerciseDocument) model() models.Exercise {
	return models.Exercise{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Description: d.Description,
		Duration:    d.Duration,
		Date:        models.Day(d.Date.UTC()),
	}
}

type eventDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Type      string             `bson:"type"`
	Level     string             `bson:"level"`
	Message   string             `bson:"message"`
	UserID    *string            `bson:"user_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d eventDocument) model() models.Event {
	return models.Event{
		ID:        d.ID.Hex(),
		Type:      d.Type,
		Level:     d.Level,
		Message:   d.Message,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// MongoUserService provides user storage backed by a MongoDB collection.
type MongoUserService struct {
	users *mongo.Collection
}

// NewMongoUserService creates a new MongoUserService.
func NewMongoUserService(db *mongo.Database) *MongoUserService {
	return &MongoUserService{users: db.Collection("users")}
}

// GetAllUsers retrieves every user in natural order, projecting only id and username.
func (s *MongoUserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: "username", Value: 1}})
	cur, err := s.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.model())
	}
	return users, nil
}

// GetUserByID retrieves a single user. A malformed id cannot match any user and
// is reported as not found.
func (s *MongoUserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}

	var doc userDocument
	if err := s.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
		}
		return models.User{}, err
	}
	return doc.model(), nil
}

// CreateUser stores a new user document.
func (s *MongoUserService) CreateUser(ctx context.Context, username string) (models.User, error) {
	doc := userDocument{ID: primitive.NewObjectID(), Username: username}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return models.User{}, err
	}
	return doc.model(), nil
}

// MongoExerciseService provides exercise storage backed by a MongoDB collection.
type MongoExerciseService struct {
	exercises *mongo.Collection
}

// NewMongoExerciseService creates a new MongoExerciseService.
func NewMongoExerciseService(db *mongo.Database) *MongoExerciseService {
	return &MongoExerciseService{exercises: db.Collection("exercises")}
}

// AddExercise stores a new exercise document.
func (s *MongoExerciseService) AddExercise(ctx context.Context, exercise models.Exercise) (models.Exercise, error) {
	userID, err := primitive.ObjectIDFromHex(exercise.UserID)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("user with ID %s: %w", exercise.UserID, ErrUserNotFound)
	}

	doc := exerciseDocument{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        models.Day(exercise.Date),
	}
	if _, err := s.exercises.InsertOne(ctx, doc); err != nil {
		return models.Exercise{}, err
	}
	return doc.model(), nil
}

// GetExerciseLog returns the user's entries within the query's date bounds.
func (s *MongoExerciseService) GetExerciseLog(ctx context.Context, query models.LogQuery) ([]models.Exercise, error) {
	filter, err := logFilter(query)
	if err != nil {
		return nil, fmt.Errorf("user with ID %s: %w", query.UserID, ErrUserNotFound)
	}

	cur, err := s.exercises.Find(ctx, filter, options.Find().SetLimit(int64(query.EffectiveLimit())))
	if err != nil {
		return nil, err
	}
	var docs []exerciseDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	exercises := make([]models.Exercise, 0, len(docs))
	for _, d := range docs {
		exercises = append(exercises, d.model())
	}
	return exercises, nil
}

func logFilter(query models.LogQuery) (bson.D, error) {
	userID, err := primitive.ObjectIDFromHex(query.UserID)
	if err != nil {
		return nil, err
	}
	filter := bson.D{{Key: "user_id", Value: userID}}

	var date bson.D
	if query.From != nil {
		date = append(date, bson.E{Key: "$gte", Value: *query.From})
	}
	if query.To != nil {
		date = append(date, bson.E{Key: "$lte", Value: *query.To})
	}
	if len(date) > 0 {
		filter = append(filter, bson.E{Key: "date", Value: date})
	}
	return filter, nil
}

// MongoEventService provides event storage backed by a MongoDB collection.
type MongoEventService struct {
	events *mongo.Collection
}

// NewMongoEventService creates a new MongoEventService.
func NewMongoEventService(db *mongo.Database) *MongoEventService {
	return &MongoEventService{events: db.Collection("events")}
}

// CreateEvent stores a new event document.
func (s *MongoEventService) CreateEvent(ctx context.Context, eventType, level, message string, userID *string) (models.Event, error) {
	doc := eventDocument{
		ID:        primitive.NewObjectID(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.events.InsertOne(ctx, doc); err != nil {
		return models.Event{}, err
	}
	return doc.model(), nil
}

// GetRecentEvents retrieves the most recent events, newest first.
func (s *MongoEventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.events.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.model())
	}
	return events, nil
}

// DeleteEventsBefore removes events created before cutoff.
func (s *MongoEventService) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.events.DeleteMany(ctx, bson.D{{Key: "created_at", Value: bson.D{{Key: "$lt", Value: cutoff}}}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
