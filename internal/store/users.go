package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blogify/backend/internal/models"
)

// UserStore handles account CRUD in the users collection.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

// Create inserts a new account. A collision with the unique username or email
// index is reported as ErrDuplicateKey.
func (s *UserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ProfilePicture == "" {
		user.ProfilePicture = models.DefaultProfilePicture
	}

	res, err := s.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

// FindByEmail returns the account with the given (already normalized) email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// FindByEmailOrUsername returns any account matching either field. Used as the
// advisory pre-check before signup.
func (s *UserStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}}
	var u models.User
	err := s.col.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email or username: %w", err)
	}
	return &u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var u models.User
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

// Update applies the given field set and returns the updated account.
func (s *UserStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	fields["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fields}, opts).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of accounts sorted by creation time, plus the total
// count and the count created in the last month.
func (s *UserStore) List(ctx context.Context, startIndex, limit int, sortAsc bool) ([]models.User, int64, int64, error) {
	order := -1
	if sortAsc {
		order = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: order}}).
		SetSkip(int64(startIndex)).
		SetLimit(int64(limit))

	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, 0, fmt.Errorf("decode users: %w", err)
	}

	total, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("count users: %w", err)
	}

	oneMonthAgo := time.Now().AddDate(0, -1, 0)
	lastMonth, err := s.col.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": oneMonthAgo}})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("count recent users: %w", err)
	}

	return users, total, lastMonth, nil
}
