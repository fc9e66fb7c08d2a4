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

// PostFilter narrows a post listing. Zero values are ignored.
type PostFilter struct {
	UserID     string
	Category   string
	Slug       string
	PostID     string
	SearchTerm string
	StartIndex int
	Limit      int
	SortAsc    bool
}

// PostStore handles post CRUD in the posts collection.
type PostStore struct {
	col *mongo.Collection
}

func NewPostStore(db *mongo.Database) *PostStore {
	return &PostStore{col: db.Collection("posts")}
}

// Create inserts a new post. A slug collision is reported as ErrDuplicateKey.
func (s *PostStore) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	res, err := s.col.InsertOne(ctx, post)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert post: %w", err)
	}
	post.ID = res.InsertedID.(primitive.ObjectID)
	return post, nil
}

func (s *PostStore) FindByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p models.Post
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

// List returns posts matching the filter plus the total and last-month counts.
func (s *PostStore) List(ctx context.Context, f PostFilter) ([]models.Post, int64, int64, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Slug != "" {
		filter["slug"] = f.Slug
	}
	if f.PostID != "" {
		oid, err := primitive.ObjectIDFromHex(f.PostID)
		if err != nil {
			return nil, 0, 0, ErrNotFound
		}
		filter["_id"] = oid
	}
	if f.SearchTerm != "" {
		regex := primitive.Regex{Pattern: f.SearchTerm, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"content": regex},
		}
	}

	order := -1
	if f.SortAsc {
		order = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 9
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: order}}).
		SetSkip(int64(f.StartIndex)).
		SetLimit(int64(limit))

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, 0, 0, fmt.Errorf("decode posts: %w", err)
	}

	total, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("count posts: %w", err)
	}

	oneMonthAgo := time.Now().AddDate(0, -1, 0)
	lastMonth, err := s.col.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": oneMonthAgo}})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("count recent posts: %w", err)
	}

	return posts, total, lastMonth, nil
}

// Update applies the given field set and returns the updated post.
func (s *PostStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	fields["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Post
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fields}, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &p, nil
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
