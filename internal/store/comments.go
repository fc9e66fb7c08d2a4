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

// CommentStore handles comment CRUD in the comments collection.
type CommentStore struct {
	col *mongo.Collection
}

func NewCommentStore(db *mongo.Database) *CommentStore {
	return &CommentStore{col: db.Collection("comments")}
}

func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Likes == nil {
		c.Likes = []string{}
	}

	res, err := s.col.InsertOne(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return c, nil
}

func (s *CommentStore) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var c models.Comment
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return &c, nil
}

// ListByPost returns all comments on a post, newest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer cur.Close(ctx)

	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

// List returns a page of all comments plus total and last-month counts.
func (s *CommentStore) List(ctx context.Context, startIndex, limit int, sortAsc bool) ([]models.Comment, int64, int64, error) {
	order := -1
	if sortAsc {
		order = 1
	}
	if limit <= 0 {
		limit = 9
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: order}}).
		SetSkip(int64(startIndex)).
		SetLimit(int64(limit))

	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("list comments: %w", err)
	}
	defer cur.Close(ctx)

	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, 0, 0, fmt.Errorf("decode comments: %w", err)
	}

	total, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("count comments: %w", err)
	}

	oneMonthAgo := time.Now().AddDate(0, -1, 0)
	lastMonth, err := s.col.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": oneMonthAgo}})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("count recent comments: %w", err)
	}

	return comments, total, lastMonth, nil
}

// Update replaces the comment content and returns the updated document.
func (s *CommentStore) Update(ctx context.Context, id, content string) (*models.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Comment
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &c, nil
}

// SetLikes replaces the like set after a toggle.
func (s *CommentStore) SetLikes(ctx context.Context, id string, likes []string) (*models.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	update := bson.M{"$set": bson.M{
		"likes":           likes,
		"number_of_likes": len(likes),
		"updated_at":      time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Comment
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment likes: %w", err)
	}
	return &c, nil
}

func (s *CommentStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
