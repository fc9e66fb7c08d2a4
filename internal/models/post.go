package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPostImage is used for posts created without a cover image.
const DefaultPostImage = "https://www.hostinger.com/tutorials/wp-content/uploads/sites/2/2021/09/how-to-write-a-blog-post.png"

// Post is a blog post document in the posts collection.
type Post struct {
	ID        primitive.ObjectID `json:"id"        bson:"_id,omitempty"`
	UserID    string             `json:"userId"    bson:"user_id"`
	Title     string             `json:"title"     bson:"title"`
	Slug      string             `json:"slug"      bson:"slug"`
	Content   string             `json:"content"   bson:"content"`
	Image     string             `json:"image"     bson:"image"`
	Category  string             `json:"category"  bson:"category"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// CreatePostRequest is the JSON body for POST /api/post/create and
// PUT /api/post/updatepost/{postId}/{userId}.
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

// PostList is the paginated response for GET /api/post/getposts.
type PostList struct {
	Posts          []Post `json:"posts"`
	TotalPosts     int64  `json:"totalPosts"`
	LastMonthPosts int64  `json:"lastMonthPosts"`
}
