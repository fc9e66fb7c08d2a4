package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a comment document in the comments collection. Likes holds the
// ids of accounts that liked the comment; NumberOfLikes is kept in step so
// listings never need to load the whole set.
type Comment struct {
	ID            primitive.ObjectID `json:"id"            bson:"_id,omitempty"`
	PostID        string             `json:"postId"        bson:"post_id"`
	UserID        string             `json:"userId"        bson:"user_id"`
	Content       string             `json:"content"       bson:"content"`
	Likes         []string           `json:"likes"         bson:"likes"`
	NumberOfLikes int                `json:"numberOfLikes" bson:"number_of_likes"`
	CreatedAt     time.Time          `json:"createdAt"     bson:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt"     bson:"updated_at"`
}

// CreateCommentRequest is the JSON body for POST /api/comment/create.
type CreateCommentRequest struct {
	Content string `json:"content"`
	PostID  string `json:"postId"`
	UserID  string `json:"userId"`
}

// CommentList is the paginated response for GET /api/comment/getcomments.
type CommentList struct {
	Comments          []Comment `json:"comments"`
	TotalComments     int64     `json:"totalComments"`
	LastMonthComments int64     `json:"lastMonthComments"`
}
