package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultProfilePicture is used for accounts that never uploaded an avatar.
const DefaultProfilePicture = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_1280.png"

// User is an account document in the users collection. The password hash is
// never serialized to JSON.
type User struct {
	ID             primitive.ObjectID `json:"id"             bson:"_id,omitempty"`
	Username       string             `json:"username"       bson:"username"`
	Email          string             `json:"email"          bson:"email"`
	Password       string             `json:"-"              bson:"password"`
	ProfilePicture string             `json:"profilePicture" bson:"profile_picture"`
	IsAdmin        bool               `json:"isAdmin"        bson:"is_admin"`
	CreatedAt      time.Time          `json:"createdAt"      bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt"      bson:"updated_at"`
}

// SignupRequest is the JSON body for POST /api/auth/signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest is the JSON body for POST /api/auth/signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the JSON body for PUT /api/user/update/{userId}.
// Zero-valued fields are left unchanged.
type UpdateUserRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	ProfilePicture string `json:"profilePicture"`
}
