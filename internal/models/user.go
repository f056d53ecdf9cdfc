package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a clinic account on the remote backend. Every device signed in with
// the same account replicates the same snapshot.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName  string             `bson:"fullName" json:"fullName"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash, never serialized to clients
	Role      string             `bson:"role" json:"role"`  // "admin", "doctor", "secretary"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
