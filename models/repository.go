package models

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user insert hits the unique email constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)

// User lives in Postgres. Password holds the bcrypt hash and never leaves the API.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event lives in Mongo. Poster is the organizer's display name; PosterURL and
// AssetPath are set only when an image was uploaded to the remote store.
// CreatorName is resolved at read time from the users table and never persisted.
type Event struct {
	ID               string    `bson:"id" json:"id"`
	Title            string    `bson:"title" json:"title"`
	Poster           string    `bson:"poster" json:"poster"`
	Description      string    `bson:"description" json:"description"`
	RegistrationLink string    `bson:"registrationLink" json:"registrationLink"`
	PosterURL        string    `bson:"posterUrl,omitempty" json:"posterUrl,omitempty"`
	AssetPath        string    `bson:"assetPath,omitempty" json:"-"`
	CreatedBy        int64     `bson:"createdBy" json:"createdBy"`
	CreatorName      string    `bson:"-" json:"creatorName,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}

// UserRepository hides the user store behind the handlers.
type UserRepository interface {
	// Create hashes u.Password, inserts the record and fills in ID and
	// CreatedAt. Returns ErrDuplicateEmail when the email is taken.
	Create(u *User) error
	// FindByEmail returns the full record, hash included, or ErrNotFound.
	FindByEmail(email string) (User, error)
	// GetByID returns the record without the hash, or ErrNotFound.
	GetByID(id int64) (User, error)
}

// EventRepository hides the event store behind the handlers.
type EventRepository interface {
	// Create inserts e as-is; the caller assigns ID and CreatedAt.
	Create(e *Event) error
	// All returns every event, newest first.
	All() ([]Event, error)
	// ByCreator returns the creator's events, newest first.
	ByCreator(userID int64) ([]Event, error)
	// GetByID returns the event or ErrNotFound.
	GetByID(id string) (Event, error)
	// Delete removes the event if present. Deleting an absent id is not an error.
	Delete(id string) error
}
