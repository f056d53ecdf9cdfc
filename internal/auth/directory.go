package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("an account with this email already exists")
)

// Directory stores clinic accounts.
type Directory interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// MongoDirectory keeps accounts in the users collection.
type MongoDirectory struct {
	db *mongo.Database
}

func NewMongoDirectory(db *mongo.Database) *MongoDirectory {
	return &MongoDirectory{db: db}
}

// EnsureIndexes creates the unique email index that Create relies on.
func (d *MongoDirectory) EnsureIndexes(ctx context.Context) error {
	_, err := d.db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	return nil
}

func (d *MongoDirectory) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := d.db.Collection("users").InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (d *MongoDirectory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (d *MongoDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return d.findOne(ctx, bson.M{"_id": oid})
}

func (d *MongoDirectory) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := d.db.Collection("users").FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// MemoryDirectory is an in-process Directory.
type MemoryDirectory struct {
	mu    sync.Mutex
	users map[string]models.User // by email
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{users: make(map[string]models.User)}
}

func (d *MemoryDirectory) Create(_ context.Context, u *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[u.Email]; ok {
		return ErrEmailTaken
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	d.users[u.Email] = *u
	return nil
}

func (d *MemoryDirectory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (d *MemoryDirectory) FindByID(_ context.Context, id string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.ID.Hex() == id {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
