package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/model"
)

// UserRepo handles MongoDB operations for user profiles
type UserRepo interface {
	Ensure(ctx context.Context, id, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}

type userRepo struct {
	collection *mongo.Collection
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepo{
		collection: db.Collection("users"),
	}
}

// Ensure creates the profile with the default role on first sight and
// returns the stored document. Existing roles are never overwritten.
func (r *userRepo) Ensure(ctx context.Context, id, email string) (*model.User, error) {
	update := bson.M{
		"$setOnInsert": bson.M{
			"role":      model.RoleUser,
			"createdAt": time.Now().UTC(),
		},
	}
	if email != "" {
		update["$set"] = bson.M{"email": email}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user model.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDs returns the users found, keyed by id
func (r *userRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		out[user.ID] = &user
	}
	return out, cursor.Err()
}
