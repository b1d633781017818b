package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eic-admin/internal/common/errs"
	"eic-admin/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// UserChange is a pushed change to the users collection. User is nil for deletes.
type UserChange struct {
	Kind database.ChangeKind
	ID   string
	User *User
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	List(ctx context.Context) ([]User, error)
	UpdateProfile(ctx context.Context, id string, in UpdateUserInput, updatedBy string) (*User, error)
	SoftDelete(ctx context.Context, id string, deletedBy string, at time.Time) (*User, error)
	Restore(ctx context.Context, id string, restoredBy string, at time.Time) (*User, error)
	SetLastLogin(ctx context.Context, id string, at time.Time) (*User, error)
	// CountByRole counts every user document holding the role, active or not.
	CountByRole(ctx context.Context, roleID string) (int64, error)
	CountActiveByRole(ctx context.Context, roleID string) (int64, error)
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
	EnsureIndexes(ctx context.Context) error
	Watch(ctx context.Context, handle func(UserChange)) (func() error, error)
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
	logger     *zap.Logger
}

func NewUserRepository(mongodb *database.MongodbDB, logger *zap.Logger) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection(database.UsersCollection),
		logger:     logger,
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = &now
	user.UpdatedAt = &now
	user.Version = 1

	_, err := r.Collection.InsertOne(ctx, user)
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: user %s already exists", errs.ErrDuplicate, user.Email)
	}
	return err
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.Collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user", errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return []User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *UserRepositoryImpl) List(ctx context.Context) ([]User, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *UserRepositoryImpl) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]User, error) {
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) UpdateProfile(ctx context.Context, id string, in UpdateUserInput, updatedBy string) (*User, error) {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"display_name": in.DisplayName,
			"role":         in.Role,
			"updated_by":   updatedBy,
		},
	})
}

func (r *UserRepositoryImpl) SoftDelete(ctx context.Context, id string, deletedBy string, at time.Time) (*User, error) {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"is_active":  false,
			"deleted_at": at,
			"deleted_by": deletedBy,
			"updated_by": deletedBy,
		},
	})
}

func (r *UserRepositoryImpl) Restore(ctx context.Context, id string, restoredBy string, at time.Time) (*User, error) {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"is_active":   true,
			"restored_at": at,
			"restored_by": restoredBy,
			"updated_by":  restoredBy,
		},
		"$unset": bson.M{"deleted_at": "", "deleted_by": ""},
	})
}

func (r *UserRepositoryImpl) SetLastLogin(ctx context.Context, id string, at time.Time) (*User, error) {
	return r.update(ctx, id, bson.M{"$set": bson.M{"last_login": at}})
}

// update bumps version and updated_at on every write and returns the stored document.
func (r *UserRepositoryImpl) update(ctx context.Context, id string, update bson.M) (*User, error) {
	update["$inc"] = bson.M{"version": 1}
	update["$currentDate"] = bson.M{"updated_at": true}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user User
	err := r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user %s", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) CountByRole(ctx context.Context, roleID string) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"role": roleID})
}

func (r *UserRepositoryImpl) CountActiveByRole(ctx context.Context, roleID string) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"role": roleID, "is_active": true})
}

func (r *UserRepositoryImpl) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	users, err := r.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}
	return names, nil
}

func (r *UserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}},
	})
	return err
}

func (r *UserRepositoryImpl) Watch(ctx context.Context, handle func(UserChange)) (func() error, error) {
	w := database.NewWatcher(r.Collection, r.logger)
	err := w.Start(ctx, func(evt database.ChangeEvent) {
		change := UserChange{Kind: evt.Kind, ID: evt.ID}
		if evt.Kind != database.ChangeDelete && len(evt.Document) > 0 {
			var user User
			if err := bson.Unmarshal(evt.Document, &user); err != nil {
				r.logger.Warn("Failed to decode user change", zap.String("user_id", evt.ID), zap.Error(err))
				return
			}
			change.User = &user
		}
		handle(change)
	})
	if err != nil {
		return nil, err
	}
	return w.Close, nil
}
