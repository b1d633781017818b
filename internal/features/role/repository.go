package role

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eic-admin/internal/common/errs"
	"eic-admin/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// RoleChange is a pushed change to the roles collection. Role is nil for deletes.
type RoleChange struct {
	Kind database.ChangeKind
	ID   string
	Role *Role
}

type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	// InsertIfAbsent reports false when a role with the same id already exists.
	InsertIfAbsent(ctx context.Context, role *Role) (bool, error)
	FindByID(ctx context.Context, id string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Update(ctx context.Context, id string, in RoleInput) (*Role, error)
	SetUsersAssigned(ctx context.Context, id string, count int64) (*Role, error)
	Delete(ctx context.Context, id string) error
	Watch(ctx context.Context, handle func(RoleChange)) (func() error, error)
}

type RoleRepositoryImpl struct {
	Collection *mongo.Collection
	logger     *zap.Logger
}

func NewRoleRepository(mongodb *database.MongodbDB, logger *zap.Logger) RoleRepository {
	return &RoleRepositoryImpl{
		Collection: mongodb.DB.Collection(database.RolesCollection),
		logger:     logger,
	}
}

func (r *RoleRepositoryImpl) Create(ctx context.Context, role *Role) error {
	stamp(role)
	_, err := r.Collection.InsertOne(ctx, role)
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: role %s already exists", errs.ErrDuplicate, role.ID)
	}
	return err
}

func (r *RoleRepositoryImpl) InsertIfAbsent(ctx context.Context, role *Role) (bool, error) {
	stamp(role)
	_, err := r.Collection.InsertOne(ctx, role)
	if database.IsDuplicateKey(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func stamp(role *Role) {
	now := time.Now().UTC()
	role.CreatedAt = &now
	role.UpdatedAt = &now
	role.Version = 1
}

func (r *RoleRepositoryImpl) FindByID(ctx context.Context, id string) (*Role, error) {
	var role Role
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: role %s", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepositoryImpl) List(ctx context.Context) ([]Role, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	roles := []Role{}
	if err = cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepositoryImpl) Update(ctx context.Context, id string, in RoleInput) (*Role, error) {
	update := bson.M{
		"$set": bson.M{
			"name":        in.Name,
			"description": in.Description,
			"permissions": in.Permissions,
		},
		"$inc":         bson.M{"version": 1},
		"$currentDate": bson.M{"updated_at": true},
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id, "is_system": false}, update)
}

func (r *RoleRepositoryImpl) SetUsersAssigned(ctx context.Context, id string, count int64) (*Role, error) {
	update := bson.M{
		"$set": bson.M{"users_assigned": count},
		"$inc": bson.M{"version": 1},
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *RoleRepositoryImpl) findOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (*Role, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var role Role
	err := r.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: role %v", errs.ErrNotFound, filter["_id"])
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id, "is_system": false})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: role %s", errs.ErrNotFound, id)
	}
	return nil
}

func (r *RoleRepositoryImpl) Watch(ctx context.Context, handle func(RoleChange)) (func() error, error) {
	w := database.NewWatcher(r.Collection, r.logger)
	err := w.Start(ctx, func(evt database.ChangeEvent) {
		change := RoleChange{Kind: evt.Kind, ID: evt.ID}
		if evt.Kind != database.ChangeDelete && len(evt.Document) > 0 {
			var role Role
			if err := bson.Unmarshal(evt.Document, &role); err != nil {
				r.logger.Warn("Failed to decode role change", zap.String("role_id", evt.ID), zap.Error(err))
				return
			}
			change.Role = &role
		}
		handle(change)
	})
	if err != nil {
		return nil, err
	}
	return w.Close, nil
}
