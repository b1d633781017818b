package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eic-admin/internal/common/errs"
	"eic-admin/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IdentityRepository interface {
	Create(ctx context.Context, cred *Credential) error
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	FindByID(ctx context.Context, id string) (*Credential, error)
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type IdentityRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewIdentityRepository(mongodb *database.MongodbDB) IdentityRepository {
	return &IdentityRepositoryImpl{
		Collection: mongodb.DB.Collection(database.CredentialsCollection),
	}
}

func (r *IdentityRepositoryImpl) Create(ctx context.Context, cred *Credential) error {
	cred.Email = strings.ToLower(cred.Email)
	_, err := r.Collection.InsertOne(ctx, cred)
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: identity %s already exists", errs.ErrDuplicate, cred.Email)
	}
	return err
}

func (r *IdentityRepositoryImpl) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *IdentityRepositoryImpl) FindByID(ctx context.Context, id string) (*Credential, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *IdentityRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*Credential, error) {
	var cred Credential
	err := r.Collection.FindOne(ctx, filter).Decode(&cred)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *IdentityRepositoryImpl) Delete(ctx context.Context, id string) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *IdentityRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
