package inspection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eic-admin/internal/common/errs"
	"eic-admin/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InspectionRepository interface {
	Create(ctx context.Context, insp *Inspection) error
	FindByID(ctx context.Context, id string) (*Inspection, error)
	// List returns matching inspections, most recent date first.
	List(ctx context.Context, q Query) ([]Inspection, error)
	Update(ctx context.Context, id string, in InspectionInput, updatedBy string) (*Inspection, error)
	SetStatus(ctx context.Context, id string, status Status, updatedBy string) (*Inspection, error)
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type InspectionRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewInspectionRepository(mongodb *database.MongodbDB) InspectionRepository {
	return &InspectionRepositoryImpl{
		Collection: mongodb.DB.Collection(database.InspectionsCollection),
	}
}

func (r *InspectionRepositoryImpl) Create(ctx context.Context, insp *Inspection) error {
	now := time.Now().UTC()
	if insp.ID == "" {
		insp.ID = primitive.NewObjectID().Hex()
	}
	insp.CreatedAt = &now
	insp.UpdatedAt = &now
	insp.Version = 1

	_, err := r.Collection.InsertOne(ctx, insp)
	return err
}

func (r *InspectionRepositoryImpl) FindByID(ctx context.Context, id string) (*Inspection, error) {
	var insp Inspection
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&insp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: inspection %s", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &insp, nil
}

func (r *InspectionRepositoryImpl) List(ctx context.Context, q Query) ([]Inspection, error) {
	filter := bson.M{}
	if q.InspectorID != "" {
		filter["inspector_id"] = q.InspectorID
	}
	date := bson.M{}
	if q.From != nil {
		date["$gte"] = *q.From
	}
	if q.To != nil {
		date["$lte"] = *q.To
	}
	if len(date) > 0 {
		filter["date"] = date
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []Inspection{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InspectionRepositoryImpl) Update(ctx context.Context, id string, in InspectionInput, updatedBy string) (*Inspection, error) {
	set := bson.M{
		"establishment_name": in.EstablishmentName,
		"address":            in.Address,
		"contact_phone":      in.ContactPhone,
		"checklist":          in.Checklist,
		"updated_by":         updatedBy,
	}
	if in.Date != nil {
		set["date"] = *in.Date
	}
	return r.update(ctx, id, bson.M{"$set": set})
}

func (r *InspectionRepositoryImpl) SetStatus(ctx context.Context, id string, status Status, updatedBy string) (*Inspection, error) {
	return r.update(ctx, id, bson.M{"$set": bson.M{"status": status, "updated_by": updatedBy}})
}

func (r *InspectionRepositoryImpl) update(ctx context.Context, id string, update bson.M) (*Inspection, error) {
	update["$inc"] = bson.M{"version": 1}
	update["$currentDate"] = bson.M{"updated_at": true}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var insp Inspection
	err := r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&insp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: inspection %s", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &insp, nil
}

func (r *InspectionRepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: inspection %s", errs.ErrNotFound, id)
	}
	return nil
}

func (r *InspectionRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "inspector_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	})
	return err
}
