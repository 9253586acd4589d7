package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopsphere/models"
)

type mongoShipping struct {
	coll *mongo.Collection
}

func (m *mongoShipping) Create(ctx context.Context, s *models.Shipping) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := m.coll.InsertOne(ctx, s)
	return translate(err)
}

func (m *mongoShipping) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Shipping, error) {
	var s models.Shipping
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (m *mongoShipping) FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Shipping, error) {
	var s models.Shipping
	if err := m.coll.FindOne(ctx, bson.M{"order": orderID}).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (m *mongoShipping) AppendEvent(ctx context.Context, id primitive.ObjectID, ev models.TrackingEvent) (*models.Shipping, error) {
	update := bson.M{
		"$set":  bson.M{"status": ev.Status, "updatedAt": ev.Timestamp},
		"$push": bson.M{"history": ev},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var s models.Shipping
	if err := m.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (m *mongoShipping) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
