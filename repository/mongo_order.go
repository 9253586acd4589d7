package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopsphere/models"
)

type mongoOrders struct {
	coll *mongo.Collection
}

func (m *mongoOrders) Create(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := m.coll.InsertOne(ctx, o)
	return translate(err)
}

func (m *mongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (m *mongoOrders) FindByPaymentID(ctx context.Context, externalID string) (*models.Order, error) {
	var o models.Order
	if err := m.coll.FindOne(ctx, bson.M{"paymentResult.externalId": externalID}).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (m *mongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return m.find(ctx, bson.M{"userId": userID})
}

func (m *mongoOrders) List(ctx context.Context) ([]models.Order, error) {
	return m.find(ctx, bson.M{})
}

func (m *mongoOrders) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (m *mongoOrders) Save(ctx context.Context, o *models.Order, prev models.OrderStatus) error {
	res, err := m.coll.ReplaceOne(ctx, bson.M{"_id": o.ID, "status": prev}, o)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		if _, ferr := m.FindByID(ctx, o.ID); ferr != nil {
			return ferr
		}
		return ErrStaleWrite
	}
	return nil
}
