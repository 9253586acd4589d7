package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopsphere/models"
)

type mongoProducts struct {
	coll *mongo.Collection
}

func productFilter(q ProductQuery) bson.M {
	if q.Keyword == "" {
		return bson.M{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Keyword), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": bson.M{"$regex": re}},
		bson.M{"description": bson.M{"$regex": re}},
	}}
}

func (m *mongoProducts) Create(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
	_, err := m.coll.InsertOne(ctx, p)
	return translate(err)
}

func (m *mongoProducts) List(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if q.PageSize > 0 {
		skip := (int64(max(q.Page, 1)) - 1) * int64(q.PageSize)
		if skip < 0 {
			return []models.Product{}, nil
		}
		opts.SetLimit(int64(q.PageSize)).SetSkip(skip)
	}

	cursor, err := m.coll.Find(ctx, productFilter(q), opts)
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (m *mongoProducts) Count(ctx context.Context, q ProductQuery) (int64, error) {
	return m.coll.CountDocuments(ctx, productFilter(q))
}

func (m *mongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (m *mongoProducts) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := m.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (m *mongoProducts) Update(ctx context.Context, p *models.Product) error {
	update := bson.M{"$set": bson.M{
		"name":         p.Name,
		"slug":         p.Slug,
		"description":  p.Description,
		"price":        p.Price,
		"category":     p.Category,
		"brand":        p.Brand,
		"images":       p.Images,
		"countInStock": p.CountInStock,
		"updatedAt":    p.UpdatedAt,
	}}
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoProducts) AddReview(ctx context.Context, productID primitive.ObjectID, r models.Review) (*models.Product, error) {
	filter := bson.M{"_id": productID, "reviews.userId": bson.M{"$ne": r.UserID}}
	// $literal keeps user text such as "$5 well spent" from being read as a
	// field path inside the pipeline.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "reviews", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}}},
				bson.D{{Key: "$literal", Value: bson.A{r}}},
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "numReviews", Value: bson.D{{Key: "$size", Value: "$reviews"}}},
			{Key: "rating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
			{Key: "updatedAt", Value: time.Now()},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Product
	err := m.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}
	// Either the product is gone or the reviewer is already on it.
	if _, ferr := m.FindByID(ctx, productID); ferr != nil {
		return nil, ferr
	}
	return nil, ErrDuplicateKey
}

func (m *mongoProducts) DecrementStock(ctx context.Context, productID primitive.ObjectID, qty int) error {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": productID, "countInStock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"countInStock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, ferr := m.FindByID(ctx, productID); ferr != nil {
			return ferr
		}
		return ErrInsufficientStock
	}
	return nil
}

func (m *mongoProducts) IncrementStock(ctx context.Context, productID primitive.ObjectID, qty int) error {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$inc": bson.M{"countInStock": qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
