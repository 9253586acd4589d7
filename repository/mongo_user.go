package repository

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopsphere/models"
)

type mongoUsers struct {
	coll *mongo.Collection
}

func (m *mongoUsers) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(u.Email)
	_, err := m.coll.InsertOne(ctx, u)
	return translate(err)
}

func (m *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (m *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := m.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

type mongoTokens struct {
	coll *mongo.Collection
}

func (m *mongoTokens) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$set": models.RevokedToken{Token: token, ExpiresAt: expiresAt}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (m *mongoTokens) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := m.coll.FindOne(ctx, bson.M{"token": token}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}
