package repository

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"shopsphere/database"
)

// NewMongoStores wires every store to its collection in db.
func NewMongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Products: &mongoProducts{coll: db.Collection(database.ProductsCollection)},
		Orders:   &mongoOrders{coll: db.Collection(database.OrdersCollection)},
		Shipping: &mongoShipping{coll: db.Collection(database.ShippingCollection)},
		Users:    &mongoUsers{coll: db.Collection(database.UsersCollection)},
		Tokens:   &mongoTokens{coll: db.Collection(database.TokensCollection)},
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	default:
		return err
	}
}
