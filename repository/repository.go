// Package repository holds the storage contracts the services depend on and
// their MongoDB implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopsphere/models"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStaleWrite means the document changed state since it was read.
	ErrStaleWrite = errors.New("stale write")
)

type ProductQuery struct {
	Keyword  string
	Page     int
	PageSize int
}

type ProductStore interface {
	// Create returns ErrDuplicateKey when the slug is taken.
	Create(ctx context.Context, p *models.Product) error
	List(ctx context.Context, q ProductQuery) ([]models.Product, error)
	Count(ctx context.Context, q ProductQuery) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	// Update replaces the editable fields of p.
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AddReview appends r and recomputes the aggregate in one write. It returns
	// ErrDuplicateKey when r.UserID has already reviewed the product.
	AddReview(ctx context.Context, productID primitive.ObjectID, r models.Review) (*models.Product, error)
	// DecrementStock fails with ErrInsufficientStock unless countInStock >= qty.
	DecrementStock(ctx context.Context, productID primitive.ObjectID, qty int) error
	IncrementStock(ctx context.Context, productID primitive.ObjectID, qty int) error
}

type OrderStore interface {
	// Create returns ErrDuplicateKey when the payment external id is taken.
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByPaymentID(ctx context.Context, externalID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	// Save replaces o only if the stored order is still in status prev.
	Save(ctx context.Context, o *models.Order, prev models.OrderStatus) error
}

type ShippingStore interface {
	// Create returns ErrDuplicateKey for a reused tracking number or an order
	// that already has a shipment.
	Create(ctx context.Context, s *models.Shipping) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Shipping, error)
	FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Shipping, error)
	// AppendEvent sets the status to ev.Status and pushes ev in one write.
	AppendEvent(ctx context.Context, id primitive.ObjectID, ev models.TrackingEvent) (*models.Shipping, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	// Create returns ErrDuplicateKey when the email is registered.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type TokenStore interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type Stores struct {
	Products ProductStore
	Orders   OrderStore
	Shipping ShippingStore
	Users    UserStore
	Tokens   TokenStore
}
