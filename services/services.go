// Package services implements the storefront use cases on top of the
// repository contracts and the payment gateway.
package services

import (
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopsphere/apperror"
	"shopsphere/models"
	"shopsphere/payment"
	"shopsphere/pricing"
	"shopsphere/repository"
)

type Options struct {
	JWTSecret   string
	TokenTTL    time.Duration
	Currency    string
	ShippingFee float64
	TaxRate     float64
}

type Services struct {
	Auth     *AuthService
	Catalog  *CatalogService
	Orders   *OrderService
	Payments *PaymentService
	Shipping *ShippingService
}

func New(stores *repository.Stores, gateway payment.Gateway, opts Options, log *slog.Logger) *Services {
	if log == nil {
		log = slog.Default()
	}
	orders := &OrderService{
		orders:   stores.Orders,
		products: stores.Products,
		pricing:  pricing.NewCalculator(opts.ShippingFee, opts.TaxRate),
		log:      log.With("component", "orders"),
		now:      time.Now,
	}
	return &Services{
		Auth: &AuthService{
			users:  stores.Users,
			tokens: stores.Tokens,
			secret: []byte(opts.JWTSecret),
			ttl:    opts.TokenTTL,
			now:    time.Now,
		},
		Catalog: &CatalogService{
			products: stores.Products,
			log:      log.With("component", "catalog"),
			now:      time.Now,
			pageSize: defaultPageSize,
		},
		Orders: orders,
		Payments: &PaymentService{
			gateway:  gateway,
			orders:   orders,
			currency: opts.Currency,
			log:      log.With("component", "payments"),
			now:      time.Now,
		},
		Shipping: &ShippingService{
			shipping: stores.Shipping,
			orders:   orders,
			log:      log.With("component", "shipping"),
			now:      time.Now,
		},
	}
}

// Identity is the authenticated caller.
type Identity struct {
	UserID primitive.ObjectID
	Name   string
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("Invalid %s ID", what)
	}
	return id, nil
}

// storeErr maps a repository failure onto the caller-facing taxonomy.
func storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("%s", notFound).WithCause(err)
	case errors.Is(err, repository.ErrStaleWrite):
		return apperror.Conflict("Record was modified concurrently, retry the request").WithCause(err)
	default:
		return apperror.Unexpected(err)
	}
}
