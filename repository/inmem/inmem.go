// Package inmem is a process-local implementation of the repository
// contracts. It enforces the same unique keys as the Mongo indexes so the
// services behave identically against either driver.
package inmem

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopsphere/models"
	"shopsphere/repository"
)

// New returns a fresh set of empty stores sharing one lock.
func New() *repository.Stores {
	db := &store{
		products: map[primitive.ObjectID]models.Product{},
		orders:   map[primitive.ObjectID]models.Order{},
		shipping: map[primitive.ObjectID]models.Shipping{},
		users:    map[primitive.ObjectID]models.User{},
		tokens:   map[string]time.Time{},
	}
	return &repository.Stores{
		Products: (*products)(db),
		Orders:   (*orders)(db),
		Shipping: (*shippings)(db),
		Users:    (*users)(db),
		Tokens:   (*tokens)(db),
	}
}

type store struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
	orders   map[primitive.ObjectID]models.Order
	shipping map[primitive.ObjectID]models.Shipping
	users    map[primitive.ObjectID]models.User
	tokens   map[string]time.Time
}

func cloneProduct(p models.Product) models.Product {
	p.Images = slices.Clone(p.Images)
	p.Reviews = slices.Clone(p.Reviews)
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
	return p
}

func cloneOrder(o models.Order) models.Order {
	o.OrderItems = slices.Clone(o.OrderItems)
	if o.PaymentResult != nil {
		pr := *o.PaymentResult
		o.PaymentResult = &pr
	}
	if o.ShippingInfo != nil {
		id := *o.ShippingInfo
		o.ShippingInfo = &id
	}
	return o
}

func cloneShipping(s models.Shipping) models.Shipping {
	s.History = slices.Clone(s.History)
	return s
}

type products store

func (s *products) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.Slug == p.Slug {
			return repository.ErrDuplicateKey
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
	s.products[p.ID] = cloneProduct(*p)
	return nil
}

func matches(p models.Product, keyword string) bool {
	if keyword == "" {
		return true
	}
	k := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(p.Name), k) || strings.Contains(strings.ToLower(p.Description), k)
}

func (s *products) filtered(q repository.ProductQuery) []models.Product {
	var out []models.Product
	for _, p := range s.products {
		if matches(p, q.Keyword) {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *products) List(_ context.Context, q repository.ProductQuery) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.filtered(q)
	if q.PageSize <= 0 {
		if all == nil {
			all = []models.Product{}
		}
		return all, nil
	}
	start := (max(q.Page, 1) - 1) * q.PageSize
	if start < 0 || start >= len(all) {
		return []models.Product{}, nil
	}
	end := min(start+q.PageSize, len(all))
	return all[start:end], nil
}

func (s *products) Count(_ context.Context, q repository.ProductQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.filtered(q))), nil
}

func (s *products) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (s *products) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug {
			p = cloneProduct(p)
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *products) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range s.products {
		if id != p.ID && other.Slug == p.Slug {
			return repository.ErrDuplicateKey
		}
	}
	existing.Name = p.Name
	existing.Slug = p.Slug
	existing.Description = p.Description
	existing.Price = p.Price
	existing.Category = p.Category
	existing.Brand = p.Brand
	existing.Images = slices.Clone(p.Images)
	existing.CountInStock = p.CountInStock
	existing.UpdatedAt = p.UpdatedAt
	s.products[p.ID] = existing
	return nil
}

func (s *products) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *products) AddReview(_ context.Context, productID primitive.ObjectID, r models.Review) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = cloneProduct(p)
	if err := p.AddReview(r); err != nil {
		return nil, repository.ErrDuplicateKey
	}
	p.UpdatedAt = time.Now()
	s.products[productID] = p
	out := cloneProduct(p)
	return &out, nil
}

func (s *products) DecrementStock(_ context.Context, productID primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return repository.ErrNotFound
	}
	if p.CountInStock < qty {
		return repository.ErrInsufficientStock
	}
	p.CountInStock -= qty
	s.products[productID] = p
	return nil
}

func (s *products) IncrementStock(_ context.Context, productID primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return repository.ErrNotFound
	}
	p.CountInStock += qty
	s.products[productID] = p
	return nil
}

type orders store

func (s *orders) paymentIDTaken(o *models.Order) bool {
	if o.PaymentResult == nil || o.PaymentResult.ExternalID == "" {
		return false
	}
	for id, other := range s.orders {
		if id != o.ID && other.PaymentResult != nil && other.PaymentResult.ExternalID == o.PaymentResult.ExternalID {
			return true
		}
	}
	return false
}

func (s *orders) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paymentIDTaken(o) {
		return repository.ErrDuplicateKey
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (s *orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (s *orders) FindByPaymentID(_ context.Context, externalID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.PaymentResult != nil && o.PaymentResult.ExternalID == externalID {
			o = cloneOrder(o)
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *orders) list(keep func(models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *orders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s *orders) List(_ context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(models.Order) bool { return true }), nil
}

func (s *orders) Save(_ context.Context, o *models.Order, prev models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.orders[o.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Status != prev {
		return repository.ErrStaleWrite
	}
	if s.paymentIDTaken(o) {
		return repository.ErrDuplicateKey
	}
	s.orders[o.ID] = cloneOrder(*o)
	return nil
}

type shippings store

func (s *shippings) Create(_ context.Context, sh *models.Shipping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.shipping {
		if other.TrackingNumber == sh.TrackingNumber || other.OrderID == sh.OrderID {
			return repository.ErrDuplicateKey
		}
	}
	if sh.ID.IsZero() {
		sh.ID = primitive.NewObjectID()
	}
	s.shipping[sh.ID] = cloneShipping(*sh)
	return nil
}

func (s *shippings) FindByID(_ context.Context, id primitive.ObjectID) (*models.Shipping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipping[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sh = cloneShipping(sh)
	return &sh, nil
}

func (s *shippings) FindByOrderID(_ context.Context, orderID primitive.ObjectID) (*models.Shipping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range s.shipping {
		if sh.OrderID == orderID {
			sh = cloneShipping(sh)
			return &sh, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *shippings) AppendEvent(_ context.Context, id primitive.ObjectID, ev models.TrackingEvent) (*models.Shipping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipping[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sh = cloneShipping(sh)
	sh.Append(ev)
	s.shipping[id] = sh
	out := cloneShipping(sh)
	return &out, nil
}

func (s *shippings) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipping[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.shipping, id)
	return nil
}

type users store

func (s *users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, other := range s.users {
		if other.Email == u.Email {
			return repository.ErrDuplicateKey
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type tokens store

func (s *tokens) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = expiresAt
	return nil
}

func (s *tokens) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(s.tokens, token)
		return false, nil
	}
	return true, nil
}
