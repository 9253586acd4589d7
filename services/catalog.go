package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"shopsphere/apperror"
	"shopsphere/models"
	"shopsphere/repository"
)

const defaultPageSize = 10

type CatalogService struct {
	products repository.ProductStore
	log      *slog.Logger
	now      func() time.Time
	pageSize int
}

type ProductInput struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Category     string   `json:"category" validate:"required"`
	Brand        string   `json:"brand" validate:"required"`
	Images       []string `json:"images" validate:"required,min=1,dive,required"`
	CountInStock *int     `json:"countInStock" validate:"required,gte=0"`
}

// ProductPatch carries the fields an admin edit may change; nil means keep.
type ProductPatch struct {
	Name         *string  `json:"name" validate:"omitempty,min=1"`
	Description  *string  `json:"description" validate:"omitempty,min=1"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	Category     *string  `json:"category" validate:"omitempty,min=1"`
	Brand        *string  `json:"brand" validate:"omitempty,min=1"`
	Images       []string `json:"images" validate:"omitempty,min=1,dive,required"`
	CountInStock *int     `json:"countInStock" validate:"omitempty,gte=0"`
}

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Total    int64            `json:"total"`
}

func errAlreadyReviewed() error {
	return &apperror.Error{Kind: apperror.KindConflict, Message: "Product already reviewed", Status: http.StatusBadRequest}
}

func (s *CatalogService) ListProducts(ctx context.Context, keyword string, page int) (*ProductPage, error) {
	// Pages past maxPage would overflow the skip offset; they are empty anyway.
	maxPage := math.MaxInt32 / s.pageSize
	q := repository.ProductQuery{Keyword: strings.TrimSpace(keyword), Page: min(max(page, 1), maxPage), PageSize: s.pageSize}

	var (
		products []models.Product
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.products.List(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.products.Count(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Unexpected(err)
	}

	pages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return &ProductPage{Products: products, Page: q.Page, Pages: pages, Total: total}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	now := s.now()
	p := &models.Product{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Price:        *in.Price,
		Category:     strings.TrimSpace(in.Category),
		Brand:        strings.TrimSpace(in.Brand),
		Images:       in.Images,
		CountInStock: *in.CountInStock,
		Reviews:      []models.Review{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.Slug = models.Slugify(p.Name)

	err := s.products.Create(ctx, p)
	if errors.Is(err, repository.ErrDuplicateKey) {
		p.Slug = models.SuffixSlug(p.Slug, now)
		err = s.products.Create(ctx, p)
	}
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, apperror.Conflict("A product with slug %q already exists", p.Slug)
	}
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	s.log.InfoContext(ctx, "product created", "product_id", p.ID.Hex(), "slug", p.Slug)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, slug string, patch ProductPatch) (*models.Product, error) {
	if err := validateInput(patch); err != nil {
		return nil, err
	}
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}

	renamed := false
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != p.Name {
		p.Name = strings.TrimSpace(*patch.Name)
		renamed = true
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Brand != nil {
		p.Brand = strings.TrimSpace(*patch.Brand)
	}
	if patch.Images != nil {
		p.Images = patch.Images
	}
	if patch.CountInStock != nil {
		p.CountInStock = *patch.CountInStock
	}
	now := s.now()
	p.UpdatedAt = now

	if renamed {
		p.Slug = models.Slugify(p.Name)
	}
	err = s.products.Update(ctx, p)
	if renamed && errors.Is(err, repository.ErrDuplicateKey) {
		p.Slug = models.SuffixSlug(p.Slug, now)
		err = s.products.Update(ctx, p)
	}
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, apperror.Conflict("A product with slug %q already exists", p.Slug)
	}
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, slug string) error {
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return storeErr(err, "Product not found")
	}
	if err := s.products.Delete(ctx, p.ID); err != nil {
		return storeErr(err, "Product not found")
	}
	s.log.InfoContext(ctx, "product deleted", "product_id", p.ID.Hex(), "slug", slug)
	return nil
}

// CreateReview appends the caller's review and refreshes the product's
// rating aggregate.
func (s *CatalogService) CreateReview(ctx context.Context, caller Identity, slug string, in ReviewInput) (*models.Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	if p.HasReviewFrom(caller.UserID) {
		return nil, errAlreadyReviewed()
	}

	review := models.Review{
		UserID:    caller.UserID,
		Name:      caller.Name,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.now(),
	}
	updated, err := s.products.AddReview(ctx, p.ID, review)
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return nil, errAlreadyReviewed()
	case err != nil:
		return nil, storeErr(err, "Product not found")
	}
	return updated, nil
}
