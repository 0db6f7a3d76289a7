package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"productify/internal/apperr"
	"productify/internal/cache"
	"productify/internal/identity"
	"productify/internal/model"
	"productify/internal/policy"
	"productify/internal/repository"
)

const productCacheTTL = 2 * time.Minute

const allProductsKey = "products:all"

// ProductPatch is a partial update: nil fields are left untouched.
type ProductPatch struct {
	Title       *string
	Description *string
	ImageURL    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.ImageURL == nil
}

func (p ProductPatch) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.ImageURL != nil {
		fields["image_url"] = *p.ImageURL
	}
	return fields
}

// ProductService handles product operations.
type ProductService interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	ListMine(ctx context.Context, userID string) ([]model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Create(ctx context.Context, ownerID, title, description, imageURL string) (*model.Product, error)
	Update(ctx context.Context, actor *identity.Identity, id uuid.UUID, patch ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, actor *identity.Identity, id uuid.UUID) error
}

type productService struct {
	products repository.ProductRepository
	cache    *cache.Client
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, cache *cache.Client) ProductService {
	return &productService{products: products, cache: cache}
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

func userProductsKey(userID string) string {
	return fmt.Sprintf("products:user:%s", userID)
}

// ListAll returns every product, newest first, each with its owner.
func (s *productService) ListAll(ctx context.Context) ([]model.Product, error) {
	if data, _ := s.cache.Get(ctx, allProductsKey); data != nil {
		var cached []model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(products); err == nil {
		_ = s.cache.Set(ctx, allProductsKey, payload, productCacheTTL)
	}
	return products, nil
}

// ListMine returns the caller's products, newest first.
func (s *productService) ListMine(ctx context.Context, userID string) ([]model.Product, error) {
	if data, _ := s.cache.Get(ctx, userProductsKey(userID)); data != nil {
		var cached []model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	products, err := s.products.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(products); err == nil {
		_ = s.cache.Set(ctx, userProductsKey(userID), payload, productCacheTTL)
	}
	return products, nil
}

// Get returns a product enriched with its owner and ordered comments.
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if data, _ := s.cache.Get(ctx, productKey(id)); data != nil {
		var cached model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProductNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(product); err == nil {
		_ = s.cache.Set(ctx, productKey(id), payload, productCacheTTL)
	}
	return product, nil
}

// Create stores a new product owned by the caller.
func (s *productService) Create(ctx context.Context, ownerID, title, description, imageURL string) (*model.Product, error) {
	product := &model.Product{
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
		UserID:      ownerID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	_ = s.cache.Delete(ctx, allProductsKey, userProductsKey(ownerID))
	return product, nil
}

// Update applies a partial update after the ownership check. The row count of
// the mutation itself is authoritative: a product deleted after the ownership
// read surfaces as not found, never as a stale write.
func (s *productService) Update(ctx context.Context, actor *identity.Identity, id uuid.UUID, patch ProductPatch) (*model.Product, error) {
	existing, err := s.findForMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.products.Update(ctx, id, patch.fields())
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	if rows == 0 {
		return nil, apperr.ErrProductNotFound
	}

	_ = s.cache.Delete(ctx, allProductsKey, userProductsKey(existing.UserID), productKey(id))

	updated, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProductNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a product after the ownership check. Comments go with it via
// the foreign key cascade.
func (s *productService) Delete(ctx context.Context, actor *identity.Identity, id uuid.UUID) error {
	existing, err := s.findForMutation(ctx, actor, id)
	if err != nil {
		return err
	}

	rows, err := s.products.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if rows == 0 {
		return apperr.ErrProductNotFound
	}

	_ = s.cache.Delete(ctx, allProductsKey, userProductsKey(existing.UserID), productKey(id))
	return nil
}

// findForMutation resolves the product and applies the ownership policy.
// Not-found is checked before ownership so absent resources yield 404, not 403.
func (s *productService) findForMutation(ctx context.Context, actor *identity.Identity, id uuid.UUID) (*model.Product, error) {
	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProductNotFound
		}
		return nil, err
	}
	if !policy.CanMutate(actor.SubjectID, existing.UserID, actor.IsSiteOwner) {
		return nil, apperr.ErrProductForbidden
	}
	return existing, nil
}
