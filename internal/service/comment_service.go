package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"productify/internal/apperr"
	"productify/internal/cache"
	"productify/internal/identity"
	"productify/internal/model"
	"productify/internal/policy"
	"productify/internal/repository"
)

// CommentService handles comment operations.
type CommentService interface {
	Create(ctx context.Context, actorID string, productID uuid.UUID, content string) (*model.Comment, error)
	Update(ctx context.Context, actor *identity.Identity, id uuid.UUID, content string) (*model.Comment, error)
	Delete(ctx context.Context, actor *identity.Identity, id uuid.UUID) error
}

type commentService struct {
	comments repository.CommentRepository
	products repository.ProductRepository
	cache    *cache.Client
}

// NewCommentService creates a new comment service.
func NewCommentService(comments repository.CommentRepository, products repository.ProductRepository, cache *cache.Client) CommentService {
	return &commentService{comments: comments, products: products, cache: cache}
}

// Create stores a comment against an existing product. The target product is
// resolved first so a bad product id yields not-found rather than a dangling
// foreign key error.
func (s *commentService) Create(ctx context.Context, actorID string, productID uuid.UUID, content string) (*model.Comment, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProductNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		Content:   content,
		UserID:    actorID,
		ProductID: productID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	// The product detail view embeds comments.
	_ = s.cache.Delete(ctx, productKey(productID))
	return comment, nil
}

// Update replaces a comment's content after the ownership check.
func (s *commentService) Update(ctx context.Context, actor *identity.Identity, id uuid.UUID, content string) (*model.Comment, error) {
	existing, err := s.findForMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.comments.UpdateContent(ctx, id, content)
	if err != nil {
		return nil, fmt.Errorf("update comment %s: %w", id, err)
	}
	if rows == 0 {
		return nil, apperr.ErrCommentNotFound
	}

	_ = s.cache.Delete(ctx, productKey(existing.ProductID))

	updated, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrCommentNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a comment after the ownership check.
func (s *commentService) Delete(ctx context.Context, actor *identity.Identity, id uuid.UUID) error {
	existing, err := s.findForMutation(ctx, actor, id)
	if err != nil {
		return err
	}

	rows, err := s.comments.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	if rows == 0 {
		return apperr.ErrCommentNotFound
	}

	_ = s.cache.Delete(ctx, productKey(existing.ProductID))
	return nil
}

func (s *commentService) findForMutation(ctx context.Context, actor *identity.Identity, id uuid.UUID) (*model.Comment, error) {
	existing, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrCommentNotFound
		}
		return nil, err
	}
	if !policy.CanMutate(actor.SubjectID, existing.UserID, actor.IsSiteOwner) {
		return nil, apperr.ErrCommentForbidden
	}
	return existing, nil
}
