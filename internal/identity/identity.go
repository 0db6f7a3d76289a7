package identity

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"productify/internal/apperr"
	"productify/internal/model"
	"productify/internal/repository"
)

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	SubjectID   string
	User        *model.User
	IsSiteOwner bool
}

// Resolver maps a provider-issued subject identifier to a local user record
// and decides whether the caller is the configured site owner.
type Resolver struct {
	users      repository.UserRepository
	ownerID    string
	ownerEmail string
}

// NewResolver builds a resolver. ownerID and ownerEmail come from
// configuration; ownerID, when set, is the only strategy evaluated.
func NewResolver(users repository.UserRepository, ownerID, ownerEmail string) *Resolver {
	return &Resolver{users: users, ownerID: ownerID, ownerEmail: ownerEmail}
}

// Resolve returns the caller's identity. An empty subject means the request
// carried no verified identity; a verified subject without a local row means
// the profile has not been synced yet, which the client fixes with a one-time
// sync call before retrying.
func (r *Resolver) Resolve(ctx context.Context, subject string) (*Identity, error) {
	if subject == "" {
		return nil, apperr.ErrUnauthenticated
	}

	user, err := r.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotProvisioned
		}
		return nil, err
	}

	return &Identity{
		SubjectID:   subject,
		User:        user,
		IsSiteOwner: r.isSiteOwner(subject, user),
	}, nil
}

// isSiteOwner evaluates exactly one designation strategy: exact identifier
// match when an identifier is configured, otherwise a case-insensitive,
// trimmed email match. The email fallback never runs once an identifier is
// configured, even a non-matching one.
func (r *Resolver) isSiteOwner(subject string, user *model.User) bool {
	if r.ownerID != "" {
		return r.ownerID == subject
	}
	if r.ownerEmail != "" && user.Email != "" {
		return strings.EqualFold(strings.TrimSpace(r.ownerEmail), strings.TrimSpace(user.Email))
	}
	return false
}
