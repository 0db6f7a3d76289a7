package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"productify/internal/apperr"
	"productify/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestResolve_EmptySubject(t *testing.T) {
	repo := new(MockUserRepository)
	r := NewResolver(repo, "", "")

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	repo.AssertNotCalled(t, "FindByID")
}

func TestResolve_NotProvisioned(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, "sub-1").Return(nil, gorm.ErrRecordNotFound)
	r := NewResolver(repo, "", "")

	_, err := r.Resolve(context.Background(), "sub-1")
	assert.ErrorIs(t, err, apperr.ErrNotProvisioned)
}

func TestResolve_SiteOwnerStrategies(t *testing.T) {
	tests := []struct {
		name       string
		ownerID    string
		ownerEmail string
		subject    string
		userEmail  string
		want       bool
	}{
		{"identifier match", "sub-1", "", "sub-1", "a@x.com", true},
		{"identifier mismatch", "sub-2", "", "sub-1", "a@x.com", false},
		// A configured identifier suppresses the email fallback even when
		// the email would have matched.
		{"identifier takes precedence over matching email", "sub-2", "a@x.com", "sub-1", "a@x.com", false},
		{"email match case-insensitive", "", "owner@x.com", "sub-1", "Owner@X.com", true},
		{"email match trims whitespace", "", "  owner@x.com ", "sub-1", "owner@x.com", true},
		{"email mismatch", "", "owner@x.com", "sub-1", "other@x.com", false},
		{"nothing configured", "", "", "sub-1", "a@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			repo.On("FindByID", mock.Anything, tt.subject).
				Return(&model.User{ID: tt.subject, Email: tt.userEmail}, nil)

			r := NewResolver(repo, tt.ownerID, tt.ownerEmail)
			ident, err := r.Resolve(context.Background(), tt.subject)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ident.IsSiteOwner)
			assert.Equal(t, tt.subject, ident.SubjectID)
		})
	}
}
