package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"productify/internal/apperr"
	"productify/internal/identity"
	"productify/internal/model"
	"productify/internal/service"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

// withSubject attaches a verified token the way the JWT middleware would.
func withSubject(c echo.Context, subject string) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	c.Set("user", token)
}

// MockUserRepo backs the identity resolver in handler tests.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Upsert(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) ListMine(ctx context.Context, userID string) ([]model.Product, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, ownerID, title, description, imageURL string) (*model.Product, error) {
	args := m.Called(ctx, ownerID, title, description, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, actor *identity.Identity, id uuid.UUID, patch service.ProductPatch) (*model.Product, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, actor *identity.Identity, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func provisionedResolver(subject string) *identity.Resolver {
	repo := new(MockUserRepo)
	repo.On("FindByID", mock.Anything, subject).
		Return(&model.User{ID: subject, Email: subject + "@x.com"}, nil)
	return identity.NewResolver(repo, "", "")
}

func newProductHandler(svc service.ProductService, resolver *identity.Resolver) *ProductHandler {
	return NewProductHandler(svc, resolver, zerolog.Nop())
}

func TestProductHandler_ListPublic(t *testing.T) {
	e := newTestEcho()
	svc := new(MockProductService)
	svc.On("ListAll", mock.Anything).Return([]model.Product{{Title: "Desk"}}, nil)
	h := newProductHandler(svc, provisionedResolver("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []model.Product `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
}

func TestProductHandler_GetInvalidID(t *testing.T) {
	e := newTestEcho()
	svc := new(MockProductService)
	h := newProductHandler(svc, provisionedResolver("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/products/:id")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	assert.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestProductHandler_GetMissing(t *testing.T) {
	e := newTestEcho()
	id := uuid.New()
	svc := new(MockProductService)
	svc.On("Get", mock.Anything, id).Return(nil, apperr.ErrProductNotFound)
	h := newProductHandler(svc, provisionedResolver("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+id.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/products/:id")
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	assert.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp apperr.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "product not found", resp.Error)
}

func TestProductHandler_CreateSuccess(t *testing.T) {
	e := newTestEcho()
	svc := new(MockProductService)
	svc.On("Create", mock.Anything, "user-1", "Desk", "Wooden", "https://img.example/d.png").
		Return(&model.Product{ID: uuid.New(), Title: "Desk", UserID: "user-1"}, nil)
	h := newProductHandler(svc, provisionedResolver("user-1"))

	body := `{"title":"Desk","description":"Wooden","imageUrl":"https://img.example/d.png"}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSubject(c, "user-1")

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestProductHandler_CreateRejectsUnknownField(t *testing.T) {
	e := newTestEcho()
	svc := new(MockProductService)
	h := newProductHandler(svc, provisionedResolver("user-1"))

	body := `{"title":"Desk","description":"Wooden","imageUrl":"https://img.example/d.png","price":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSubject(c, "user-1")

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_CreateInvalidImageURL(t *testing.T) {
	e := newTestEcho()
	svc := new(MockProductService)
	h := newProductHandler(svc, provisionedResolver("user-1"))

	body := `{"title":"Desk","description":"Wooden","imageUrl":"not a url"}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSubject(c, "user-1")

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandler_CreateWithoutIdentity(t *testing.T) {
	e := newTestEcho()
	svc := new(MockProductService)
	h := newProductHandler(svc, provisionedResolver("user-1"))

	body := `{"title":"Desk","description":"Wooden","imageUrl":"https://img.example/d.png"}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductHandler_CreateNotProvisioned(t *testing.T) {
	e := newTestEcho()
	repo := new(MockUserRepo)
	repo.On("FindByID", mock.Anything, "user-9").Return(nil, apperr.ErrNotProvisioned)
	resolver := identity.NewResolver(repo, "", "")
	svc := new(MockProductService)
	h := newProductHandler(svc, resolver)

	body := `{"title":"Desk","description":"Wooden","imageUrl":"https://img.example/d.png"}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSubject(c, "user-9")

	assert.NoError(t, h.Create(c))
	// An unexpected repo error maps to 500; a missing row maps to 403 via
	// gorm.ErrRecordNotFound, covered in the identity package tests. Here the
	// repo returns the sentinel directly to exercise the handler path.
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductHandler_UpdateEmptyPatch(t *testing.T) {
	e := newTestEcho()
	svc := new(MockProductService)
	h := newProductHandler(svc, provisionedResolver("user-1"))

	id := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/products/:id")
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	withSubject(c, "user-1")

	assert.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_UpdateForbidden(t *testing.T) {
	e := newTestEcho()
	id := uuid.New()
	svc := new(MockProductService)
	svc.On("Update", mock.Anything, mock.Anything, id, mock.Anything).
		Return(nil, apperr.ErrProductForbidden)
	h := newProductHandler(svc, provisionedResolver("user-2"))

	req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), strings.NewReader(`{"title":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/products/:id")
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	withSubject(c, "user-2")

	assert.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductHandler_DeleteSuccess(t *testing.T) {
	e := newTestEcho()
	id := uuid.New()
	svc := new(MockProductService)
	svc.On("Delete", mock.Anything, mock.Anything, id).Return(nil)
	h := newProductHandler(svc, provisionedResolver("user-1"))

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+id.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/products/:id")
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	withSubject(c, "user-1")

	assert.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product deleted successfully")
}

// Internal failures must never leak detail to the caller.
func TestProductHandler_InternalErrorIsOpaque(t *testing.T) {
	e := newTestEcho()
	svc := new(MockProductService)
	svc.On("ListAll", mock.Anything).Return(nil, assert.AnError)
	h := newProductHandler(svc, provisionedResolver("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.List(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apperr.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}
