package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/linemk/almost-amazon/internal/app/handlers"
	"github.com/linemk/almost-amazon/internal/domain/models"
	"github.com/linemk/almost-amazon/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/almost-amazon/internal/service"
	"github.com/linemk/almost-amazon/internal/storage"
)

// fakeAuthService — фиктивная реализация для тестирования
type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return f.token, f.err
}

type fakeOrderService struct {
	order  *models.Order
	orders []*models.Order
	err    error
}

var _ service.OrderService = (*fakeOrderService)(nil)

func (f *fakeOrderService) Create(ctx context.Context, actor service.Actor, positions []service.PositionInput, statusProvided bool) (*models.Order, error) {
	if statusProvided {
		return nil, service.ErrStatusOnCreate
	}
	return f.order, f.err
}

func (f *fakeOrderService) Update(ctx context.Context, actor service.Actor, orderID int64, upd service.OrderUpdate) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) Get(ctx context.Context, actor service.Actor, orderID int64) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) List(ctx context.Context, actor service.Actor, filter storage.OrderFilter) ([]*models.Order, error) {
	return f.orders, f.err
}

func (f *fakeOrderService) Delete(ctx context.Context, actor service.Actor, orderID int64) error {
	return f.err
}

type fakeCatalogService struct {
	product  *models.Product
	products []*models.Product
	err      error
}

var _ service.CatalogService = (*fakeCatalogService)(nil)

func (f *fakeCatalogService) Create(ctx context.Context, actor service.Actor, input service.ProductInput) (*models.Product, error) {
	if !actor.IsStaff {
		return nil, service.ErrStaffOnly
	}
	return f.product, f.err
}

func (f *fakeCatalogService) Update(ctx context.Context, actor service.Actor, productID int64, input service.ProductInput) (*models.Product, error) {
	return f.product, f.err
}

func (f *fakeCatalogService) Get(ctx context.Context, productID int64) (*models.Product, error) {
	return f.product, f.err
}

func (f *fakeCatalogService) List(ctx context.Context, filter storage.ProductFilter) ([]*models.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalogService) Delete(ctx context.Context, actor service.Actor, productID int64) error {
	return f.err
}

type fakeReviewService struct {
	review  *models.ProductReview
	reviews []*models.ProductReview
	err     error
}

var _ service.ReviewService = (*fakeReviewService)(nil)

func (f *fakeReviewService) Create(ctx context.Context, actor service.Actor, input service.ReviewInput) (*models.ProductReview, error) {
	return f.review, f.err
}

func (f *fakeReviewService) Update(ctx context.Context, actor service.Actor, reviewID int64, text string, stars int) (*models.ProductReview, error) {
	return f.review, f.err
}

func (f *fakeReviewService) Get(ctx context.Context, reviewID int64) (*models.ProductReview, error) {
	return f.review, f.err
}

func (f *fakeReviewService) List(ctx context.Context, filter storage.ReviewFilter) ([]*models.ProductReview, error) {
	return f.reviews, f.err
}

func (f *fakeReviewService) Delete(ctx context.Context, actor service.Actor, reviewID int64) error {
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// authRequest прикладывает к запросу личность, которую обычно ставит JWT middleware
func authRequest(req *http.Request, id jwtmiddleware.Identity) *http.Request {
	return req.WithContext(jwtmiddleware.WithIdentity(req.Context(), id))
}

func TestAuthHandler_Success(t *testing.T) {
	fakeSvc := &fakeAuthService{token: "test-token"}
	handler := handlers.AuthHandler(testLogger(), fakeSvc)

	reqBody := `{"email": "test@example.com", "password": "password123"}`
	req := httptest.NewRequest("POST", "/api/auth", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Expected status 200 OK")

	var resp struct {
		Token string `json:"token"`
	}
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err, "Response decoding should succeed")
	assert.Equal(t, "test-token", resp.Token, "Returned token should match fake token")
}

func TestAuthHandler_InvalidJSON(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{})

	reqBody := `{"email": "test@example.com", "password":`
	req := httptest.NewRequest("POST", "/api/auth", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for invalid JSON")
}

func TestAuthHandler_ValidationError(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{})

	// пароль короче восьми символов
	reqBody := `{"email": "test@example.com", "password": "short"}`
	req := httptest.NewRequest("POST", "/api/auth", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for validation error")
}

func TestAuthHandler_InvalidCredentials(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{err: service.ErrInvalidCredentials})

	reqBody := `{"email": "test@example.com", "password": "wrongpassword"}`
	req := httptest.NewRequest("POST", "/api/auth", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "bad credentials map to 401")
}

func TestAuthHandler_StorageError(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{err: errors.New("db down")})

	reqBody := `{"email": "test@example.com", "password": "password123"}`
	req := httptest.NewRequest("POST", "/api/auth", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	// недоступное хранилище — не вина клиента
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestCreateOrderHandler_Success(t *testing.T) {
	order := &models.Order{
		ID:        1,
		CreatorID: 7,
		Creator:   models.UserSummary{ID: 7, Email: "test@example.com"},
		Status:    models.OrderStatusNew,
		Total:     decimal.RequireFromString("25.50"),
		Positions: []*models.Position{{ProductID: 1, Amount: 2}},
	}
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{order: order})

	reqBody := `{"positions": [{"product_id": 1, "amount": 2}]}`
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(reqBody))
	req = authRequest(req, jwtmiddleware.Identity{UserID: 7})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp models.Order
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, models.OrderStatusNew, resp.Status)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("25.50")))
}

func TestCreateOrderHandler_Unauthorized(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{})

	req := httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(`{"positions": []}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "no identity in context means 401")
}

func TestCreateOrderHandler_StatusSupplied(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{})

	reqBody := `{"positions": [{"product_id": 1}], "status": "DONE"}`
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(reqBody))
	req = authRequest(req, jwtmiddleware.Identity{UserID: 7})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code, "explicit status on creation is 403")
}

func TestCreateOrderHandler_UnknownProduct(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{err: service.ErrUnknownProduct})

	reqBody := `{"positions": [{"product_id": 999, "amount": 1}]}`
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(reqBody))
	req = authRequest(req, jwtmiddleware.Identity{UserID: 7})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	// несуществующий товар в позициях — ошибка тела запроса, не 404
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp handlers.ErrorResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, service.ErrUnknownProduct.Error(), resp.Error)
}

func TestCreateOrderHandler_MissingProductID(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{})

	// позиция без product_id не проходит валидацию до вызова сервиса
	reqBody := `{"positions": [{"amount": 2}]}`
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(reqBody))
	req = authRequest(req, jwtmiddleware.Identity{UserID: 7})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateOrderHandler_StatusByOwner(t *testing.T) {
	router := chi.NewRouter()
	router.Patch("/api/orders/{id}", handlers.UpdateOrderHandler(testLogger(), &fakeOrderService{err: service.ErrStatusNotStaff}))

	req := httptest.NewRequest("PATCH", "/api/orders/1", bytes.NewBufferString(`{"status": "DONE"}`))
	req = authRequest(req, jwtmiddleware.Identity{UserID: 7})
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	var resp handlers.ErrorResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, service.ErrStatusNotStaff.Error(), resp.Error)
}

func TestGetOrderHandler_NotFound(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/api/orders/{id}", handlers.GetOrderHandler(testLogger(), &fakeOrderService{err: storage.ErrOrderNotFound}))

	req := httptest.NewRequest("GET", "/api/orders/42", nil)
	req = authRequest(req, jwtmiddleware.Identity{UserID: 7})
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteOrderHandler_NoContent(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/api/orders/{id}", handlers.DeleteOrderHandler(testLogger(), &fakeOrderService{}))

	req := httptest.NewRequest("DELETE", "/api/orders/1", nil)
	req = authRequest(req, jwtmiddleware.Identity{UserID: 7})
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCreateProductHandler_Success(t *testing.T) {
	product := &models.Product{ID: 1, Name: "Клавиатура", Price: decimal.RequireFromString("10.00")}
	handler := handlers.CreateProductHandler(testLogger(), &fakeCatalogService{product: product})

	reqBody := `{"name": "Клавиатура", "price": "10.00"}`
	req := httptest.NewRequest("POST", "/api/products", bytes.NewBufferString(reqBody))
	req = authRequest(req, jwtmiddleware.Identity{UserID: 1, IsStaff: true})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp models.Product
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Клавиатура", resp.Name)
}

func TestCreateProductHandler_Forbidden(t *testing.T) {
	handler := handlers.CreateProductHandler(testLogger(), &fakeCatalogService{})

	reqBody := `{"name": "Клавиатура", "price": "10.00"}`
	req := httptest.NewRequest("POST", "/api/products", bytes.NewBufferString(reqBody))
	req = authRequest(req, jwtmiddleware.Identity{UserID: 7})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code, "non-staff must not create products")
}

func TestCreateProductHandler_ValidationError(t *testing.T) {
	handler := handlers.CreateProductHandler(testLogger(), &fakeCatalogService{})

	// нет обязательного имени
	reqBody := `{"price": "10.00"}`
	req := httptest.NewRequest("POST", "/api/products", bytes.NewBufferString(reqBody))
	req = authRequest(req, jwtmiddleware.Identity{UserID: 1, IsStaff: true})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListProductsHandler_BadPriceFilter(t *testing.T) {
	handler := handlers.ListProductsHandler(testLogger(), &fakeCatalogService{})

	req := httptest.NewRequest("GET", "/api/products?price_from=abc", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListProductsHandler_Public(t *testing.T) {
	products := []*models.Product{{ID: 1, Name: "Клавиатура", Price: decimal.RequireFromString("10.00")}}
	handler := handlers.ListProductsHandler(testLogger(), &fakeCatalogService{products: products})

	// каталог доступен без аутентификации
	req := httptest.NewRequest("GET", "/api/products", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp []*models.Product
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp, 1)
}

func TestCreateReviewHandler_Duplicate(t *testing.T) {
	handler := handlers.CreateReviewHandler(testLogger(), &fakeReviewService{err: service.ErrAlreadyReviewed})

	reqBody := `{"product_id": 1, "stars": 5}`
	req := httptest.NewRequest("POST", "/api/product_reviews", bytes.NewBufferString(reqBody))
	req = authRequest(req, jwtmiddleware.Identity{UserID: 7})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "duplicate review maps to 400")
}

func TestCreateReviewHandler_BadStars(t *testing.T) {
	handler := handlers.CreateReviewHandler(testLogger(), &fakeReviewService{})

	reqBody := `{"product_id": 1, "stars": 6}`
	req := httptest.NewRequest("POST", "/api/product_reviews", bytes.NewBufferString(reqBody))
	req = authRequest(req, jwtmiddleware.Identity{UserID: 7})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
