package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"comanda/internal/domain"
)

type mockRepository struct {
	FindByIDsFunc func(ctx context.Context, ids []uint) ([]domain.Product, error)
}

func (m *mockRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Product, error) {
	return m.FindByIDsFunc(ctx, ids)
}

func catalogOf(products ...domain.Product) *mockRepository {
	return &mockRepository{
		FindByIDsFunc: func(ctx context.Context, ids []uint) ([]domain.Product, error) {
			var out []domain.Product
			for _, p := range products {
				for _, id := range ids {
					if p.ID == id {
						out = append(out, p)
					}
				}
			}
			return out, nil
		},
	}
}

var (
	burger = domain.Product{ID: 1, Name: "Burger", Price: decimal.RequireFromString("32"), Origin: domain.OriginKitchen, IsActive: true}
	beer   = domain.Product{ID: 2, Name: "Beer", Price: decimal.RequireFromString("12.5"), Origin: domain.OriginBar, IsActive: true}
)

func TestService_Lookup(t *testing.T) {
	svc := NewService(catalogOf(burger, beer))

	found, notFound, err := svc.Lookup(context.Background(), []uint{1, 2, 3})
	require.NoError(t, err)

	assert.Len(t, found, 2)
	assert.Equal(t, []uint{3}, notFound)
}

func TestService_Lookup_RepositoryError(t *testing.T) {
	svc := NewService(&mockRepository{
		FindByIDsFunc: func(ctx context.Context, ids []uint) ([]domain.Product, error) {
			return nil, errors.New("db down")
		},
	})

	_, _, err := svc.Lookup(context.Background(), []uint{1})
	assert.Error(t, err)
}

func TestController_SearchProducts(t *testing.T) {
	ctrl := NewController(NewSearchUseCase(NewService(catalogOf(burger, beer))), zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/catalog/search", strings.NewReader(`{"productIds":[2,9]}`))
	ctrl.HandleSearchProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchProductsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Beer", resp.Products[0].Name)
	assert.Equal(t, "12.50", resp.Products[0].Price)
	assert.Equal(t, "bar", resp.Products[0].Origin)
	assert.Equal(t, []uint{9}, resp.NotFound)
}

func TestController_SearchProducts_Validation(t *testing.T) {
	ctrl := NewController(NewSearchUseCase(NewService(catalogOf())), zap.NewNop())

	for _, body := range []string{`{}`, `{"productIds":[0]}`, `not json`} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/catalog/search", strings.NewReader(body))
		ctrl.HandleSearchProducts(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}
