package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/testutil"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateServiceValidation(t *testing.T) {
	svc := NewCatalogService(testutil.NewMemDB().Catalog())
	ctx := context.Background()

	tests := map[string]struct {
		input   ServiceInput
		wantErr string
	}{
		"missing name":        {input: ServiceInput{MinPrice: ptr(dec("100"))}, wantErr: "Name and price are required"},
		"missing price":       {input: ServiceInput{Name: ptr("Cut")}, wantErr: "Name and price are required"},
		"negative price":      {input: ServiceInput{Name: ptr("Cut"), MinPrice: ptr(dec("-1"))}, wantErr: "price cannot be negative"},
		"max below min":       {input: ServiceInput{Name: ptr("Cut"), MinPrice: ptr(dec("100")), MaxPrice: ptr(dec("50"))}, wantErr: "max_price cannot be below min_price"},
		"negative duration":   {input: ServiceInput{Name: ptr("Cut"), MinPrice: ptr(dec("100")), DurationMinutes: ptr(-5)}, wantErr: "duration cannot be negative"},
		"valid with a range":  {input: ServiceInput{Name: ptr("Cut"), MinPrice: ptr(dec("100")), MaxPrice: ptr(dec("300"))}},
		"valid without range": {input: ServiceInput{Name: ptr("Shave"), MinPrice: ptr(dec("80"))}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			input := tc.input
			created, err := svc.CreateService(ctx, &input)
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				assert.True(t, apperror.IsCode(err, http.StatusUnprocessableEntity))
				return
			}
			require.NoError(t, err)
			assert.True(t, created.IsActive)
		})
	}
}

func TestListServicesActiveOnly(t *testing.T) {
	db := testutil.NewMemDB()
	svc := NewCatalogService(db.Catalog())
	db.AddService(entity.Service{Name: "Facial", MinPrice: dec("900"), IsActive: true})
	db.AddService(entity.Service{Name: "Perm", MinPrice: dec("1500"), IsActive: false})

	all, err := svc.ListServices(context.Background(), false, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListServices(context.Background(), true, "")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Facial", active[0].Name)
}

func TestProductsLowStock(t *testing.T) {
	db := testutil.NewMemDB()
	svc := NewCatalogService(db.Catalog())
	ctx := context.Background()

	gel, err := svc.CreateProduct(ctx, &ProductInput{Name: ptr("Gel"), Price: ptr(dec("80")), StockQuantity: ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, 10, gel.LowStockThreshold)

	_, err = svc.CreateProduct(ctx, &ProductInput{Name: ptr("Wax"), Price: ptr(dec("120")), StockQuantity: ptr(50)})
	require.NoError(t, err)

	low, err := svc.ListProducts(ctx, true, "", true)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Gel", low[0].Name)

	updated, err := svc.UpdateProduct(ctx, gel.ID, &ProductInput{StockQuantity: ptr(25)})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.StockQuantity)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(80)))

	low, err = svc.ListProducts(ctx, true, "", true)
	require.NoError(t, err)
	assert.Empty(t, low)

	_, err = svc.UpdateProduct(ctx, gel.ID, &ProductInput{StockQuantity: ptr(-1)})
	assert.True(t, apperror.IsCode(err, http.StatusUnprocessableEntity))
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	db := testutil.NewMemDB()
	svc := NewSettingsService(db.Settings())
	ctx := context.Background()

	s, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, s.DefaultGSTPercentage.Equal(entity.DefaultGSTPercentage))

	_, err = svc.UpdateSettings(ctx, &UpdateSettingsInput{DefaultGSTPercentage: ptr(dec("-5"))})
	assert.True(t, apperror.IsCode(err, http.StatusUnprocessableEntity))

	s, err = svc.UpdateSettings(ctx, &UpdateSettingsInput{BusinessName: ptr("Glow Studio"), DefaultGSTPercentage: ptr(dec("5"))})
	require.NoError(t, err)
	assert.Equal(t, "Glow Studio", s.BusinessName)

	stored, err := db.Settings().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Glow Studio", stored.BusinessName)
	assert.True(t, stored.DefaultGSTPercentage.Equal(dec("5")))
}
