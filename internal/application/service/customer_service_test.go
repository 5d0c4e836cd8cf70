package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/testutil"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/notify"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomer(t *testing.T) {
	db := testutil.NewMemDB()
	svc := NewCustomerService(db.Customers())
	notes := notify.NewCollector(nil)
	ctx := notify.WithNotifier(context.Background(), notes)

	c, err := svc.CreateCustomer(ctx, &CreateCustomerInput{Name: "  Meera ", PhoneNumber: "9811111111"})
	require.NoError(t, err)
	assert.Equal(t, "Meera", c.Name)
	assert.Equal(t, entity.CustomerTypeNew, c.CustomerType)
	assert.Equal(t, 0, c.TotalVisits)
	assert.Equal(t, []notify.Notification{{Kind: notify.KindSuccess, Message: "Customer Meera added"}}, notes.Items())

	_, err = svc.CreateCustomer(ctx, &CreateCustomerInput{Name: "Other", PhoneNumber: "9811111111"})
	assert.True(t, apperror.IsCode(err, http.StatusConflict))

	_, err = svc.CreateCustomer(ctx, &CreateCustomerInput{Name: "", PhoneNumber: "1"})
	assert.EqualError(t, err, "Name and phone number are required")

	_, err = svc.CreateCustomer(ctx, &CreateCustomerInput{Name: "X", PhoneNumber: "2", CustomerType: "gold"})
	assert.True(t, apperror.IsCode(err, http.StatusUnprocessableEntity))
}

func TestListCustomersFiltersAndPaginates(t *testing.T) {
	db := testutil.NewMemDB()
	svc := NewCustomerService(db.Customers())
	db.AddCustomer(entity.Customer{Name: "Anita", PhoneNumber: "9000000001", CustomerType: entity.CustomerTypeVIP})
	db.AddCustomer(entity.Customer{Name: "Bina", PhoneNumber: "9000000002"})
	db.AddCustomer(entity.Customer{Name: "Chitra", PhoneNumber: "9100000003"})

	res, err := svc.ListCustomers(context.Background(), &pagination.PaginationParams{Page: 1, PerPage: 2}, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Pagination.Total)
	assert.True(t, res.Pagination.HasNext)
	assert.Len(t, res.Items, 2)

	res, err = svc.ListCustomers(context.Background(), &pagination.PaginationParams{Page: 1, PerPage: 15}, "9100", "")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Chitra", res.Items[0].Name)

	res, err = svc.ListCustomers(context.Background(), &pagination.PaginationParams{Page: 1, PerPage: 15}, "", entity.CustomerTypeVIP)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Anita", res.Items[0].Name)
}

func TestUpdateCustomer(t *testing.T) {
	db := testutil.NewMemDB()
	svc := NewCustomerService(db.Customers())
	a := db.AddCustomer(entity.Customer{Name: "Anita", PhoneNumber: "9000000001"})
	db.AddCustomer(entity.Customer{Name: "Bina", PhoneNumber: "9000000002"})

	vip := entity.CustomerTypeVIP
	updated, err := svc.UpdateCustomer(context.Background(), a.ID, &UpdateCustomerInput{CustomerType: &vip})
	require.NoError(t, err)
	assert.Equal(t, entity.CustomerTypeVIP, updated.CustomerType)
	assert.Equal(t, "Anita", updated.Name)

	taken := "9000000002"
	_, err = svc.UpdateCustomer(context.Background(), a.ID, &UpdateCustomerInput{PhoneNumber: &taken})
	assert.True(t, apperror.IsCode(err, http.StatusConflict))

	_, err = svc.GetCustomer(context.Background(), a.ID)
	require.NoError(t, err)
}
