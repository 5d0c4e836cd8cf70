package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/notify"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name         string
	PhoneNumber  string
	Email        *string
	CustomerType string
}

// CreateCustomer creates a new customer. Phone numbers are unique.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.PhoneNumber)
	if name == "" || phone == "" {
		return nil, apperror.NewValidationMessage("Name and phone number are required")
	}

	customerType := input.CustomerType
	if customerType == "" {
		customerType = entity.CustomerTypeNew
	}
	if !entity.IsValidCustomerType(customerType) {
		return nil, apperror.NewValidationMessage("customer_type must be new, regular or vip")
	}

	existing, err := s.customerRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("A customer with this phone number already exists")
	}

	customer := &entity.Customer{
		Name:         name,
		PhoneNumber:  phone,
		Email:        input.Email,
		CustomerType: customerType,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	notify.Success(ctx, "Customer "+customer.Name+" added")
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers matching search and customerType
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search, customerType string) (*pagination.PaginatedResult[entity.Customer], error) {
	params.Validate()
	customers, total, err := s.customerRepo.List(ctx, repository.CustomerFilterParams{
		Pagination:   params,
		Search:       strings.TrimSpace(search),
		CustomerType: customerType,
	})
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(customers, params, total), nil
}

// UpdateCustomerInput is a partial update; nil fields are left unchanged
type UpdateCustomerInput struct {
	Name         *string
	PhoneNumber  *string
	Email        *string
	CustomerType *string
}

// UpdateCustomer updates a customer's profile. Visit stats are not editable.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperror.NewValidationMessage("Name and phone number are required")
		}
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.PhoneNumber != nil {
		phone := strings.TrimSpace(*input.PhoneNumber)
		if phone == "" {
			return nil, apperror.NewValidationMessage("Name and phone number are required")
		}
		if phone != customer.PhoneNumber {
			existing, err := s.customerRepo.GetByPhone(ctx, phone)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, apperror.NewConflictError("A customer with this phone number already exists")
			}
		}
		customer.PhoneNumber = phone
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.CustomerType != nil {
		if !entity.IsValidCustomerType(*input.CustomerType) {
			return nil, apperror.NewValidationMessage("customer_type must be new, regular or vip")
		}
		customer.CustomerType = *input.CustomerType
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}
