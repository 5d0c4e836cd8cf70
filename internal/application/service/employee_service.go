package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/notify"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
	"github.com/sangkips/salon-billing-api/pkg/utils"
)

const minPasswordLength = 6

// EmployeeService handles staff account management
type EmployeeService struct {
	userRepo   repository.UserRepository
	employeeID func() string
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(userRepo repository.UserRepository) *EmployeeService {
	return &EmployeeService{
		userRepo:   userRepo,
		employeeID: randomEmployeeID,
	}
}

func randomEmployeeID() string {
	return fmt.Sprintf("EMP%d", 1000+rand.Intn(9000))
}

// ListEmployees returns a page of employees, newest first
func (s *EmployeeService) ListEmployees(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.User], error) {
	params.Validate()
	users, total, err := s.userRepo.List(ctx, repository.UserFilterParams{
		Pagination: params,
		Search:     strings.TrimSpace(search),
	})
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(users, params, total), nil
}

// GetEmployee returns an employee by ID
func (s *EmployeeService) GetEmployee(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("Employee")
	}
	return user, nil
}

// CreateEmployeeInput represents the create employee input
type CreateEmployeeInput struct {
	Name        string
	Email       string
	PhoneNumber *string
	Password    string
	Role        string
	EmployeeID  string
	IsActive    *bool
}

// CreateEmployee adds a staff account. Emails are unique.
func (s *EmployeeService) CreateEmployee(ctx context.Context, input *CreateEmployeeInput) (*entity.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationMessage("Full name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperror.NewValidationMessage("Email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperror.NewValidationMessage("Password must be at least 6 characters")
	}

	role := input.Role
	if role == "" {
		role = entity.RoleStaff
	}
	if !entity.IsValidRole(role) {
		return nil, apperror.NewValidationMessage("role must be admin or staff")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("An employee with this email already exists")
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	employeeID := strings.TrimSpace(input.EmployeeID)
	if employeeID == "" {
		employeeID = s.employeeID()
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	user := &entity.User{
		Name:        name,
		Email:       email,
		PhoneNumber: trimmedOrNil(input.PhoneNumber),
		EmployeeID:  employeeID,
		Password:    hashed,
		Role:        role,
		IsActive:    active,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	notify.Success(ctx, "Employee added successfully!")
	return user, nil
}

// UpdateEmployeeInput is a partial update; nil fields are left unchanged.
// The email is fixed once the account exists.
type UpdateEmployeeInput struct {
	Name        *string
	PhoneNumber *string
	Password    *string
	Role        *string
	EmployeeID  *string
	IsActive    *bool
}

// UpdateEmployee updates an employee's profile. An empty password keeps the current one.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id uuid.UUID, input *UpdateEmployeeInput) (*entity.User, error) {
	user, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewValidationMessage("Full name is required")
		}
		user.Name = name
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = trimmedOrNil(input.PhoneNumber)
	}
	if input.Role != nil {
		if !entity.IsValidRole(*input.Role) {
			return nil, apperror.NewValidationMessage("role must be admin or staff")
		}
		user.Role = *input.Role
	}
	if input.EmployeeID != nil {
		user.EmployeeID = strings.TrimSpace(*input.EmployeeID)
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < minPasswordLength {
			return nil, apperror.NewValidationMessage("Password must be at least 6 characters")
		}
		hashed, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	notify.Success(ctx, "Employee updated successfully!")
	return user, nil
}

// DeleteEmployee soft deletes an employee. Nobody can delete their own account.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return apperror.NewConflictError("You cannot delete your own account")
	}
	user, err := s.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	name := user.Name
	if name == "" {
		name = "Employee"
	}
	notify.Success(ctx, name+" has been removed")
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
