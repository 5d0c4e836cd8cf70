package request

// CreateEmployeeRequest represents an employee creation request
type CreateEmployeeRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
	Password    string  `json:"password"`
	Role        string  `json:"role" binding:"omitempty,oneof=admin staff"`
	EmployeeID  string  `json:"employee_id"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateEmployeeRequest represents a partial employee update. The email
// cannot be changed.
type UpdateEmployeeRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
	Password    *string `json:"password"`
	Role        *string `json:"role" binding:"omitempty,oneof=admin staff"`
	EmployeeID  *string `json:"employee_id"`
	IsActive    *bool   `json:"is_active"`
}

// EmployeeFilterRequest represents employee list filters
type EmployeeFilterRequest struct {
	Search string `form:"search"`
}
