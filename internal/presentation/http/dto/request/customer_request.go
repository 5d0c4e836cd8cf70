package request

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name         string  `json:"name"`
	PhoneNumber  string  `json:"phone_number"`
	Email        *string `json:"email" binding:"omitempty,email"`
	CustomerType string  `json:"customer_type" binding:"omitempty,oneof=new regular vip"`
}

// UpdateCustomerRequest represents a partial customer update
type UpdateCustomerRequest struct {
	Name         *string `json:"name"`
	PhoneNumber  *string `json:"phone_number"`
	Email        *string `json:"email" binding:"omitempty,email"`
	CustomerType *string `json:"customer_type" binding:"omitempty,oneof=new regular vip"`
}

// CustomerFilterRequest represents customer list filters
type CustomerFilterRequest struct {
	Search       string `form:"search"`
	CustomerType string `form:"customer_type"`
}
