// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/itemledger/itemledger/internal/model"

// CreateUserRequest represents the request body for registering a user.
// Pointer fields distinguish an absent field from an empty one.
type CreateUserRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

// UpdateUserRequest represents the request body for a partial user update.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// CreateItemRequest represents the request body for creating an item.
type CreateItemRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price"`
}

// UpdateItemRequest represents the request body for a partial item update.
type UpdateItemRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// RootResponse describes the service.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

// StatusResponse is the legacy liveness body.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code"`
}

// FieldError reports a missing required field.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return e.Field + ": field required"
}

// ToNewUser converts the request into store input.
func (r CreateUserRequest) ToNewUser() (model.NewUser, error) {
	if r.Email == nil {
		return model.NewUser{}, &FieldError{Field: "email"}
	}
	if r.FullName == nil {
		return model.NewUser{}, &FieldError{Field: "full_name"}
	}
	return model.NewUser{Email: *r.Email, FullName: *r.FullName}, nil
}

// ToPatch converts the request into a partial update.
func (r UpdateUserRequest) ToPatch() model.UserPatch {
	return model.UserPatch{Email: r.Email, FullName: r.FullName}
}

// ToNewItem converts the request into store input for ownerID.
func (r CreateItemRequest) ToNewItem(ownerID int64) (model.NewItem, error) {
	if r.Title == nil {
		return model.NewItem{}, &FieldError{Field: "title"}
	}
	if r.Price == nil {
		return model.NewItem{}, &FieldError{Field: "price"}
	}
	return model.NewItem{
		Title:       *r.Title,
		Description: r.Description,
		Price:       *r.Price,
		OwnerID:     ownerID,
	}, nil
}

// ToPatch converts the request into a partial update.
func (r UpdateItemRequest) ToPatch() model.ItemPatch {
	return model.ItemPatch{Title: r.Title, Description: r.Description, Price: r.Price}
}
