package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Company mirrors one catalog company row.
type Company struct {
	ID               uint      `json:"id"`
	UserID           uint      `json:"user_id"`
	CompanyName      string    `json:"company_name"`
	MapaRegistration string    `json:"mapa_registration"`
	CreatedAt        string    `json:"created_at"`
	UpdatedAt        string    `json:"updated_at"`
	Products         []Product `json:"products,omitempty"`
}

// Product mirrors one catalog product row.
type Product struct {
	ID               uint    `json:"id"`
	CompanyID        uint    `json:"company_id"`
	ProductName      string  `json:"product_name"`
	MapaRegistration string  `json:"mapa_registration"`
	ProductReference *string `json:"product_reference,omitempty"`
}

// Catalog is the companies-with-products view plus totals.
type Catalog struct {
	TotalCompanies int       `json:"total_companies"`
	TotalProducts  int       `json:"total_products"`
	Companies      []Company `json:"companies"`
}

// ValidationError is a required-field failure caught before any request is
// made. The message is ready to show next to the form.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

type requiredField struct{ label, value string }

func requireFields(fields ...requiredField) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Message: fmt.Sprintf("%s é obrigatório", f.label)}
		}
	}
	return nil
}

type CompanyInput struct {
	CompanyName      string `json:"company_name"`
	MapaRegistration string `json:"mapa_registration"`
}

func (in CompanyInput) validate() error {
	return requireFields(
		requiredField{"Nome da empresa", in.CompanyName},
		requiredField{"Registro MAPA", in.MapaRegistration},
	)
}

// CompanyUpdate carries only the fields being changed.
type CompanyUpdate struct {
	CompanyName      *string `json:"company_name,omitempty"`
	MapaRegistration *string `json:"mapa_registration,omitempty"`
}

func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	var out []Company
	if err := c.getJSON(ctx, "/api/user/companies", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCompany(ctx context.Context, in CompanyInput) (*Company, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out Company
	if err := c.postJSON(ctx, "/api/user/companies", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCompany(ctx context.Context, id uint, in CompanyUpdate) (*Company, error) {
	var out Company
	if err := c.patchJSON(ctx, fmt.Sprintf("/api/user/companies/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCompany(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/api/user/companies/%d", id))
}

type ProductInput struct {
	CompanyID        uint    `json:"company_id"`
	ProductName      string  `json:"product_name"`
	MapaRegistration string  `json:"mapa_registration"`
	ProductReference *string `json:"product_reference,omitempty"`
}

func (in ProductInput) validate() error {
	if in.CompanyID == 0 {
		return &ValidationError{Message: "Empresa é obrigatória"}
	}
	return requireFields(
		requiredField{"Nome do produto", in.ProductName},
		requiredField{"Registro MAPA", in.MapaRegistration},
	)
}

type ProductUpdate struct {
	ProductName      *string `json:"product_name,omitempty"`
	MapaRegistration *string `json:"mapa_registration,omitempty"`
	ProductReference *string `json:"product_reference,omitempty"`
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.getJSON(ctx, "/api/user/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out Product
	if err := c.postJSON(ctx, "/api/user/products", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uint, in ProductUpdate) (*Product, error) {
	var out Product
	if err := c.patchJSON(ctx, fmt.Sprintf("/api/user/products/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/api/user/products/%d", id))
}

func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	var out Catalog
	if err := c.getJSON(ctx, "/api/user/catalog", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type UserInput struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    string  `json:"full_name"`
	CompanyName *string `json:"company_name,omitempty"`
	IsAdmin     bool    `json:"is_admin"`
}

func (in UserInput) validate() error {
	return requireFields(
		requiredField{"Email", in.Email},
		requiredField{"Senha", in.Password},
		requiredField{"Nome completo", in.FullName},
	)
}

type UserUpdate struct {
	FullName    *string `json:"full_name,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Password    *string `json:"password,omitempty"`
}

// ListUsers requires an administrator session.
func (c *Client) ListUsers(ctx context.Context) ([]UserProfile, error) {
	var out []UserProfile
	if err := c.getJSON(ctx, "/api/admin/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (*UserProfile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out UserProfile
	if err := c.postJSON(ctx, "/api/admin/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id uint, in UserUpdate) (*UserProfile, error) {
	var out UserProfile
	if err := c.patchJSON(ctx, fmt.Sprintf("/api/admin/users/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/api/admin/users/%d", id))
}

// IsValidation reports whether err is a local required-field failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
