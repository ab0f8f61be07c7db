package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogServer is a tiny stateful fake of the company/product endpoints.
func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	var nextID uint
	companies := map[uint]*Company{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/companies", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			out := make([]Company, 0, len(companies))
			for _, c := range companies {
				out = append(out, *c)
			}
			writeJSON(w, http.StatusOK, out)
		case http.MethodPost:
			var in CompanyInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			if in.CompanyName == "conflito" {
				writeJSON(w, http.StatusConflict, map[string]string{"detail": "Empresa já cadastrada"})
				return
			}
			nextID++
			c := &Company{ID: nextID, UserID: 1, CompanyName: in.CompanyName, MapaRegistration: in.MapaRegistration}
			companies[c.ID] = c
			writeJSON(w, http.StatusCreated, c)
		}
	})
	mux.HandleFunc("/api/user/companies/1", func(w http.ResponseWriter, r *http.Request) {
		c, ok := companies[1]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Empresa não encontrada"})
			return
		}
		switch r.Method {
		case http.MethodPatch:
			var in CompanyUpdate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			if in.CompanyName != nil {
				c.CompanyName = *in.CompanyName
			}
			writeJSON(w, http.StatusOK, c)
		case http.MethodDelete:
			delete(companies, 1)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/api/user/catalog", func(w http.ResponseWriter, r *http.Request) {
		out := Catalog{TotalCompanies: len(companies)}
		for _, c := range companies {
			out.Companies = append(out.Companies, *c)
			out.TotalProducts += len(c.Products)
		}
		writeJSON(w, http.StatusOK, out)
	})
	return httptest.NewServer(mux)
}

func TestCompanyCRUDRoundtrip(t *testing.T) {
	srv := catalogServer(t)
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	created, err := c.CreateCompany(ctx, CompanyInput{
		CompanyName:      "Fertilizantes Parana LTDA",
		MapaRegistration: "PR-00551",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), created.ID)

	list, err := c.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Fertilizantes Parana LTDA", list[0].CompanyName)

	novo := "Fertilizantes Parana SA"
	updated, err := c.UpdateCompany(ctx, 1, CompanyUpdate{CompanyName: &novo})
	require.NoError(t, err)
	assert.Equal(t, novo, updated.CompanyName)

	cat, err := c.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.TotalCompanies)

	require.NoError(t, c.DeleteCompany(ctx, 1))
	list, err = c.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateCompanyValidatesLocally(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.CreateCompany(context.Background(), CompanyInput{MapaRegistration: "PR-1"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "Nome da empresa")

	_, err = c.CreateCompany(context.Background(), CompanyInput{CompanyName: "X"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Registro MAPA")

	_, err = c.CreateProduct(context.Background(), ProductInput{ProductName: "Y", MapaRegistration: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Empresa é obrigatória")

	_, err = c.CreateUser(context.Background(), UserInput{Email: "a@b.c", FullName: "A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Senha")

	// nothing ever reached the network
	assert.Zero(t, hits.Load())
}

func TestCreateCompanyConflictSurfacesDetail(t *testing.T) {
	srv := catalogServer(t)
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.CreateCompany(context.Background(), CompanyInput{
		CompanyName:      "conflito",
		MapaRegistration: "PR-1",
	})
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Empresa já cadastrada", apiErr.DetailText())
}

func TestProductCRUDPaths(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var in ProductInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			writeJSON(w, http.StatusCreated, Product{ID: 9, CompanyID: in.CompanyID, ProductName: in.ProductName})
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []Product{{ID: 9, ProductName: "ADUBO"}})
		}
	})
	mux.HandleFunc("/api/user/products/9", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			writeJSON(w, http.StatusOK, Product{ID: 9, ProductName: "ADUBO GRANULADO"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	created, err := c.CreateProduct(ctx, ProductInput{CompanyID: 1, ProductName: "ADUBO", MapaRegistration: "6.1"})
	require.NoError(t, err)
	assert.Equal(t, uint(9), created.ID)

	list, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	nome := "ADUBO GRANULADO"
	updated, err := c.UpdateProduct(ctx, 9, ProductUpdate{ProductName: &nome})
	require.NoError(t, err)
	assert.Equal(t, nome, updated.ProductName)

	require.NoError(t, c.DeleteProduct(ctx, 9))
}

func TestAdminUsersCRUDPaths(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/users", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []UserProfile{{ID: 2, Email: "u@x.test"}})
		case http.MethodPost:
			writeJSON(w, http.StatusCreated, UserProfile{ID: 3, Email: "novo@x.test"})
		}
	})
	mux.HandleFunc("/api/admin/users/3", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			writeJSON(w, http.StatusOK, UserProfile{ID: 3, IsActive: false})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	list, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	created, err := c.CreateUser(ctx, UserInput{Email: "novo@x.test", Password: "Senha123!", FullName: "Novo"})
	require.NoError(t, err)
	assert.Equal(t, uint(3), created.ID)

	inactive := false
	updated, err := c.UpdateUser(ctx, 3, UserUpdate{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	require.NoError(t, c.DeleteUser(ctx, 3))
}
