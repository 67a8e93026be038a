package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopcore/retail-backend/internal/models"
)

func TestUpdateCustomerPartial(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer("alice")

	rec, c := env.doJSON(http.MethodPut, "/", map[string]interface{}{
		"email": "alice@example.com",
		"city":  "Utrecht",
	})
	c.SetParamNames("id")
	c.SetParamValues(itoa(customer.ID))
	require.NoError(t, env.Customers.UpdateCustomer(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored models.Customer
	require.NoError(t, env.DB.First(&stored, customer.ID).Error)
	require.Equal(t, "alice@example.com", stored.Email)
	require.Equal(t, "Utrecht", stored.City)
	// Untouched fields keep their values.
	require.Equal(t, "Test", stored.FirstName)
	require.Equal(t, "Customer", stored.LastName)

	var resp customerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "alice", resp.Username)
}

func TestUpdateCustomerValidation(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer("alice")

	rec, c := env.doJSON(http.MethodPut, "/", map[string]interface{}{
		"first_name": "",
	})
	c.SetParamNames("id")
	c.SetParamValues(itoa(customer.ID))
	require.NoError(t, env.Customers.UpdateCustomer(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, c = env.doJSON(http.MethodPut, "/", map[string]interface{}{
		"email": "x@example.com",
	})
	c.SetParamNames("id")
	c.SetParamValues("999")
	require.NoError(t, env.Customers.UpdateCustomer(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDashboardCounts(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("admin1", models.RoleAdmin)
	env.createUser("admin2", models.RoleAdmin)
	env.createCustomer("shopper")

	rec, c := env.doJSON(http.MethodGet, "/api/v1/admin/dashboard", nil)
	require.NoError(t, env.Admin.GetDashboard(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats dashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, int64(3), stats.TotalUsers)
	require.Equal(t, int64(2), stats.TotalAdmins)
	require.Equal(t, int64(1), stats.TotalCustomers)
}
