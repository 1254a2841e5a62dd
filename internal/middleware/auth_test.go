package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func TestRoleAllowed(t *testing.T) {
	allowed := []string{"staff", "admin"}

	if !roleAllowed("staff", allowed) {
		t.Fatal("staff should be allowed")
	}
	if !roleAllowed("admin", allowed) {
		t.Fatal("admin should be allowed")
	}
	if roleAllowed("customer", allowed) {
		t.Fatal("customer must be rejected")
	}
	if roleAllowed("", allowed) {
		t.Fatal("missing role must be rejected")
	}
}

func signedToken(t *testing.T, secret, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "64b0c0ffee0000000000aaaa",
		"role":   role,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func guardStatus(t *testing.T, guard gin.HandlerFunc, authHeader string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}

	guard(c)
	if c.IsAborted() {
		return w.Code
	}
	return http.StatusOK
}

func TestStaffAuthAcceptsStaffRole(t *testing.T) {
	const secret = "test-secret"
	header := "Bearer " + signedToken(t, secret, "staff")

	if status := guardStatus(t, StaffAuth(secret), header); status != http.StatusOK {
		t.Fatalf("expected staff token to pass, got %d", status)
	}
}

func TestStaffAuthRejectsCustomerRole(t *testing.T) {
	const secret = "test-secret"
	header := "Bearer " + signedToken(t, secret, "customer")

	if status := guardStatus(t, StaffAuth(secret), header); status != http.StatusForbidden {
		t.Fatalf("expected 403 for customer role, got %d", status)
	}
}

func TestAuthGuardRejectsMissingToken(t *testing.T) {
	if status := guardStatus(t, StaffAuth("test-secret"), ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
}
