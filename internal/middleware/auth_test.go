package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentist-sync/internal/auth"
)

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	secretary, err := issuer.Generate("u1", auth.RoleSecretary)
	if err != nil {
		t.Fatal(err)
	}
	doctor, err := issuer.Generate("u2", auth.RoleDoctor)
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	g := r.Group("/", AuthMiddleware(issuer))
	g.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userID")+":"+c.GetString("userRole"))
	})
	g.DELETE("/thing", RequireRole(auth.RoleAdmin, auth.RoleDoctor), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
		body   string
	}{
		{"no header", http.MethodGet, "/me", "", http.StatusUnauthorized, ""},
		{"garbage token", http.MethodGet, "/me", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid token", http.MethodGet, "/me", "Bearer " + secretary, http.StatusOK, "u1:secretary"},
		{"role denied", http.MethodDelete, "/thing", "Bearer " + secretary, http.StatusForbidden, ""},
		{"role allowed", http.MethodDelete, "/thing", "Bearer " + doctor, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("code = %d, want %d", w.Code, tt.want)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}
