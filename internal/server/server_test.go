package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimalprod/erpctl/internal/auth"
	"github.com/minimalprod/erpctl/internal/config"
	"github.com/minimalprod/erpctl/internal/erp"
	"github.com/minimalprod/erpctl/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		MockAPI: config.MockAPIConfig{
			DatabaseURL:  filepath.Join(t.TempDir(), "erp.sqlite"),
			Port:         8080,
			JWTSecret:    "test-secret-0123456789",
			AllowOrigins: []string{"http://localhost:3000"},
		},
	}
	s, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func do(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, s *Server, username, password string) string {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/auth/login", LoginRequest{Username: username, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "online")
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/auth/login", LoginRequest{Username: "admin", Password: "admin123"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.Username)
	assert.Equal(t, []string{"ADMIN"}, resp.Roles)
	assert.Contains(t, resp.Policies, PolicyDetail{Tag: "reportes", Permission: "read"})

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestLoginRejected(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "wrong1234"},
		{"inactive user", "pepe", "secret1234"},
		{"unknown user", "nobody", "admin123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/auth/login", LoginRequest{Username: tt.username, Password: tt.password}, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Invalid credentials", errorMessage(t, w))
			assert.NotContains(t, w.Body.String(), "token")
		})
	}
}

func TestLoginRequiresFields(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "admin", "admin123")

	w := do(t, s, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var user UserDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, []string{"ADMIN"}, user.Roles)
	assert.NotEmpty(t, user.Policies)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "Missing authorization header"},
		{"wrong scheme", "Basic abc", "Invalid authorization header format"},
		{"garbage token", "Bearer not-a-jwt", "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.want, errorMessage(t, w))
		})
	}
}

func TestExpiredToken(t *testing.T) {
	s := newTestServer(t)
	token, _, err := auth.GenerateToken("admin", []string{"ADMIN"}, time.Now().Add(-2*auth.TokenTTL))
	require.NoError(t, err)

	w := do(t, s, http.MethodGet, "/api/maquinas", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "admin", "admin123")
	other := login(t, s, "admin", "admin123")

	w := do(t, s, http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token revoked", errorMessage(t, w))

	// Only the logged out token is revoked
	w = do(t, s, http.MethodGet, "/api/auth/me", nil, other)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "admin", "admin123")

	require.NoError(t, s.db.Model(&models.User{}).Where("username = ?", "admin").Update("active", false).Error)

	w := do(t, s, http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User is inactive", errorMessage(t, w))
}

func TestResources(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "admin", "admin123")

	w := do(t, s, http.MethodGet, "/api/maquinas", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var machines []erp.Machine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machines))
	require.NotEmpty(t, machines)

	w = do(t, s, http.MethodGet, "/api/maquinas/m1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var machine erp.Machine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machine))
	assert.Equal(t, "MAQ-001", machine.Code)

	w = do(t, s, http.MethodGet, "/api/roles/1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ADMIN")

	w = do(t, s, http.MethodGet, "/api/maquinas/missing", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/reportes/dashboard", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var dash erp.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.Equal(t, 14.0, dash.Production.FinishedOrders)

	w = do(t, s, http.MethodGet, "/api/maquinas", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEveryRegistryResourceIsServed(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "admin", "admin123")

	for _, name := range erp.Names() {
		r, err := erp.Lookup(name)
		require.NoError(t, err)

		w := do(t, s, http.MethodGet, r.Path, nil, token)
		require.Equal(t, http.StatusOK, w.Code, r.Path)
		_, err = r.DecodeList(w.Body.Bytes())
		assert.NoError(t, err, r.Path)
	}
}

func TestAdminOnlyPaths(t *testing.T) {
	s := newTestServer(t)

	hash, err := auth.HashPassword("operario1")
	require.NoError(t, err)
	var role models.Role
	require.NoError(t, s.db.Where("name = ?", "OPERARIO").First(&role).Error)
	require.NoError(t, s.db.Create(&models.User{Username: "ana", PasswordHash: hash, Active: true, Roles: []models.Role{role}}).Error)

	token := login(t, s, "ana", "operario1")

	w := do(t, s, http.MethodGet, "/api/users", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", errorMessage(t, w))

	w = do(t, s, http.MethodGet, "/api/maquinas", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	admin := login(t, s, "admin", "admin123")
	w = do(t, s, http.MethodGet, "/api/users", nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDepreciationChart(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "admin", "admin123")
	s.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	w := do(t, s, http.MethodGet, "/api/maquinas/m1/depreciacion/grafico", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var points []erp.DepreciationPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	require.Len(t, points, 6)

	assert.Equal(t, 2022, points[0].Year)
	assert.Equal(t, 12000.0, points[0].BookValue)
	assert.Equal(t, 0.0, points[0].DepreciationValue)
	assert.Equal(t, erp.DepreciationActual, points[2].Kind)
	assert.Equal(t, erp.DepreciationProjected, points[3].Kind)
	assert.Equal(t, 2000.0, points[5].BookValue)
	assert.Equal(t, 10000.0, points[5].AccumulatedValue)

	w = do(t, s, http.MethodGet, "/api/maquinas/nope/depreciacion/grafico", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExports(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "admin", "admin123")

	w := do(t, s, http.MethodGet, "/api/reportes/costos-orden/pdf", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="costos-orden.pdf"`)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-1.4")))
	assert.True(t, bytes.HasSuffix(w.Body.Bytes(), []byte("%%EOF\n")))

	w = do(t, s, http.MethodGet, "/api/reportes/productividad/excel", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="productividad.csv"`)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("eficiencia,horasTrabajadas,ordenId,producto,unidadesProducidas\n")))
}

func TestPDFStringEscaping(t *testing.T) {
	assert.Equal(t, `a\(b\)\\`, pdfString(`a(b)\`))
	assert.Equal(t, `Producci\363n`, pdfString("Producción"))
	assert.Equal(t, "?", pdfString("€"))
}

func TestGraphQL(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "admin", "admin123")

	w := do(t, s, http.MethodPost, "/graphql", GraphQLRequest{Query: "{ maquinas { id } }", Variables: map[string]any{"id": "m1"}}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
			Viewer    string         `json:"viewer"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "{ maquinas { id } }", resp.Data.Query)
	assert.Equal(t, "m1", resp.Data.Variables["id"])
	assert.Equal(t, "admin", resp.Data.Viewer)

	w = do(t, s, http.MethodPost, "/graphql", GraphQLRequest{}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "query is required")

	w = do(t, s, http.MethodPost, "/graphql", GraphQLRequest{Query: "{ x }"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
