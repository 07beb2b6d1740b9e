package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/minimalprod/erpctl/internal/cli/app"
	"github.com/minimalprod/erpctl/internal/cli/session"
	"github.com/minimalprod/erpctl/internal/config"
	"github.com/minimalprod/erpctl/internal/erp"
)

// fakeERP is a minimal ERP API: admin/admin123 logs in with token "tok-1".
type fakeERP struct {
	mu      sync.Mutex
	revoked map[string]bool
	hits    atomic.Int32
}

func newFakeERP() *fakeERP {
	return &fakeERP{revoked: map[string]bool{}}
}

func (f *fakeERP) revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[token] = true
}

func (f *fakeERP) authorized(r *http.Request) bool {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	defer f.mu.Unlock()
	return token == "tok-1" && !f.revoked[token]
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeERP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)

	if r.URL.Path == "/api/auth/login" {
		var req struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "admin" || req.Password != "admin123" {
			respond(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		respond(w, http.StatusOK, session.LoginResponse{
			Token:    "tok-1",
			Username: "admin",
			Roles:    []string{"ADMIN"},
			Policies: []session.Policy{{Tag: "maquinas", Permission: "read"}},
		})
		return
	}

	if !f.authorized(r) {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		return
	}

	switch r.URL.Path {
	case "/api/auth/logout":
		f.revoke("tok-1")
		w.WriteHeader(http.StatusNoContent)
	case "/api/auth/me":
		respond(w, http.StatusOK, session.User{Username: "admin", Roles: []string{"ADMIN"}})
	case "/api/maquinas":
		respond(w, http.StatusOK, []erp.Machine{{ID: "m1", Code: "MAQ-001", Name: "Torno CNC"}})
	case "/api/maquinas/m1/depreciacion/grafico":
		respond(w, http.StatusOK, []erp.DepreciationPoint{
			{Year: 2024, BookValue: 1000, DepreciationValue: 0, AccumulatedValue: 0, Kind: erp.DepreciationActual},
			{Year: 2025, BookValue: 800, DepreciationValue: 200, AccumulatedValue: 200, Kind: erp.DepreciationProjected},
		})
	case "/api/maquinas/empty/depreciacion/grafico":
		respond(w, http.StatusOK, []erp.DepreciationPoint{})
	case "/api/reportes/costos/pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="costos.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.4 report"))
	case "/api/reportes/vacio/pdf":
		w.WriteHeader(http.StatusOK)
	case "/graphql":
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		respond(w, http.StatusOK, map[string]any{"data": map[string]any{"query": req.Query, "variables": req.Variables}})
	default:
		http.NotFound(w, r)
	}
}

// newTestApp builds an app against a fake ERP with in-memory storage
func newTestApp(t *testing.T) (*app.App, *fakeERP, *session.MemoryStorage) {
	t.Helper()

	erpServer := newFakeERP()
	server := httptest.NewServer(erpServer)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Client: config.ClientConfig{APIURL: server.URL, Storage: "file", Timeout: 5 * time.Second},
	}
	storage := session.NewMemoryStorage()

	a, err := app.New(cfg, app.Options{Storage: storage, Version: "test"}, zerolog.Nop())
	require.NoError(t, err)

	return a, erpServer, storage
}
