package syncsvc

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestRefreshEndpoint(t *testing.T) {
	e, repo, mc := setupEngine(t)
	seedHub(mc)

	r := mux.NewRouter()
	NewHTTP(e).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if _, err := repo.HubByCode("HUB-1"); err != nil {
		t.Errorf("hub not mirrored after refresh: %v", err)
	}
}

func TestRefreshEndpointRemoteDown(t *testing.T) {
	e, _, _ := setupEngine(t)
	e.remote = failingClient{}

	r := mux.NewRouter()
	NewHTTP(e).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}
