package syncsvc

import (
	"encoding/json"
	"net/http"

	"hearth/internal/models"

	"github.com/gorilla/mux"
)

type HTTP struct {
	engine *Engine
}

func NewHTTP(engine *Engine) *HTTP { return &HTTP{engine: engine} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/refresh", h.refresh).Methods(http.MethodPost, http.MethodGet)
}

// refresh запускает внеплановый проход синхронизации и ждёт его конца.
func (h *HTTP) refresh(w http.ResponseWriter, req *http.Request) {
	if ok := h.engine.RunSyncPass(req.Context()); !ok {
		models.WriteProblem(w, http.StatusBadGateway, "sync failed",
			"remote hub listing is unavailable", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"detail": "sync pass completed",
	})
}
