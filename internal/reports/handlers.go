package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"hearth/internal/models"

	"github.com/gorilla/mux"
)

const (
	defaultTopLimit = 5
	maxTopLimit     = 20
)

type HTTP struct{ svc *Service }

func NewHTTP(svc *Service) *HTTP { return &HTTP{svc: svc} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	// user-scoped
	api.HandleFunc("/users/{userID}/summary", h.summary).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/top-consumers", h.topConsumers).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/hubs", h.userHubs).Methods(http.MethodGet)

	// hub-scoped
	api.HandleFunc("/hubs/{hubCode}/energy", h.hubEnergy).Methods(http.MethodGet)
	api.HandleFunc("/hubs/{hubCode}/admin-energy", h.adminHubEnergy).Methods(http.MethodGet)
	api.HandleFunc("/hubs/{hubCode}/live", h.liveEnergy).Methods(http.MethodGet)
	api.HandleFunc("/hubs/{hubCode}/devices", h.hubDevices).Methods(http.MethodGet)
	api.HandleFunc("/hubs/{hubCode}/rooms", h.hubRooms).Methods(http.MethodGet)
	api.HandleFunc("/hubs/{hubCode}/daily", h.hubDaily).Methods(http.MethodGet)

	// room-scoped
	api.HandleFunc("/rooms/{roomID}/energy", h.roomEnergy).Methods(http.MethodGet)

	// passthrough к удалённым коллекциям
	api.HandleFunc("/remote/{collection}", h.remoteCollection).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeSvcError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		models.WriteProblem(w, http.StatusNotFound, "not found", err.Error(), nil)
	case errors.Is(err, ErrWrongHomeType):
		models.WriteProblem(w, http.StatusForbidden, "wrong home type", err.Error(), nil)
	case errors.Is(err, ErrRemoteUnavailable):
		models.WriteProblem(w, http.StatusBadGateway, "remote unavailable", err.Error(), nil)
	default:
		models.WriteProblem(w, http.StatusInternalServerError, "internal error", err.Error(), nil)
	}
}

// viewParam нормализует ?view=; всё кроме real трактуется как simulated.
func viewParam(r *http.Request) string {
	if r.URL.Query().Get("view") == ViewReal {
		return ViewReal
	}
	return ViewSimulated
}

func (h *HTTP) summary(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.EnergySummary(mux.Vars(r)["userID"])
	if err != nil {
		writeSvcError(w, err)
		return
	}
	writeJSON(w, out)
}

func (h *HTTP) topConsumers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period := q.Get("period")
	if period == "" {
		period = "daily"
	}

	limit := defaultTopLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			models.WriteProblem(w, http.StatusBadRequest, "bad request", "limit must be an integer", nil)
			return
		}
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	rows, err := h.svc.TopConsumers(mux.Vars(r)["userID"], period, limit)
	if err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "bad request", err.Error(), nil)
		return
	}
	writeJSON(w, map[string]any{
		"user_id": mux.Vars(r)["userID"],
		"period":  period,
		"devices": rows,
	})
}

func (h *HTTP) userHubs(w http.ResponseWriter, r *http.Request) {
	hubs, err := h.svc.UserHubs(mux.Vars(r)["userID"])
	if err != nil {
		writeSvcError(w, err)
		return
	}
	writeJSON(w, hubs)
}

func (h *HTTP) hubEnergy(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.HubEnergyView(mux.Vars(r)["hubCode"], viewParam(r))
	if err != nil {
		writeSvcError(w, err)
		return
	}
	writeJSON(w, out)
}

func (h *HTTP) adminHubEnergy(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.AdminHubEnergyView(r.Context(), mux.Vars(r)["hubCode"])
	if err != nil {
		writeSvcError(w, err)
		return
	}
	writeJSON(w, out)
}

func (h *HTTP) liveEnergy(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.HubLiveEnergy(r.Context(), mux.Vars(r)["hubCode"])
	if err != nil {
		writeSvcError(w, err)
		return
	}
	writeJSON(w, out)
}

func (h *HTTP) hubDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.svc.HubDevices(mux.Vars(r)["hubCode"])
	if err != nil {
		writeSvcError(w, err)
		return
	}
	writeJSON(w, devices)
}

func (h *HTTP) hubRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.svc.HubRooms(mux.Vars(r)["hubCode"])
	if err != nil {
		writeSvcError(w, err)
		return
	}
	writeJSON(w, rooms)
}

func (h *HTTP) hubDaily(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.HubDailyEnergy(mux.Vars(r)["hubCode"], r.URL.Query().Get("date"))
	if err != nil {
		writeSvcError(w, err)
		return
	}
	writeJSON(w, out)
}

func (h *HTTP) roomEnergy(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.RoomEnergyView(mux.Vars(r)["roomID"], viewParam(r))
	if err != nil {
		writeSvcError(w, err)
		return
	}
	writeJSON(w, out)
}

func (h *HTTP) remoteCollection(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.RemoteCollection(r.Context(), mux.Vars(r)["collection"])
	if err != nil {
		writeSvcError(w, err)
		return
	}
	writeJSON(w, docs)
}
