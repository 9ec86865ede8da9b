package monitor

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// healthResponse — тело /healthz.
type healthResponse struct {
	Status string  `json:"status"`
	Last   *Status `json:"last,omitempty"`
}

// Router возвращает маршруты /metrics и /healthz.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", m.opts.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", m.handleHealthz).Methods(http.MethodGet)
	return r
}

// handleHealthz отвечает 200 до первой итерации и после успешной,
// 503 после проваленной.
func (m *Monitor) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "starting"}
	code := http.StatusOK
	if last, ok := m.Last(); ok {
		resp.Last = &last
		resp.Status = "ok"
		if !last.OK {
			resp.Status = "failing"
			code = http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp) //nolint:errcheck // клиент мог отключиться
}
