package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// MetricsHandler отдает метрики хаба в JSON
func MetricsHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics := h.Metrics()
		metrics["instance_id"] = h.cfg.InstanceID
		metrics["clustered"] = h.cfg.Clustered
		metrics["rooms"] = h.RoomCount()
		metrics["generated_at"] = time.Now().Format(time.RFC3339)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(metrics); err != nil {
			log.Printf("Error encoding WebSocket metrics: %v", err)
		}
	}
}

// HealthCheckHandler сообщает, работает ли хаб
func HealthCheckHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		select {
		case <-h.done:
			status, code = "stopped", http.StatusServiceUnavailable
		default:
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
