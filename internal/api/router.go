package api

import "net/http"

func NewRouter(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /v1/packets", h.ListPackets)
	mux.HandleFunc("GET /v1/packets/{id}", h.GetPacket)
	mux.HandleFunc("GET /v1/packets/{id}/outputs", h.GetOutputs)
	mux.HandleFunc("POST /v1/packets/{id}/decision", h.PostDecision)
	return mux
}
