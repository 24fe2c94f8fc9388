package presentation

import (
	"encoding/json"
	"net/http"

	"example.com/gateway/application"
	"example.com/gateway/domain"
)

type ReadingHandler struct {
	svc *application.ReadingService
}

func NewReadingHandler(svc *application.ReadingService) *ReadingHandler {
	return &ReadingHandler{svc: svc}
}

func (h *ReadingHandler) Get(w http.ResponseWriter, req *http.Request) {
	id := req.URL.Query().Get("id")
	reading, err := h.svc.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(reading)
}

func (h *ReadingHandler) Post(w http.ResponseWriter, req *http.Request) {
	var reading domain.Reading
	if err := json.NewDecoder(req.Body).Decode(&reading); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.Record(&reading); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
