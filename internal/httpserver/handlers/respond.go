package handlers

import (
	"encoding/json"
	"net/http"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	respondJSONStatus(w, http.StatusOK, v)
}

func respondJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondError writes the API error envelope {"detail": ...}. Detail is a
// string for business errors and a list of {msg} objects for field
// validation failures. Extra top-level fields can be attached (e.g.
// unregistered_entries on catalog errors).
func respondError(w http.ResponseWriter, status int, detail interface{}, extra ...map[string]interface{}) {
	body := map[string]interface{}{"detail": detail}
	for _, m := range extra {
		for k, v := range m {
			body[k] = v
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(body)
}
