package handler

import (
	"encoding/json"
	"net/http"
)

// HistoryAPIHandler returns the caller's stored results, newest first.
func HistoryAPIHandler(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, env, env.Store(r).LoadHistory(), http.StatusOK)
	}
}

// LastResultAPIHandler returns the session's last result, 404 when absent.
func LastResultAPIHandler(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := env.Store(r).GetLastResult()
		if !ok {
			respondJSON(w, env, map[string]string{"error": "no result"}, http.StatusNotFound)
			return
		}
		respondJSON(w, env, item, http.StatusOK)
	}
}

func respondJSON(w http.ResponseWriter, env *Env, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		env.Logger.Error("Error encoding JSON response: %v", err)
	}
}
