package api

import (
	"encoding/json"
	"net/http"
)

// indexHandlerFn 服務主頁，列出可用端點。
func indexHandlerFn(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"service": "randcore",
		"endpoints": []string{
			"GET  /v1/draw",
			"POST /v1/draw",
			"POST /v1/sample",
			"POST /v1/run",
		},
	})
}
