package handler

import (
	"net/http"
	"strings"

	"github.com/lectern-dev/lectern/shared/api"
	"github.com/lectern-dev/lectern/shared/utils"
)

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "q query parameter is required", http.StatusBadRequest)
		return
	}
	schoolId := r.URL.Query().Get("school")
	if schoolId == "" {
		http.Error(w, "school query parameter is required", http.StatusBadRequest)
		return
	}

	if _, err := h.memberOf(r.Context(), user.Id, schoolId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var typeFilters []string
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				typeFilters = append(typeFilters, f)
			}
		}
	}

	results, err := h.search.Search(r.Context(), query, schoolId, typeFilters)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := api.SearchResponse{
		Results:       make([]api.SearchHit, 0, len(results.Results)),
		ResultsByType: make(map[string][]api.SearchHit, len(results.ByKind)),
	}
	for _, hit := range results.Results {
		response.Results = append(response.Results, api.SearchHit{
			Kind:      string(hit.Kind),
			Id:        hit.Id,
			Title:     hit.Title,
			Snippet:   hit.Snippet,
			CreatedAt: hit.CreatedAt,
		})
	}
	for kind, hits := range results.ByKind {
		bucket := make([]api.SearchHit, 0, len(hits))
		for _, hit := range hits {
			bucket = append(bucket, api.SearchHit{
				Kind:      string(hit.Kind),
				Id:        hit.Id,
				Title:     hit.Title,
				Snippet:   hit.Snippet,
				CreatedAt: hit.CreatedAt,
			})
		}
		response.ResultsByType[string(kind)] = bucket
	}

	writeJSON(w, response)
}
