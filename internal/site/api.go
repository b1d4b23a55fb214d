package site

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/transitdir/internal/catalog"
	"github.com/ziadkadry99/transitdir/internal/directory"
	"github.com/ziadkadry99/transitdir/internal/query"
)

// RouteJSON is the API representation of a route. Fare is null when unknown;
// Details keeps its Markdown and Summary is the plain text.
type RouteJSON struct {
	ID       int      `json:"id"`
	Category string   `json:"category"`
	Label    string   `json:"label"`
	Icon     string   `json:"icon"`
	Number   string   `json:"number"`
	Fare     *int     `json:"fare"`
	Details  string   `json:"details"`
	Summary  string   `json:"summary"`
	Stops    []string `json:"stops"`
}

// PageJSON is one page of API results.
type PageJSON struct {
	Items        []RouteJSON `json:"items"`
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalMatches int         `json:"total_matches"`
	PageSize     int         `json:"page_size"`
}

// ToRouteJSON converts a catalog route for the API.
func ToRouteJSON(r catalog.Route) RouteJSON {
	out := RouteJSON{
		ID:       r.ID,
		Category: string(r.Category),
		Label:    r.Category.DisplayLabel(),
		Icon:     catalog.IconOrFallback(r.Category),
		Number:   r.Number,
		Details:  r.Details,
		Summary:  r.Summary(),
		Stops:    r.Stops,
	}
	if amount, ok := r.Fare.Amount(); ok {
		out.Fare = &amount
	}
	if out.Stops == nil {
		out.Stops = []string{}
	}
	return out
}

func (s *Site) handleAPIList(w http.ResponseWriter, r *http.Request) {
	state := directory.ParseState(r.URL.Query())
	pageSize := s.cfg.PageSize
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}

	result := query.FilterAndPaginate(s.catalog, query.State{
		Search:   state.Search,
		Category: state.Category,
		Page:     state.Page,
	}, pageSize)

	resp := PageJSON{
		Items:        make([]RouteJSON, 0, len(result.Items)),
		Page:         result.Page,
		TotalPages:   result.TotalPages,
		TotalMatches: result.TotalMatches,
		PageSize:     result.PageSize,
	}
	for _, route := range result.Items {
		resp.Items = append(resp.Items, ToRouteJSON(route))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Site) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid route id")
		return
	}
	route, ok := s.catalog.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, directory.ErrRouteNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, ToRouteJSON(route))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
