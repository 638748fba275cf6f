package httpapi

import "net/http"

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.taxonomy.ListCategories(r.Context(), s.userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	category, err := s.taxonomy.CreateCategory(r.Context(), s.userID(r), req.Name, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	list, err := s.taxonomy.ListPatterns(r.Context(), s.userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
