package api

import (
	"net/http"

	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"

	"github.com/go-chi/chi/v5"
)

type resourceView struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category"`
	Access        string   `json:"access"`
	FileName      string   `json:"fileName,omitempty"`
	FileSize      int64    `json:"fileSize,omitempty"`
	DownloadCount int      `json:"downloadCount"`
	ViewCount     int      `json:"viewCount"`
	CreatedAt     jsonTime `json:"createdAt"`
}

func viewResource(res *model.Resource) resourceView {
	return resourceView{
		ID:            res.ID,
		Title:         res.Title,
		Description:   res.Description,
		Category:      res.Category,
		Access:        string(res.Access),
		FileName:      res.FileName,
		FileSize:      res.FileSize,
		DownloadCount: res.DownloadCount,
		ViewCount:     res.ViewCount,
		CreatedAt:     jsonTime(res.CreatedAt),
	}
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()
	filter := repository.ResourceFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Access:   q.Get("access"),
	}

	items, total, err := s.resources.List(r.Context(), filter, limit, (page-1)*limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]resourceView, 0, len(items))
	for _, res := range items {
		views = append(views, viewResource(res))
	}
	writePaginated(w, "ok", views, NewPagination(page, limit, total))
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	res, err := s.resources.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", viewResource(res))
}

func (s *Server) handleDownloadResource(w http.ResponseWriter, r *http.Request) {
	subject, _ := SubjectFrom(r.Context())

	res, err := s.resources.Download(r.Context(), subject, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "download authorized", map[string]interface{}{
		"id":       res.ID,
		"fileName": res.FileName,
		"fileSize": res.FileSize,
	})
}
