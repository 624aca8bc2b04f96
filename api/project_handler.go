package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sfrosal/portfolio-api/database"
	"github.com/sfrosal/portfolio-api/errs"
	"github.com/sfrosal/portfolio-api/models"
)

type projectHandler struct {
	responder      Responder
	logger         zerolog.Logger
	projectRepo    *database.ProjectRepo
	technologyRepo *database.TechnologyRepo
}

func newProjectHandler(projectRepo *database.ProjectRepo, technologyRepo *database.TechnologyRepo) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		projectRepo:    projectRepo,
		technologyRepo: technologyRepo,
	}
}

// projectResponse is the wire shape of a project: the row itself plus its
// tag names and image URLs flattened to string lists.
type projectResponse struct {
	models.Project
	Technologies []string `json:"technologies"`
	Images       []string `json:"images"`
}

func newProjectResponse(p *models.Project) projectResponse {
	return projectResponse{
		Project:      *p,
		Technologies: p.TechnologyNames(),
		Images:       p.ImageURLs(),
	}
}

func newProjectListResponse(projects []*models.Project) []projectResponse {
	responses := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, newProjectResponse(p))
	}
	return responses
}

// listPublic returns active projects, newest first.
func (h projectHandler) listPublic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.FindPublic()
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "projects", err))
			return
		}
		h.responder.WriteJSON(w, newProjectListResponse(projects))
	}
}

// listAdmin returns every project, inactive ones included.
func (h projectHandler) listAdmin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.FindAll()
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "projects", err))
			return
		}
		h.responder.WriteJSON(w, newProjectListResponse(projects))
	}
}

// listFeatured returns active projects flagged as featured.
func (h projectHandler) listFeatured() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.FindFeatured()
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "projects", err))
			return
		}
		h.responder.WriteJSON(w, newProjectListResponse(projects))
	}
}

// search filters active projects by a case-insensitive title/description
// match on the q query parameter.
func (h projectHandler) search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.Search(r.URL.Query().Get("q"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newProjectListResponse(projects))
	}
}

// listTechnologies returns every known technology label, for tag filters on
// the public site.
func (h projectHandler) listTechnologies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		technologies, err := h.technologyRepo.FindAll()
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "technologies", err))
			return
		}

		names := make([]string, 0, len(technologies))
		for _, tech := range technologies {
			names = append(names, tech.Name)
		}
		h.responder.WriteJSON(w, names)
	}
}

// getBySlug returns the active project with that slug.
func (h projectHandler) getBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("slug"))
			return
		}

		project, err := h.projectRepo.FindBySlug(slug)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newProjectResponse(project))
	}
}

type createProjectRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Img          string   `json:"img"`
	Video        *string  `json:"video"`
	Repo         *string  `json:"repo"`
	Page         *string  `json:"page"`
	Slug         string   `json:"slug"`
	Featured     bool     `json:"featured"`
	Active       *bool    `json:"active"`
	DateProject  *string  `json:"dateProject"`
	Technologies []string `json:"technologies"`
	Images       []string `json:"images"`
}

func (req createProjectRequest) missingFields() []string {
	var missing []string
	if req.Title == "" {
		missing = append(missing, "title")
	}
	if req.Description == "" {
		missing = append(missing, "description")
	}
	if req.Img == "" {
		missing = append(missing, "img")
	}
	if req.Slug == "" {
		missing = append(missing, "slug")
	}
	return missing
}

// create inserts a new project with its tags and images. A taken slug is a
// conflict; the row, associations and images land atomically or not at all.
func (h projectHandler) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode project request body")
			h.responder.WriteError(w, errs.NewMalformedPayloadError(err))
			return
		}

		if missing := req.missingFields(); len(missing) > 0 {
			h.responder.WriteError(w, errs.NewValidationError(missing, "missing required fields"))
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}

		project := models.Project{
			Title:       req.Title,
			Description: req.Description,
			Img:         req.Img,
			Video:       req.Video,
			Repo:        req.Repo,
			Page:        req.Page,
			Slug:        req.Slug,
			Featured:    req.Featured,
			Active:      active,
			DateProject: req.DateProject,
		}

		if err := h.projectRepo.Create(&project, req.Technologies, req.Images); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("create", "project", err))
			return
		}

		created, err := h.projectRepo.FindByID(project.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteStatusJSON(w, http.StatusCreated, newProjectResponse(created))
	}
}

type updateProjectRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Img          *string   `json:"img"`
	Video        *string   `json:"video"`
	Repo         *string   `json:"repo"`
	Page         *string   `json:"page"`
	Slug         *string   `json:"slug"`
	Featured     *bool     `json:"featured"`
	Active       *bool     `json:"active"`
	DateProject  *string   `json:"dateProject"`
	Technologies *[]string `json:"technologies"`
	Images       *[]string `json:"images"`
}

// update applies a partial update. A supplied technologies or images list
// replaces the full set, even when empty; an absent list stays untouched.
func (h projectHandler) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req updateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode project request body")
			h.responder.WriteError(w, errs.NewMalformedPayloadError(err))
			return
		}

		project, err := h.projectRepo.Update(id, database.ProjectUpdate{
			Title:        req.Title,
			Description:  req.Description,
			Img:          req.Img,
			Video:        req.Video,
			Repo:         req.Repo,
			Page:         req.Page,
			Slug:         req.Slug,
			Featured:     req.Featured,
			Active:       req.Active,
			DateProject:  req.DateProject,
			Technologies: req.Technologies,
			Images:       req.Images,
		})
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update", "project", err))
			return
		}

		h.responder.WriteJSON(w, newProjectResponse(project))
	}
}

// remove deletes a project with its tag associations and images. Shared
// technology labels survive.
func (h projectHandler) remove() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Delete(id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", "project", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "project deleted successfully",
		})
	}
}

// toggleStatus flips the active flag and returns the updated project.
func (h projectHandler) toggleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.ToggleActive(id)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("toggle", "project", err))
			return
		}

		h.responder.WriteJSON(w, newProjectResponse(project))
	}
}

func projectIDParam(r *http.Request) (uint, error) {
	idStr := chi.URLParam(r, "projectID")
	if idStr == "" {
		return 0, errs.NewMissingRequiredFieldError("projectID")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, errs.NewInvalidFieldError("projectID", "must be a numeric id")
	}
	return uint(id), nil
}
