package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/domain/aggregates/template"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/httpjson"
)

type TemplateController struct {
	app application.Application
	svc *services.TemplateService
}

func NewTemplateController(app application.Application) application.Controller {
	return &TemplateController{
		app: app,
		svc: app.Service(services.TemplateService{}).(*services.TemplateService),
	}
}

func (c *TemplateController) Key() string {
	return "/templates"
}

func (c *TemplateController) Register(r *mux.Router) {
	sub := r.PathPrefix("/templates").Subrouter()
	sub.HandleFunc("", c.Create).Methods(http.MethodPost)
	sub.HandleFunc("", c.List).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	sub.HandleFunc("/{id}/instantiate", c.Instantiate).Methods(http.MethodPost)

	inh := r.PathPrefix("/inheritances").Subrouter()
	inh.HandleFunc("/outdated", c.Outdated).Methods(http.MethodGet)
	inh.HandleFunc("/stats", c.Stats).Methods(http.MethodGet)
	inh.HandleFunc("/{id}/customize", c.Customize).Methods(http.MethodPost)
	inh.HandleFunc("/{id}/override", c.Override).Methods(http.MethodPost)
	inh.HandleFunc("/{id}/sync", c.Sync).Methods(http.MethodPost)
	inh.HandleFunc("/{id}/conflicts/{field}", c.ResolveConflict).Methods(http.MethodPost)
	inh.HandleFunc("/{id}/reset", c.Reset).Methods(http.MethodPost)
}

type createTemplateRequest struct {
	Type template.Type  `json:"type"`
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	record, err := c.svc.CreateTemplate(r.Context(), req.Type, req.Name, req.Data)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toRecordResponse(record))
}

func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	records, err := c.svc.GetTemplates(r.Context(), template.Type(r.URL.Query().Get("type")))
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	out := make([]recordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toRecordResponse(record))
	}
	httpjson.Write(w, http.StatusOK, out)
}

type updateTemplateRequest struct {
	Data map[string]any `json:"data"`
}

func (c *TemplateController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	var req updateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	record, err := c.svc.UpdateTemplate(r.Context(), id, req.Data)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toRecordResponse(record))
}

type instantiateRequest struct {
	Overrides map[string]any `json:"overrides,omitempty"`
}

func (c *TemplateController) Instantiate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	var req instantiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	result, err := c.svc.Instantiate(r.Context(), id, req.Overrides)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toInstantiateResponse(result))
}

type customizeRequest struct {
	Changes map[string]any `json:"changes"`
}

func (c *TemplateController) Customize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	var req customizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	inh, err := c.svc.CustomizeInstance(r.Context(), id, req.Changes)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toInheritanceResponse(inh))
}

func (c *TemplateController) Override(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	inh, err := c.svc.MarkOverride(r.Context(), id)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toInheritanceResponse(inh))
}

func (c *TemplateController) Sync(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	force := r.URL.Query().Get("force") == "true"
	result, err := c.svc.Sync(r.Context(), id, force)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toSyncResponse(result))
}

type resolveConflictRequest struct {
	Resolution services.ConflictResolution `json:"resolution"`
}

func (c *TemplateController) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	var req resolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	inh, err := c.svc.ResolveConflict(r.Context(), id, vars["field"], req.Resolution)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toInheritanceResponse(inh))
}

func (c *TemplateController) Reset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	inh, err := c.svc.ResetToTemplate(r.Context(), id)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toInheritanceResponse(inh))
}

func (c *TemplateController) Outdated(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	inheritances, err := c.svc.GetOutdatedInheritances(r.Context(), days)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	out := make([]inheritanceResponse, 0, len(inheritances))
	for _, inh := range inheritances {
		out = append(out, toInheritanceResponse(inh))
	}
	httpjson.Write(w, http.StatusOK, out)
}

func (c *TemplateController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.svc.GetOrganizationStats(r.Context())
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, stats)
}
