package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/hierarchy"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/permission"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/httpjson"
)

type HierarchyController struct {
	app               application.Application
	hierarchyService  *services.HierarchyService
	permissionService *services.PermissionService
}

func NewHierarchyController(app application.Application) application.Controller {
	return &HierarchyController{
		app:               app,
		hierarchyService:  app.Service(services.HierarchyService{}).(*services.HierarchyService),
		permissionService: app.Service(services.PermissionService{}).(*services.PermissionService),
	}
}

func (c *HierarchyController) Key() string {
	return "/hierarchies"
}

func (c *HierarchyController) Register(r *mux.Router) {
	sub := r.PathPrefix("/hierarchies").Subrouter()
	sub.HandleFunc("", c.Build).Methods(http.MethodPost)
	sub.HandleFunc("", c.List).Methods(http.MethodGet)
	sub.HandleFunc("/{id}/tree", c.Tree).Methods(http.MethodGet)
	sub.HandleFunc("/{id}/validation", c.Validate).Methods(http.MethodGet)
	sub.HandleFunc("/{id}/nodes", c.AddNode).Methods(http.MethodPost)
	sub.HandleFunc("/{id}/roles", c.CreateRole).Methods(http.MethodPost)
	sub.HandleFunc("/nodes/{nodeID}/parent", c.Reparent).Methods(http.MethodPut)
	sub.HandleFunc("/nodes/{nodeID}/matrix", c.AddMatrix).Methods(http.MethodPost)
	sub.HandleFunc("/nodes/{nodeID}", c.DeactivateNode).Methods(http.MethodDelete)
	sub.HandleFunc("/permissions", c.Grant).Methods(http.MethodPost)
	sub.HandleFunc("/permissions/{id}/recompute", c.Recompute).Methods(http.MethodPost)
	sub.HandleFunc("/nodes/{nodeID}/users/{userID}/permissions", c.Resolve).Methods(http.MethodGet)
}

type buildRequest struct {
	Type     string                      `json:"type"`
	Name     string                      `json:"name"`
	MaxDepth int                         `json:"max_depth,omitempty"`
	Levels   []services.LevelSpec        `json:"levels"`
	Config   *hierarchy.DefinitionConfig `json:"config,omitempty"`
}

func (c *HierarchyController) Build(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	opts := make([]hierarchy.DefinitionOption, 0, 2)
	if req.MaxDepth > 0 {
		opts = append(opts, hierarchy.WithMaxDepth(req.MaxDepth))
	}
	if req.Config != nil {
		opts = append(opts, hierarchy.WithConfig(*req.Config))
	}
	result, err := c.hierarchyService.BuildHierarchy(r.Context(), hierarchy.Type(req.Type), req.Name, req.Levels, opts...)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toBuildResponse(result))
}

func (c *HierarchyController) List(w http.ResponseWriter, r *http.Request) {
	params := &hierarchy.DefinitionFindParams{
		Type:       hierarchy.Type(r.URL.Query().Get("type")),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	defs, err := c.hierarchyService.GetDefinitions(r.Context(), params)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	out := make([]definitionResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, toDefinitionResponse(def))
	}
	httpjson.Write(w, http.StatusOK, out)
}

func (c *HierarchyController) Tree(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	roots, err := c.hierarchyService.GetTree(r.Context(), id)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	out := make([]treeNodeResponse, 0, len(roots))
	for _, root := range roots {
		out = append(out, toTreeResponse(root))
	}
	httpjson.Write(w, http.StatusOK, out)
}

func (c *HierarchyController) Validate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	report, err := c.hierarchyService.ValidateIntegrity(r.Context(), id)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, report)
}

type addNodeRequest struct {
	ParentID *uuid.UUID             `json:"parent_id,omitempty"`
	Name     string                 `json:"name"`
	Code     string                 `json:"code"`
	Metadata hierarchy.NodeMetadata `json:"metadata,omitempty"`
}

func (c *HierarchyController) AddNode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	var req addNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	node, err := c.hierarchyService.AddNode(r.Context(), id, req.ParentID, req.Name, req.Code, req.Metadata)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toNodeResponse(node))
}

type reparentRequest struct {
	NewParentID *uuid.UUID `json:"new_parent_id"`
}

func (c *HierarchyController) Reparent(w http.ResponseWriter, r *http.Request) {
	nodeID, err := uuid.Parse(mux.Vars(r)["nodeID"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	var req reparentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	if err := c.hierarchyService.ReparentNode(r.Context(), nodeID, req.NewParentID); err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addMatrixRequest struct {
	ChildNodeID uuid.UUID        `json:"child_node_id"`
	Weight      *decimal.Decimal `json:"weight,omitempty"`
}

func (c *HierarchyController) AddMatrix(w http.ResponseWriter, r *http.Request) {
	parentID, err := uuid.Parse(mux.Vars(r)["nodeID"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	var req addMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	opts := make([]hierarchy.RelationshipOption, 0, 1)
	if req.Weight != nil {
		opts = append(opts, hierarchy.WithWeight(*req.Weight))
	}
	rel, err := c.hierarchyService.AddMatrixRelationship(r.Context(), parentID, req.ChildNodeID, opts...)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toRelationshipResponse(rel))
}

func (c *HierarchyController) DeactivateNode(w http.ResponseWriter, r *http.Request) {
	nodeID, err := uuid.Parse(mux.Vars(r)["nodeID"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	if err := c.hierarchyService.DeactivateNode(r.Context(), nodeID); err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Actions     []string `json:"actions,omitempty"`
}

func (c *HierarchyController) CreateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	var req createRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	role, err := c.permissionService.CreateRole(
		r.Context(),
		id,
		req.Name,
		permission.WithDescription(req.Description),
		permission.WithActions(req.Actions),
	)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toRoleResponse(role))
}

type grantRequest struct {
	UserID         uuid.UUID                   `json:"user_id"`
	NodeID         uuid.UUID                   `json:"node_id"`
	RoleID         uuid.UUID                   `json:"role_id"`
	Scope          map[string]any              `json:"scope,omitempty"`
	Restrictions   map[string]any              `json:"restrictions,omitempty"`
	EffectiveFrom  *time.Time                  `json:"effective_from,omitempty"`
	EffectiveUntil *time.Time                  `json:"effective_until,omitempty"`
	Rule           *permission.InheritanceRule `json:"inheritance_rule,omitempty"`
}

func (c *HierarchyController) Grant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	opts := []permission.Option{
		permission.WithScope(req.Scope),
		permission.WithRestrictions(req.Restrictions),
	}
	if req.EffectiveFrom != nil {
		opts = append(opts, permission.WithWindow(*req.EffectiveFrom, req.EffectiveUntil))
	}
	granted, err := c.permissionService.Grant(r.Context(), req.UserID, req.NodeID, req.RoleID, req.Rule, opts...)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toPermissionResponse(granted))
}

func (c *HierarchyController) Recompute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	count, err := c.permissionService.RecomputeInherited(r.Context(), id)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]int{"derived_count": count})
}

func (c *HierarchyController) Resolve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	nodeID, err := uuid.Parse(vars["nodeID"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	userID, err := uuid.Parse(vars["userID"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	resolved, err := c.permissionService.ResolveEffectivePermissions(r.Context(), userID, nodeID, time.Now())
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	out := make([]permissionResponse, 0, len(resolved))
	for _, p := range resolved {
		out = append(out, toPermissionResponse(p))
	}
	httpjson.Write(w, http.StatusOK, out)
}
