package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/hierarchy"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/permission"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/services"
)

type definitionResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	MaxDepth  int       `json:"max_depth"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type nodeResponse struct {
	ID       uuid.UUID              `json:"id"`
	ParentID *uuid.UUID             `json:"parent_id,omitempty"`
	Name     string                 `json:"name"`
	Code     string                 `json:"code"`
	Level    int                    `json:"level"`
	Path     string                 `json:"path"`
	Left     int                    `json:"lft"`
	Right    int                    `json:"rgt"`
	Metadata hierarchy.NodeMetadata `json:"metadata"`
}

type treeNodeResponse struct {
	nodeResponse
	Children []treeNodeResponse `json:"children,omitempty"`
}

type buildResponse struct {
	Definition definitionResponse `json:"definition"`
	Nodes      []nodeResponse     `json:"nodes"`
}

type roleResponse struct {
	ID          uuid.UUID `json:"id"`
	HierarchyID uuid.UUID `json:"hierarchy_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Actions     []string  `json:"actions,omitempty"`
}

type permissionResponse struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	NodeID         uuid.UUID      `json:"node_id"`
	RoleID         uuid.UUID      `json:"role_id"`
	Scope          map[string]any `json:"scope,omitempty"`
	Restrictions   map[string]any `json:"restrictions,omitempty"`
	EffectiveFrom  time.Time      `json:"effective_from"`
	EffectiveUntil *time.Time     `json:"effective_until,omitempty"`
	InheritedFrom  *uuid.UUID     `json:"inherited_from,omitempty"`
}

type relationshipResponse struct {
	ID           uuid.UUID `json:"id"`
	ParentNodeID uuid.UUID `json:"parent_node_id"`
	ChildNodeID  uuid.UUID `json:"child_node_id"`
	Type         string    `json:"type"`
	Weight       string    `json:"weight"`
	IsActive     bool      `json:"is_active"`
}

func toRelationshipResponse(rel *hierarchy.Relationship) relationshipResponse {
	return relationshipResponse{
		ID:           rel.ID(),
		ParentNodeID: rel.ParentNodeID(),
		ChildNodeID:  rel.ChildNodeID(),
		Type:         string(rel.Type()),
		Weight:       rel.Weight().String(),
		IsActive:     rel.IsActive(),
	}
}

func toDefinitionResponse(def *hierarchy.Definition) definitionResponse {
	return definitionResponse{
		ID:        def.ID(),
		Name:      def.Name(),
		Type:      string(def.Type()),
		MaxDepth:  def.MaxDepth(),
		IsActive:  def.IsActive(),
		CreatedAt: def.CreatedAt(),
		UpdatedAt: def.UpdatedAt(),
	}
}

func toNodeResponse(node *hierarchy.Node) nodeResponse {
	return nodeResponse{
		ID:       node.ID(),
		ParentID: node.ParentID(),
		Name:     node.Name(),
		Code:     node.Code(),
		Level:    node.Level(),
		Path:     node.Path(),
		Left:     node.Left(),
		Right:    node.Right(),
		Metadata: node.Metadata(),
	}
}

func toTreeResponse(tn *services.TreeNode) treeNodeResponse {
	out := treeNodeResponse{nodeResponse: toNodeResponse(tn.Node)}
	for _, child := range tn.Children {
		out.Children = append(out.Children, toTreeResponse(child))
	}
	return out
}

func toBuildResponse(result *services.BuildResult) buildResponse {
	nodes := make([]nodeResponse, 0, len(result.Nodes))
	for _, node := range result.Nodes {
		nodes = append(nodes, toNodeResponse(node))
	}
	return buildResponse{
		Definition: toDefinitionResponse(result.Definition),
		Nodes:      nodes,
	}
}

func toRoleResponse(role *permission.DynamicRole) roleResponse {
	return roleResponse{
		ID:          role.ID(),
		HierarchyID: role.HierarchyID(),
		Name:        role.Name(),
		Description: role.Description(),
		Actions:     role.Actions(),
	}
}

func toPermissionResponse(p *permission.ContextualPermission) permissionResponse {
	return permissionResponse{
		ID:             p.ID(),
		UserID:         p.UserID(),
		NodeID:         p.NodeID(),
		RoleID:         p.RoleID(),
		Scope:          p.Scope(),
		Restrictions:   p.Restrictions(),
		EffectiveFrom:  p.EffectiveFrom(),
		EffectiveUntil: p.EffectiveUntil(),
		InheritedFrom:  p.InheritedFrom(),
	}
}
