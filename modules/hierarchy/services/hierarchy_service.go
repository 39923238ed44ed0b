package services

import (
	"context"
	"sort"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/hierarchy"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
)

var (
	ErrNoLevels        = gerrors.New("hierarchy requires at least one level")
	ErrDuplicateCode   = gerrors.New("duplicate node code in level specs")
	ErrParentNotFound  = gerrors.New("parent node not found or inactive")
	ErrParentInSubtree = gerrors.New("new parent is inside the moved subtree")
	ErrNodeHasChildren = gerrors.New("node still has active children")
	ErrNodeNotInTree   = gerrors.New("node does not belong to this hierarchy")
	ErrInactiveNode    = gerrors.New("node is inactive")
)

// IssueCode identifies a fatal integrity defect.
type IssueCode string

const (
	IssueCircularReference IssueCode = "CIRCULAR_REFERENCE"
	IssueOrphanedNode      IssueCode = "ORPHANED_NODE"
)

// WarningCode identifies a non-fatal finding.
type WarningCode string

const WarningDepthExceeded WarningCode = "DEPTH_EXCEEDED"

type IntegrityIssue struct {
	Code   IssueCode
	NodeID uuid.UUID
	Detail string
}

type IntegrityWarning struct {
	Code   WarningCode
	Detail string
}

// IntegrityReport is advisory: an invalid hierarchy stays readable and is
// never auto-repaired.
type IntegrityReport struct {
	IsValid     bool
	Issues      []IntegrityIssue
	Warnings    []IntegrityWarning
	NodeCount   int
	MaxDepth    int
	ValidatedAt time.Time
}

// LevelSpec describes one organizational level of a freshly built chain.
type LevelSpec struct {
	Name          string
	Code          string
	SpanOfControl int
}

type BuildResult struct {
	Definition *hierarchy.Definition
	Nodes      []*hierarchy.Node
}

type TreeNode struct {
	Node     *hierarchy.Node
	Children []*TreeNode
}

type HierarchyBuiltEvent struct {
	Result *BuildResult
}

type NodeAddedEvent struct {
	Result *hierarchy.Node
}

type NodeReparentedEvent struct {
	NodeID      uuid.UUID
	NewParentID *uuid.UUID
}

type HierarchyService struct {
	repo      hierarchy.Repository
	publisher eventbus.EventBus
}

func NewHierarchyService(repo hierarchy.Repository, publisher eventbus.EventBus) *HierarchyService {
	return &HierarchyService{
		repo:      repo,
		publisher: publisher,
	}
}

// BuildHierarchy creates one definition and a linear chain of nodes, one per
// level spec, in a single transaction. Each level's node reports to the one
// above it; a mirroring direct relationship edge is recorded per link.
func (s *HierarchyService) BuildHierarchy(
	ctx context.Context,
	typ hierarchy.Type,
	name string,
	specs []LevelSpec,
	opts ...hierarchy.DefinitionOption,
) (*BuildResult, error) {
	if len(specs) == 0 {
		return nil, ErrNoLevels
	}
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		code := strings.TrimSpace(spec.Code)
		if _, dup := seen[code]; dup {
			return nil, gerrors.Wrapf(ErrDuplicateCode, "code %q", code)
		}
		seen[code] = struct{}{}
	}

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if userID, err := composables.UseUserID(ctx); err == nil {
		opts = append(opts, hierarchy.WithCreatedBy(userID), hierarchy.WithUpdatedBy(userID))
	}

	result, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*BuildResult, error) {
		def, err := hierarchy.NewDefinition(tenantID, name, typ, opts...)
		if err != nil {
			return nil, err
		}
		def, err = s.repo.CreateDefinition(txCtx, def)
		if err != nil {
			return nil, err
		}

		nodes := make([]*hierarchy.Node, 0, len(specs))
		var parent *hierarchy.Node
		for i, spec := range specs {
			nodeOpts := []hierarchy.NodeOption{
				hierarchy.WithLevel(i),
				hierarchy.WithMetadata(hierarchy.NodeMetadata{SpanOfControl: spec.SpanOfControl}),
			}
			if parent != nil {
				parentID := parent.ID()
				nodeOpts = append(nodeOpts, hierarchy.WithParentID(&parentID))
			}
			node := hierarchy.NewNode(def.ID(), spec.Name, spec.Code, nodeOpts...)
			if parent != nil {
				node.SetPlacement(node.ParentID(), hierarchy.ChildPath(parent.Path(), node.ID()), i)
			}
			node, err = s.repo.CreateNode(txCtx, node)
			if err != nil {
				return nil, err
			}
			if parent != nil {
				rel, err := hierarchy.NewRelationship(parent.ID(), node.ID(), hierarchy.RelationshipDirect)
				if err != nil {
					return nil, err
				}
				if _, err := s.repo.CreateRelationship(txCtx, rel); err != nil {
					return nil, err
				}
			}
			nodes = append(nodes, node)
			parent = node
		}

		assignNestedSet(nodes)
		if err := s.repo.UpdateNodePlacements(txCtx, nodes); err != nil {
			return nil, err
		}

		return &BuildResult{Definition: def, Nodes: nodes}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(HierarchyBuiltEvent{Result: result})
	return result, nil
}

// ValidateIntegrity performs a read-only pass over the active nodes of a
// hierarchy. Issues fail validation; warnings never do.
func (s *HierarchyService) ValidateIntegrity(ctx context.Context, hierarchyID uuid.UUID) (*IntegrityReport, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*IntegrityReport, error) {
		def, err := s.repo.GetDefinitionByID(txCtx, hierarchyID)
		if err != nil {
			return nil, err
		}
		nodes, err := s.repo.GetNodes(txCtx, hierarchyID)
		if err != nil {
			return nil, err
		}
		return validate(def, nodes), nil
	})
}

func validate(def *hierarchy.Definition, nodes []*hierarchy.Node) *IntegrityReport {
	report := &IntegrityReport{
		NodeCount:   len(nodes),
		ValidatedAt: time.Now(),
	}

	byID := make(map[uuid.UUID]*hierarchy.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID()] = n
	}

	// Nodes already attributed to a reported cycle are skipped so one cycle
	// yields exactly one issue.
	inReportedCycle := make(map[uuid.UUID]struct{})

	for _, n := range nodes {
		if n.Level() > report.MaxDepth {
			report.MaxDepth = n.Level()
		}

		if _, done := inReportedCycle[n.ID()]; done {
			continue
		}

		if n.ParentID() == nil {
			continue
		}
		if _, ok := byID[*n.ParentID()]; !ok {
			report.Issues = append(report.Issues, IntegrityIssue{
				Code:   IssueOrphanedNode,
				NodeID: n.ID(),
				Detail: "parent " + n.ParentID().String() + " is missing or inactive",
			})
			continue
		}

		visited := map[uuid.UUID]struct{}{n.ID(): {}}
		current := n
		for current.ParentID() != nil {
			parent, ok := byID[*current.ParentID()]
			if !ok {
				// The orphan is reported on its own iteration.
				break
			}
			if _, done := inReportedCycle[parent.ID()]; done {
				// Chain drains into a cycle that is already on the report.
				break
			}
			if _, revisit := visited[parent.ID()]; revisit {
				report.Issues = append(report.Issues, IntegrityIssue{
					Code:   IssueCircularReference,
					NodeID: n.ID(),
					Detail: "parent chain revisits " + parent.ID().String(),
				})
				for id := range visited {
					inReportedCycle[id] = struct{}{}
				}
				break
			}
			visited[parent.ID()] = struct{}{}
			current = parent
		}
	}

	if report.MaxDepth > def.MaxDepth() {
		report.Warnings = append(report.Warnings, IntegrityWarning{
			Code:   WarningDepthExceeded,
			Detail: "max level exceeds configured max depth",
		})
	}

	report.IsValid = len(report.Issues) == 0
	return report
}

// AddNode attaches a node under an existing parent (or as a new root when
// parentID is nil) and renumbers the hierarchy.
func (s *HierarchyService) AddNode(
	ctx context.Context,
	hierarchyID uuid.UUID,
	parentID *uuid.UUID,
	name, code string,
	metadata hierarchy.NodeMetadata,
) (*hierarchy.Node, error) {
	node, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*hierarchy.Node, error) {
		nodes, err := s.repo.GetNodes(txCtx, hierarchyID)
		if err != nil {
			return nil, err
		}

		nodeOpts := []hierarchy.NodeOption{hierarchy.WithMetadata(metadata)}
		var parent *hierarchy.Node
		if parentID != nil {
			parent = findNode(nodes, *parentID)
			if parent == nil {
				return nil, ErrParentNotFound
			}
			nodeOpts = append(nodeOpts,
				hierarchy.WithParentID(parentID),
				hierarchy.WithLevel(parent.Level()+1),
			)
		}

		node := hierarchy.NewNode(hierarchyID, name, code, nodeOpts...)
		if parent != nil {
			node.SetPlacement(parentID, hierarchy.ChildPath(parent.Path(), node.ID()), parent.Level()+1)
		}
		node, err = s.repo.CreateNode(txCtx, node)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			rel, err := hierarchy.NewRelationship(parent.ID(), node.ID(), hierarchy.RelationshipDirect)
			if err != nil {
				return nil, err
			}
			if _, err := s.repo.CreateRelationship(txCtx, rel); err != nil {
				return nil, err
			}
		}

		nodes = append(nodes, node)
		assignNestedSet(nodes)
		if err := s.repo.UpdateNodePlacements(txCtx, nodes); err != nil {
			return nil, err
		}
		return node, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(NodeAddedEvent{Result: node})
	return node, nil
}

// ReparentNode moves a node (and its whole subtree) under a new parent. The
// subtree's paths and levels are recomputed and the hierarchy renumbered in
// the same transaction, so readers never observe a half-moved tree.
func (s *HierarchyService) ReparentNode(ctx context.Context, nodeID uuid.UUID, newParentID *uuid.UUID) error {
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		node, err := s.repo.GetNodeByID(txCtx, nodeID)
		if err != nil {
			return err
		}
		if !node.IsActive() {
			return ErrInactiveNode
		}

		nodes, err := s.repo.GetNodes(txCtx, node.HierarchyID())
		if err != nil {
			return err
		}

		var newParent *hierarchy.Node
		if newParentID != nil {
			newParent = findNode(nodes, *newParentID)
			if newParent == nil {
				return ErrParentNotFound
			}
			if strings.HasPrefix(newParent.Path()+"/", node.Path()+"/") || newParent.ID() == node.ID() {
				return ErrParentInSubtree
			}
		}

		target := findNode(nodes, nodeID)
		if target == nil {
			return ErrNodeNotInTree
		}

		newPath := target.ID().String()
		newLevel := 0
		if newParent != nil {
			newPath = hierarchy.ChildPath(newParent.Path(), target.ID())
			newLevel = newParent.Level() + 1
		}
		target.SetPlacement(newParentID, newPath, newLevel)
		recomputeSubtree(nodes, target)

		assignNestedSet(nodes)
		return s.repo.UpdateNodePlacements(txCtx, nodes)
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(NodeReparentedEvent{NodeID: nodeID, NewParentID: newParentID})
	return nil
}

// DeactivateNode soft-deletes a leaf. Interior nodes must have their
// children moved first, otherwise the children would become orphans.
func (s *HierarchyService) DeactivateNode(ctx context.Context, nodeID uuid.UUID) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		node, err := s.repo.GetNodeByID(txCtx, nodeID)
		if err != nil {
			return err
		}
		nodes, err := s.repo.GetNodes(txCtx, node.HierarchyID())
		if err != nil {
			return err
		}
		for _, n := range nodes {
			if n.ParentID() != nil && *n.ParentID() == nodeID {
				return ErrNodeHasChildren
			}
		}

		node.Deactivate()
		if err := s.repo.UpdateNode(txCtx, node); err != nil {
			return err
		}

		remaining := make([]*hierarchy.Node, 0, len(nodes)-1)
		for _, n := range nodes {
			if n.ID() != nodeID {
				remaining = append(remaining, n)
			}
		}
		assignNestedSet(remaining)
		return s.repo.UpdateNodePlacements(txCtx, remaining)
	})
}

// AddMatrixRelationship records an additive dotted-line edge. Matrix edges
// never participate in depth or path computation.
func (s *HierarchyService) AddMatrixRelationship(
	ctx context.Context,
	parentNodeID, childNodeID uuid.UUID,
	opts ...hierarchy.RelationshipOption,
) (*hierarchy.Relationship, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*hierarchy.Relationship, error) {
		rel, err := hierarchy.NewRelationship(parentNodeID, childNodeID, hierarchy.RelationshipMatrix, opts...)
		if err != nil {
			return nil, err
		}
		return s.repo.CreateRelationship(txCtx, rel)
	})
}

// GetTree assembles the active nodes of a hierarchy into sorted trees.
// Multiple roots are tolerated: a forest renders, validation flags it.
func (s *HierarchyService) GetTree(ctx context.Context, hierarchyID uuid.UUID) ([]*TreeNode, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*TreeNode, error) {
		nodes, err := s.repo.GetNodes(txCtx, hierarchyID)
		if err != nil {
			return nil, err
		}
		return buildTree(nodes), nil
	})
}

func (s *HierarchyService) GetDefinitions(ctx context.Context, params *hierarchy.DefinitionFindParams) ([]*hierarchy.Definition, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*hierarchy.Definition, error) {
		return s.repo.GetDefinitions(txCtx, params)
	})
}

func findNode(nodes []*hierarchy.Node, id uuid.UUID) *hierarchy.Node {
	for _, n := range nodes {
		if n.ID() == id {
			return n
		}
	}
	return nil
}

func childrenByParent(nodes []*hierarchy.Node) map[uuid.UUID][]*hierarchy.Node {
	children := make(map[uuid.UUID][]*hierarchy.Node, len(nodes))
	for _, n := range nodes {
		parentID := uuid.Nil
		if n.ParentID() != nil {
			parentID = *n.ParentID()
		}
		children[parentID] = append(children[parentID], n)
	}
	for parentID := range children {
		siblings := children[parentID]
		sort.SliceStable(siblings, func(i, j int) bool {
			ci := strings.TrimSpace(siblings[i].Code())
			cj := strings.TrimSpace(siblings[j].Code())
			if ci != cj {
				return ci < cj
			}
			return siblings[i].ID().String() < siblings[j].ID().String()
		})
		children[parentID] = siblings
	}
	return children
}

// recomputeSubtree rewrites path and level of every descendant of root from
// root's current placement, iteratively with an explicit stack.
func recomputeSubtree(nodes []*hierarchy.Node, root *hierarchy.Node) {
	children := childrenByParent(nodes)
	stack := []*hierarchy.Node{root}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range children[current.ID()] {
			child.SetPlacement(child.ParentID(), hierarchy.ChildPath(current.Path(), child.ID()), current.Level()+1)
			stack = append(stack, child)
		}
	}
}

// assignNestedSet renumbers lft/rgt across the whole hierarchy with a
// depth-first walk. Correct for arbitrary trees, not only linear chains.
func assignNestedSet(nodes []*hierarchy.Node) {
	children := childrenByParent(nodes)
	counter := 0

	var walk func(n *hierarchy.Node)
	walk = func(n *hierarchy.Node) {
		counter++
		lft := counter
		for _, child := range children[n.ID()] {
			walk(child)
		}
		counter++
		n.SetNestedSet(lft, counter)
	}

	byID := make(map[uuid.UUID]struct{}, len(nodes))
	for _, n := range nodes {
		byID[n.ID()] = struct{}{}
	}
	for _, root := range nodes {
		// Roots include nodes whose parent is outside the active set, so a
		// corrupted tree still gets consistent numbering.
		if root.ParentID() == nil {
			walk(root)
			continue
		}
		if _, ok := byID[*root.ParentID()]; !ok {
			walk(root)
		}
	}
}

func buildTree(nodes []*hierarchy.Node) []*TreeNode {
	children := childrenByParent(nodes)
	byID := make(map[uuid.UUID]struct{}, len(nodes))
	for _, n := range nodes {
		byID[n.ID()] = struct{}{}
	}

	var build func(n *hierarchy.Node) *TreeNode
	build = func(n *hierarchy.Node) *TreeNode {
		tn := &TreeNode{Node: n}
		for _, child := range children[n.ID()] {
			tn.Children = append(tn.Children, build(child))
		}
		return tn
	}

	roots := make([]*TreeNode, 0, 4)
	for _, n := range nodes {
		if n.ParentID() == nil {
			roots = append(roots, build(n))
			continue
		}
		if _, ok := byID[*n.ParentID()]; !ok {
			roots = append(roots, build(n))
		}
	}
	return roots
}
