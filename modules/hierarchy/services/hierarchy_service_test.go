package services_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/hierarchy"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/itf"
)

var errMockNotFound = errors.New("not found")

type mockHierarchyRepo struct {
	definitions   map[uuid.UUID]*hierarchy.Definition
	nodes         map[uuid.UUID]*hierarchy.Node
	relationships []*hierarchy.Relationship
}

func newMockHierarchyRepo() *mockHierarchyRepo {
	return &mockHierarchyRepo{
		definitions: make(map[uuid.UUID]*hierarchy.Definition),
		nodes:       make(map[uuid.UUID]*hierarchy.Node),
	}
}

func (m *mockHierarchyRepo) CreateDefinition(_ context.Context, data *hierarchy.Definition) (*hierarchy.Definition, error) {
	m.definitions[data.ID()] = data
	return data, nil
}

func (m *mockHierarchyRepo) GetDefinitionByID(_ context.Context, id uuid.UUID) (*hierarchy.Definition, error) {
	def, ok := m.definitions[id]
	if !ok {
		return nil, errMockNotFound
	}
	return def, nil
}

func (m *mockHierarchyRepo) GetDefinitions(_ context.Context, _ *hierarchy.DefinitionFindParams) ([]*hierarchy.Definition, error) {
	out := make([]*hierarchy.Definition, 0, len(m.definitions))
	for _, def := range m.definitions {
		out = append(out, def)
	}
	return out, nil
}

func (m *mockHierarchyRepo) UpdateDefinition(_ context.Context, data *hierarchy.Definition) error {
	m.definitions[data.ID()] = data
	return nil
}

func (m *mockHierarchyRepo) CreateNode(_ context.Context, data *hierarchy.Node) (*hierarchy.Node, error) {
	m.nodes[data.ID()] = data
	return data, nil
}

func (m *mockHierarchyRepo) GetNodeByID(_ context.Context, id uuid.UUID) (*hierarchy.Node, error) {
	node, ok := m.nodes[id]
	if !ok {
		return nil, services.ErrNodeNotInTree
	}
	return node, nil
}

func (m *mockHierarchyRepo) GetNodes(_ context.Context, hierarchyID uuid.UUID) ([]*hierarchy.Node, error) {
	out := make([]*hierarchy.Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		if node.HierarchyID() == hierarchyID && node.IsActive() {
			out = append(out, node)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Left() < out[j].Left() })
	return out, nil
}

func (m *mockHierarchyRepo) UpdateNode(_ context.Context, data *hierarchy.Node) error {
	m.nodes[data.ID()] = data
	return nil
}

func (m *mockHierarchyRepo) UpdateNodePlacements(_ context.Context, nodes []*hierarchy.Node) error {
	for _, node := range nodes {
		m.nodes[node.ID()] = node
	}
	return nil
}

func (m *mockHierarchyRepo) CreateRelationship(_ context.Context, data *hierarchy.Relationship) (*hierarchy.Relationship, error) {
	m.relationships = append(m.relationships, data)
	return data, nil
}

func (m *mockHierarchyRepo) GetRelationshipsForNode(_ context.Context, nodeID uuid.UUID) ([]*hierarchy.Relationship, error) {
	out := make([]*hierarchy.Relationship, 0, 4)
	for _, rel := range m.relationships {
		if rel.ParentNodeID() == nodeID || rel.ChildNodeID() == nodeID {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (m *mockHierarchyRepo) UpdateRelationship(_ context.Context, _ *hierarchy.Relationship) error {
	return nil
}

func setupHierarchyService() (*services.HierarchyService, *mockHierarchyRepo, context.Context) {
	repo := newMockHierarchyRepo()
	svc := services.NewHierarchyService(repo, eventbus.NewEventPublisher(logrus.New()))
	return svc, repo, itf.NewTestContext().Build()
}

func threeLevelSpecs() []services.LevelSpec {
	return []services.LevelSpec{
		{Name: "CEO", Code: "A", SpanOfControl: 5},
		{Name: "Manager", Code: "B", SpanOfControl: 8},
		{Name: "Employee", Code: "C"},
	}
}

func TestBuildHierarchy_Chain(t *testing.T) {
	svc, repo, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)
	require.Len(t, result.Nodes, 3)

	root, mid, leaf := result.Nodes[0], result.Nodes[1], result.Nodes[2]

	require.Nil(t, root.ParentID())
	require.Equal(t, 0, root.Level())
	require.Equal(t, root.ID().String(), root.Path())

	require.Equal(t, root.ID(), *mid.ParentID())
	require.Equal(t, 1, mid.Level())
	require.Equal(t, root.Path()+"/"+mid.ID().String(), mid.Path())

	require.Equal(t, mid.ID(), *leaf.ParentID())
	require.Equal(t, 2, leaf.Level())
	require.Equal(t, mid.Path()+"/"+leaf.ID().String(), leaf.Path())

	require.Equal(t, 1, root.Left())
	require.Equal(t, 6, root.Right())
	require.Equal(t, 2, mid.Left())
	require.Equal(t, 5, mid.Right())
	require.Equal(t, 3, leaf.Left())
	require.Equal(t, 4, leaf.Right())

	require.Len(t, repo.relationships, 2)
	for _, rel := range repo.relationships {
		require.Equal(t, hierarchy.RelationshipDirect, rel.Type())
	}
}

func TestBuildHierarchy_NoLevels(t *testing.T) {
	svc, _, ctx := setupHierarchyService()

	_, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", nil)
	require.ErrorIs(t, err, services.ErrNoLevels)
}

func TestBuildHierarchy_DuplicateCode(t *testing.T) {
	svc, _, ctx := setupHierarchyService()

	_, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", []services.LevelSpec{
		{Name: "CEO", Code: "A"},
		{Name: "COO", Code: "A"},
	})
	require.ErrorIs(t, err, services.ErrDuplicateCode)
}

func TestValidateIntegrity_Valid(t *testing.T) {
	svc, _, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)

	report, err := svc.ValidateIntegrity(ctx, result.Definition.ID())
	require.NoError(t, err)
	require.True(t, report.IsValid)
	require.Empty(t, report.Issues)
	require.Empty(t, report.Warnings)
	require.Equal(t, 3, report.NodeCount)
	require.Equal(t, 2, report.MaxDepth)
	require.False(t, report.ValidatedAt.IsZero())
}

func TestValidateIntegrity_CycleReportedOnce(t *testing.T) {
	svc, repo, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)

	// Point the root's parent at the leaf so A -> B -> C -> A closes a loop.
	root, leaf := result.Nodes[0], result.Nodes[2]
	leafID := leaf.ID()
	root.SetPlacement(&leafID, root.Path(), root.Level())
	require.NoError(t, repo.UpdateNodePlacements(ctx, []*hierarchy.Node{root}))

	report, err := svc.ValidateIntegrity(ctx, result.Definition.ID())
	require.NoError(t, err)
	require.False(t, report.IsValid)
	require.Len(t, report.Issues, 1)
	require.Equal(t, services.IssueCircularReference, report.Issues[0].Code)
}

func TestValidateIntegrity_ChainIntoCycleReportedOnce(t *testing.T) {
	svc, repo, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)

	// Close a two-node loop between root and mid; the leaf's chain now
	// drains into the loop and must not produce a second issue.
	root, mid := result.Nodes[0], result.Nodes[1]
	midID := mid.ID()
	root.SetPlacement(&midID, root.Path(), root.Level())
	require.NoError(t, repo.UpdateNodePlacements(ctx, []*hierarchy.Node{root}))

	report, err := svc.ValidateIntegrity(ctx, result.Definition.ID())
	require.NoError(t, err)
	require.False(t, report.IsValid)
	require.Len(t, report.Issues, 1)
	require.Equal(t, services.IssueCircularReference, report.Issues[0].Code)
}

func TestValidateIntegrity_OrphanedNode(t *testing.T) {
	svc, repo, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)

	// Deactivating the middle node directly strands the leaf.
	mid := result.Nodes[1]
	mid.Deactivate()
	require.NoError(t, repo.UpdateNode(ctx, mid))

	report, err := svc.ValidateIntegrity(ctx, result.Definition.ID())
	require.NoError(t, err)
	require.False(t, report.IsValid)
	require.Len(t, report.Issues, 1)
	require.Equal(t, services.IssueOrphanedNode, report.Issues[0].Code)
	require.Equal(t, result.Nodes[2].ID(), report.Issues[0].NodeID)
}

func TestValidateIntegrity_DepthWarning(t *testing.T) {
	svc, _, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(
		ctx,
		hierarchy.TypeOrganizational,
		"Org",
		threeLevelSpecs(),
		hierarchy.WithMaxDepth(1),
	)
	require.NoError(t, err)

	report, err := svc.ValidateIntegrity(ctx, result.Definition.ID())
	require.NoError(t, err)
	require.True(t, report.IsValid)
	require.Len(t, report.Warnings, 1)
	require.Equal(t, services.WarningDepthExceeded, report.Warnings[0].Code)
}

func TestAddNode_UnderParent(t *testing.T) {
	svc, _, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)

	mid := result.Nodes[1]
	midID := mid.ID()
	node, err := svc.AddNode(ctx, result.Definition.ID(), &midID, "Analyst", "D", hierarchy.NodeMetadata{SalaryTier: "T3"})
	require.NoError(t, err)
	require.Equal(t, 2, node.Level())
	require.Equal(t, mid.Path()+"/"+node.ID().String(), node.Path())

	report, err := svc.ValidateIntegrity(ctx, result.Definition.ID())
	require.NoError(t, err)
	require.True(t, report.IsValid)
	require.Equal(t, 4, report.NodeCount)
}

func TestAddNode_ParentNotFound(t *testing.T) {
	svc, _, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)

	missing := uuid.New()
	_, err = svc.AddNode(ctx, result.Definition.ID(), &missing, "Analyst", "D", hierarchy.NodeMetadata{})
	require.ErrorIs(t, err, services.ErrParentNotFound)
}

func TestReparentNode_MovesSubtree(t *testing.T) {
	svc, repo, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)
	root, mid, leaf := result.Nodes[0], result.Nodes[1], result.Nodes[2]

	// New branch under the root, then move the old middle branch below it.
	rootID := root.ID()
	branch, err := svc.AddNode(ctx, result.Definition.ID(), &rootID, "Division", "Z", hierarchy.NodeMetadata{})
	require.NoError(t, err)

	branchID := branch.ID()
	require.NoError(t, svc.ReparentNode(ctx, mid.ID(), &branchID))

	moved, err := repo.GetNodeByID(ctx, mid.ID())
	require.NoError(t, err)
	require.Equal(t, branch.ID(), *moved.ParentID())
	require.Equal(t, 2, moved.Level())
	require.Equal(t, branch.Path()+"/"+moved.ID().String(), moved.Path())

	descendant, err := repo.GetNodeByID(ctx, leaf.ID())
	require.NoError(t, err)
	require.Equal(t, 3, descendant.Level())
	require.Equal(t, moved.Path()+"/"+descendant.ID().String(), descendant.Path())

	report, err := svc.ValidateIntegrity(ctx, result.Definition.ID())
	require.NoError(t, err)
	require.True(t, report.IsValid)
}

func TestReparentNode_RejectsOwnSubtree(t *testing.T) {
	svc, _, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)
	root, leaf := result.Nodes[0], result.Nodes[2]

	leafID := leaf.ID()
	err = svc.ReparentNode(ctx, root.ID(), &leafID)
	require.ErrorIs(t, err, services.ErrParentInSubtree)
}

func TestDeactivateNode_LeafOnly(t *testing.T) {
	svc, repo, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)
	mid, leaf := result.Nodes[1], result.Nodes[2]

	err = svc.DeactivateNode(ctx, mid.ID())
	require.ErrorIs(t, err, services.ErrNodeHasChildren)

	require.NoError(t, svc.DeactivateNode(ctx, leaf.ID()))
	nodes, err := repo.GetNodes(ctx, result.Definition.ID())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
}

func TestGetTree_SortsSiblingsByCode(t *testing.T) {
	svc, _, ctx := setupHierarchyService()

	result, err := svc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", []services.LevelSpec{
		{Name: "CEO", Code: "A"},
	})
	require.NoError(t, err)
	root := result.Nodes[0]
	rootID := root.ID()

	_, err = svc.AddNode(ctx, result.Definition.ID(), &rootID, "Sales", "S", hierarchy.NodeMetadata{})
	require.NoError(t, err)
	_, err = svc.AddNode(ctx, result.Definition.ID(), &rootID, "Engineering", "E", hierarchy.NodeMetadata{})
	require.NoError(t, err)

	roots, err := svc.GetTree(ctx, result.Definition.ID())
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 2)
	require.Equal(t, "E", roots[0].Children[0].Node.Code())
	require.Equal(t, "S", roots[0].Children[1].Node.Code())
}
