package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invar-dev/invar/pkg/component"
)

func viewOf(graph *Graph) View { return graph.ExportView() }

func TestValidateLoaderAndGameVersion(t *testing.T) {
	graph := NewGraph()
	require.NoError(t, graph.AddNode(Node{ID: "jei", Category: component.CategoryMod, Origin: "remote"}))

	v := release("jei", "12.0.0", 0)
	v.Loaders = []string{"forge"}
	v.GameVersions = []string{"1.19.4"}
	require.NoError(t, graph.Select("jei", v))

	violations := Validate(viewOf(graph), testTarget())
	require.Len(t, violations, 2)
	assert.Equal(t, LoaderMismatch, violations[0].Kind)
	assert.Equal(t, GameVersionMismatch, violations[1].Kind)
}

func TestValidateOptionalOnlyConstrainsWhenPresent(t *testing.T) {
	graph := NewGraph()
	require.NoError(t, graph.AddNode(Node{ID: "app", Origin: "remote"}))

	v := release("app", "1.0.0", 0, component.Dependency{
		Target: "extra", Kind: component.DependencyOptional, Range: ">=2.0",
	})
	require.NoError(t, graph.Select("app", v))

	// Absent optional target: fine.
	assert.Empty(t, Validate(viewOf(graph), testTarget()))

	// Present but out of range: violation.
	require.NoError(t, graph.AddNode(Node{ID: "extra", Origin: "remote"}))
	require.NoError(t, graph.Select("extra", release("extra", "1.0.0", 0)))

	violations := Validate(viewOf(graph), testTarget())
	require.Len(t, violations, 1)
	assert.Equal(t, RangeNotSatisfied, violations[0].Kind)
	assert.Equal(t, "1.0.0", violations[0].Actual)
}

func TestValidateEmbeddedNeedsNoSelection(t *testing.T) {
	graph := NewGraph()
	require.NoError(t, graph.AddNode(Node{ID: "app", Origin: "remote"}))

	v := release("app", "1.0.0", 0, component.Dependency{
		Target: "bundled-lib", Kind: component.DependencyEmbedded,
	})
	require.NoError(t, graph.Select("app", v))

	assert.Empty(t, Validate(viewOf(graph), testTarget()))
}

func TestValidateIncompatibleEmptyRangeForbidsAll(t *testing.T) {
	graph := NewGraph()
	require.NoError(t, graph.AddNode(Node{ID: "optifine", Origin: "remote"}))
	require.NoError(t, graph.AddNode(Node{ID: "sodium", Origin: "remote"}))

	require.NoError(t, graph.Select("optifine", release("optifine", "1.0.0", 0, incompatible("sodium", ""))))
	require.NoError(t, graph.Select("sodium", release("sodium", "0.5.0", 0)))

	violations := Validate(viewOf(graph), testTarget())
	require.Len(t, violations, 1)
	assert.Equal(t, IncompatiblePair, violations[0].Kind)
	assert.Equal(t, component.ID("optifine"), violations[0].Component)
	assert.Equal(t, component.ID("sodium"), violations[0].Target)
}

func TestExportViewIsSortedAndCarriesEdges(t *testing.T) {
	graph := NewGraph()
	require.NoError(t, graph.AddNode(Node{ID: "b", Origin: "remote"}))
	require.NoError(t, graph.AddNode(Node{ID: "a", Origin: "remote"}))
	require.NoError(t, graph.Select("b", release("b", "1.0.0", 0, requires("a", ">=1.0"))))
	require.NoError(t, graph.Select("a", release("a", "1.0.0", 0)))

	view := graph.ExportView()
	require.Len(t, view.Nodes, 2)
	assert.Equal(t, component.ID("a"), view.Nodes[0].ID)
	assert.Equal(t, component.ID("b"), view.Nodes[1].ID)

	require.Len(t, view.Edges, 1)
	assert.Equal(t, component.ID("b"), view.Edges[0].Source)
	assert.Equal(t, component.ID("a"), view.Edges[0].Target)
	assert.Equal(t, ">=1.0", view.Edges[0].Range)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	graph := NewGraph()
	require.NoError(t, graph.AddNode(Node{ID: "a", Origin: "remote"}))
	require.NoError(t, graph.Select("a", release("a", "1.0.0", 0)))

	snap := graph.Snapshot()

	require.NoError(t, graph.AddNode(Node{ID: "b", Origin: "remote"}))
	require.NoError(t, graph.RemoveNode("a"))

	graph.Restore(snap)
	require.Len(t, graph.Nodes(), 1)
	v, ok := graph.Selected("a")
	require.True(t, ok)
	assert.Equal(t, "1.0.0", v.Number)
}
