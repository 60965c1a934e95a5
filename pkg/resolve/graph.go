// Package resolve implements the component graph, the constraint solver
// and the consistency validator for a pack: given the declared set of
// wanted components and the pack's loader/game-version target, it
// computes an assignment of exactly one version per component that
// satisfies every dependency edge, or reports why none exists.
package resolve

import (
	"errors"
	"sort"

	dgraph "github.com/dominikbraun/graph"

	"github.com/invar-dev/invar/pkg/component"
)

// Target holds the two pack-wide scalars every selected version must be
// compatible with. Changing either invalidates the whole assignment.
type Target struct {
	Loader      string
	GameVersion string

	// ForeignLoaders are additional loaders whose components are
	// accepted, for packs running a cross-loader compatibility layer
	// (e.g. fabric mods on quilt).
	ForeignLoaders []string
}

func (t Target) foreignSet() map[string]bool {
	set := make(map[string]bool, len(t.ForeignLoaders))
	for _, l := range t.ForeignLoaders {
		set[l] = true
	}
	return set
}

// Node is one declared component in the graph.
type Node struct {
	ID       component.ID
	Category component.Category
	Origin   string

	// Constraint is the explicit version range from the AddComponent
	// request that introduced the node, if any. It persists across
	// re-resolutions: a pinned component stays pinned until re-added
	// with a different constraint.
	Constraint string
}

// Graph is the mutable aggregate owned by the resolution subsystem for
// the lifetime of one pack session. It is mutated only through the
// solver's commit; concurrent resolutions against one Graph are not
// supported.
type Graph struct {
	nodes    map[component.ID]Node
	selected map[component.ID]*component.Version
}

// NewGraph returns an empty component graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[component.ID]Node),
		selected: make(map[component.ID]*component.Version),
	}
}

// AddNode declares a component as wanted. Re-adding an existing key with
// the same origin updates its constraint; a different origin fails with
// DuplicateComponentError.
func (g *Graph) AddNode(n Node) error {
	if existing, ok := g.nodes[n.ID]; ok {
		if existing.Origin != n.Origin {
			return &DuplicateComponentError{Component: n.ID, Existing: existing.Origin, Requested: n.Origin}
		}
		existing.Constraint = n.Constraint
		g.nodes[n.ID] = existing
		return nil
	}
	g.nodes[n.ID] = n
	return nil
}

// RemoveNode removes a component and its selection. Edges held by other
// selected versions that reference the removed component become dangling;
// they are caught by the validator, not silently dropped.
func (g *Graph) RemoveNode(id component.ID) error {
	if _, ok := g.nodes[id]; !ok {
		return &UnknownComponentError{Component: id}
	}
	delete(g.nodes, id)
	delete(g.selected, id)
	return nil
}

// Node returns the declared node for id.
func (g *Graph) Node(id component.ID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all declared nodes sorted by ID.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Selected returns the version currently assigned to id, if any.
func (g *Graph) Selected(id component.ID) (*component.Version, bool) {
	v, ok := g.selected[id]
	return v, ok
}

// Select assigns a version to a declared component. It exists for
// rehydrating a session from persisted metadata; within a session only
// the solver's commit assigns versions.
func (g *Graph) Select(id component.ID, v component.Version) error {
	if _, ok := g.nodes[id]; !ok {
		return &UnknownComponentError{Component: id}
	}
	g.selected[id] = &v
	return nil
}

// Snapshot is a value-semantics copy of the graph's node set and
// assignment. Versions are immutable, so the copy shares them
// structurally; restoring a snapshot is O(nodes) and cannot observe
// later mutations.
type Snapshot struct {
	nodes    map[component.ID]Node
	selected map[component.ID]*component.Version
}

// Snapshot captures the current state for rollback.
func (g *Graph) Snapshot() Snapshot {
	snap := Snapshot{
		nodes:    make(map[component.ID]Node, len(g.nodes)),
		selected: make(map[component.ID]*component.Version, len(g.selected)),
	}
	for id, n := range g.nodes {
		snap.nodes[id] = n
	}
	for id, v := range g.selected {
		snap.selected[id] = v
	}
	return snap
}

// Restore rewinds the graph to a previously captured snapshot.
func (g *Graph) Restore(snap Snapshot) {
	g.nodes = make(map[component.ID]Node, len(snap.nodes))
	g.selected = make(map[component.ID]*component.Version, len(snap.selected))
	for id, n := range snap.nodes {
		g.nodes[id] = n
	}
	for id, v := range snap.selected {
		g.selected[id] = v
	}
}

// Selection pairs a component with its selected version in a View.
type Selection struct {
	Component component.ID
	Version   component.Version
}

// Edge is one dependency edge in a View, labeled with its constraint.
type Edge struct {
	Source component.ID
	Target component.ID
	Kind   component.DependencyKind
	Range  string
}

// View is a read-only, deterministic snapshot of (nodes, assignment,
// edges) for consumers like the pack exporter. It is only ever taken
// from a committed graph, never mid-resolution, so it is either empty or
// fully consistent.
type View struct {
	Nodes      []Node
	Assignment []Selection
	Edges      []Edge
}

// Selected returns the assigned version for id within the view.
func (v View) Selected(id component.ID) (component.Version, bool) {
	for _, sel := range v.Assignment {
		if sel.Component == id {
			return sel.Version, true
		}
	}
	return component.Version{}, false
}

// ExportView materializes the current graph state. The edge list is
// derived from the selected versions' dependency declarations; edges to
// components that are no longer declared are included so that consumers
// (and the validator) can see dangling references.
func (g *Graph) ExportView() View {
	view := View{Nodes: g.Nodes()}

	ids := make([]component.ID, 0, len(g.selected))
	for id := range g.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// The structural graph deduplicates parallel declarations of the
	// same edge and keeps adjacency queries cheap for consumers.
	structure := dgraph.New(dgraph.StringHash, dgraph.Directed())
	edgeProps := make(map[[2]component.ID][]Edge)

	for _, n := range view.Nodes {
		_ = structure.AddVertex(string(n.ID))
	}

	for _, id := range ids {
		version := g.selected[id]
		view.Assignment = append(view.Assignment, Selection{Component: id, Version: *version})

		for _, dep := range version.Dependencies {
			if err := structure.AddVertex(string(dep.Target)); err != nil && !errors.Is(err, dgraph.ErrVertexAlreadyExists) {
				continue
			}
			edge := Edge{Source: id, Target: dep.Target, Kind: dep.Kind, Range: dep.Range}
			key := [2]component.ID{id, dep.Target}
			if err := structure.AddEdge(string(id), string(dep.Target)); err != nil {
				if !errors.Is(err, dgraph.ErrEdgeAlreadyExists) {
					continue
				}
				// Parallel edge between the same pair: keep both labels.
			}
			edgeProps[key] = append(edgeProps[key], edge)
		}
	}

	adjacency, err := structure.AdjacencyMap()
	if err != nil {
		return view
	}
	sources := make([]string, 0, len(adjacency))
	for source := range adjacency {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		targets := make([]string, 0, len(adjacency[source]))
		for target := range adjacency[source] {
			targets = append(targets, target)
		}
		sort.Strings(targets)
		for _, target := range targets {
			key := [2]component.ID{component.ID(source), component.ID(target)}
			view.Edges = append(view.Edges, edgeProps[key]...)
		}
	}

	return view
}
