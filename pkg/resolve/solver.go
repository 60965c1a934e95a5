package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/chainguard-dev/clog"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/repository"
	"github.com/invar-dev/invar/pkg/versions"
)

// Op is the shape of a mutation request.
type Op string

const (
	OpAdd       Op = "add"
	OpRemove    Op = "remove"
	OpUpdateAll Op = "update_all"
)

// Request asks the solver for one graph mutation.
type Request struct {
	Op         Op
	Component  component.ID
	Constraint string
}

// AddComponent requests that a component be added under the given version
// constraint ("" or "*" for any version).
func AddComponent(id component.ID, constraint string) Request {
	return Request{Op: OpAdd, Component: id, Constraint: constraint}
}

// RemoveComponent requests that a component be removed from the pack.
func RemoveComponent(id component.ID) Request {
	return Request{Op: OpRemove, Component: id}
}

// UpdateAll requests a full re-resolution of every declared component.
func UpdateAll() Request {
	return Request{Op: OpUpdateAll}
}

// Change records one component whose selection changed during a
// resolution. Old is empty for additions, New for removals.
type Change struct {
	Component component.ID
	Old       string
	New       string
}

// Report is the outcome of a successful resolution.
type Report struct {
	// View is the committed post-resolution state.
	View View

	// Changes lists the components whose selection changed, ordered by
	// component ID.
	Changes []Change
}

// errSearchBudget guards against pathological backtracking; hitting it
// means the instance is far beyond anything a real pack produces.
var errSearchBudget = errors.New("backtracking search budget exhausted")

const maxSearchSteps = 100000

// Solver turns mutation requests into consistent assignments. One solve
// runs at a time against a given graph; the graph is only mutated once
// the new assignment has passed the validation gate, and any failure
// restores the pre-request snapshot.
type Solver struct {
	graph    *Graph
	provider repository.Provider
	target   Target
}

// NewSolver creates a solver bound to a graph, a metadata provider and
// the pack target.
func NewSolver(graph *Graph, provider repository.Provider, target Target) *Solver {
	return &Solver{graph: graph, provider: provider, target: target}
}

// Graph returns the graph the solver operates on.
func (s *Solver) Graph() *Graph { return s.graph }

// Check runs the standalone consistency check ("doctor") against the
// current committed state. It never mutates the graph.
func (s *Solver) Check() []Violation {
	return Validate(s.graph.ExportView(), s.target)
}

// Resolve executes one mutation request. On any failure the graph is
// byte-for-byte identical to its state before the call.
func (s *Solver) Resolve(ctx context.Context, req Request) (*Report, error) {
	snap := s.graph.Snapshot()
	report, err := s.resolve(ctx, req)
	if err != nil {
		s.graph.Restore(snap)
		return nil, err
	}
	return report, nil
}

func (s *Solver) resolve(ctx context.Context, req Request) (*Report, error) {
	old := s.currentNumbers()

	switch req.Op {
	case OpRemove:
		if err := s.graph.RemoveNode(req.Component); err != nil {
			return nil, err
		}
		// Removal is a structure-level operation: remaining components
		// keep their selections, and any now-dangling required edge is
		// the doctor's to report, not ours to silently repair.
		return s.report(old), nil

	case OpAdd:
		if !versions.ValidRange(req.Constraint) {
			return nil, fmt.Errorf("invalid version constraint %q for %s", req.Constraint, req.Component)
		}
		if err := s.ensureNamedNode(ctx, req.Component, req.Constraint); err != nil {
			return nil, err
		}
		seed := []component.ID{req.Component}
		for _, n := range s.graph.Nodes() {
			if n.ID != req.Component {
				seed = append(seed, n.ID)
			}
		}
		return s.solve(ctx, seed, old)

	case OpUpdateAll:
		var seed []component.ID
		for _, n := range s.graph.Nodes() {
			seed = append(seed, n.ID)
		}
		return s.solve(ctx, seed, old)
	}

	return nil, fmt.Errorf("unknown request op %q", req.Op)
}

func (s *Solver) currentNumbers() map[component.ID]string {
	numbers := make(map[component.ID]string)
	for _, n := range s.graph.Nodes() {
		if v, ok := s.graph.Selected(n.ID); ok {
			numbers[n.ID] = v.Number
		}
	}
	return numbers
}

func (s *Solver) report(old map[component.ID]string) *Report {
	current := s.currentNumbers()

	ids := make(map[component.ID]struct{}, len(old)+len(current))
	for id := range old {
		ids[id] = struct{}{}
	}
	for id := range current {
		ids[id] = struct{}{}
	}
	ordered := make([]component.ID, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	var changes []Change
	for _, id := range ordered {
		if old[id] != current[id] {
			changes = append(changes, Change{Component: id, Old: old[id], New: current[id]})
		}
	}

	return &Report{View: s.graph.ExportView(), Changes: changes}
}

// ensureNamedNode declares the request's component, fetching its project
// record when the component is new to the pack.
func (s *Solver) ensureNamedNode(ctx context.Context, id component.ID, constraint string) error {
	if n, ok := s.graph.Node(id); ok {
		n.Constraint = constraint
		return s.graph.AddNode(n)
	}
	project, err := s.provider.FetchProject(ctx, id)
	if err != nil {
		return err
	}
	return s.graph.AddNode(Node{
		ID:         id,
		Category:   project.Category,
		Origin:     project.Origin,
		Constraint: constraint,
	})
}

// frame is one decision in the backtracking search: a component, its
// pruned candidate list (newest first) and the index of the candidate
// currently assigned.
type frame struct {
	id         component.ID
	candidates []*component.Version
	considered []string
	idx        int
}

func (f *frame) current() *component.Version { return f.candidates[f.idx] }

type searchState struct {
	assignment map[component.ID]*component.Version
	queue      []component.ID
	stack      []*frame
	cache      map[component.ID][]component.Version
	autoAdded  map[component.ID]struct{}
	steps      int

	// deadEnd records the first frame that ran out of candidates, captured
	// before backtracking unwinds the assignments that constrained it.
	deadEnd *UnsatisfiableError
}

func (st *searchState) queued(id component.ID) bool {
	for _, q := range st.queue {
		if q == id {
			return true
		}
	}
	return false
}

// assignedIDs returns the currently assigned components in sorted order,
// so every scan over the partial assignment is deterministic.
func (st *searchState) assignedIDs() []component.ID {
	ids := make([]component.ID, 0, len(st.assignment))
	for id := range st.assignment {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// solve runs a full backtracking re-resolution over the seeded worklist,
// gates the result through the validator and commits it.
func (s *Solver) solve(ctx context.Context, seed []component.ID, old map[component.ID]string) (*Report, error) {
	log := clog.FromContext(ctx)

	st := &searchState{
		assignment: make(map[component.ID]*component.Version),
		queue:      seed,
		cache:      make(map[component.ID][]component.Version),
		autoAdded:  make(map[component.ID]struct{}),
	}

	if err := s.search(ctx, st); err != nil {
		return nil, err
	}

	s.pruneOrphans(st)
	s.graph.selected = st.assignment
	view := s.graph.ExportView()
	if violations := Validate(view, s.target); len(violations) > 0 {
		// The search's incremental checks are partial by design; the
		// validator has the final word.
		return nil, &ValidationError{Violations: violations}
	}

	report := s.report(old)
	log.Debug("resolution committed", "components", len(view.Assignment), "changed", len(report.Changes))
	return report, nil
}

func (s *Solver) search(ctx context.Context, st *searchState) error {
	for {
		id, ok := s.nextPending(st)
		if !ok {
			return nil
		}

		f, err := s.newFrame(ctx, st, id)
		if err != nil {
			return err
		}
		st.stack = append(st.stack, f)

		if err := s.advance(ctx, st, f); err != nil {
			return err
		}
	}
}

func (s *Solver) nextPending(st *searchState) (component.ID, bool) {
	for len(st.queue) > 0 {
		id := st.queue[0]
		st.queue = st.queue[1:]
		if _, assigned := st.assignment[id]; assigned {
			continue
		}
		if _, declared := s.graph.Node(id); !declared {
			continue
		}
		return id, true
	}
	return "", false
}

// newFrame fetches and prunes the candidate versions for a component:
// the node's explicit constraint, the pack target's compatibility sets
// and every inbound range from already-assigned versions all apply.
func (s *Solver) newFrame(ctx context.Context, st *searchState, id component.ID) (*frame, error) {
	all, err := s.fetchVersions(ctx, st, id)
	if err != nil {
		return nil, err
	}

	node, _ := s.graph.Node(id)
	foreign := s.target.foreignSet()

	f := &frame{id: id}
	for i := range all {
		candidate := &all[i]
		f.considered = append(f.considered, candidate.Number)

		if node.Constraint != "" && !versions.SatisfiesRange(candidate.Number, node.Constraint) {
			continue
		}
		if !candidate.SupportsLoader(s.target.Loader, foreign) {
			continue
		}
		if !candidate.SupportsGameVersion(s.target.GameVersion) {
			continue
		}
		if !s.satisfiesInbound(st, id, candidate) {
			continue
		}
		f.candidates = append(f.candidates, candidate)
	}

	// Newest first: the version identifiers order the candidates, and the
	// publish timestamp breaks ties between identifiers that compare
	// equal. The stable sort keeps the registry's list order past that,
	// so identical metadata always yields the same assignment.
	sort.SliceStable(f.candidates, func(i, j int) bool {
		if c := versions.Compare(f.candidates[i].Number, f.candidates[j].Number); c != 0 {
			return c > 0
		}
		return f.candidates[i].Published.After(f.candidates[j].Published)
	})

	return f, nil
}

func (s *Solver) fetchVersions(ctx context.Context, st *searchState, id component.ID) ([]component.Version, error) {
	if cached, ok := st.cache[id]; ok {
		return cached, nil
	}
	fetched, err := s.provider.FetchVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	st.cache[id] = fetched
	return fetched, nil
}

// satisfiesInbound checks a candidate against the Required/Optional
// ranges that already-assigned versions declare on its component.
func (s *Solver) satisfiesInbound(st *searchState, id component.ID, candidate *component.Version) bool {
	for _, aid := range st.assignedIDs() {
		dep, ok := st.assignment[aid].Dependency(id)
		if !ok {
			continue
		}
		switch dep.Kind {
		case component.DependencyRequired, component.DependencyOptional:
			if !versions.SatisfiesRange(candidate.Number, dep.Range) {
				return false
			}
		}
	}
	return true
}

// conflicts checks a tentative candidate against the partial assignment:
// inbound incompatibilities, plus the candidate's own edges against
// already-assigned targets.
func (s *Solver) conflicts(st *searchState, id component.ID, candidate *component.Version) bool {
	for _, aid := range st.assignedIDs() {
		assigned := st.assignment[aid]
		if dep, ok := assigned.Dependency(id); ok {
			if dep.Kind == component.DependencyIncompatible && withinIncompatibleRange(candidate.Number, dep.Range) {
				return true
			}
		}
	}

	for _, dep := range candidate.Dependencies {
		assigned, ok := st.assignment[dep.Target]
		if !ok {
			continue
		}
		switch dep.Kind {
		case component.DependencyRequired, component.DependencyOptional:
			if !versions.SatisfiesRange(assigned.Number, dep.Range) {
				return true
			}
		case component.DependencyIncompatible:
			if withinIncompatibleRange(assigned.Number, dep.Range) {
				return true
			}
		}
	}

	return false
}

// advance assigns the next viable candidate for the top frame,
// backtracking through earlier decisions when the frame is exhausted.
func (s *Solver) advance(ctx context.Context, st *searchState, f *frame) error {
	log := clog.FromContext(ctx)

	for {
		st.steps++
		if st.steps > maxSearchSteps {
			return errSearchBudget
		}

		for f.idx < len(f.candidates) {
			candidate := f.candidates[f.idx]
			if s.conflicts(st, f.id, candidate) {
				f.idx++
				continue
			}

			st.assignment[f.id] = candidate
			if err := s.enqueueRequired(ctx, st, candidate); err != nil {
				return err
			}
			return nil
		}

		// Exhausted. Describe the dead end now, while the assignments that
		// caused it still exist; backtracking is about to delete them, and
		// if the whole search fails this is the conflict worth reporting.
		if st.deadEnd == nil {
			st.deadEnd = s.describeDeadEnd(st, f)
		}

		// Unwind to the most recent decision related to this component and
		// retry it with its next candidate.
		culprit := s.culpritIndex(st, f)
		if culprit < 0 {
			return s.unsatisfiable(st, f)
		}

		log.Debug("backtracking", "component", f.id, "to", st.stack[culprit].id)

		for j := len(st.stack) - 1; j > culprit; j-- {
			popped := st.stack[j]
			delete(st.assignment, popped.id)
			if !st.queued(popped.id) {
				st.queue = append([]component.ID{popped.id}, st.queue...)
			}
		}
		st.stack = st.stack[:culprit+1]

		f = st.stack[culprit]
		delete(st.assignment, f.id)
		f.idx++
	}
}

// culpritIndex finds the most recent earlier decision that constrains the
// exhausted frame: either its selected version declares an edge on the
// failing component, or one of the failing component's releases declares
// an edge back on it.
func (s *Solver) culpritIndex(st *searchState, f *frame) int {
	all := st.cache[f.id]
	for i := len(st.stack) - 2; i >= 0; i-- {
		g := st.stack[i]
		if g.idx >= len(g.candidates) {
			continue
		}
		if _, ok := g.current().Dependency(f.id); ok {
			return i
		}
		for j := range all {
			if _, ok := all[j].Dependency(g.id); ok {
				return i
			}
		}
	}
	return -1
}

func (s *Solver) unsatisfiable(st *searchState, f *frame) error {
	if st.deadEnd != nil {
		return st.deadEnd
	}
	return s.describeDeadEnd(st, f)
}

// describeDeadEnd collects the constraints that left a frame without a
// viable candidate: the node's explicit version constraint, the inbound
// edges from assigned versions, and any edge one of the frame's fetched
// releases declares on an assigned component.
func (s *Solver) describeDeadEnd(st *searchState, f *frame) *UnsatisfiableError {
	node, _ := s.graph.Node(f.id)

	seen := make(map[string]struct{})
	var edges []EdgeRef
	record := func(ref EdgeRef) {
		if _, dup := seen[ref.String()]; dup {
			return
		}
		seen[ref.String()] = struct{}{}
		edges = append(edges, ref)
	}

	for _, aid := range st.assignedIDs() {
		if dep, ok := st.assignment[aid].Dependency(f.id); ok {
			record(EdgeRef{Source: aid, Edge: dep})
		}
	}
	releases := st.cache[f.id]
	for i := range releases {
		for _, dep := range releases[i].Dependencies {
			if _, assigned := st.assignment[dep.Target]; assigned {
				record(EdgeRef{Source: f.id, Edge: dep})
			}
		}
	}

	return &UnsatisfiableError{
		Component:  f.id,
		Constraint: node.Constraint,
		Edges:      edges,
		Considered: f.considered,
	}
}

// pruneOrphans drops components that were pulled in as dependencies
// during the search but ended up unreferenced after backtracking moved
// the graph away from the versions that required them.
func (s *Solver) pruneOrphans(st *searchState) {
	for {
		var orphan component.ID
		for _, n := range s.graph.Nodes() {
			if _, auto := st.autoAdded[n.ID]; !auto {
				continue
			}
			required := false
			for _, id := range st.assignedIDs() {
				if id == n.ID {
					continue
				}
				if dep, ok := st.assignment[id].Dependency(n.ID); ok && dep.Kind == component.DependencyRequired {
					required = true
					break
				}
			}
			if !required {
				orphan = n.ID
				break
			}
		}
		if orphan == "" {
			return
		}
		delete(st.autoAdded, orphan)
		delete(st.assignment, orphan)
		_ = s.graph.RemoveNode(orphan)
	}
}

// enqueueRequired pushes the assigned candidate's Required targets onto
// the worklist, declaring nodes for targets the pack doesn't know yet.
func (s *Solver) enqueueRequired(ctx context.Context, st *searchState, candidate *component.Version) error {
	var pending []component.ID
	for _, dep := range candidate.Dependencies {
		if dep.Kind != component.DependencyRequired {
			continue
		}
		if _, assigned := st.assignment[dep.Target]; assigned {
			continue
		}
		if _, declared := s.graph.Node(dep.Target); !declared {
			project, err := s.provider.FetchProject(ctx, dep.Target)
			if err != nil {
				return err
			}
			if err := s.graph.AddNode(Node{
				ID:       dep.Target,
				Category: project.Category,
				Origin:   project.Origin,
			}); err != nil {
				return err
			}
			st.autoAdded[dep.Target] = struct{}{}
		}
		if !st.queued(dep.Target) {
			pending = append(pending, dep.Target)
		}
	}
	if len(pending) > 0 {
		st.queue = append(pending, st.queue...)
	}
	return nil
}
