// Package planner turns a goal predicate into a sequence of actions with a
// best-first search over world states.
//
// The heuristic counts unsatisfied goal conditions. It is not admissible in
// general (one condition may need several actions), and a state that has been
// expanded is never expanded again even if a cheaper path to it turns up
// later. Plans are therefore short and reproducible but not guaranteed to be
// the cheapest.
package planner

import (
	"github.com/emirpasic/gods/queues/priorityqueue"
	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/models"
	"go.uber.org/zap"
)

// DefaultMaxExpansions bounds the search when no option overrides it.
const DefaultMaxExpansions = 5000

// Result describes a finished search.
type Result struct {
	Actions   []catalog.ActionID
	Cost      int
	Expanded  int
	Found     bool
	Exhausted bool // the expansion bound was reached
}

// Planner is safe for concurrent use; it keeps no state between searches.
type Planner struct {
	catalog       *catalog.Catalog
	maxExpansions int
	logger        *zap.Logger
}

type Option func(*Planner)

// WithMaxExpansions bounds the number of states a search may expand.
// Values below 1 are ignored.
func WithMaxExpansions(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.maxExpansions = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

func New(cat *catalog.Catalog, opts ...Option) *Planner {
	p := &Planner{
		catalog:       cat,
		maxExpansions: DefaultMaxExpansions,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxExpansions returns the configured search bound.
func (p *Planner) MaxExpansions() int { return p.maxExpansions }

type node struct {
	state models.WorldState
	g, f  int
	seq   int
	path  []catalog.ActionID
}

// byPriority orders nodes by f, then g, then insertion order.
func byPriority(a, b interface{}) int {
	x, y := a.(*node), b.(*node)
	switch {
	case x.f != y.f:
		return compareInt(x.f, y.f)
	case x.g != y.g:
		return compareInt(x.g, y.g)
	default:
		return compareInt(x.seq, y.seq)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Plan returns the actions leading from start to a state satisfying goal.
// An empty, non-nil slice means no plan was found; a start that already
// satisfies goal also yields an empty slice, which Search distinguishes.
func (p *Planner) Plan(start models.WorldState, goal catalog.Conditions) []catalog.ActionID {
	return p.Search(start, goal).Actions
}

// Search runs the best-first search and reports how it went.
func (p *Planner) Search(start models.WorldState, goal catalog.Conditions) Result {
	frontier := priorityqueue.NewWith(byPriority)
	visited := make(map[models.WorldState]struct{})
	seq := 0

	h := goal.Unsatisfied(start)
	frontier.Enqueue(&node{state: start, f: h})

	actions := p.catalog.Actions()
	res := Result{Actions: []catalog.ActionID{}}
	for !frontier.Empty() {
		v, _ := frontier.Dequeue()
		cur := v.(*node)
		if _, seen := visited[cur.state]; seen {
			continue
		}
		if goal.Satisfied(cur.state) {
			res.Actions = append(res.Actions, cur.path...)
			res.Cost = cur.g
			res.Found = true
			p.logger.Debug("Plan found",
				zap.Int("expanded", res.Expanded),
				zap.Int("cost", res.Cost),
				zap.Int("length", len(res.Actions)))
			return res
		}
		// Reaching a goal node does not count against the bound; expanding does.
		if res.Expanded >= p.maxExpansions {
			res.Exhausted = true
			p.logger.Debug("Search bound reached",
				zap.Int("expanded", res.Expanded),
				zap.Int("frontier", frontier.Size()))
			return res
		}
		visited[cur.state] = struct{}{}
		res.Expanded++

		for _, a := range actions {
			if !a.Applicable(cur.state) {
				continue
			}
			next := a.Apply(cur.state)
			if _, seen := visited[next]; seen {
				continue
			}
			seq++
			g := cur.g + a.Cost
			path := make([]catalog.ActionID, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)
			frontier.Enqueue(&node{
				state: next,
				g:     g,
				f:     g + goal.Unsatisfied(next),
				seq:   seq,
				path:  append(path, a.ID),
			})
		}
	}

	p.logger.Debug("Frontier exhausted without a plan", zap.Int("expanded", res.Expanded))
	return res
}
