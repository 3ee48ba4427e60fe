package engine

import (
	"log"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hailam/stackplay/internal/board"
)

// NumWorkers is the number of parallel analysis workers (matches CPU cores).
var NumWorkers = runtime.GOMAXPROCS(0)

// Limits specifies constraints on an analysis run.
type Limits struct {
	Depth    int           // Maximum lookahead depth (0 = full queue)
	Nodes    uint64        // Maximum nodes expanded (0 = no limit)
	MoveTime time.Duration // Wall-clock budget (0 = no limit)
	Multi    int           // Number of suggestions to return (0 or 1 = best only)
}

// Info reports analysis progress through the OnInfo callback.
type Info struct {
	Depth  int
	Rating int64
	Nodes  uint64
	Time   time.Duration
}

// Suggestion is one recommended line: the successor index chosen at each
// depth from the root, its rating, and how deep the line goes. The first
// trace entry identifies the immediate placement; consumers re-run an
// identically primed finder and match on that index to reconstruct it.
type Suggestion struct {
	Trace  []int
	Rating int64
	Depth  int
}

// Engine drives the placement search: it owns the shape table and scoring
// weights and fans analysis out over worker goroutines, each with its own
// finder and matrix copies. The engine itself holds no per-position state
// besides the root width used for contract checking.
type Engine struct {
	table    *board.ShapeTable
	params   ScoreParams
	stopFlag atomic.Bool
	rootCols int

	// node count of the most recent Analyze call
	lastNodes atomic.Uint64

	// OnInfo, if set, receives progress updates during Analyze. It is
	// called from the collecting goroutine only.
	OnInfo func(Info)
}

// NewEngine creates an engine with the standard shape table and the given
// scoring weights.
func NewEngine(params ScoreParams) *Engine {
	return &Engine{table: board.NewSRS(), params: params}
}

// ShapeTable returns the engine's read-only shape table.
func (e *Engine) ShapeTable() *board.ShapeTable {
	return e.table
}

// Params returns the scoring weights in use.
func (e *Engine) Params() ScoreParams {
	return e.params
}

// RootNode builds the root search node from a snapshot and records the
// snapshot width for successor contract checks.
func (e *Engine) RootNode(ss Snapshot) *Node {
	e.rootCols = ss.Matrix.Cols()
	return NewNode(NewState(ss))
}

// Successor pairs a placement with the node produced by applying it.
type Successor struct {
	Place Placement
	Node  *Node
}

// primeFinder configures f to enumerate every placement available from st:
// the next piece without hold, and the hold alternative with hold.
func primeFinder(f *PlaceFinder, st *State) {
	f.ResetMatrix(st.Matrix())
	next, hold := st.Next()
	if next != board.NoPiece {
		f.PushShape(next, false)
	}
	if hold != board.NoPiece {
		f.PushShape(hold, true)
	}
}

// Successors generates every successor of n, reusing f's backing store.
// A node whose matrix width differs from the engine's root snapshot is a
// contract violation.
func (e *Engine) Successors(n *Node, f *PlaceFinder) []Successor {
	if e.rootCols != 0 && n.State().Matrix().Cols() != e.rootCols {
		panic("engine: node matrix width does not match root snapshot")
	}
	primeFinder(f, n.State())
	var out []Successor
	for {
		pl, ok := f.Next()
		if !ok {
			return out
		}
		out = append(out, Successor{Place: pl, Node: n.Successor(&e.params, pl.Idx, pl)})
	}
}

// workerResult is the best line found under one root placement.
type workerResult struct {
	rootIdx int
	best    *Node
}

// Analyze enumerates the root placements of ss and searches below each one,
// returning up to limits.Multi suggestions ordered best first (lowest
// rating). Workers split the root placements and deepen greedily; the
// wall-clock and node budgets are checked between node expansions.
func (e *Engine) Analyze(ss Snapshot, limits Limits) []Suggestion {
	e.stopFlag.Store(false)
	startTime := time.Now()

	root := e.RootNode(ss)
	roots := e.Successors(root, NewPlaceFinder(e.table))
	if len(roots) == 0 {
		return nil
	}

	maxDepth := len(ss.Queue)
	if ss.Hold != board.NoPiece {
		maxDepth++
	}
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	var totalNodes atomic.Uint64
	totalNodes.Add(uint64(len(roots)))

	resultCh := make(chan workerResult, len(roots))
	var wg sync.WaitGroup
	for w := 0; w < NumWorkers; w++ {
		wg.Add(1)
		go e.analyzeWorker(w, roots, maxDepth, limits, deadline, &totalNodes, resultCh, &wg)
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	best := make([]*Node, len(roots))
	for res := range resultCh {
		cur := best[res.rootIdx]
		if cur == nil || res.best.Rating() < cur.Rating() {
			best[res.rootIdx] = res.best
		}
		if e.OnInfo != nil {
			e.OnInfo(Info{
				Depth:  res.best.Depth(),
				Rating: res.best.Rating(),
				Nodes:  totalNodes.Load(),
				Time:   time.Since(startTime),
			})
		}
	}
	e.stopFlag.Store(true)

	var out []Suggestion
	for _, n := range best {
		if n == nil {
			continue
		}
		out = append(out, Suggestion{Trace: n.Trace(), Rating: n.Rating(), Depth: n.Depth()})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Rating < out[b].Rating
	})
	multi := limits.Multi
	if multi <= 0 {
		multi = 1
	}
	if len(out) > multi {
		out = out[:multi]
	}
	e.lastNodes.Store(totalNodes.Load())
	log.Printf("[Engine] analyzed %d root placements, %d nodes in %v",
		len(roots), totalNodes.Load(), time.Since(startTime).Round(time.Millisecond))
	return out
}

// Nodes returns the number of nodes expanded by the most recent Analyze.
func (e *Engine) Nodes() uint64 {
	return e.lastNodes.Load()
}

// Stop aborts the current analysis; workers observe the flag between node
// expansions.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// analyzeWorker deepens the root placements assigned to this worker. Each
// worker owns its finder (and through it a private matrix copy), so workers
// share nothing but the read-only shape table and the counters.
func (e *Engine) analyzeWorker(id int, roots []Successor, maxDepth int, limits Limits,
	deadline time.Time, totalNodes *atomic.Uint64, resultCh chan<- workerResult, wg *sync.WaitGroup) {
	defer wg.Done()

	finder := NewPlaceFinder(e.table)
	for i := id; i < len(roots); i += NumWorkers {
		if e.shouldStop(limits, deadline, totalNodes) {
			return
		}
		best := e.deepen(roots[i].Node, finder, maxDepth, limits, deadline, totalNodes)
		resultCh <- workerResult{rootIdx: i, best: best}
	}
}

// deepen greedily follows the best-rated successor from n until the depth
// limit, an exhausted queue, a goal, or a budget stop. Returns the
// best-rated node seen on the line.
func (e *Engine) deepen(n *Node, f *PlaceFinder, maxDepth int, limits Limits,
	deadline time.Time, totalNodes *atomic.Uint64) *Node {
	best := n
	cur := n
	for cur.Depth() < maxDepth && !cur.State().IsMaxDepth() && !cur.State().IsGoal() {
		if e.shouldStop(limits, deadline, totalNodes) {
			break
		}
		succs := e.Successors(cur, f)
		if len(succs) == 0 {
			break
		}
		totalNodes.Add(uint64(len(succs)))

		next := succs[0].Node
		for _, s := range succs[1:] {
			if s.Node.Rating() < next.Rating() {
				next = s.Node
			}
		}
		cur = next
		if cur.Rating() < best.Rating() {
			best = cur
		}
	}
	return best
}

func (e *Engine) shouldStop(limits Limits, deadline time.Time, totalNodes *atomic.Uint64) bool {
	if e.stopFlag.Load() {
		return true
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		e.stopFlag.Store(true)
		return true
	}
	if limits.Nodes > 0 && totalNodes.Load() >= limits.Nodes {
		e.stopFlag.Store(true)
		return true
	}
	return false
}
