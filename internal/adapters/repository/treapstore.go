package repository

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/courtside/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then id ASC (deterministic). "less" means ranks
// earlier, so in-order traversal yields the board from best to worst.
// Boards are rebuilt on every refresh; reads go through an immutable
// snapshot so a Replace never exposes a half-built tree. TopN walks only
// the leftmost n nodes; Rank reads the rank stored on the node.

type node struct {
	id    string
	name  string
	score float64
	rank  int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aScore float64, aID string, bScore float64, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, fresh *node) *node {
	if n == nil {
		return fresh
	}
	if less(fresh.score, fresh.id, n.score, n.id) {
		n.left = insert(n.left, fresh)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, fresh)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.entry())
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

func (n *node) entry() Entry {
	return Entry{ID: n.id, Name: n.name, Score: n.score, Rank: n.rank}
}

// assignRanks walks in order giving dense ranks: equal scores share a rank
// and the next distinct score takes the next rank.
func assignRanks(n *node, byID map[string]*node, prev *node, rank *int) *node {
	if n == nil {
		return prev
	}
	prev = assignRanks(n.left, byID, prev, rank)
	if prev == nil || prev.score != n.score {
		*rank++
	}
	n.rank = *rank
	byID[n.id] = n
	return assignRanks(n.right, byID, n, rank)
}

// snapshot is one immutable published board.
type snapshot struct {
	root *node
	byID map[string]*node
}

// TreapStore is a Store backed by a treap per published snapshot.
type TreapStore struct {
	mu   sync.Mutex // serializes writers
	kind string
	seed uint64

	current atomic.Pointer[snapshot]
}

// NewTreapStore constructs an empty board.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{kind: "board"}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&snapshot{byID: map[string]*node{}})
	return s
}

// Replace implements Store.Replace. Entries with non-finite scores are
// left off the board.
func (s *TreapStore) Replace(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latest := make(map[string]Entry, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		if math.IsNaN(e.Score) || math.IsInf(e.Score, 0) {
			continue
		}
		if _, seen := latest[e.ID]; !seen {
			order = append(order, e.ID)
		}
		latest[e.ID] = e
	}

	rng := rand.New(rand.NewPCG(s.seed, uint64(len(latest))))
	if s.seed == 0 {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	var root *node
	for _, id := range order {
		e := latest[id]
		root = insert(root, &node{id: e.ID, name: e.Name, score: e.Score, prio: rng.Uint64(), size: 1})
	}

	byID := make(map[string]*node, len(latest))
	var rank int
	assignRanks(root, byID, nil, &rank)

	s.current.Store(&snapshot{root: root, byID: byID})
	metrics.UpdateBoardSize(s.kind, len(byID))
	return nil
}

// Rank returns the current rank and score for an id in O(1).
func (s *TreapStore) Rank(ctx context.Context, id string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	n, ok := s.current.Load().byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return n.entry(), nil
}

// TopN returns the top N entries ordered by score desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	snap := s.current.Load()
	out := make([]Entry, 0, min(n, nsize(snap.root)))
	collectTopN(snap.root, n, &out)
	return out, nil
}

// Count returns the number of entries.
func (s *TreapStore) Count(ctx context.Context) int {
	return len(s.current.Load().byID)
}

// Depth returns the height of the current tree.
func (s *TreapStore) Depth() int {
	return depth(s.current.Load().root)
}

func depth(n *node) int {
	if n == nil {
		return 0
	}
	return 1 + max(depth(n.left), depth(n.right))
}
