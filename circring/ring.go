// ============================================================================
// CIRCRING: ARENA-BACKED CIRCULAR SEQUENCE WITH O(1) CURSOR SPLICES
// ============================================================================
//
// Ring maintains a single cycle of nodes stored in a slotarena.Arena and a
// cursor designating the current node. Two operations move the cursor:
//
//   AdvanceInsert: splice a new node InsertSkip positions clockwise of the
//                  cursor and make it current. Scores 0.
//   RewindRemove:  walk RemoveWalk positions counter-clockwise, unlink that
//                  node, make its successor current. Scores value + removed.
//
// Both run in O(InsertSkip) / O(RemoveWalk) time independent of ring size.
//
// Safety model:
//   - Preconditions (config, underflow, exhaustion) are checked before any
//     mutation and returned as errors.
//   - A failed arena access during a splice means the linkage is corrupt;
//     the engine panics instead of continuing.
//   - Not safe for concurrent use.

package circring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"marblering/slotarena"
)

// ErrUnderflow reports RewindRemove on a ring too small for the walk.
var ErrUnderflow = errors.New("circring: ring too small for remove walk")

// ============================================================================
// CORE DATA STRUCTURE
// ============================================================================

// Ring is a circular sequence of uint64 values with a cursor.
type Ring struct {
	arena  *slotarena.Arena
	cursor slotarena.Handle

	// origin is the initial node, or the successor that inherited its place
	// when it was removed. Only rendering reads it.
	origin slotarena.Handle

	cfg          Config
	minRemoveLen int
}

// New validates cfg and returns the one-node ring [0] with the cursor on it.
// capacityHint pre-sizes the arena for that many live nodes.
func New(cfg Config, capacityHint int) (*Ring, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := slotarena.New(capacityHint)
	h, err := a.Allocate(0)
	if err != nil {
		return nil, fmt.Errorf("circring: seed node: %w", err)
	}
	n, _ := a.GetMut(h)
	n.Next, n.Prev = h, h

	return &Ring{
		arena:        a,
		cursor:       h,
		origin:       h,
		cfg:          cfg,
		minRemoveLen: cfg.minRemoveLen(),
	}, nil
}

// node resolves a handle the ring itself linked. Failure means the cycle is
// already broken.
func (r *Ring) node(h slotarena.Handle) *slotarena.Node {
	n, err := r.arena.GetMut(h)
	if err != nil {
		panic(fmt.Errorf("circring: corrupted linkage: %w", err))
	}
	return n
}

// ============================================================================
// OPERATIONS
// ============================================================================

// Play runs the branch the configured predicate selects for value and
// returns its score.
func (r *Ring) Play(value uint64) (uint64, error) {
	if r.cfg.IsRemove(value) {
		return r.RewindRemove(value)
	}
	return r.AdvanceInsert(value)
}

// AdvanceInsert places value InsertSkip positions clockwise of the cursor
// and moves the cursor onto it. The score is always 0.
func (r *Ring) AdvanceInsert(value uint64) (uint64, error) {
	// n1 sits InsertSkip-1 hops clockwise; the new node goes right after it.
	n1 := r.cursor
	for i := 1; i < r.cfg.InsertSkip; i++ {
		n1 = r.node(n1).Next
	}
	n2 := r.node(n1).Next

	m, err := r.arena.Allocate(value)
	if err != nil {
		return 0, fmt.Errorf("circring: insert %d: %w", value, err)
	}

	// Allocate may have moved the table; resolve pointers afterwards.
	mn := r.node(m)
	mn.Prev, mn.Next = n1, n2
	r.node(n1).Next = m
	r.node(n2).Prev = m

	r.cursor = m
	return 0, nil
}

// RewindRemove takes out the node RemoveWalk positions counter-clockwise of
// the cursor and returns value plus the removed node's value. The removed
// node's successor becomes current.
func (r *Ring) RewindRemove(value uint64) (uint64, error) {
	if live := r.arena.Live(); live < r.minRemoveLen {
		return 0, fmt.Errorf("%w: %d nodes, walk %d needs %d",
			ErrUnderflow, live, r.cfg.RemoveWalk, r.minRemoveLen)
	}

	target := r.cursor
	for i := 0; i < r.cfg.RemoveWalk; i++ {
		target = r.node(target).Prev
	}

	rn := r.node(target)
	score := value + rn.Value
	p, q := rn.Prev, rn.Next

	r.node(p).Next = q
	r.node(q).Prev = p

	r.cursor = q
	if target == r.origin {
		r.origin = q
	}
	if err := r.arena.Release(target); err != nil {
		panic(fmt.Errorf("circring: corrupted linkage: %w", err))
	}
	return score, nil
}

// ============================================================================
// QUERIES
// ============================================================================

// Len returns the number of nodes in the ring.
func (r *Ring) Len() int { return r.arena.Live() }

// Current returns the value under the cursor.
func (r *Ring) Current() uint64 { return r.node(r.cursor).Value }

// Config returns the policy the ring was built with.
func (r *Ring) Config() Config { return r.cfg }

// Values lists the ring clockwise starting at the origin node.
func (r *Ring) Values() []uint64 {
	return r.valuesFrom(r.origin)
}

// ValuesFromCursor lists the ring clockwise starting at the cursor.
func (r *Ring) ValuesFromCursor() []uint64 {
	return r.valuesFrom(r.cursor)
}

func (r *Ring) valuesFrom(start slotarena.Handle) []uint64 {
	out := make([]uint64, 0, r.Len())
	h := start
	for i := 0; i < r.Len(); i++ {
		n := r.node(h)
		out = append(out, n.Value)
		h = n.Next
	}
	return out
}

// cursorOffset is the clockwise distance from origin to cursor.
func (r *Ring) cursorOffset() int {
	h := r.origin
	for i := 0; i < r.Len(); i++ {
		if h == r.cursor {
			return i
		}
		h = r.node(h).Next
	}
	return -1
}

// Render formats the ring clockwise from the origin with the cursor in
// parentheses, e.g. "0 (4) 2 1 3".
func (r *Ring) Render() string {
	var sb strings.Builder
	h := r.origin
	for i := 0; i < r.Len(); i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		n := r.node(h)
		v := strconv.FormatUint(n.Value, 10)
		if h == r.cursor {
			sb.WriteByte('(')
			sb.WriteString(v)
			sb.WriteByte(')')
		} else {
			sb.WriteString(v)
		}
		h = n.Next
	}
	return sb.String()
}

// ============================================================================
// INVARIANT CHECK
// ============================================================================

// Verify walks the ring and reports the first broken invariant: following
// Next exactly Len times from the cursor must return to it and no earlier,
// every Prev must mirror the Next that reached it, and cursor and origin
// must be live members of the cycle. O(n); meant for tests and debugging.
func (r *Ring) Verify() error {
	live := r.arena.Live()
	if live < 1 {
		return errors.New("circring: empty ring")
	}
	if !r.arena.IsLive(r.cursor) {
		return fmt.Errorf("circring: cursor %d not live", r.cursor)
	}
	if !r.arena.IsLive(r.origin) {
		return fmt.Errorf("circring: origin %d not live", r.origin)
	}

	h := r.cursor
	sawOrigin := false
	for i := 0; i < live; i++ {
		if i > 0 && h == r.cursor {
			return fmt.Errorf("circring: cycle closes after %d of %d nodes", i, live)
		}
		if h == r.origin {
			sawOrigin = true
		}
		n, err := r.arena.Get(h)
		if err != nil {
			return fmt.Errorf("circring: step %d: %w", i, err)
		}
		next, err := r.arena.Get(n.Next)
		if err != nil {
			return fmt.Errorf("circring: step %d next: %w", i, err)
		}
		if next.Prev != h {
			return fmt.Errorf("circring: node %d prev is %d, want %d", n.Next, next.Prev, h)
		}
		h = n.Next
	}
	if h != r.cursor {
		return fmt.Errorf("circring: %d steps from cursor %d end at %d", live, r.cursor, h)
	}
	if !sawOrigin {
		return fmt.Errorf("circring: origin %d not on the cycle", r.origin)
	}
	return nil
}
