package leaderboard

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"

	"mathquest/core"
)

// SkipList keeps entries ordered by (score desc, user asc) with
// O(log n) updates. Each user appears at most once; Update moves an
// existing entry to its new position.
type SkipList struct {
	mu    sync.RWMutex
	head  *slNode
	depth int
	index map[core.UserID]*slNode
	rng   *rand.Rand
}

type slNode struct {
	entry   Entry
	forward []*slNode
}

const (
	slMaxDepth = 16
	slPromote  = 0.25
)

func NewSkipList() *SkipList {
	var buf [16]byte
	_, _ = cryptorand.Read(buf[:])
	rng := rand.New(rand.NewSource(int64(
		binary.LittleEndian.Uint64(buf[:8]) ^ binary.LittleEndian.Uint64(buf[8:]),
	)))
	return &SkipList{
		head:  &slNode{forward: make([]*slNode, slMaxDepth)},
		depth: 1,
		index: make(map[core.UserID]*slNode),
		rng:   rng,
	}
}

// entryBefore reports whether a sorts ahead of b.
func entryBefore(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.User < b.User
}

// seek returns, per level, the last node sorting ahead of e.
func (s *SkipList) seek(e Entry) []*slNode {
	prev := make([]*slNode, slMaxDepth)
	cur := s.head
	for lvl := s.depth - 1; lvl >= 0; lvl-- {
		for cur.forward[lvl] != nil && entryBefore(cur.forward[lvl].entry, e) {
			cur = cur.forward[lvl]
		}
		prev[lvl] = cur
	}
	return prev
}

func (s *SkipList) rollDepth() int {
	d := 1
	for d < slMaxDepth && s.rng.Float64() < slPromote {
		d++
	}
	return d
}

// Update inserts the user or moves them to the new score.
func (s *SkipList) Update(user core.UserID, score int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.index[user]; ok {
		s.unlink(old)
	}
	e := Entry{User: user, Score: score}
	prev := s.seek(e)
	d := s.rollDepth()
	if d > s.depth {
		for lvl := s.depth; lvl < d; lvl++ {
			prev[lvl] = s.head
		}
		s.depth = d
	}
	n := &slNode{entry: e, forward: make([]*slNode, d)}
	for lvl := 0; lvl < d; lvl++ {
		n.forward[lvl] = prev[lvl].forward[lvl]
		prev[lvl].forward[lvl] = n
	}
	s.index[user] = n
}

func (s *SkipList) unlink(n *slNode) {
	prev := s.seek(n.entry)
	if prev[0].forward[0] != n {
		return
	}
	for lvl := 0; lvl < len(n.forward); lvl++ {
		if prev[lvl].forward[lvl] == n {
			prev[lvl].forward[lvl] = n.forward[lvl]
		}
	}
	delete(s.index, n.entry.User)
	for s.depth > 1 && s.head.forward[s.depth-1] == nil {
		s.depth--
	}
}

func (s *SkipList) Remove(user core.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.index[user]; ok {
		s.unlink(n)
	}
}

// TopN returns the best n entries in rank order.
func (s *SkipList) TopN(n int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	out := make([]Entry, 0, n)
	for cur := s.head.forward[0]; cur != nil && len(out) < n; cur = cur.forward[0] {
		out = append(out, cur.entry)
	}
	return out
}

func (s *SkipList) Get(user core.UserID) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.index[user]; ok {
		return n.entry, true
	}
	return Entry{}, false
}

// Rank returns the user's 1-based position.
func (s *SkipList) Rank(user core.UserID) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.index[user]; !ok {
		return 0, false
	}
	rank := 1
	for cur := s.head.forward[0]; cur != nil; cur = cur.forward[0] {
		if cur.entry.User == user {
			return rank, true
		}
		rank++
	}
	return 0, false
}

func (s *SkipList) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

var _ Board = (*SkipList)(nil)
