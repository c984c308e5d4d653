// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vectorstore

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/corvidrec/corvid/internal/domain"
)

// hnswIndex is a from-scratch approximate nearest-neighbor graph over one
// tenant's vectors, in the idiom of the retrieved vector-database pack
// member's pkg/graph/graph_hnsw.go: a SimpleHNSW keyed by node id with a
// per-level adjacency map and greedy beam search. Rewritten for this
// domain — nodes are (tenant, entity_id, entity_type) or (tenant, user_id)
// string keys rather than document ids, and distance is always cosine.
//
// Below smallThreshold vectors the graph is skipped entirely in favor of
// exact linear scan (see search below): HNSW's approximation only pays off
// once a tenant has enough vectors for the graph to be meaningfully
// navigable.
type hnswIndex struct {
	mu sync.RWMutex

	maxLevels int
	maxConns  int

	vectors map[string]domain.Vector
	graph   map[int]map[string][]string // level -> node id -> neighbor ids
	entry   string

	smallThreshold int
}

func newHNSWIndex(smallThreshold int) *hnswIndex {
	if smallThreshold <= 0 {
		smallThreshold = 1000
	}
	return &hnswIndex{
		maxLevels:      16,
		maxConns:       16,
		vectors:        make(map[string]domain.Vector),
		graph:          make(map[int]map[string][]string),
		smallThreshold: smallThreshold,
	}
}

func (h *hnswIndex) randomLevel() int {
	level := 0
	for rand.Float64() < 0.5 && level < h.maxLevels-1 {
		level++
	}
	return level
}

// Upsert inserts or replaces the vector stored for id.
func (h *hnswIndex) Upsert(id string, v domain.Vector) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.upsertLocked(id, v)
}

func (h *hnswIndex) upsertLocked(id string, v domain.Vector) {
	h.vectors[id] = v
	level := h.randomLevel()

	for l := 0; l <= level; l++ {
		if h.graph[l] == nil {
			h.graph[l] = make(map[string][]string)
		}
		if h.graph[l][id] == nil {
			h.graph[l][id] = make([]string, 0, h.maxConns)
		}
	}
	if h.entry == "" || level > h.nodeLevel(h.entry) {
		h.entry = id
	}

	for l := level; l >= 0; l-- {
		candidates := h.searchLevel(v, h.entry, 1, l, "")
		maxConns := h.maxConns
		if l == 0 {
			maxConns = h.maxConns * 2
		}
		connected := 0
		for _, c := range candidates {
			if c.id != id && connected < maxConns {
				h.connect(id, c.id, l)
				connected++
			}
		}
	}
}

// Delete removes id from the index. The graph is left with a dangling
// entry point only if id was the sole node; searches handle that case.
func (h *hnswIndex) Delete(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.vectors, id)
	for level := range h.graph {
		delete(h.graph[level], id)
		for other, conns := range h.graph[level] {
			h.graph[level][other] = removeString(conns, id)
		}
	}
	if h.entry == id {
		h.entry = ""
		for other := range h.vectors {
			h.entry = other
			break
		}
	}
}

func removeString(list []string, target string) []string {
	out := list[:0]
	for _, s := range list {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

func (h *hnswIndex) nodeLevel(id string) int {
	for level := h.maxLevels - 1; level >= 0; level-- {
		if conns, ok := h.graph[level][id]; ok && len(conns) > 0 {
			return level
		}
	}
	return 0
}

func (h *hnswIndex) connect(a, b string, level int) {
	if h.graph[level] == nil {
		h.graph[level] = make(map[string][]string)
	}
	addOnce := func(from, to string) {
		conns := h.graph[level][from]
		if conns == nil {
			conns = make([]string, 0, h.maxConns)
		}
		if len(conns) >= h.maxConns {
			h.graph[level][from] = conns
			return
		}
		for _, c := range conns {
			if c == to {
				return
			}
		}
		h.graph[level][from] = append(conns, to)
	}
	addOnce(a, b)
	addOnce(b, a)
}

type candidate struct {
	id    string
	score float64
}

// searchLevel runs a greedy beam search at one graph level starting from
// entry, returning up to ef candidates sorted by descending cosine
// similarity to query. excludeID, if non-empty, is skipped entirely (used
// to exclude a query user/entity from its own result set).
func (h *hnswIndex) searchLevel(query domain.Vector, entry string, ef, level int, excludeID string) []candidate {
	if entry == "" {
		return nil
	}
	visited := map[string]bool{}
	expanded := map[string]bool{}
	var candidates []candidate

	add := func(id string) {
		if visited[id] || id == excludeID {
			return
		}
		visited[id] = true
		if v, ok := h.vectors[id]; ok {
			candidates = append(candidates, candidate{id: id, score: domain.CosineSimilarity(query, v)})
		}
	}
	add(entry)

	for len(candidates) < ef*2 {
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
		progressed := false
		for _, c := range candidates {
			if expanded[c.id] {
				continue
			}
			expanded[c.id] = true
			for _, neighbor := range h.graph[level][c.id] {
				add(neighbor)
			}
			progressed = true
			break
		}
		if !progressed {
			break
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id // deterministic tie-break
	})
	if len(candidates) > ef {
		candidates = candidates[:ef]
	}
	return candidates
}

// Search returns up to k approximate nearest neighbors of query, excluding
// excludeID if set. Below smallThreshold vectors it instead does an exact
// linear scan — cheaper and exact when the graph is too small to be
// meaningfully navigable.
func (h *hnswIndex) Search(query domain.Vector, k int, excludeID string) []candidate {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.vectors) <= h.smallThreshold {
		return h.linearSearch(query, k, excludeID)
	}

	entry := h.entry
	for level := h.nodeLevel(entry); level > 0; level-- {
		top := h.searchLevel(query, entry, 1, level, excludeID)
		if len(top) > 0 {
			entry = top[0].id
		}
	}
	ef := k * 2
	if ef < 50 {
		ef = 50
	}
	results := h.searchLevel(query, entry, ef, 0, excludeID)
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func (h *hnswIndex) linearSearch(query domain.Vector, k int, excludeID string) []candidate {
	out := make([]candidate, 0, len(h.vectors))
	for id, v := range h.vectors {
		if id == excludeID {
			continue
		}
		out = append(out, candidate{id: id, score: domain.CosineSimilarity(query, v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id // deterministic tie-break
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// Len reports how many vectors are currently indexed.
func (h *hnswIndex) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.vectors)
}
