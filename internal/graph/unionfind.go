package graph

// UnionFind implements a disjoint-set (union-find) data structure with
// path compression and union by rank. It partitions a fixed set of string
// elements into equivalence classes that can be merged and queried
// efficiently. All elements are registered at construction.
type UnionFind struct {
	parent map[string]string
	rank   map[string]int
}

// NewUnionFind creates a UnionFind where each element starts in its own
// singleton set.
func NewUnionFind(elements []string) *UnionFind {
	uf := &UnionFind{
		parent: make(map[string]string, len(elements)),
		rank:   make(map[string]int, len(elements)),
	}
	for _, e := range elements {
		uf.parent[e] = e
		uf.rank[e] = 0
	}
	return uf
}

// Find returns the representative (root) of the set containing x.
// Path compression is applied so subsequent queries are nearly O(1).
func (uf *UnionFind) Find(x string) string {
	if uf.parent[x] != x {
		uf.parent[x] = uf.Find(uf.parent[x]) // path compression
	}
	return uf.parent[x]
}

// Union merges the sets containing x and y and reports whether a merge
// happened. Returns false without effect when x and y are already in the
// same set. Union by rank keeps the trees balanced.
func (uf *UnionFind) Union(x, y string) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}
	// Attach the shorter tree under the taller one.
	switch {
	case uf.rank[rx] < uf.rank[ry]:
		uf.parent[rx] = ry
	case uf.rank[rx] > uf.rank[ry]:
		uf.parent[ry] = rx
	default:
		uf.parent[ry] = rx
		uf.rank[rx]++
	}
	return true
}

// Connected reports whether x and y belong to the same set.
func (uf *UnionFind) Connected(x, y string) bool {
	return uf.Find(x) == uf.Find(y)
}

// Components returns the disjoint sets as a map from each set's
// representative to the list of members. The member lists are returned in
// no guaranteed order.
func (uf *UnionFind) Components() map[string][]string {
	groups := make(map[string][]string)
	for x := range uf.parent {
		root := uf.Find(x)
		groups[root] = append(groups[root], x)
	}
	return groups
}
