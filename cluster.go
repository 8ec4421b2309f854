package simdex

import (
	"sort"

	"github.com/pkg/errors"
)

// unionFind is a disjoint-set forest over string ids with path halving and
// union by size.
type unionFind struct {
	parent map[string]string
	size   map[string]int
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string), size: make(map[string]int)}
}

func (u *unionFind) find(id string) string {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
		u.size[id] = 1
		return id
	}
	for u.parent[id] != id {
		u.parent[id] = u.parent[u.parent[id]]
		id = u.parent[id]
	}
	return id
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}

// Clusters groups entries into connected components of the "distance <= k"
// relation, where k is the index tolerance. Each entry is queried against idx
// and joined with every id returned.
//
// The relation is not transitive: A near B and B near C puts A and C in one
// cluster even when A and C are far apart.
//
// Clusters are returned with sorted ids, ordered by their first id.
func Clusters(idx *Index, entries []Entry) ([][]string, error) {
	uf := newUnionFind()
	for _, e := range entries {
		uf.find(e.ID)
		dups, err := idx.GetNearDups(e.Fingerprint)
		if err != nil {
			return nil, errors.Wrapf(err, "cluster %s", e.ID)
		}
		for _, d := range dups {
			uf.union(e.ID, d.ID)
		}
	}

	groups := make(map[string][]string)
	for id := range uf.parent {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		sort.Strings(g)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out, nil
}
