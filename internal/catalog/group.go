package catalog

import (
	"sort"

	"rpucella.net/goes-catalog/internal/metadata"
)

// Group is the set of paths sharing one key value.
type Group struct {
	Key   string
	Paths []string
}

// Groups is ordered by key. Time keys use metadata.TimeFormat, which sorts
// chronologically.
type Groups []Group

func (g Groups) Keys() []string {
	out := make([]string, len(g))
	for i, grp := range g {
		out[i] = grp.Key
	}
	return out
}

// Get returns the paths of key.
func (g Groups) Get(key string) ([]string, bool) {
	i := sort.Search(len(g), func(i int) bool { return g[i].Key >= key })
	if i < len(g) && g[i].Key == key {
		return g[i].Paths, true
	}
	return nil, false
}

// Paths concatenates the groups in key order.
func (g Groups) Paths() []string {
	var out []string
	for _, grp := range g {
		out = append(out, grp.Paths...)
	}
	return out
}

// Len is the total number of paths.
func (g Groups) Len() int {
	n := 0
	for _, grp := range g {
		n += len(grp.Paths)
	}
	return n
}

// GroupPaths parses every path and partitions them by key. Every path lands
// in exactly one group.
func GroupPaths(paths []string, key string) (Groups, error) {
	k, err := metadata.ParseKey(key)
	if err != nil {
		return nil, err
	}
	files, err := Parse(paths)
	if err != nil {
		return nil, err
	}
	return groupFiles(files, k), nil
}

// groupFiles sorts by key value, then splits where the value changes.
// Paths keep their input order within a group.
func groupFiles(files []File, k metadata.Key) Groups {
	type keyed struct {
		value string
		path  string
	}
	items := make([]keyed, len(files))
	for i, f := range files {
		items[i] = keyed{f.Value(k), f.Path}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].value < items[j].value })

	var groups Groups
	for _, it := range items {
		if n := len(groups); n > 0 && groups[n-1].Key == it.value {
			groups[n-1].Paths = append(groups[n-1].Paths, it.path)
			continue
		}
		groups = append(groups, Group{Key: it.value, Paths: []string{it.path}})
	}
	return groups
}
