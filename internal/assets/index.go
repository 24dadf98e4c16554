package assets

import (
	"path"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"photolink/internal/token"
)

// Asset is one file in the pool.
type Asset struct {
	// Name is the filename exactly as stored.
	Name string
	// Key is Name without extension or size decorations, NFC-normalized,
	// case preserved.
	Key string
}

// Index is an immutable snapshot of the asset pool.
type Index struct {
	assets []Asset
	byName map[string]int
	byKey  map[string][]int
}

// NewIndex builds an index from filenames. Duplicates collapse to one entry.
func NewIndex(names ...string) *Index {
	seen := make(map[string]struct{}, len(names))
	assets := make([]Asset, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		assets = append(assets, Asset{Name: name, Key: NormalizeKey(name)})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })

	idx := &Index{
		assets: assets,
		byName: make(map[string]int, len(assets)),
		byKey:  make(map[string][]int, len(assets)),
	}
	for i, a := range assets {
		idx.byName[a.Name] = i
		idx.byKey[a.Key] = append(idx.byKey[a.Key], i)
	}
	return idx
}

// NormalizeKey strips the extension and size decorations from a filename.
func NormalizeKey(name string) string {
	base := token.StripDecorations(name)
	if ext := path.Ext(base); ext != "" && len(ext) < len(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return norm.NFC.String(base)
}

// Len returns the number of assets.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.assets)
}

// Assets returns a copy of the snapshot sorted by name.
func (x *Index) Assets() []Asset {
	if x == nil {
		return nil
	}
	out := make([]Asset, len(x.assets))
	copy(out, x.assets)
	return out
}

// Each calls fn for every asset in name order until fn returns false.
func (x *Index) Each(fn func(Asset) bool) {
	if x == nil {
		return
	}
	for _, a := range x.assets {
		if !fn(a) {
			return
		}
	}
}

// ByName returns the asset whose filename equals name exactly.
func (x *Index) ByName(name string) (Asset, bool) {
	if x == nil {
		return Asset{}, false
	}
	i, ok := x.byName[name]
	if !ok {
		return Asset{}, false
	}
	return x.assets[i], true
}

// ByKey returns every asset sharing the normalized key, in name order.
func (x *Index) ByKey(key string) []Asset {
	if x == nil {
		return nil
	}
	hits := x.byKey[norm.NFC.String(key)]
	if len(hits) == 0 {
		return nil
	}
	out := make([]Asset, len(hits))
	for i, h := range hits {
		out[i] = x.assets[h]
	}
	return out
}
