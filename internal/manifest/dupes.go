package manifest

import (
	"sort"

	"github.com/AnyUserName/pixhash/internal/phash"
)

// Pair is two entries whose hashes are within a distance threshold.
type Pair struct {
	A, B     string
	Distance int
	SameData bool // identical source bytes
}

// NearDuplicates returns every pair of entries at Hamming distance <=
// threshold, closest first, then by key. Entries whose hashes cannot be
// compared (corrupt or different length) are skipped.
func (m *Manifest) NearDuplicates(threshold int) []Pair {
	keys := m.Keys()
	var pairs []Pair
	for i := 0; i < len(keys); i++ {
		a := m.Entries[keys[i]]
		for j := i + 1; j < len(keys); j++ {
			b := m.Entries[keys[j]]
			d, err := phash.Distance(a.Hash, b.Hash)
			if err != nil || d > threshold {
				continue
			}
			pairs = append(pairs, Pair{
				A:        keys[i],
				B:        keys[j],
				Distance: d,
				SameData: a.Digest != "" && a.Digest == b.Digest,
			})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Distance < pairs[j].Distance
	})
	return pairs
}
