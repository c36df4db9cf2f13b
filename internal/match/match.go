// Package match aligns KNX fields against ETN mapping records per table.
// Matching is a tiered greedy one-to-one assignment: exact name, then
// shared suffix key, then token-bag overlap, most confident tier first.
// Once a field from either side is consumed it leaves the pool, so no
// field ever appears in two matches.
package match

import (
	"fmt"
	"strings"

	"github.com/catrec/catrec/internal/catalog"
	"github.com/catrec/catrec/internal/token"
)

// Match tiers, most confident first.
const (
	TierExact     = 1
	TierSuffixKey = 2
	TierTokenBag  = 3
)

// minBagOverlap gates the noisiest tier: a single shared token is too weak
// a signal to bind two fields.
const minBagOverlap = 2

// Record is the outcome for one field pairing. Exactly one of Left and
// Right may be nil, never both.
type Record struct {
	TableName string
	Left      *catalog.ExtendedField
	Right     *catalog.MappingRecord
	Status    string
	Tier      int
	Rationale string
}

type leftEntry struct {
	field   *catalog.ExtendedField
	folded  string
	keys    map[string]struct{}
	bag     token.Bag
	matched bool
}

type rightEntry struct {
	record  *catalog.MappingRecord
	folded  string
	keys    map[string]struct{}
	bag     token.Bag
	matched bool
}

// Reconcile aligns left (KNX extended) fields with right (ETN mapping)
// records for one table. Deterministic for identical inputs: candidates
// are considered in encounter order and every tie breaks toward the
// earlier entry. Every input field appears in exactly one output record.
func Reconcile(tableName string, left []catalog.ExtendedField, right []catalog.MappingRecord) []Record {
	lefts := make([]leftEntry, len(left))
	for i := range left {
		name := left[i].TrimmedName()
		ordered, bag := token.Tokenize(name)
		lefts[i] = leftEntry{
			field:  &left[i],
			folded: strings.ToLower(name),
			keys:   token.SuffixKeys(ordered),
			bag:    bag,
		}
	}

	rights := make([]rightEntry, len(right))
	for i := range right {
		name := strings.TrimSpace(right[i].TargetField)
		ordered, bag := token.Tokenize(name)
		rights[i] = rightEntry{
			record: &right[i],
			folded: strings.ToLower(name),
			keys:   token.SuffixKeys(ordered),
			bag:    bag,
		}
	}

	var out []Record

	matched := func(l *leftEntry, r *rightEntry, tier int, rationale string) {
		l.matched = true
		r.matched = true
		out = append(out, Record{
			TableName: tableName,
			Left:      l.field,
			Right:     r.record,
			Status:    catalog.StatusMatched,
			Tier:      tier,
			Rationale: rationale,
		})
	}

	// Tier 1: exact fold-equal names.
	byFold := make(map[string][]int, len(rights))
	for i := range rights {
		byFold[rights[i].folded] = append(byFold[rights[i].folded], i)
	}
	for i := range lefts {
		l := &lefts[i]
		if l.folded == "" {
			continue
		}
		for _, ri := range byFold[l.folded] {
			r := &rights[ri]
			if r.matched {
				continue
			}
			matched(l, r, TierExact, "exact name match")
			break
		}
	}

	// Tier 2: longest, most specific shared suffix chain.
	for i := range lefts {
		l := &lefts[i]
		if l.matched {
			continue
		}
		bestRight := -1
		bestKey := ""
		for ri := range rights {
			r := &rights[ri]
			if r.matched {
				continue
			}
			key := bestSharedKey(l.keys, r.keys)
			if key == "" {
				continue
			}
			if bestRight == -1 || keyBeats(key, bestKey) {
				bestRight = ri
				bestKey = key
			}
		}
		if bestRight >= 0 {
			matched(l, &rights[bestRight], TierSuffixKey,
				fmt.Sprintf("shared suffix key %q", bestKey))
		}
	}

	// Tier 3: token-bag overlap above the noise threshold.
	for i := range lefts {
		l := &lefts[i]
		if l.matched {
			continue
		}
		bestRight := -1
		bestOverlap := 0
		for ri := range rights {
			r := &rights[ri]
			if r.matched {
				continue
			}
			overlap := l.bag.Intersect(r.bag)
			if overlap < minBagOverlap {
				continue
			}
			if overlap > bestOverlap {
				bestRight = ri
				bestOverlap = overlap
			}
		}
		if bestRight >= 0 {
			matched(l, &rights[bestRight], TierTokenBag,
				fmt.Sprintf("token bag overlap (%d shared tokens)", bestOverlap))
		}
	}

	// Residue: unmatched fields are a normal outcome, never dropped.
	for i := range lefts {
		if lefts[i].matched {
			continue
		}
		out = append(out, Record{
			TableName: tableName,
			Left:      lefts[i].field,
			Status:    catalog.StatusKnxOnly,
		})
	}
	for i := range rights {
		if rights[i].matched {
			continue
		}
		out = append(out, Record{
			TableName: tableName,
			Right:     rights[i].record,
			Status:    catalog.StatusEtnOnly,
		})
	}

	return out
}

// bestSharedKey returns the most specific key in the intersection of two
// suffix-key sets, or "" when the sets are disjoint.
func bestSharedKey(a, b map[string]struct{}) string {
	best := ""
	for k := range a {
		if _, ok := b[k]; !ok {
			continue
		}
		if best == "" || keyMoreSpecific(k, best) {
			best = k
		}
	}
	return best
}

// keyBeats reports whether key a is strictly more specific than b: more
// segments, then longer. Equal rank is not a win, so ties stay with the
// earlier candidate.
func keyBeats(a, b string) bool {
	sa, sb := strings.Count(a, ".")+1, strings.Count(b, ".")+1
	if sa != sb {
		return sa > sb
	}
	return len(a) > len(b)
}

// keyMoreSpecific totally orders suffix keys (segments, length, then
// lexicographic) so map iteration order never leaks into rationale text.
func keyMoreSpecific(a, b string) bool {
	if keyBeats(a, b) {
		return true
	}
	if keyBeats(b, a) {
		return false
	}
	return a < b
}
