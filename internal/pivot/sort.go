package pivot

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder is the direction of the built-in comparators.
type SortOrder string

const (
	Descending SortOrder = "desc"
	Ascending  SortOrder = "asc"
)

// ParseSortOrder maps user input to a SortOrder, defaulting to Descending.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending
	default:
		return Descending
	}
}

// Comparator orders two values: negative when a sorts first.
type Comparator func(a, b any) int

// CompareAscending compares numerically when both values are numbers or
// numeric text, and by locale collation otherwise. The returned comparator
// holds a collator and must not be shared between goroutines.
func CompareAscending(tag language.Tag) Comparator {
	coll := collate.New(tag)
	return func(a, b any) int { return compareValues(a, b, coll) }
}

// CompareDescending is CompareAscending reversed.
func CompareDescending(tag language.Tag) Comparator {
	coll := collate.New(tag)
	return func(a, b any) int { return compareValues(b, a, coll) }
}

func compareValues(a, b any, coll *collate.Collator) int {
	fa, aok := sortNumber(a)
	fb, bok := sortNumber(b)
	if aok && bok {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return coll.CompareString(keyString(a), keyString(b))
}

func sortNumber(v any) (float64, bool) {
	if t, ok := v.(time.Time); ok {
		return float64(t.UnixMilli()), true
	}
	return toNumber(v)
}

// Sort orders nodes by the value of key at every depth. Levels where no
// node carries key keep their discovery order. Terminal nodes that keep
// member records have those records sorted by their raw value.
// Returns false when there is nothing to sort.
func Sort(nodes []*Node, key string, cmp Comparator) bool {
	if key == "" || len(nodes) == 0 {
		return false
	}
	if cmp == nil {
		cmp = CompareDescending(language.English)
	}
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return cmp(a.Value(key), b.Value(key))
	})
	for _, n := range nodes {
		if n.Children != nil {
			Sort(n.Children, key, cmp)
		} else {
			sortRecords(n.Records, key, cmp)
		}
	}
	return true
}

func sortRecords(records []Record, key string, cmp Comparator) {
	if key == "" || len(records) < 2 {
		return
	}
	slices.SortStableFunc(records, func(a, b Record) int {
		va, _ := a.Get(key)
		vb, _ := b.Get(key)
		return cmp(va, vb)
	})
}
