package pivot

import "github.com/shopspring/decimal"

// accumulate sets every node's measure totals bottom-up: a node with children
// holds the sum of its children, a terminal node its rollup or the sum of its
// member records. Returns the exact totals of n.
func accumulate(n *Node, measures []string, nf NumberFormat) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(measures))
	switch {
	case n.Children != nil:
		for _, m := range measures {
			totals[m] = decimal.Zero
		}
		for _, c := range n.Children {
			for m, v := range accumulate(c, measures, nf) {
				totals[m] = totals[m].Add(v)
			}
		}
	case n.rollup != nil:
		for _, m := range measures {
			totals[m] = n.rollup[m]
		}
	default:
		for _, m := range measures {
			totals[m] = sumRecords(n.Records, m, nf)
		}
	}

	n.Measures = make(map[string]float64, len(measures))
	for _, m := range measures {
		n.Measures[m] = totals[m].InexactFloat64()
	}
	return totals
}
