package models

// Entry is a ledger row tagged with its canonical counterparty key.
type Entry struct {
	Counterparty string
	Row          LedgerRow
}

// CounterpartyGroup holds the rows of one counterparty in input order.
type CounterpartyGroup struct {
	Key  string
	Rows []LedgerRow
}

// GroupByCounterparty groups entries by counterparty. Groups appear in the
// order their key is first seen; rows keep their input order.
func GroupByCounterparty(entries []Entry) []CounterpartyGroup {
	index := make(map[string]int)
	var groups []CounterpartyGroup
	for _, e := range entries {
		i, ok := index[e.Counterparty]
		if !ok {
			i = len(groups)
			index[e.Counterparty] = i
			groups = append(groups, CounterpartyGroup{Key: e.Counterparty})
		}
		groups[i].Rows = append(groups[i].Rows, e.Row)
	}
	return groups
}

// TotalRows counts the rows across all groups
func TotalRows(groups []CounterpartyGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Rows)
	}
	return n
}
