package pydocs

import "strconv"

// UnknownStatus is the bucket for PEPs whose status could not be confirmed.
const UnknownStatus = ""

// StatusCodes lists the PEP status letters in output order: Active, Draft,
// Final, Provisional, Rejected, Superseded, Withdrawn.
var StatusCodes = []string{"A", "D", "F", "P", "R", "S", "W", UnknownStatus}

// StatusTally counts PEPs per status letter over a fixed key set.
type StatusTally struct {
	counts map[string]int
}

func NewStatusTally() *StatusTally {
	counts := make(map[string]int, len(StatusCodes))
	for _, code := range StatusCodes {
		counts[code] = 0
	}
	return &StatusTally{counts: counts}
}

// Add counts one PEP with the status `code`. Codes outside StatusCodes are
// counted as unknown and reported with a false return.
func (t *StatusTally) Add(code string) bool {
	if _, ok := t.counts[code]; !ok {
		t.counts[UnknownStatus]++
		return false
	}
	t.counts[code]++
	return true
}

func (t *StatusTally) AddUnknown() {
	t.counts[UnknownStatus]++
}

func (t *StatusTally) Count(code string) int {
	return t.counts[code]
}

func (t *StatusTally) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Rows returns (code, count) pairs in StatusCodes order.
func (t *StatusTally) Rows() []Row {
	rows := make([]Row, len(StatusCodes))
	for i, code := range StatusCodes {
		rows[i] = Row{code, strconv.Itoa(t.counts[code])}
	}
	return rows
}
