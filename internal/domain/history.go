package domain

import (
	"iter"
	"time"

	"github.com/google/uuid"
)

type HistoryEntry struct {
	ID        uuid.UUID       `json:"id"`
	Kind      TransactionKind `json:"kind"`
	Amount    Money           `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// HistoryLog is the append-only record of one account's completed
// transactions. Insertion order is chronological order.
//
// HistoryLog does no locking of its own; the owning Account serializes access.
type HistoryLog struct {
	entries []HistoryEntry
}

func NewHistoryLog() *HistoryLog {
	return &HistoryLog{}
}

func (h *HistoryLog) Append(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
}

func (h *HistoryLog) Len() int {
	return len(h.entries)
}

// All returns the entries present at call time, oldest first. The sequence
// can be ranged over any number of times and is not affected by later appends.
func (h *HistoryLog) All() iter.Seq[HistoryEntry] {
	snapshot := h.entries[:len(h.entries):len(h.entries)]
	return func(yield func(HistoryEntry) bool) {
		for _, entry := range snapshot {
			if !yield(entry) {
				return
			}
		}
	}
}

// CountOn returns how many entries of kind fall on the calendar date of day,
// in day's location.
func (h *HistoryLog) CountOn(kind TransactionKind, day time.Time) int {
	var n int
	for _, entry := range h.entries {
		if entry.Kind == kind && sameDay(entry.Timestamp, day) {
			n++
		}
	}
	return n
}

func (h *HistoryLog) SumOn(kind TransactionKind, day time.Time) Money {
	var total Money
	for _, entry := range h.entries {
		if entry.Kind == kind && sameDay(entry.Timestamp, day) {
			total = total.Add(entry.Amount)
		}
	}
	return total
}

func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
