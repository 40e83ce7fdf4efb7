package domain

import "time"

// HistoryCap is the number of saved calculations retained.
const HistoryCap = 25

// HistoryEntry is a saved calculation. Entries are never edited.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Rate      float64   `json:"rate"`
	RubResult float64   `json:"rub_result"`
}

// History is newest first.
type History []HistoryEntry

// Push prepends e and drops the oldest entries beyond HistoryCap.
func (h History) Push(e HistoryEntry) History {
	out := make(History, 0, min(len(h)+1, HistoryCap))
	out = append(out, e)
	for _, old := range h {
		if len(out) == HistoryCap {
			break
		}
		out = append(out, old)
	}
	return out
}
