package history

import (
	"bytes"
	"fmt"
	"time"

	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/0xPolygon/polygon-xt/storage"
	"github.com/0xPolygon/polygon-xt/types"
)

type HistoryResult struct {
	Pruned     int                `json:"pruned"`
	Extrinsics []ExtrinsicHistory `json:"extrinsics"`
}

type ExtrinsicHistory struct {
	Hash     types.Hash    `json:"hash"`
	Status   string        `json:"status"`
	Updated  time.Time     `json:"updated"`
	Statuses []StatusEntry `json:"statuses"`
}

type StatusEntry struct {
	Time   time.Time `json:"time"`
	Status string    `json:"status"`
}

func newExtrinsicHistory(hash types.Hash, entries []storage.JournalEntry) ExtrinsicHistory {
	last := entries[len(entries)-1]

	h := ExtrinsicHistory{
		Hash:     hash,
		Status:   last.Status.String(),
		Updated:  last.Time,
		Statuses: make([]StatusEntry, len(entries)),
	}

	for i, e := range entries {
		h.Statuses[i] = StatusEntry{Time: e.Time, Status: e.Status.String()}
	}

	return h
}

func (r *HistoryResult) GetOutput() string {
	var buffer bytes.Buffer

	if r.Pruned > 0 {
		buffer.WriteString(fmt.Sprintf("\nPruned %d journals\n", r.Pruned))
	}

	buffer.WriteString("\n[EXTRINSICS]\n")

	rows := make([]string, 0, len(r.Extrinsics)+1)
	rows = append(rows, "Hash|Last status|Updated|Statuses")

	for _, e := range r.Extrinsics {
		rows = append(rows, fmt.Sprintf("%s|%s|%s|%d",
			e.Hash, e.Status, e.Updated.Format(time.RFC3339), len(e.Statuses)))
	}

	buffer.WriteString(helper.FormatList(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
