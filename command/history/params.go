package history

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/0xPolygon/polygon-xt/command/config"
	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/0xPolygon/polygon-xt/storage"
	"github.com/0xPolygon/polygon-xt/types"
)

const (
	hashFlag  = "hash"
	pruneFlag = "prune"
	limitFlag = "limit"
)

var errNegativePrune = errors.New("prune age must be positive")

type historyParams struct {
	client helper.ClientParams
	hash   string
	prune  time.Duration
	limit  int

	config     *config.Config
	parsedHash *types.Hash
}

func (p *historyParams) validateFlags() error {
	if p.prune < 0 {
		return errNegativePrune
	}

	if p.hash != "" {
		h, err := types.StringToHash(p.hash)
		if err != nil {
			return fmt.Errorf("invalid extrinsic hash: %w", err)
		}

		p.parsedHash = &h
	}

	cfg, err := p.client.LoadConfig()
	if err != nil {
		return err
	}

	p.config = cfg

	return nil
}

// run prunes first when asked to, then lists what is left newest first
func (p *historyParams) run(store storage.Storage, now time.Time) (*HistoryResult, error) {
	res := &HistoryResult{Extrinsics: []ExtrinsicHistory{}}

	if p.prune > 0 {
		pruned, err := store.PruneJournals(now.Add(-p.prune))
		if err != nil {
			return nil, fmt.Errorf("failed to prune journals: %w", err)
		}

		res.Pruned = pruned
	}

	if p.parsedHash != nil {
		entries, err := store.ReadJournal(*p.parsedHash)
		if err != nil {
			return nil, err
		}

		if len(entries) > 0 {
			res.Extrinsics = append(res.Extrinsics, newExtrinsicHistory(*p.parsedHash, entries))
		}

		return res, nil
	}

	err := store.Journals(func(hash types.Hash, entries []storage.JournalEntry) bool {
		if len(entries) > 0 {
			res.Extrinsics = append(res.Extrinsics, newExtrinsicHistory(hash, entries))
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(res.Extrinsics, func(i, j int) bool {
		return res.Extrinsics[i].Updated.After(res.Extrinsics[j].Updated)
	})

	if p.limit > 0 && len(res.Extrinsics) > p.limit {
		res.Extrinsics = res.Extrinsics[:p.limit]
	}

	return res, nil
}
