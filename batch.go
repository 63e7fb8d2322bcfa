package mailreach

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/optimode/mailreach/check"
	"github.com/optimode/mailreach/internal/parse"
	"github.com/optimode/mailreach/types"
)

// RunBatch checks a list of addresses. Blank entries are dropped; the rest
// are normalized and each distinct address goes through the pipeline once,
// with at most BatchOptions.Workers pipelines in flight. Every submitted
// address, duplicates included, gets its own record and costs one budget
// unit. The budget is only compared, never debited: the caller debits
// BatchResult.Units.
//
// ErrEmptyBatch and *BudgetError are returned before any network work.
// Per-address failures never fail the batch.
func (e *Engine) RunBatch(ctx context.Context, addresses []string, sender string, budget int) (BatchResult, error) {
	if e.err != nil {
		return BatchResult{}, e.err
	}
	started := time.Now()

	var emails []parse.Email
	for _, a := range addresses {
		if strings.TrimSpace(a) == "" {
			continue
		}
		emails = append(emails, parse.NewEmail(a))
	}
	if len(emails) == 0 {
		return BatchResult{}, ErrEmptyBatch
	}

	// slot maps a normalized address to its position in unique.
	slot := make(map[string]int, len(emails))
	var unique []parse.Email
	for _, em := range emails {
		if _, ok := slot[em.Normalized]; !ok {
			slot[em.Normalized] = len(unique)
			unique = append(unique, em)
		}
	}

	if budget < len(emails) {
		return BatchResult{}, &BudgetError{Required: len(emails), Available: budget}
	}

	res := BatchResult{
		ID:             uuid.NewString(),
		TotalSubmitted: len(emails),
		UniqueCount:    len(unique),
		DuplicateCount: len(emails) - len(unique),
		Units:          len(emails),
		StartedAt:      started,
	}
	log := e.log.WithFields(logrus.Fields{
		"batch":   res.ID,
		"total":   res.TotalSubmitted,
		"unique":  res.UniqueCount,
		"workers": e.opts.Batch.Workers,
	})
	log.Info("batch started")

	sender = e.sender(sender)
	checked := make([]types.AddressRecord, len(unique))

	var g errgroup.Group
	g.SetLimit(e.opts.Batch.Workers)
	for i, em := range unique {
		g.Go(func() error {
			checked[i] = e.check(ctx, em, sender)
			return nil
		})
	}
	_ = g.Wait()

	res.Records = make([]AddressRecord, len(emails))
	for i, em := range emails {
		rec := checked[slot[em.Normalized]]
		if rec.Raw != em.Raw {
			// A duplicate shares the verdict but its raw form, and with
			// it the character tallies, are its own.
			rec.Raw = em.Raw
			h := check.Analyze(em.Raw, em.Normalized)
			rec.AlphaCount = h.AlphaCount
			rec.DigitCount = h.DigitCount
			rec.SymbolCount = h.SymbolCount
		}
		rec.Tags = slices.Clone(rec.Tags)
		res.Records[i] = rec

		if rec.SMTPDeliverable {
			res.DeliverableCount++
		}
		if rec.IsRisky {
			res.RiskyCount++
		}
	}
	res.DeliverablePercent = 100 * float64(res.DeliverableCount) / float64(res.TotalSubmitted)
	res.Duration = time.Since(started)

	log.WithFields(logrus.Fields{
		"deliverable": res.DeliverableCount,
		"risky":       res.RiskyCount,
		"duration":    res.Duration,
	}).Info("batch finished")
	return res, nil
}
