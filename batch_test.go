package mailreach_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimode/mailreach"
)

func TestRunBatch_DedupeAndInvalid(t *testing.T) {
	prober := &fakeProber{accept: map[string]bool{"a@gmail.com": true}}
	e, _, _ := newTestEngine(t, prober)

	res, err := e.RunBatch(context.Background(), []string{"a@gmail.com", "A@Gmail.com", "bad-address"}, "verify@myapp.com", 10)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalSubmitted)
	assert.Equal(t, 2, res.UniqueCount)
	assert.Equal(t, 1, res.DuplicateCount)
	assert.Equal(t, 3, res.Units)
	require.Len(t, res.Records, 3)

	assert.Equal(t, "a@gmail.com", res.Records[0].Raw)
	assert.Equal(t, "A@Gmail.com", res.Records[1].Raw)
	assert.Equal(t, "a@gmail.com", res.Records[1].Normalized)
	assert.True(t, res.Records[0].SMTPDeliverable)
	assert.True(t, res.Records[1].SMTPDeliverable)
	assert.Equal(t, res.Records[0].Score, res.Records[1].Score)

	bad := res.Records[2]
	assert.False(t, bad.SyntaxValid)
	assert.Equal(t, 0, bad.Score)
	assert.True(t, bad.IsRisky)

	// The duplicate is probed once.
	assert.Equal(t, []string{"a@gmail.com"}, prober.probed())

	assert.Equal(t, 2, res.DeliverableCount)
	assert.Equal(t, 1, res.RiskyCount)
	assert.InDelta(t, 66.666, res.DeliverablePercent, 0.01)
}

func TestRunBatch_DuplicateKeepsOwnCharacterCounts(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeProber{})

	res, err := e.RunBatch(context.Background(), []string{"ab@example.org", " AB@example.org"}, "", 10)
	require.NoError(t, err)

	for _, rec := range res.Records {
		assert.Equal(t, len([]rune(rec.Raw)), rec.AlphaCount+rec.DigitCount+rec.SymbolCount, rec.Raw)
	}
	assert.Equal(t, 3, res.Records[1].SymbolCount)
}

func TestRunBatch_RecordsDoNotShareTags(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeProber{accept: map[string]bool{"info@example.org": true}})

	res, err := e.RunBatch(context.Background(), []string{"info@example.org", "info@example.org"}, "", 10)
	require.NoError(t, err)
	require.NotEmpty(t, res.Records[0].Tags)

	res.Records[0].Tags[0] = "changed"
	assert.NotEqual(t, "changed", res.Records[1].Tags[0])
}

func TestRunBatch_AllDuplicates(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeProber{})

	in := []string{"x@example.org", "X@example.org", " x@EXAMPLE.org", "x@example.org"}
	res, err := e.RunBatch(context.Background(), in, "", 10)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalSubmitted)
	assert.Equal(t, 1, res.UniqueCount)
	assert.Equal(t, res.TotalSubmitted-1, res.DuplicateCount)
}

func TestRunBatch_DropsBlanks(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeProber{})

	res, err := e.RunBatch(context.Background(), []string{"", "a@example.org", "   ", "\t"}, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalSubmitted)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "a@example.org", res.Records[0].Raw)
}

func TestRunBatch_Empty(t *testing.T) {
	prober := &fakeProber{}
	e, dns, _ := newTestEngine(t, prober)

	for _, in := range [][]string{nil, {}, {"", "  ", "\n"}} {
		_, err := e.RunBatch(context.Background(), in, "", 100)
		assert.ErrorIs(t, err, mailreach.ErrEmptyBatch)
	}
	assert.Zero(t, dns.callCount())
}

func TestRunBatch_InsufficientBudget(t *testing.T) {
	prober := &fakeProber{}
	e, dns, _ := newTestEngine(t, prober)

	// Duplicates are charged.
	_, err := e.RunBatch(context.Background(), []string{"a@example.org", "a@example.org", "b@example.org"}, "", 2)

	assert.ErrorIs(t, err, mailreach.ErrInsufficientBudget)
	var be *mailreach.BudgetError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 3, be.Required)
	assert.Equal(t, 2, be.Available)

	assert.Zero(t, dns.callCount())
	assert.Empty(t, prober.probed())
}

func TestRunBatch_EmptyBeforeBudget(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeProber{})

	_, err := e.RunBatch(context.Background(), []string{" "}, "", 0)
	assert.ErrorIs(t, err, mailreach.ErrEmptyBatch)
}

func TestRunBatch_PreservesOrder(t *testing.T) {
	const n = 40
	accept := make(map[string]bool)
	in := make([]string, n)
	for i := range in {
		in[i] = fmt.Sprintf("user%02d@example.org", i)
		if i%3 == 0 {
			accept[in[i]] = true
		}
	}
	prober := &fakeProber{
		accept: accept,
		// Later addresses finish first.
		delay: func(recipient string) time.Duration {
			var i int
			_, _ = fmt.Sscanf(recipient, "user%02d@", &i)
			return time.Duration(n-i) * time.Millisecond
		},
	}
	e, _, _ := newTestEngine(t, prober, mailreach.Options{Batch: mailreach.BatchOptions{Workers: 8}})

	res, err := e.RunBatch(context.Background(), in, "", n)
	require.NoError(t, err)
	require.Len(t, res.Records, n)

	for i, rec := range res.Records {
		assert.Equal(t, in[i], rec.Normalized)
		assert.Equal(t, i%3 == 0, rec.SMTPDeliverable, rec.Normalized)
	}
	assert.Equal(t, 14, res.DeliverableCount)
}

func TestRunBatch_BoundedConcurrency(t *testing.T) {
	in := make([]string, 30)
	for i := range in {
		in[i] = fmt.Sprintf("u%d@example.org", i)
	}
	prober := &fakeProber{delay: func(string) time.Duration { return 5 * time.Millisecond }}
	e, _, _ := newTestEngine(t, prober, mailreach.Options{Batch: mailreach.BatchOptions{Workers: 3}})

	_, err := e.RunBatch(context.Background(), in, "", 30)
	require.NoError(t, err)

	assert.Len(t, prober.probed(), 30)
	assert.LessOrEqual(t, prober.maxInFlight, 3)
	assert.Positive(t, prober.maxInFlight)
}

func TestRunBatch_ResultMetadata(t *testing.T) {
	e, _, hook := newTestEngine(t, &fakeProber{})

	before := time.Now()
	res, err := e.RunBatch(context.Background(), []string{"a@example.org"}, "", 1)
	require.NoError(t, err)

	_, perr := uuid.Parse(res.ID)
	assert.NoError(t, perr)
	assert.False(t, res.StartedAt.Before(before))
	assert.Positive(t, res.Duration)

	var infos []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.InfoLevel {
			infos = append(infos, entry.Message)
			assert.Equal(t, res.ID, entry.Data["batch"])
		}
	}
	assert.Equal(t, []string{"batch started", "batch finished"}, infos)
}

func TestBatchResult_Filters(t *testing.T) {
	prober := &fakeProber{accept: map[string]bool{"a@gmail.com": true}}
	e, _, _ := newTestEngine(t, prober)

	res, err := e.RunBatch(context.Background(), []string{"a@gmail.com", "b@example.org", "nope"}, "", 3)
	require.NoError(t, err)

	require.Len(t, res.Deliverable(), 1)
	assert.Equal(t, "a@gmail.com", res.Deliverable()[0].Normalized)
	assert.Len(t, res.Risky(), 2)
}
