package dnsflight_test

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailreach/internal/dnsflight"
)

// mockLookup counts calls and can block until released.
type mockLookup struct {
	records []*net.MX
	err     error
	calls   atomic.Int64
	release chan struct{}
}

func (m *mockLookup) lookup(ctx context.Context, _ string) ([]*net.MX, error) {
	m.calls.Add(1)
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.records, m.err
}

func TestGroup_NoRetention(t *testing.T) {
	m := &mockLookup{records: []*net.MX{{Host: "mx.example.com.", Pref: 10}}}
	g := dnsflight.New(m.lookup, time.Second)

	_, _ = g.LookupMX(context.Background(), "example.com")
	_, _ = g.LookupMX(context.Background(), "example.com")
	assert.Equal(t, int64(2), m.calls.Load()) // sequential calls resolve fresh
}

func TestGroup_CoalescesConcurrentLookups(t *testing.T) {
	m := &mockLookup{
		records: []*net.MX{{Host: "mx.test.", Pref: 10}},
		release: make(chan struct{}),
	}
	g := dnsflight.New(m.lookup, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs, err := g.LookupMX(context.Background(), "example.com")
			assert.NoError(t, err)
			assert.Len(t, recs, 1)
		}()
	}

	// Give the waiters time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(m.release)
	wg.Wait()

	assert.Equal(t, int64(1), m.calls.Load())
}

func TestGroup_PropagatesErrors(t *testing.T) {
	m := &mockLookup{err: &net.DNSError{Err: "no such host"}}
	g := dnsflight.New(m.lookup, time.Second)

	_, err := g.LookupMX(context.Background(), "bad.com")
	assert.Error(t, err)
}

func TestGroup_WaiterContextCancelled(t *testing.T) {
	m := &mockLookup{release: make(chan struct{})}
	defer close(m.release)
	g := dnsflight.New(m.lookup, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.LookupMX(ctx, "slow.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGroup_ReturnsCopy(t *testing.T) {
	m := &mockLookup{records: []*net.MX{{Host: "mx1.", Pref: 10}}}
	g := dnsflight.New(m.lookup, time.Second)

	recs, _ := g.LookupMX(context.Background(), "example.com")
	recs[0].Host = "modified."
	assert.Equal(t, "mx1.", m.records[0].Host)
}

func TestGroup_FirstCallerDeadlineNotShared(t *testing.T) {
	m := &mockLookup{
		records: []*net.MX{{Host: "mx.example.com.", Pref: 10}},
		release: make(chan struct{}),
	}
	g := dnsflight.New(m.lookup, time.Second)

	shortCtx, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	longCtx, cancelLong := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelLong()

	var wg sync.WaitGroup
	var shortErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, shortErr = g.LookupMX(shortCtx, "example.com")
	}()

	// Join the in-flight query started by the short-deadline caller.
	time.Sleep(5 * time.Millisecond)
	go func() {
		time.Sleep(100 * time.Millisecond)
		close(m.release)
	}()
	recs, err := g.LookupMX(longCtx, "example.com")
	wg.Wait()

	assert.ErrorIs(t, shortErr, context.DeadlineExceeded)
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, int64(1), m.calls.Load())
}

func TestGroup_SharedQueryBounded(t *testing.T) {
	m := &mockLookup{release: make(chan struct{})}
	defer close(m.release)
	g := dnsflight.New(m.lookup, 30*time.Millisecond)

	start := time.Now()
	_, err := g.LookupMX(context.Background(), "slow.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
