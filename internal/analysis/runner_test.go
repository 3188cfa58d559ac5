package analysis

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/KaramelBytes/healthloom-cli/internal/logging"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerDeliversResults(t *testing.T) {
	var mu sync.Mutex
	var outcomes []Outcome
	r := NewRunner(context.Background(), quietLogger(), func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		outcomes = append(outcomes, o)
	})
	snap := Snapshot{
		Records:   mustParse(t, healthCSV()),
		Variables: healthVars(),
		Cutoff:    mustDate(t, "2024-01-31"),
		Options:   DefaultOptions(),
	}
	id := r.Trigger(snap)
	r.Wait()

	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outcomes))
	}
	if outcomes[0].RunID != id || len(outcomes[0].Results) != 3 {
		t.Fatalf("unexpected outcome %+v", outcomes[0])
	}
}

func TestRunnerCancelsAndReplaces(t *testing.T) {
	var mu sync.Mutex
	var delivered []string
	r := NewRunner(context.Background(), quietLogger(), func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, o.RunID)
	})

	started := make(chan struct{})
	cancelled := make(chan error, 1)
	first := true
	r.analyze = func(ctx context.Context, s Snapshot) ([]Result, error) {
		mu.Lock()
		isFirst := first
		first = false
		mu.Unlock()
		if isFirst {
			close(started)
			<-ctx.Done()
			cancelled <- ctx.Err()
			return nil, ctx.Err()
		}
		return []Result{{Variable1: "a", Variable2: "b"}}, nil
	}

	old := r.Trigger(Snapshot{})
	<-started
	newest := r.Trigger(Snapshot{})
	r.Wait()

	select {
	case err := <-cancelled:
		if err != context.Canceled {
			t.Fatalf("first run ended with %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("first run was not cancelled")
	}
	if len(delivered) != 1 || delivered[0] != newest || delivered[0] == old {
		t.Fatalf("delivered = %v, want only %s", delivered, newest)
	}
}

func TestRunnerCloseStopsInFlight(t *testing.T) {
	called := false
	r := NewRunner(context.Background(), quietLogger(), func(Outcome) { called = true })
	started := make(chan struct{})
	r.analyze = func(ctx context.Context, s Snapshot) ([]Result, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r.Trigger(Snapshot{})
	<-started
	r.Close()
	if called {
		t.Fatalf("closed runner delivered a result")
	}
}

func TestRunnerReleasesContextWhenRunEnds(t *testing.T) {
	r := NewRunner(context.Background(), quietLogger(), nil)
	runCtx := make(chan context.Context, 1)
	r.analyze = func(ctx context.Context, s Snapshot) ([]Result, error) {
		runCtx <- ctx
		return nil, nil
	}
	r.Trigger(Snapshot{})
	r.Wait()

	ctx := <-runCtx
	if ctx.Err() != context.Canceled {
		t.Fatalf("finished run left its context live: %v", ctx.Err())
	}
}

func TestRunnerLogsUnderItsComponent(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(context.Background(), logging.New(&buf, "debug", "json"), nil)
	r.analyze = func(ctx context.Context, s Snapshot) ([]Result, error) { return nil, nil }
	r.Trigger(Snapshot{})
	r.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected trigger and finish records, got:\n%s", buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, `"component":"analysis_runner"`) {
			t.Fatalf("record without component: %s", line)
		}
	}
}
