package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

const testInterval = 5 * time.Millisecond

// startLoop runs HeartbeatLoop in the background and returns its result channel.
func startLoop(ctx context.Context, r *Reporter, hb Heartbeat) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.HeartbeatLoop(ctx, hb)
	}()
	return errCh
}

func nextLine(t *testing.T, out *lineRecorder) string {
	t.Helper()
	select {
	case line := <-out.lines:
		return strings.TrimSuffix(line, "\n")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for heartbeat line")
		return ""
	}
}

func TestHeartbeat_Validate(t *testing.T) {
	tests := []struct {
		name    string
		hb      Heartbeat
		wantErr bool
	}{
		{"positive", Heartbeat{Interval: time.Second}, false},
		{"fractional", Heartbeat{Interval: 500 * time.Millisecond}, false},
		{"zero", Heartbeat{}, true},
		{"negative", Heartbeat{Interval: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.hb.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInterval) {
				t.Errorf("error %v is not ErrInvalidInterval", err)
			}
		})
	}
}

func TestHeartbeatLoop_InvalidInterval(t *testing.T) {
	out := newLineRecorder()
	r := New(out)

	err := r.HeartbeatLoop(context.Background(), Heartbeat{Interval: 0})
	if !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("HeartbeatLoop() error = %v, want ErrInvalidInterval", err)
	}
	if out.String() != "" {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestHeartbeatLoop_CounterIncrementsByOne(t *testing.T) {
	out := newLineRecorder()
	r := New(out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := startLoop(ctx, r, Heartbeat{Interval: testInterval})

	for i := 1; i <= 5; i++ {
		want := fmt.Sprintf("Waiting 0.005 seconds (%d)...", i)
		if got := nextLine(t, out); got != want {
			t.Errorf("line %d = %q, want %q", i, got, want)
		}
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("HeartbeatLoop() error = %v, want context.Canceled", err)
	}
}

func TestHeartbeatLoop_ShowIdentity(t *testing.T) {
	out := newLineRecorder()
	r := New(out, WithIdentityFunc(fixedIdentity("Darwin", "arm64")))
	if _, err := r.ReportHostIdentity(); err != nil {
		t.Fatalf("ReportHostIdentity() error = %v", err)
	}
	// Drain the identity block.
	for i := 0; i < 3; i++ {
		nextLine(t, out)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := startLoop(ctx, r, Heartbeat{Interval: testInterval, ShowIdentity: true})

	if got, want := nextLine(t, out), "Waiting 0.005 seconds on Darwin (1)..."; got != want {
		t.Errorf("line = %q, want %q", got, want)
	}

	cancel()
	<-errCh
}

func TestHeartbeatLoop_IntervalFormatting(t *testing.T) {
	tests := []struct {
		interval time.Duration
		want     string
	}{
		{10 * time.Second, "Waiting 10 seconds (1)..."},
		{time.Second, "Waiting 1 seconds (1)..."},
		{1500 * time.Millisecond, "Waiting 1.5 seconds (1)..."},
	}

	for _, tt := range tests {
		t.Run(tt.interval.String(), func(t *testing.T) {
			r := New(newLineRecorder())
			r.counter = 1
			if got := r.heartbeatLine(Heartbeat{Interval: tt.interval}); got != tt.want {
				t.Errorf("heartbeatLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeartbeatLoop_CancelMidWait(t *testing.T) {
	out := newLineRecorder()
	r := New(out)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := startLoop(ctx, r, Heartbeat{Interval: time.Hour})

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("HeartbeatLoop() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("HeartbeatLoop did not return after cancel")
	}

	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
	if out.String() != "" {
		t.Errorf("expected no heartbeat before the first interval elapsed, got %q", out.String())
	}
}

func TestHeartbeatLoop_DoesNotTerminate(t *testing.T) {
	out := newLineRecorder()
	r := New(out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := startLoop(ctx, r, Heartbeat{Interval: testInterval})

	window := time.After(100 * time.Millisecond)
	lines := 0
	for done := false; !done; {
		select {
		case err := <-errCh:
			t.Fatalf("HeartbeatLoop returned on its own: %v", err)
		case <-out.lines:
			lines++
		case <-window:
			done = true
		}
	}
	if lines == 0 {
		t.Error("no heartbeat lines within the observation window")
	}

	cancel()
	<-errCh
}

func TestHeartbeatLoop_Reload(t *testing.T) {
	out := newLineRecorder()
	r := New(out, WithIdentityFunc(fixedIdentity("Linux", "x86_64")))
	if _, err := r.ReportHostIdentity(); err != nil {
		t.Fatalf("ReportHostIdentity() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		nextLine(t, out)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := startLoop(ctx, r, Heartbeat{Interval: testInterval})

	if got := nextLine(t, out); got != "Waiting 0.005 seconds (1)..." {
		t.Fatalf("first line = %q", got)
	}

	// Invalid settings are ignored.
	r.Reload(Heartbeat{Interval: 0, ShowIdentity: true})
	r.Reload(Heartbeat{Interval: 2 * time.Millisecond, ShowIdentity: true})

	var seen bool
	prev := 1
	for i := 0; i < 20 && !seen; i++ {
		line := nextLine(t, out)
		var n int
		if strings.Contains(line, " on Linux ") {
			seen = true
			if _, err := fmt.Sscanf(line, "Waiting 0.002 seconds on Linux (%d)...", &n); err != nil {
				t.Fatalf("unexpected reloaded line %q: %v", line, err)
			}
		} else if _, err := fmt.Sscanf(line, "Waiting 0.005 seconds (%d)...", &n); err != nil {
			t.Fatalf("unexpected line %q: %v", line, err)
		}
		if n != prev+1 {
			t.Errorf("counter jumped from %d to %d", prev, n)
		}
		prev = n
	}
	if !seen {
		t.Error("reloaded settings never took effect")
	}

	cancel()
	<-errCh
}

func TestReload_ReplacesPending(t *testing.T) {
	r := New(newLineRecorder())

	r.Reload(Heartbeat{Interval: time.Second})
	r.Reload(Heartbeat{Interval: 2 * time.Second})

	select {
	case hb := <-r.reload:
		if hb.Interval != 2*time.Second {
			t.Errorf("pending interval = %v, want 2s", hb.Interval)
		}
	default:
		t.Fatal("no pending reload")
	}
	select {
	case hb := <-r.reload:
		t.Errorf("unexpected second pending reload %+v", hb)
	default:
	}
}
