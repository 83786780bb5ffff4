package scheduler

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/codr1/Sideline/internal/invites"
)

type fakeCleaner struct {
	calls  int
	result invites.CleanupResult
	err    error
	ctxErr error
}

func (f *fakeCleaner) Cleanup(ctx context.Context) (invites.CleanupResult, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	return f.result, f.err
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	sched, err := gocron.NewScheduler()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	svc := newService(sched)
	t.Cleanup(func() { _ = svc.Stop() })
	return svc
}

func TestServiceAddJobValidation(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.AddJob(" ", "* * * * *", func(context.Context) {}); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("expected ErrEmptyJobName, got %v", err)
	}
	if _, err := svc.AddJob("job", "", func(context.Context) {}); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("expected ErrEmptyCronExpr, got %v", err)
	}
	if _, err := svc.AddJob("job", "not a cron", func(context.Context) {}); err == nil {
		t.Fatalf("expected invalid cron error")
	}
	job, err := svc.AddJob("job", "0 * * * *", func(context.Context) {}, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	if err != nil {
		t.Fatalf("add job: %v", err)
	}
	if job.Name() != "job" {
		t.Fatalf("job name = %q", job.Name())
	}
}

func TestStopCancelsTaskContext(t *testing.T) {
	svc := newTestService(t)

	ran := make(chan error, 1)
	job, err := svc.AddJob("cancel_check", "0 0 1 1 *", func(ctx context.Context) {
		ran <- ctx.Err()
	})
	if err != nil {
		t.Fatalf("add job: %v", err)
	}
	svc.Start()
	if err := job.RunNow(); err != nil {
		t.Fatalf("run now: %v", err)
	}
	select {
	case err := <-ran:
		if err != nil {
			t.Fatalf("task context should be live before Stop, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}

	if err := svc.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if svc.ctx.Err() == nil {
		t.Fatal("expected task context to be cancelled after Stop")
	}
}

func TestNilServiceIsNotInitialized(t *testing.T) {
	var svc *Service
	if _, err := svc.AddJob("job", "* * * * *", func(context.Context) {}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := svc.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestRunInviteCleanup(t *testing.T) {
	logger := zerolog.Nop()

	cleaner := &fakeCleaner{result: invites.CleanupResult{ExpiredInvites: 2, DeletedTokens: 1}}
	runInviteCleanup(context.Background(), cleaner, &logger)
	if cleaner.calls != 1 {
		t.Fatalf("expected one cleanup call, got %d", cleaner.calls)
	}
	if cleaner.ctxErr != nil {
		t.Fatalf("cleanup context should be live, got %v", cleaner.ctxErr)
	}

	failing := &fakeCleaner{err: errors.New("db locked")}
	runInviteCleanup(context.Background(), failing, &logger)
	if failing.calls != 1 {
		t.Fatalf("expected one cleanup call, got %d", failing.calls)
	}
}

func TestRegisterInviteCleanupJob(t *testing.T) {
	if err := RegisterInviteCleanupJob(nil, "0 * * * *"); err == nil {
		t.Fatalf("expected error for nil cleaner")
	}
	if err := Init(); err != nil {
		t.Fatalf("init scheduler: %v", err)
	}
	if err := RegisterInviteCleanupJob(&fakeCleaner{}, "0 * * * *"); err != nil {
		t.Fatalf("register cleanup job: %v", err)
	}
	if err := RegisterInviteCleanupJob(&fakeCleaner{}, "bogus"); err == nil {
		t.Fatalf("expected invalid cron error")
	}
}
