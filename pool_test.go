package mdmath

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

func newTestPool(n int) *ConverterPool {
	return NewConverterPool(n, WithTypesetter(fakeTypesetter), WithCacheSize(0))
}

func TestNewConverterPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want int
	}{
		{n: -1, want: MinPoolSize},
		{n: 0, want: MinPoolSize},
		{n: 1, want: 1},
		{n: 4, want: 4},
	}
	for _, tt := range tests {
		if got := NewConverterPool(tt.n).Size(); got != tt.want {
			t.Errorf("NewConverterPool(%d).Size() = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestConverterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := newTestPool(2)
	defer pool.Close()
	ctx := context.Background()

	first, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	second, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("Acquire() returned the same converter twice")
	}

	pool.Release(first)
	again, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	if again != first {
		t.Error("Acquire() should reuse the released converter")
	}
}

func TestConverterPool_AcquireBlocksUntilRelease(t *testing.T) {
	t.Parallel()

	pool := newTestPool(1)
	defer pool.Close()

	conv, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}

	got := make(chan *Converter, 1)
	go func() {
		c, _ := pool.Acquire(context.Background())
		got <- c
	}()

	select {
	case <-got:
		t.Fatal("Acquire() returned while the only converter was in use")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(conv)
	select {
	case c := <-got:
		if c != conv {
			t.Error("blocked Acquire() should receive the released converter")
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire() did not unblock after Release()")
	}
}

func TestConverterPool_AcquireContextCancelled(t *testing.T) {
	t.Parallel()

	pool := newTestPool(1)
	defer pool.Close()

	if _, err := pool.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestConverterPool_Closed(t *testing.T) {
	t.Parallel()

	pool := newTestPool(1)
	conv, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}

	blocked := make(chan error, 1)
	go func() {
		_, err := pool.Acquire(context.Background())
		blocked <- err
	}()
	time.Sleep(20 * time.Millisecond)

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if err := <-blocked; !errors.Is(err, ErrPoolClosed) {
		t.Errorf("blocked Acquire() error = %v, want ErrPoolClosed", err)
	}
	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}

	pool.Release(conv) // no-op after close
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestConverterPool_CreationError(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1, WithTypesetter(fakeTypesetter), WithStyle("nonexistent"))
	defer pool.Close()

	for range 2 {
		if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("Acquire() error = %v, want ErrStyleNotFound", err)
		}
	}
}

func TestConverterPool_Concurrent(t *testing.T) {
	t.Parallel()

	pool := newTestPool(3)
	defer pool.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := pool.Acquire(context.Background())
			if err != nil {
				errs <- err
				return
			}
			defer pool.Release(conv)
			if _, err := conv.RenderFragment(context.Background(), "$x$"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent use error: %v", err)
	}
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	if got := ResolvePoolSize(5); got != 5 {
		t.Errorf("ResolvePoolSize(5) = %d, want 5", got)
	}

	want := min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
	for _, workers := range []int{0, -3} {
		if got := ResolvePoolSize(workers); got != want {
			t.Errorf("ResolvePoolSize(%d) = %d, want %d", workers, got, want)
		}
	}
}
