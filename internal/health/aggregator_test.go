package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockChecker 模拟检查器
type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) CheckResult {
	return CheckResult{
		Status:  m.status,
		Message: "mock",
		Latency: time.Millisecond,
	}
}

func TestAggregator(t *testing.T) {
	t.Run("全部健康", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"link", StatusHealthy},
			&mockChecker{"http", StatusHealthy},
		)

		results := agg.CheckAll(context.Background())
		if len(results) != 2 {
			t.Fatalf("期望2个结果，实际: %d", len(results))
		}
		if Overall(results) != StatusHealthy {
			t.Errorf("期望StatusHealthy，实际: %v", Overall(results))
		}
	})

	t.Run("部分降级", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"link", StatusHealthy},
			&mockChecker{"http", StatusDegraded},
		)

		if got := Overall(agg.CheckAll(context.Background())); got != StatusDegraded {
			t.Errorf("期望StatusDegraded，实际: %v", got)
		}
	})

	t.Run("任一不健康", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"link", StatusUnhealthy},
			&mockChecker{"http", StatusDegraded},
		)

		if got := Overall(agg.CheckAll(context.Background())); got != StatusUnhealthy {
			t.Errorf("期望StatusUnhealthy，实际: %v", got)
		}
	})
}

// fakeLink 模拟链路状态
type fakeLink struct {
	connected bool
	pingErr   error
}

func (f *fakeLink) IsConnected() bool              { return f.connected }
func (f *fakeLink) Ping(ctx context.Context) error { return f.pingErr }

type fakePending int

func (f fakePending) PendingCount() int { return int(f) }

func TestLinkChecker(t *testing.T) {
	t.Run("断链不健康", func(t *testing.T) {
		c := NewLinkChecker(&fakeLink{connected: false}, fakePending(0), time.Second)
		r := c.Check(context.Background())
		if r.Status != StatusUnhealthy {
			t.Errorf("期望StatusUnhealthy，实际: %v", r.Status)
		}
	})

	t.Run("探活失败降级", func(t *testing.T) {
		c := NewLinkChecker(&fakeLink{connected: true, pingErr: errors.New("timeout")}, fakePending(3), time.Second)
		r := c.Check(context.Background())
		if r.Status != StatusDegraded {
			t.Errorf("期望StatusDegraded，实际: %v", r.Status)
		}
		if r.Details["pending_requests"] != 3 {
			t.Errorf("pending_requests=%v", r.Details["pending_requests"])
		}
	})

	t.Run("链路正常", func(t *testing.T) {
		c := NewLinkChecker(&fakeLink{connected: true}, nil, time.Second)
		r := c.Check(context.Background())
		if r.Status != StatusHealthy {
			t.Errorf("期望StatusHealthy，实际: %v", r.Status)
		}
	})
}
