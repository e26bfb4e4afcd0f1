package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicportal/admin-api/internal/core/domain"
)

type recordingService struct {
	mu   sync.Mutex
	seen map[string][]domain.ActivityAction
}

func (s *recordingService) Process(_ context.Context, a domain.IssueActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = make(map[string][]domain.ActivityAction)
	}
	s.seen[a.IssueID] = append(s.seen[a.IssueID], a.Action)
	return nil
}

func TestDispatcher_PreservesPerIssueOrder(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(4, svc, zerolog.Nop())
	d.Start(context.Background())

	order := []domain.ActivityAction{domain.ActionCreated, domain.ActionAssigned, domain.ActionStatusChanged, domain.ActionDeleted}
	for i := 0; i < 10; i++ {
		for _, action := range order {
			d.Record(domain.IssueActivity{IssueID: fmt.Sprintf("issue-%d", i), Action: action})
		}
	}
	d.Stop()

	for i := 0; i < 10; i++ {
		got := svc.seen[fmt.Sprintf("issue-%d", i)]
		if len(got) != len(order) {
			t.Fatalf("issue-%d: expected %d entries, got %d", i, len(order), len(got))
		}
		for j := range order {
			if got[j] != order[j] {
				t.Fatalf("issue-%d: entry %d out of order: %v", i, j, got)
			}
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingService{}, zerolog.Nop())
	first := d.shardIndex("64f1c2a9e4b0a1b2c3d4e5f6")
	for i := 0; i < 5; i++ {
		if got := d.shardIndex("64f1c2a9e4b0a1b2c3d4e5f6"); got != first {
			t.Fatalf("shard changed: %d != %d", got, first)
		}
	}
}

type blockingService struct {
	release chan struct{}
}

func (s *blockingService) Process(context.Context, domain.IssueActivity) error {
	<-s.release
	return nil
}

func TestDispatcher_RecordNeverBlocks(t *testing.T) {
	svc := &blockingService{release: make(chan struct{})}
	d := NewDispatcher(1, svc, zerolog.Nop())
	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer*2; i++ {
			d.Record(domain.IssueActivity{IssueID: "issue-1", Action: domain.ActionUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	close(svc.release)
	d.Stop()
}

func TestDispatcher_RecordAfterStopIsIgnored(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(2, svc, zerolog.Nop())
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	d.Record(domain.IssueActivity{IssueID: "issue-1", Action: domain.ActionCreated})
	if len(svc.seen) != 0 {
		t.Fatalf("expected nothing processed after stop, got %v", svc.seen)
	}
}
