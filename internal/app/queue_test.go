package app

import (
	"testing"

	"github.com/bft-labs/slship/internal/domain"
)

func TestIntakeQueue_Unbounded(t *testing.T) {
	q := newIntakeQueue(0, OverflowDropNewest)
	for i := 0; i < 10000; i++ {
		if !q.push(intakeItem{rec: domain.NewRecord(uint32(i))}) {
			t.Fatal("push refused")
		}
	}
	if q.takeDropped() != 0 {
		t.Error("unbounded queue dropped records")
	}

	select {
	case <-q.notify:
	default:
		t.Error("no wake-up signal")
	}

	items := q.take(nil)
	if len(items) != 10000 || items[9999].rec.Timestamp != 9999 {
		t.Errorf("take() returned %d items", len(items))
	}
	if q.size() != 0 {
		t.Error("queue not empty after take")
	}
}

func TestIntakeQueue_CloseRefuses(t *testing.T) {
	q := newIntakeQueue(0, OverflowDropNewest)
	q.push(intakeItem{})
	q.close()

	if q.push(intakeItem{}) {
		t.Error("push accepted after close")
	}
	if !q.isClosed() {
		t.Error("isClosed() = false")
	}
	if n := len(q.take(nil)); n != 1 {
		t.Errorf("take() after close = %d items, want 1", n)
	}
}
