package gpu

import "testing"

func TestDeletionQueueFrameFlushOrder(t *testing.T) {
	q := NewDeletionQueue(3)
	var order []int

	q.PushFrame(0, func() { order = append(order, 1) })
	q.PushFrame(0, func() { order = append(order, 2) })
	q.PushFrame(0, func() { order = append(order, 3) })

	q.FlushFrame(0)

	expected := []int{3, 2, 1}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d", len(expected), len(order))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("FlushFrame order: expected %v, got %v", expected, order)
			break
		}
	}

	if q.Pending() != 0 {
		t.Errorf("expected queue empty after flush, got %d pending", q.Pending())
	}
}

func TestDeletionQueueFrameIsolation(t *testing.T) {
	q := NewDeletionQueue(2)
	called := false
	q.PushFrame(1, func() { called = true })

	q.FlushFrame(0)
	if called {
		t.Errorf("FlushFrame(0) should not run closures queued for slot 1")
	}

	q.FlushFrame(1)
	if !called {
		t.Errorf("FlushFrame(1) should run closures queued for slot 1")
	}
}

func TestDeletionQueueFlushAllReverseOrder(t *testing.T) {
	q := NewDeletionQueue(1)
	var order []int
	q.PushGlobal(func() { order = append(order, 1) })
	q.PushGlobal(func() { order = append(order, 2) })
	q.PushGlobal(func() { order = append(order, 3) })

	q.FlushAll()

	expected := []int{3, 2, 1}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("FlushAll order: expected %v, got %v", expected, order)
			break
		}
	}
	if q.Pending() != 0 {
		t.Errorf("expected queue empty after FlushAll, got %d pending", q.Pending())
	}
}
