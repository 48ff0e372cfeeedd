package tick

import "testing"

func TestQueue_FlushRunsNestedSchedules(t *testing.T) {
	q := NewQueue()
	var order []int
	q.Schedule(func() {
		order = append(order, 1)
		q.Schedule(func() { order = append(order, 3) })
	})
	q.Schedule(func() { order = append(order, 2) })

	if q.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", q.Pending())
	}
	if ran := q.Flush(); ran != 3 {
		t.Fatalf("ran = %d, want 3", ran)
	}
	want := []int{1, 2, 3}
	for idx := range want {
		if order[idx] != want[idx] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if q.Pending() != 0 {
		t.Fatalf("queue should be drained")
	}
}

func TestImmediate_RunsSynchronously(t *testing.T) {
	ran := false
	Immediate{}.Schedule(func() { ran = true })
	if !ran {
		t.Fatalf("immediate scheduler should run inline")
	}
}
