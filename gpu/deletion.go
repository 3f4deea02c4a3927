package gpu

import "container/list"

// DeletionQueue defers GPU object destruction until it is safe: a closure pushed for "this frame slot"
// runs the next time that slot comes back around (N frames later, once the GPU is guaranteed done with
// it), and a closure pushed onto the global queue runs only at full shutdown. This mirrors
// original_source/Chimera/Backend/DeletionQueue.h's per-frame ring plus a global list shape.
//
// container/list is used rather than a slice-as-stack because no generic-collections third-party library
// appears anywhere in the retrieved corpus (see DESIGN.md) — this is the stdlib answer for a structure that
// needs cheap push-front/flush-all-in-reverse semantics without reslicing.
type DeletionQueue struct {
	perFrame []*list.List
	global   *list.List
}

func NewDeletionQueue(framesInFlight int) *DeletionQueue {
	perFrame := make([]*list.List, framesInFlight)
	for i := range perFrame {
		perFrame[i] = list.New()
	}
	return &DeletionQueue{perFrame: perFrame, global: list.New()}
}

// PushFrame defers fn until the given frame slot is reused, i.e. after framesInFlight frames have passed.
func (q *DeletionQueue) PushFrame(slot int, fn func()) {
	q.perFrame[slot].PushBack(fn)
}

// PushGlobal defers fn until FlushAll is called (application shutdown).
func (q *DeletionQueue) PushGlobal(fn func()) {
	q.global.PushBack(fn)
}

// FlushFrame runs and clears every closure queued for slot, in reverse insertion order. Called once per
// frame, before that slot's resources are reused, per the frame scheduler's begin_frame sequence (§4.9 step 4).
func (q *DeletionQueue) FlushFrame(slot int) {
	flushReverse(q.perFrame[slot])
}

// FlushAll runs every queued closure — all per-frame queues, then the global queue — in reverse insertion
// order within each list, matching the deletion queue's "destroy in the opposite order resources were
// created" invariant.
func (q *DeletionQueue) FlushAll() {
	for _, l := range q.perFrame {
		flushReverse(l)
	}
	flushReverse(q.global)
}

func flushReverse(l *list.List) {
	for e := l.Back(); e != nil; e = e.Prev() {
		e.Value.(func())()
	}
	l.Init()
}

// Pending reports how many closures are queued across every slot plus the global queue, used by tests to
// assert the queue drains to zero after a full flush.
func (q *DeletionQueue) Pending() int {
	n := q.global.Len()
	for _, l := range q.perFrame {
		n += l.Len()
	}
	return n
}
