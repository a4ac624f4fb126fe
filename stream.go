package blasflow

import (
	"sync"
)

// Stream represents an ordered sequence of operations that execute
// asynchronously. Operations within a stream execute in order, but
// operations in different streams may execute concurrently.
//
// A stream is either executing (tasks run on its worker goroutine as
// they are submitted) or recording (tasks are appended to a fragment
// for later replay). The capture driver flips a stream into record
// mode, issues the native calls bound to it, and collects the fragment.
type Stream struct {
	id    int
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup

	rec *fragment // non-nil while recording
}

// Event is a one-shot cross-stream barrier. A replay records it on the
// producing stream and waits on it from the consuming stream,
// preserving dependency edges that span streams.
type Event struct {
	ch chan struct{}
}

func newEvent() *Event {
	return &Event{ch: make(chan struct{})}
}

// Record signals the event. Recording twice is a replay bug.
func (e *Event) Record() {
	close(e.ch)
}

// Wait blocks until the event has been recorded.
func (e *Event) Wait() {
	<-e.ch
}

// newStream creates a stream and starts its worker goroutine.
func newStream(id int) *Stream {
	s := &Stream{
		id:    id,
		tasks: make(chan func(), StreamQueueDepth),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

// Submit adds a task to the stream
func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}

// Synchronize waits for all tasks in the stream to complete
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// ID returns the stream's index within its pool.
func (s *Stream) ID() int {
	return s.id
}

// close shuts the worker down after draining pending tasks.
func (s *Stream) close() {
	s.wg.Wait()
	close(s.tasks)
	<-s.done
}

// Recording support

type itemKind int

const (
	itemOp itemKind = iota
	itemRecordEvent
	itemWaitEvent
)

// replayItem is one recorded step of a stream fragment: a bound native
// operation, or an event record/wait barrier identified by slot.
type replayItem struct {
	kind   itemKind
	nodeID int
	run    func() error // set for itemOp
	event  int          // set for itemRecordEvent / itemWaitEvent
}

// fragment is the record-mode product of a single stream. cur tracks
// the graph node currently being issued so recorded operations can be
// attributed to it.
type fragment struct {
	cur   int
	items []replayItem
}

// beginCapture flips the stream into record mode.
func (s *Stream) beginCapture() {
	s.rec = &fragment{}
}

// endCapture leaves record mode and returns the recorded fragment.
func (s *Stream) endCapture() *fragment {
	f := s.rec
	s.rec = nil
	return f
}

// abortCapture discards any partially recorded fragment.
func (s *Stream) abortCapture() {
	s.rec = nil
}

func (s *Stream) capturing() bool {
	return s.rec != nil
}

// setCaptureNode marks the node whose issuance is being recorded.
func (s *Stream) setCaptureNode(id int) {
	if s.rec != nil {
		s.rec.cur = id
	}
}

// recordOp appends a bound native call to the fragment.
func (s *Stream) recordOp(run func() error) {
	s.rec.items = append(s.rec.items, replayItem{
		kind:   itemOp,
		nodeID: s.rec.cur,
		run:    run,
	})
}

// recordEvent appends an event record or wait barrier to the fragment.
func (s *Stream) recordEvent(kind itemKind, slot int) {
	s.rec.items = append(s.rec.items, replayItem{
		kind:   kind,
		nodeID: s.rec.cur,
		event:  slot,
	})
}

// StreamPool owns the fixed set of capture streams of one Capturer.
type StreamPool struct {
	streams []*Stream
}

func newStreamPool(n int) *StreamPool {
	p := &StreamPool{streams: make([]*Stream, n)}
	for i := range p.streams {
		p.streams[i] = newStream(i)
	}
	return p
}

// Size returns the number of streams in the pool.
func (p *StreamPool) Size() int {
	return len(p.streams)
}

// Stream returns the stream at index i.
func (p *StreamPool) Stream(i int) *Stream {
	return p.streams[i]
}

// Synchronize waits for all streams to complete
func (p *StreamPool) Synchronize() {
	for _, s := range p.streams {
		s.Synchronize()
	}
}

// close shuts down every stream worker.
func (p *StreamPool) close() {
	for _, s := range p.streams {
		s.close()
	}
}
