package blasflow

import "sync"

// CapturedGraph is the merged, launch-ready artifact of one Capture
// call. It is immutable: replays walk the recorded per-stream fragments
// and the event barriers between them, reproducing the task graph's
// partial order exactly while leaving independent nodes free to run
// concurrently. The caller owns its lifetime and may launch it any
// number of times; it becomes stale if the originating node set
// changes, in which case Capture must be called again.
type CapturedGraph struct {
	pool       *StreamPool
	frags      []*fragment
	numEvents  int
	assignment *StreamAssignment
	nodes      int

	last *launchState
}

type launchState struct {
	mu  sync.Mutex
	err error
}

func (st *launchState) set(err error) {
	st.mu.Lock()
	if st.err == nil {
		st.err = err
	}
	st.mu.Unlock()
}

func (st *launchState) get() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err
}

// NumNodes returns the number of operation nodes in the graph.
func (g *CapturedGraph) NumNodes() int {
	return g.nodes
}

// Assignment returns the stream assignment the graph was captured with.
func (g *CapturedGraph) Assignment() *StreamAssignment {
	return g.assignment
}

// Launch replays the captured graph. It returns once every fragment is
// queued; it never blocks on device completion. Fresh event instances
// back each launch, so replays are independent of one another. Launches
// of the same graph serialize per stream; call Wait between launches
// when one replay's outputs feed the next's inputs.
func (g *CapturedGraph) Launch() error {
	st := &launchState{}
	g.last = st

	events := make([]*Event, g.numEvents)
	for i := range events {
		events[i] = newEvent()
	}

	for si, f := range g.frags {
		f := f
		g.pool.Stream(si).Submit(func() {
			failed := false
			for _, it := range f.items {
				switch it.kind {
				case itemWaitEvent:
					events[it.event].Wait()
				case itemRecordEvent:
					// Recorded even after a failure so streams waiting
					// on this one cannot hang.
					events[it.event].Record()
				case itemOp:
					if failed {
						continue
					}
					if err := it.run(); err != nil {
						st.set(NewLaunchError("Launch", it.nodeID, err))
						failed = true
					}
				}
			}
		})
	}
	return nil
}

// Wait blocks until the most recent launch has drained and returns its
// first replay error, if any.
func (g *CapturedGraph) Wait() error {
	g.pool.Synchronize()
	if g.last == nil {
		return nil
	}
	return g.last.get()
}
