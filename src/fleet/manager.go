package fleet

import (
	"sync"

	"liftbank/src/store"
	"liftbank/src/types"
)

// fleetCmd is an operation run by the manager goroutine.
type fleetCmd struct {
	Exec func(repo store.Repository)
}

// manager owns the repository handle and serializes all access to it, which
// gives every operation a consistent view of the whole fleet.
type manager struct {
	cmds      chan fleetCmd
	done      chan struct{}
	closeOnce sync.Once
}

func startManager(repo store.Repository) *manager {
	mgr := &manager{
		cmds: make(chan fleetCmd),
		done: make(chan struct{}),
	}
	go func() {
		for {
			select {
			case cmd := <-mgr.cmds:
				cmd.Exec(repo)
			case <-mgr.done:
				return
			}
		}
	}()
	return mgr
}

// execute runs fn on the manager goroutine and waits for it.
func (mgr *manager) execute(fn func(repo store.Repository) error) error {
	select {
	case <-mgr.done:
		return types.ErrClosed
	default:
	}
	reply := make(chan error, 1)
	select {
	case mgr.cmds <- fleetCmd{Exec: func(repo store.Repository) { reply <- fn(repo) }}:
	case <-mgr.done:
		return types.ErrClosed
	}
	return <-reply
}

func (mgr *manager) stop() {
	mgr.closeOnce.Do(func() { close(mgr.done) })
}
