package tournament

import (
	"sync"

	"github.com/mcoot/tourney/internal/model"
)

// lockTable hands out one mutex per tournament. Entries are dropped once no
// goroutine holds or waits on them.
type lockTable struct {
	mu    sync.Mutex
	locks map[model.TournamentID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{
		locks: make(map[model.TournamentID]*lockEntry),
	}
}

// lock blocks until the tournament's mutex is held and returns its release func
func (l *lockTable) lock(id model.TournamentID) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// size returns the number of live entries
func (l *lockTable) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
