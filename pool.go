package poselite

import (
	"sync"
)

// Pool is a simple Inferencer pool to open multiple sessions of the same
// Model for concurrent use across workers
type Pool struct {
	// pool of inferencers
	sessions chan Inferencer
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a new Inferencer pool of the given size.  The factory
// function is called once per slot to create each session.
func NewPool(size int, factory func() (Inferencer, error)) (*Pool, error) {
	p := &Pool{
		sessions: make(chan Inferencer, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		inf, err := factory()

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(inf)
	}

	return p, nil
}

// Get returns an Inferencer from the pool, blocking until one is
// available
func (p *Pool) Get() Inferencer {
	return <-p.sessions
}

// Return an Inferencer to the pool after use
func (p *Pool) Return(inf Inferencer) {
	p.sessions <- inf
}

// Close the pool and all Inferencer sessions in it
func (p *Pool) Close() {
	p.close.Do(func() {
		close(p.sessions)

		for inf := range p.sessions {
			_ = inf.Close()
		}
	})
}
