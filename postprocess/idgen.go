package postprocess

import "sync"

// idGenerator is a struct to hold a counter for generating the next
// incremental detection result ID number
type idGenerator struct {
	id int64
	sync.Mutex
}

func newIDGenerator() *idGenerator {
	return &idGenerator{}
}

// GetNext next incremental number
func (id *idGenerator) GetNext() int64 {
	id.Lock()
	defer id.Unlock()
	id.id++
	return id.id
}
