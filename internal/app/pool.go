package app

import "github.com/bft-labs/slship/internal/domain"

// vecPool is a bounded free list of record slices. It is owned by one
// session and is not safe for concurrent use.
type vecPool struct {
	free   [][]domain.Record
	limit  int
	vecCap int
}

func newVecPool(limit, vecCap int) *vecPool {
	return &vecPool{limit: limit, vecCap: vecCap}
}

// get pops a free slice or allocates one with the default capacity.
func (p *vecPool) get() []domain.Record {
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return v
	}
	return make([]domain.Record, 0, p.vecCap)
}

// put returns v to the pool. Slices that grew past the default capacity,
// and any beyond the pool limit, are left to the garbage collector.
func (p *vecPool) put(v []domain.Record) {
	if v == nil {
		return
	}
	clear(v)
	if cap(v) > p.vecCap || len(p.free) >= p.limit {
		return
	}
	p.free = append(p.free, v[:0])
}

func (p *vecPool) size() int {
	return len(p.free)
}
