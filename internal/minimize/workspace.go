package minimize

import "sync"

// Workspace lists slices of a consumed state that the producing solver will
// never read again. The driver hands them back to the shared pool once the
// successor state exists; a solver that prefers fresh allocations can return
// an empty Workspace.
type Workspace struct {
	Vectors [][]float64
}

// vectorPool recycles per-iteration float buffers (search directions, trial
// points) to keep the steady-state allocation rate of a run flat. Backed by
// sync.Pool so unrelated concurrent runs can share it without coordination.
type vectorPool struct {
	pool sync.Pool
}

func newVectorPool() *vectorPool {
	return &vectorPool{}
}

// get returns a zeroed-length-n slice, reusing pooled capacity when possible.
func (p *vectorPool) get(n int) []float64 {
	if v, ok := p.pool.Get().([]float64); ok && cap(v) >= n {
		v = v[:n]
		for i := range v {
			v[i] = 0
		}
		return v
	}
	return make([]float64, n)
}

// put returns a slice to the pool. The caller must not touch it afterwards.
func (p *vectorPool) put(v []float64) {
	if v == nil {
		return
	}
	p.pool.Put(v)
}

// release returns every vector of a workspace to the pool.
func (p *vectorPool) release(ws Workspace) {
	for _, v := range ws.Vectors {
		p.put(v)
	}
}

// workPool is the process-wide buffer pool used by the solvers and the
// driver.
var workPool = newVectorPool()
