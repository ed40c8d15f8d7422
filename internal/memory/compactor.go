package memory

import (
	"time"

	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/debuglog"
	"github.com/snjsomnath/threejsEditor-sub001/internal/transform"
)

var compactionLogger = debuglog.New("compaction")

// Compactor squeezes dropped slots out of the live prefix.
type Compactor struct{}

func newCompactor() *Compactor {
	return &Compactor{}
}

// compact walks the live prefix once, moving every slot keep accepts down to
// the next write position so relative order is preserved. Every building's
// slot list is rewritten through the resulting old→new mapping, which is
// also handed to the pool's hooks. Returns the mapping; dropped slots map to
// -1.
func (c *Compactor) compact(p *Pool, keep func(slot int, owner building.ID) bool) []int {
	startTime := time.Now()

	oldCount := p.count
	remap := make([]int, oldCount)
	write, relocated, reclaimed := 0, 0, 0
	firstMoved := oldCount
	for read := 0; read < oldCount; read++ {
		owner := p.slotOwner[read]
		if !keep(read, owner) {
			remap[read] = -1
			if owner == "" {
				reclaimed++
			}
			continue
		}
		if write != read {
			for _, buf := range p.buffers {
				if buf != nil {
					buf.matrices[write] = buf.matrices[read]
				}
			}
			p.slotOwner[write] = owner
			firstMoved = min(firstMoved, write)
			relocated++
		}
		remap[read] = write
		write++
	}

	// Vacated tail.
	for i := write; i < oldCount; i++ {
		p.slotOwner[i] = ""
		for _, buf := range p.buffers {
			if buf != nil {
				buf.matrices[i] = transform.Hidden
			}
		}
	}
	for _, buf := range p.buffers {
		if buf != nil {
			buf.markDirty(min(firstMoved, write), oldCount)
		}
	}
	p.count = write
	p.orphans -= reclaimed

	for id, slots := range p.owners {
		for i, slot := range slots {
			slots[i] = remap[slot]
		}
		p.owners[id] = slots
	}

	p.stats.CompactionEvents++
	p.stats.SlotsRelocated += relocated
	p.stats.SlotsReclaimed += reclaimed
	p.stats.LastCompactionTimeUs = float64(time.Since(startTime).Microseconds())

	compactionLogger.Debugf("compacted %d → %d live slots (%d relocated, %d orphans reclaimed) in %s",
		oldCount, write, relocated, reclaimed, time.Since(startTime))

	for _, hook := range p.hooks {
		hook(remap)
	}
	return remap
}
