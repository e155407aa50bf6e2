package models

import (
	"bytes"
	"sync"
)

// DiscacheLimit bounds the number of cached disassembly runs.
const DiscacheLimit = 4096

type DiscacheEntry struct {
	Addr uint64
	Mem  []byte
	Dis  []Ins
}

// Discache memoizes disassembly by start address. An entry only hits when
// the bytes match as well, so a cache can be shared across objects.
type Discache struct {
	sync.RWMutex
	cache map[uint64]*DiscacheEntry
	limit int
}

func NewDiscache() *Discache {
	return &Discache{cache: make(map[uint64]*DiscacheEntry), limit: DiscacheLimit}
}

func (d *Discache) Get(addr uint64, mem []byte) *DiscacheEntry {
	d.RLock()
	defer d.RUnlock()
	if ent, ok := d.cache[addr]; ok && bytes.Equal(mem, ent.Mem) {
		return ent
	}
	return nil
}

func (d *Discache) Put(addr uint64, mem []byte, dis []Ins) {
	d.Lock()
	defer d.Unlock()
	if len(d.cache) >= d.limit {
		d.cache = make(map[uint64]*DiscacheEntry)
	}
	d.cache[addr] = &DiscacheEntry{
		Addr: addr,
		Mem:  append([]byte(nil), mem...),
		Dis:  dis,
	}
}

func (d *Discache) Len() int {
	d.RLock()
	defer d.RUnlock()
	return len(d.cache)
}
