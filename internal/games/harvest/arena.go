package harvest

// CropHandle refers to a crop in the field without owning it.
// A handle goes stale when its crop is swept; lookups then fail instead of
// returning whatever crop reused the slot.
type CropHandle struct {
	Slot int
	Gen  uint32
}

// NoCrop is the handle that never resolves.
var NoCrop = CropHandle{Slot: -1}

// Valid reports whether h points at a slot at all. It says nothing about liveness.
func (h CropHandle) Valid() bool {
	return h.Slot >= 0
}

type cropSlot struct {
	crop Crop
	gen  uint32
	used bool
}

// cropArena stores crops in reusable slots with generation counters.
type cropArena struct {
	slots []cropSlot
	free  []int
	live  int
}

// insert stores a crop and returns its handle.
func (a *cropArena) insert(c Crop) CropHandle {
	c.Alive = true

	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, cropSlot{})
		idx = len(a.slots) - 1
	}

	slot := &a.slots[idx]
	slot.crop = c
	slot.used = true
	a.live++
	return CropHandle{Slot: idx, Gen: slot.gen}
}

// get resolves a handle to a live crop.
func (a *cropArena) get(h CropHandle) (*Crop, bool) {
	if h.Slot < 0 || h.Slot >= len(a.slots) {
		return nil, false
	}
	slot := &a.slots[h.Slot]
	if !slot.used || slot.gen != h.Gen || !slot.crop.Alive {
		return nil, false
	}
	return &slot.crop, true
}

// each calls fn for every live crop in slot order.
func (a *cropArena) each(fn func(h CropHandle, c *Crop)) {
	for i := range a.slots {
		slot := &a.slots[i]
		if slot.used && slot.crop.Alive {
			fn(CropHandle{Slot: i, Gen: slot.gen}, &slot.crop)
		}
	}
}

// sweep frees the slots of dead crops and returns how many were removed.
func (a *cropArena) sweep() int {
	removed := 0
	for i := range a.slots {
		slot := &a.slots[i]
		if slot.used && !slot.crop.Alive {
			slot.used = false
			slot.gen++
			slot.crop = Crop{}
			a.free = append(a.free, i)
			a.live--
			removed++
		}
	}
	return removed
}

// clear removes every crop. Existing handles go stale.
func (a *cropArena) clear() {
	for i := range a.slots {
		if a.slots[i].used {
			a.slots[i].used = false
			a.slots[i].gen++
			a.slots[i].crop = Crop{}
		}
	}
	a.free = a.free[:0]
	for i := len(a.slots) - 1; i >= 0; i-- {
		a.free = append(a.free, i)
	}
	a.live = 0
}

// len returns the number of occupied slots, dead-but-unswept crops included.
func (a *cropArena) len() int {
	return a.live
}
