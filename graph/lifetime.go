package graph

import "sort"

// executionOrder performs a stable topological sort over the needed passes: a pass reading resource X must
// come after the pass that writes X. Ties (multiple passes with no unresolved dependency) are broken by
// original declaration order, which is what makes graph compilation idempotent across repeated Build()
// calls on the same declarations.
func executionOrder(passes []PassDesc, needed map[int]bool, producer map[ResourceName]int) ([]int, error) {
	indegree := make(map[int]int, len(needed))
	dependents := make(map[int][]int, len(needed))

	for i := range passes {
		if !needed[i] {
			continue
		}
		indegree[i] = 0
	}
	for i := range passes {
		if !needed[i] {
			continue
		}
		for _, r := range passes[i].Reads {
			src, ok := producer[r]
			if !ok || !needed[src] || src == i {
				continue
			}
			indegree[i]++
			dependents[src] = append(dependents[src], i)
		}
	}

	var ready []int
	for i := range passes {
		if needed[i] && indegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	sort.Ints(ready)

	var order []int
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		next := append([]int(nil), dependents[n]...)
		sort.Ints(next)
		for _, d := range next {
			indegree[d]--
			if indegree[d] == 0 {
				ready = insertSorted(ready, d)
			}
		}
	}

	if len(order) != len(needed) {
		return nil, buildErrorf("cycle detected among render graph passes")
	}
	return order, nil
}

func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

type resourceUsage struct {
	first, last int
	poolSlot    int
}

// computeLifetimes finds, for every resource touched by a needed pass, the first and last execution-order
// index that reads or writes it.
func computeLifetimes(passes []PassDesc, resources map[ResourceName]ResourceDesc, order []int) map[ResourceName]resourceUsage {
	usage := make(map[ResourceName]resourceUsage)
	touch := func(name ResourceName, idx int) {
		u, ok := usage[name]
		if !ok {
			usage[name] = resourceUsage{first: idx, last: idx}
			return
		}
		if idx < u.first {
			u.first = idx
		}
		if idx > u.last {
			u.last = idx
		}
		usage[name] = u
	}

	for orderIdx, passIdx := range order {
		p := passes[passIdx]
		for _, r := range p.Reads {
			touch(r, orderIdx)
		}
		for _, w := range p.Writes {
			touch(w, orderIdx)
		}
	}
	return usage
}

// assignPoolSlots performs greedy interval-graph coloring: resources are sorted by first-use, and each is
// assigned the lowest-numbered pool slot whose previous occupant's interval has already ended. Persistent
// resources are excluded by the caller before slot assignment is read back (their PoolSlot is forced to -1).
func assignPoolSlots(usage map[ResourceName]resourceUsage) int {
	type entry struct {
		name ResourceName
		u    resourceUsage
	}
	entries := make([]entry, 0, len(usage))
	for name, u := range usage {
		entries = append(entries, entry{name, u})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].u.first != entries[j].u.first {
			return entries[i].u.first < entries[j].u.first
		}
		return entries[i].name < entries[j].name
	})

	var slotFreeAt []int // slotFreeAt[slot] = last execution index still holding a live resource
	for i, e := range entries {
		assigned := -1
		for slot, freeAt := range slotFreeAt {
			if freeAt < e.u.first {
				assigned = slot
				break
			}
		}
		if assigned == -1 {
			assigned = len(slotFreeAt)
			slotFreeAt = append(slotFreeAt, 0)
		}
		slotFreeAt[assigned] = e.u.last
		e.u.poolSlot = assigned
		entries[i] = e
		usage[e.name] = e.u
	}
	return len(slotFreeAt)
}
