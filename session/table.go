package session

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/ezrec/lockstep/hw"
)

// Table is the host wide reservation table of exclusive resources.
type Table struct {
	mutex  sync.Mutex
	owners map[hw.Resource]uuid.UUID
}

// NewTable creates an empty reservation table.
func NewTable() *Table {
	return &Table{owners: map[hw.Resource]uuid.UUID{}}
}

// Reserve claims every resource for owner, or none of them. A resource
// that is already held conflicts, whoever holds it.
func (tb *Table) Reserve(owner uuid.UUID, resources ...hw.Resource) (err error) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	for _, res := range resources {
		if other, ok := tb.owners[res]; ok {
			err = &ResourceConflictError{Resource: res, Owner: other}
			return
		}
	}

	for _, res := range resources {
		tb.owners[res] = owner
	}

	return
}

// Release frees every resource of owner, returning how many were freed.
func (tb *Table) Release(owner uuid.UUID) (count int) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	for res, other := range tb.owners {
		if other == owner {
			delete(tb.owners, res)
			count++
		}
	}

	return
}

// Owner returns the owner of a resource.
func (tb *Table) Owner(res hw.Resource) (owner uuid.UUID, ok bool) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	owner, ok = tb.owners[res]
	return
}

// Reserved lists the reserved resources by chassis, then name.
func (tb *Table) Reserved() []hw.Resource {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	return slices.SortedFunc(maps.Keys(tb.owners), func(a, b hw.Resource) int {
		return cmp.Or(cmp.Compare(a.Chassis, b.Chassis), cmp.Compare(a.Name, b.Name))
	})
}

// Clear drops every reservation.
func (tb *Table) Clear() {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	clear(tb.owners)
}
