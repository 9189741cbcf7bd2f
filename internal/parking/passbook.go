package parking

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// PassBook keeps issued passes so their state survives between gate calls.
type PassBook struct {
	mu     sync.RWMutex
	passes map[string]*Pass
}

func NewPassBook() *PassBook {
	return &PassBook{passes: make(map[string]*Pass)}
}

func (b *PassBook) Issue(pass *Pass) error {
	if pass.Kind != PassRecurring && pass.Kind != PassSingleUse {
		return errors.Wrapf(ErrUnknownPassKind, "pass %s", pass.ID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.passes[pass.ID]; ok {
		return errors.Wrapf(ErrPassExists, "pass %s", pass.ID)
	}
	b.passes[pass.ID] = pass
	return nil
}

func (b *PassBook) Lookup(id string) (*Pass, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pass, ok := b.passes[id]
	if !ok {
		return nil, errors.Wrapf(ErrPassNotFound, "pass %s", id)
	}
	return pass, nil
}

func (b *PassBook) List() []*Pass {
	b.mu.RLock()
	passes := make([]*Pass, 0, len(b.passes))
	for _, p := range b.passes {
		passes = append(passes, p)
	}
	b.mu.RUnlock()

	sort.Slice(passes, func(i, j int) bool { return passes[i].ID < passes[j].ID })
	return passes
}
