package metadata

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
)

// contentIndex maps the address of an asset's first element to the item holding that asset.
// Two slices that share a backing array start are the same asset.
type contentIndex[T any] struct {
	items *swiss.Map[*T, int]
}

func newContentIndex[T any](capacity int) contentIndex[T] {
	return contentIndex[T]{
		items: swiss.NewMap[*T, int](uint32(capacity)),
	}
}

func (c *contentIndex[T]) find(key *T) (int, bool) {
	return c.items.Get(key)
}

func (c *contentIndex[T]) insert(key *T, id int) {
	if c.items.Has(key) {
		panic(errors.AssertionFailedf("multiple copies of the same data are not supported"))
	}
	c.items.Put(key, id)
}

func (c *contentIndex[T]) erase(key *T) {
	if !c.items.Delete(key) {
		panic(errors.AssertionFailedf("data is not registered"))
	}
}

func (c *contentIndex[T]) count() int {
	return c.items.Count()
}
