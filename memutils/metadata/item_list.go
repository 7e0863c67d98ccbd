package metadata

import "github.com/cockroachdb/errors"

// itemListBeforeBegin is the anchor slot that precedes the first live node. The end anchor sits
// just past the last valid id, at capacity+1.
const itemListBeforeBegin = 0

type itemListNode[V any] struct {
	value V
	prev  int
	next  int
	live  bool
}

// itemList is a fixed-capacity doubly linked list stored in a flat slice and linked by index.
// Slots are recycled through a free-index stack; the list never grows after init.
type itemList[V any] struct {
	nodes     []itemListNode[V]
	freeSlots []int
}

func (l *itemList[V]) init(capacity int) {
	l.nodes = make([]itemListNode[V], capacity+2)
	l.freeSlots = make([]int, 0, capacity)

	// Lower ids are popped first
	for id := capacity; id >= 1; id-- {
		l.freeSlots = append(l.freeSlots, id)
	}

	end := capacity + 1
	l.nodes[itemListBeforeBegin].prev = itemListBeforeBegin
	l.nodes[itemListBeforeBegin].next = end
	l.nodes[end].prev = itemListBeforeBegin
	l.nodes[end].next = end
}

func (l *itemList[V]) capacity() int  { return len(l.nodes) - 2 }
func (l *itemList[V]) size() int      { return l.capacity() - len(l.freeSlots) }
func (l *itemList[V]) available() int { return len(l.freeSlots) }
func (l *itemList[V]) full() bool     { return len(l.freeSlots) == 0 }

func (l *itemList[V]) begin() int { return l.nodes[itemListBeforeBegin].next }
func (l *itemList[V]) end() int   { return len(l.nodes) - 1 }

func (l *itemList[V]) next(id int) int { return l.nodes[id].next }
func (l *itemList[V]) prev(id int) int { return l.nodes[id].prev }

// live reports whether id refers to a slot currently linked into the list
func (l *itemList[V]) live(id int) bool {
	return id > itemListBeforeBegin && id < l.end() && l.nodes[id].live
}

// item returns the value stored in slot id. The pointer stays valid until the slot is erased.
func (l *itemList[V]) item(id int) *V {
	return &l.nodes[id].value
}

// insert links a copy of value before position and returns its id. position may be end().
func (l *itemList[V]) insert(position int, value V) int {
	if l.full() {
		panic(errors.AssertionFailedf("no more items available: capacity is %d", l.capacity()))
	}
	if position != l.end() && !l.live(position) {
		panic(errors.AssertionFailedf("invalid insert position: %d", position))
	}

	last := len(l.freeSlots) - 1
	id := l.freeSlots[last]
	l.freeSlots = l.freeSlots[:last]

	prev := l.nodes[position].prev
	l.nodes[id] = itemListNode[V]{
		value: value,
		prev:  prev,
		next:  position,
		live:  true,
	}
	l.nodes[prev].next = id
	l.nodes[position].prev = id

	return id
}

func (l *itemList[V]) pushFront(value V) int {
	return l.insert(l.begin(), value)
}

// erase unlinks id, recycles its slot and returns the id that followed it
func (l *itemList[V]) erase(id int) int {
	if !l.live(id) {
		panic(errors.AssertionFailedf("invalid item id: %d", id))
	}

	node := l.nodes[id]
	l.nodes[node.prev].next = node.next
	l.nodes[node.next].prev = node.prev
	l.nodes[id] = itemListNode[V]{}
	l.freeSlots = append(l.freeSlots, id)

	return node.next
}
