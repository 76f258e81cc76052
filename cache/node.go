package cache

// node is an intrusive doubly linked list element owned by a Buffer.
type node[K comparable, V any] struct {
	key K
	val V

	// Intrusive list links: head is MRU, tail is LRU.
	prev *node[K, V]
	next *node[K, V]
}

// recency is the MRU↔LRU list. It knows nothing about the key map;
// the Buffer keeps both in sync.
type recency[K comparable, V any] struct {
	head *node[K, V] // MRU
	tail *node[K, V] // LRU
	len  int
}

// pushFront inserts n at MRU in O(1).
func (l *recency[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

// moveToFront promotes n to MRU in O(1).
func (l *recency[K, V]) moveToFront(n *node[K, V]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.pushFront(n)
}

// unlink detaches n from the list in O(1).
func (l *recency[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if l.head == n {
		l.head = n.next
	}
	if l.tail == n {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}

// back returns the LRU node (nil when empty).
func (l *recency[K, V]) back() *node[K, V] { return l.tail }

// reset drops all links. Nodes are left to the GC.
func (l *recency[K, V]) reset() {
	l.head, l.tail, l.len = nil, nil, 0
}
