package lru

import (
	"errors"
	"sync"
)

var ErrCapacity = errors.New("capacity must be positive")

type linkNode[V any] struct {
	pre, next *linkNode[V]
	key       string
	value     V
}

// LRUCache is a fixed-capacity string keyed cache. It is safe for concurrent use.
type LRUCache[V any] struct {
	capacity   int
	mu         sync.Mutex
	dic        map[string]*linkNode[V]
	head, tail *linkNode[V]
	hits       uint64
	misses     uint64
}

func New[V any](capacity int) (*LRUCache[V], error) {
	if capacity <= 0 {
		return nil, ErrCapacity
	}
	return &LRUCache[V]{
		capacity: capacity,
		dic:      make(map[string]*linkNode[V], capacity),
	}, nil
}

// Get returns the cached value and moves the key to the head.
func (l *LRUCache[V]) Get(key string) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	node, ok := l.dic[key]
	if !ok {
		l.misses++
		var zero V
		return zero, false
	}
	l.hits++
	l.toHead(node)
	return node.value, true
}

func (l *LRUCache[V]) Put(key string, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if node, ok := l.dic[key]; ok {
		node.value = value
		l.toHead(node)
		return
	}

	if len(l.dic) == l.capacity {
		l.subTailAndMoveToHead(key, value)
		return
	}
	l.addToHead(&linkNode[V]{key: key, value: value})
}

// subTailAndMoveToHead reuses the tail node for the new key.
func (l *LRUCache[V]) subTailAndMoveToHead(key string, value V) {
	t := l.tail
	delete(l.dic, t.key)
	t.key = key
	t.value = value
	l.dic[key] = t
	l.toHead(t)
}

func (l *LRUCache[V]) addToHead(n *linkNode[V]) {
	l.dic[n.key] = n
	if l.head == nil {
		l.head = n
		l.tail = n
		return
	}
	l.head.pre = n
	n.next = l.head
	l.head = n
}

func (l *LRUCache[V]) toHead(n *linkNode[V]) {
	if n == l.head {
		return
	}
	if n == l.tail {
		l.tail = n.pre
	}
	if n.pre != nil {
		n.pre.next = n.next
	}
	if n.next != nil {
		n.next.pre = n.pre
	}
	n.next = l.head
	n.pre = nil
	l.head.pre = n
	l.head = n
}

func (l *LRUCache[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.dic)
}

// Stats returns hit and miss counters since creation.
func (l *LRUCache[V]) Stats() (hits, misses uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hits, l.misses
}
