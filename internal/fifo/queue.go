// Copyright 2024 The Cockroach Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Derived from https://github.com/cockroachdb/fifo/blob/0bbfbd93/queue.go,
// specialized to backtrace chunks.

// Package fifo provides the chunk queue backing growable backtrace
// capture: frames are walked into fixed-capacity chunks and assembled
// into one buffer once the depth is known.
package fifo

// Chunk is one slab of captured frames. IPs and SPs are sized at the
// chunk's capacity; N is how many leading entries hold valid frames.
type Chunk struct {
	IPs []uintptr
	SPs []uintptr
	N   int
}

// NewChunk returns a chunk with capacity for n frames. SPs is allocated
// only when stack pointers are being collected.
func NewChunk(n int, wantSP bool) Chunk {
	c := Chunk{IPs: make([]uintptr, n)}
	if wantSP {
		c.SPs = make([]uintptr, n)
	}
	return c
}

// Queue is an allocation-efficient FIFO of chunks. It is not safe for
// concurrent access.
//
// The queue hands out pointers to its internal storage (via PushBack and
// PeekFront); a pointer is valid only until its element is popped.
//
// The implementation is a linked list of nodes, each a small ring
// buffer. Emptied nodes go on a free list for reuse by later pushes.
type Queue struct {
	len        int
	head, tail *queueNode
	free       *queueNode
}

// Len returns the number of chunks queued.
func (q *Queue) Len() int {
	return q.len
}

// PushBack appends c and returns a pointer through which the caller can
// fill it in place.
func (q *Queue) PushBack(c Chunk) *Chunk {
	if q.head == nil {
		q.head = q.getNode()
		q.tail = q.head
	} else if q.tail.isFull() {
		newTail := q.getNode()
		q.tail.next = newTail
		q.tail = newTail
	}
	q.len++
	return q.tail.pushBack(c)
}

// PeekFront returns the head chunk, or nil if the queue is empty.
func (q *Queue) PeekFront() *Chunk {
	if q.len == 0 {
		return nil
	}
	return q.head.peekFront()
}

// PopFront removes the head chunk. It is illegal to call PopFront on an
// empty queue.
func (q *Queue) PopFront() {
	q.head.popFront()
	if q.head.len == 0 {
		oldHead := q.head
		q.head = oldHead.next
		q.putNode(oldHead)
	}
	q.len--
}

func (q *Queue) getNode() *queueNode {
	if q.free == nil {
		return new(queueNode)
	}
	qn := q.free
	q.free = qn.next
	qn.next = nil
	return qn
}

func (q *Queue) putNode(qn *queueNode) {
	qn.head = 0
	qn.len = 0
	qn.next = q.free
	q.free = qn
}

// Chunks are large, so nodes batch only a handful of them.
const queueNodeSize = 8

type queueNode struct {
	buf       [queueNodeSize]Chunk
	head, len int32
	next      *queueNode
}

func (qn *queueNode) isFull() bool {
	return qn.len == queueNodeSize
}

func (qn *queueNode) pushBack(c Chunk) *Chunk {
	i := (qn.head + qn.len) % queueNodeSize
	qn.buf[i] = c
	qn.len++
	return &qn.buf[i]
}

func (qn *queueNode) peekFront() *Chunk {
	return &qn.buf[qn.head]
}

func (qn *queueNode) popFront() {
	qn.buf[qn.head] = Chunk{}
	qn.head = (qn.head + 1) % queueNodeSize
	qn.len--
}
