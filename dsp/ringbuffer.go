/*
NAME
  ringbuffer.go

DESCRIPTION
  ringbuffer.go provides RingBuffer, a byte-oriented bounded queue used to
  connect two fused streaming pipeline modules (see pipeline.Run).

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

import "sync"

// RingBuffer is a blocking single-producer/single-consumer byte queue of
// fixed capacity. It is used between the first two pipeline modules when
// they are fused into concurrent workers sharing one buffer instead of an
// intermediate file.
type RingBuffer struct {
	buf      []byte
	cap      int
	r, w     int
	count    int
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	wClosed  bool
	rClosed  bool
}

// NewRingBuffer allocates a RingBuffer with the given byte capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	rb := &RingBuffer{buf: make([]byte, capacity), cap: capacity}
	rb.notEmpty = sync.NewCond(&rb.mu)
	rb.notFull = sync.NewCond(&rb.mu)
	return rb
}

// Write copies p into the ring, blocking until there is room for all of it
// or the reader has gone away (in which case it returns early with a short
// count). Write never writes more than len(p) bytes nor wraps partially
// without blocking for the remainder.
func (rb *RingBuffer) Write(p []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	written := 0
	for written < len(p) {
		for rb.count == rb.cap && !rb.rClosed {
			rb.notFull.Wait()
		}
		if rb.rClosed {
			return written
		}
		n := len(p) - written
		if free := rb.cap - rb.count; n > free {
			n = free
		}
		for i := 0; i < n; i++ {
			rb.buf[(rb.w+i)%rb.cap] = p[written+i]
		}
		rb.w = (rb.w + n) % rb.cap
		rb.count += n
		written += n
		rb.notEmpty.Broadcast()
	}
	return written
}

// Read blocks until at least one byte is available or the stream is closed
// and drained, filling as much of p as is available without blocking
// further. It returns 0 only once StopWriter has been called and the ring
// is empty.
func (rb *RingBuffer) Read(p []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 && !rb.wClosed {
		rb.notEmpty.Wait()
	}
	if rb.count == 0 {
		return 0
	}
	n := len(p)
	if n > rb.count {
		n = rb.count
	}
	for i := 0; i < n; i++ {
		p[i] = rb.buf[(rb.r+i)%rb.cap]
	}
	rb.r = (rb.r + n) % rb.cap
	rb.count -= n
	rb.notFull.Broadcast()
	return n
}

// StopWriter signals that no more data will ever be written.
func (rb *RingBuffer) StopWriter() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.wClosed = true
	rb.notEmpty.Broadcast()
}

// StopReader signals that the reader has gone away; blocked or future
// writes unblock immediately.
func (rb *RingBuffer) StopReader() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.rClosed = true
	rb.notFull.Broadcast()
}
