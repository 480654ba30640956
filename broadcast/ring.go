package broadcast

// ring retains the last K update messages of one group for pull catch-up
// and push reconnect. Not goroutine-safe; callers hold the group lock.
type ring struct {
	buf   []UpdateMessage
	head  int // index of the oldest retained message
	count int
}

func newRing(size int) *ring {
	if size < 1 {
		size = 1
	}
	return &ring{buf: make([]UpdateMessage, size)}
}

func (r *ring) add(msg UpdateMessage) {
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = msg
		r.count++
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % len(r.buf)
}

// since returns retained messages with sequence > seq, oldest first. ok is
// false when the window no longer reaches back to seq: the client's gap
// exceeds the retention and it must resync from a snapshot.
func (r *ring) since(seq uint64) (msgs []UpdateMessage, ok bool) {
	if r.count == 0 {
		return nil, true
	}
	oldest := r.buf[r.head].Sequence
	if oldest > seq+1 {
		return nil, false
	}
	for i := 0; i < r.count; i++ {
		msg := r.buf[(r.head+i)%len(r.buf)]
		if msg.Sequence > seq {
			msgs = append(msgs, msg)
		}
	}
	return msgs, true
}
