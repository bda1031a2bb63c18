package core

import (
	"container/heap"
	"context"
	"math/rand"
	"sync"
	"time"
)

// PollReq is emitted when a schedule falls due.
type PollReq struct {
	Addr CapAddr
	Verb string
}

type pollKey struct {
	addr CapAddr
	verb string
}

type pollItem struct {
	key    pollKey
	due    time.Time
	every  time.Duration
	jitter time.Duration
	index  int
}

// pollHeap orders schedules by due time.
type pollHeap []*pollItem

func (h pollHeap) Len() int           { return len(h) }
func (h pollHeap) Less(i, j int) bool { return h[i].due.Before(h[j].due) }
func (h pollHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *pollHeap) Push(x any)        { it := x.(*pollItem); it.index = len(*h); *h = append(*h, it) }
func (h *pollHeap) Pop() any {
	old := *h
	it := old[len(old)-1]
	it.index = -1
	*h = old[:len(old)-1]
	return it
}

// Poller turns declarative poll specs into PollReqs on out. A full out
// channel skips that firing rather than blocking.
type Poller struct {
	mu    sync.Mutex
	wake  chan struct{}
	items map[pollKey]*pollItem
	h     pollHeap
	rand  *rand.Rand
	out   chan<- PollReq
}

func NewPoller(out chan<- PollReq) *Poller {
	return &Poller{
		wake:  make(chan struct{}, 1),
		items: make(map[pollKey]*pollItem),
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		out:   out,
	}
}

// Upsert adds or replaces a schedule. The first firing is one interval (plus
// jitter) from now.
func (p *Poller) Upsert(addr CapAddr, verb string, every, jitter time.Duration) {
	if every <= 0 || verb == "" {
		return
	}
	if jitter < 0 {
		jitter = 0
	}
	key := pollKey{addr: addr, verb: verb}

	p.mu.Lock()
	due := time.Now().Add(p.jittered(every, jitter))
	if it := p.items[key]; it != nil {
		it.every, it.jitter, it.due = every, jitter, due
		heap.Fix(&p.h, it.index)
	} else {
		it = &pollItem{key: key, due: due, every: every, jitter: jitter, index: -1}
		p.items[key] = it
		heap.Push(&p.h, it)
	}
	p.mu.Unlock()
	p.wakeup()
}

func (p *Poller) Stop(addr CapAddr, verb string) {
	key := pollKey{addr: addr, verb: verb}
	p.mu.Lock()
	if it := p.items[key]; it != nil {
		heap.Remove(&p.h, it.index)
		delete(p.items, key)
	}
	p.mu.Unlock()
	p.wakeup()
}

// Len reports the number of active schedules.
func (p *Poller) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func (p *Poller) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		fire, wait := p.next()
		if fire != nil {
			select {
			case p.out <- *fire:
			default:
			}
			continue
		}

		var tc <-chan time.Time
		if wait > 0 {
			timer.Reset(wait)
			tc = timer.C
		}
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
			// Go >= 1.23 timers: Stop leaves no stale value to drain.
			timer.Stop()
		case <-tc:
		}
	}
}

// next pops and re-arms a due item, or reports how long to wait.
// wait < 0 means nothing is scheduled.
func (p *Poller) next() (*PollReq, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.h) == 0 {
		return nil, -1
	}
	top := p.h[0]
	now := time.Now()
	if top.due.After(now) {
		return nil, top.due.Sub(now)
	}
	top.due = now.Add(p.jittered(top.every, top.jitter))
	heap.Fix(&p.h, top.index)
	return &PollReq{Addr: top.key.addr, Verb: top.key.verb}, 0
}

func (p *Poller) wakeup() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Poller) jittered(every, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return every
	}
	return every + time.Duration(p.rand.Int63n(int64(jitter)+1))
}
