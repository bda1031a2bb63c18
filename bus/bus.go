// Package bus is a small in-process pub/sub with MQTT-style topics.
package bus

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"sync"
)

// -----------------------------------------------------------------------------
// Tokens + Topics
// -----------------------------------------------------------------------------

// Token is one element of a topic path. Any comparable value works; strings
// "+" and "#" are wildcards in subscriptions.
type Token = any

// Topic is a sequence of tokens.
type Topic []Token

const (
	wildOne = "+" // exactly one level
	wildAll = "#" // zero or more trailing levels
)

// T builds a topic. It panics on non-comparable tokens.
func T(tokens ...Token) Topic {
	for _, tok := range tokens {
		if tok == nil || !reflect.TypeOf(tok).Comparable() {
			panic("bus: topic token is not comparable")
		}
	}
	return Topic(tokens)
}

func (t Topic) Len() int { return len(t) }

// At returns token i, or nil when out of range.
func (t Topic) At(i int) Token {
	if i < 0 || i >= len(t) {
		return nil
	}
	return t[i]
}

// Append returns a new topic; t is not modified.
func (t Topic) Append(tokens ...Token) Topic {
	out := make(Topic, 0, len(t)+len(tokens))
	out = append(out, t...)
	return append(out, tokens...)
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// CanReply reports whether the sender asked for a reply.
func (m *Message) CanReply() bool { return m != nil && len(m.ReplyTo) > 0 }

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic  Topic
	ch     chan *Message
	conn   *Connection
	closed bool // guarded by Bus.mu
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Tries
// -----------------------------------------------------------------------------

// Subscription trie, keyed by pattern tokens (wildcards included).
type node struct {
	children map[Token]*node
	subs     []*Subscription
}

// Retained trie, keyed by literal topic tokens.
type rnode struct {
	children map[Token]*rnode
	msg      *Message
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu       sync.Mutex
	root     *node
	retained *rnode
	qLen     int
	nextReq  uint64
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{
		root:     &node{},
		retained: &rnode{},
		qLen:     queueLen,
	}
}

// NewMessage builds a message; topic tokens are not validated.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish delivers msg to every matching subscriber and updates the retained
// store. A retained message with a nil payload clears the topic.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		b.storeRetained(msg)
	}
	b.match(b.root, msg.Topic, 0, msg)
}

func (b *Bus) storeRetained(msg *Message) {
	n := b.retained
	for _, tok := range msg.Topic {
		child := n.children[tok]
		if child == nil {
			if msg.Payload == nil {
				return
			}
			if n.children == nil {
				n.children = make(map[Token]*rnode)
			}
			child = &rnode{}
			n.children[tok] = child
		}
		n = child
	}
	if msg.Payload == nil {
		n.msg = nil
		return
	}
	n.msg = msg
}

func (b *Bus) match(n *node, topic Topic, i int, msg *Message) {
	if all := n.children[wildAll]; all != nil {
		deliverAll(all.subs, msg)
	}
	if i == len(topic) {
		deliverAll(n.subs, msg)
		return
	}
	if child := n.children[topic[i]]; child != nil {
		b.match(child, topic, i+1, msg)
	}
	if one := n.children[wildOne]; one != nil && topic[i] != wildOne {
		b.match(one, topic, i+1, msg)
	}
}

func deliverAll(subs []*Subscription, msg *Message) {
	for _, s := range subs {
		deliver(s, msg)
	}
}

// deliver never blocks; a full queue drops its oldest message.
func deliver(s *Subscription, msg *Message) {
	select {
	case s.ch <- msg:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- msg:
	default:
	}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		if n.children == nil {
			n.children = make(map[Token]*node)
		}
		child := n.children[tok]
		if child == nil {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	collectRetained(b.retained, sub.topic, 0, func(m *Message) { deliver(sub, m) })
}

func collectRetained(n *rnode, pattern Topic, i int, fn func(*Message)) {
	if i == len(pattern) {
		if n.msg != nil {
			fn(n.msg)
		}
		return
	}
	switch pattern[i] {
	case wildAll:
		walkRetained(n, fn)
	case wildOne:
		for _, child := range n.children {
			collectRetained(child, pattern, i+1, fn)
		}
	default:
		if child := n.children[pattern[i]]; child != nil {
			collectRetained(child, pattern, i+1, fn)
		}
	}
}

func walkRetained(n *rnode, fn func(*Message)) {
	if n.msg != nil {
		fn(n.msg)
	}
	for _, child := range n.children {
		walkRetained(child, fn)
	}
}

func (b *Bus) removeSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true

	n := b.root
	path := make([]*node, 0, len(sub.topic))
	for _, tok := range sub.topic {
		child := n.children[tok]
		if child == nil {
			close(sub.ch)
			return
		}
		path = append(path, n)
		n = child
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	// Prune empty nodes bottom-up.
	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent, key := path[i], sub.topic[i]
		child := parent.children[key]
		if len(child.subs) != 0 || len(child.children) != 0 {
			break
		}
		delete(parent.children, key)
	}
	close(sub.ch)
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a subscription owned by this connection. Matching
// retained messages are queued immediately.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.addSubscription(sub)
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (c *Connection) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.bus.removeSubscription(sub)
}

// Disconnect closes all subscriptions of this connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.removeSubscription(sub)
	}
}

// -----------------------------------------------------------------------------
// Request–Reply
// -----------------------------------------------------------------------------

var ErrNoReply = errors.New("bus: no reply")

// Request assigns a private reply topic to msg, subscribes to it, then
// publishes msg. The caller owns the returned subscription.
func (c *Connection) Request(msg *Message) *Subscription {
	c.bus.mu.Lock()
	c.bus.nextReq++
	n := c.bus.nextReq
	c.bus.mu.Unlock()

	msg.ReplyTo = T("_reply", c.id, strconv.FormatUint(n, 10))
	sub := c.Subscribe(msg.ReplyTo)
	c.Publish(msg)
	return sub
}

// RequestWait publishes msg and waits for the first reply or ctx expiry.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case m, ok := <-sub.Channel():
		if !ok {
			return nil, ErrNoReply
		}
		return m, nil
	}
}

// Reply publishes payload on req.ReplyTo. No-op when req cannot be replied to.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if !req.CanReply() {
		return
	}
	c.Publish(c.NewMessage(req.ReplyTo, payload, retained))
}
