// Package tcp implements transport.Group over plain TCP connections
// between OS processes, with the raw length-prefixed binary framing
// spec §6 requires for the engine's internal HEADER/PAYLOAD messages:
// each frame is a tag, a uint64 length, and that many little-endian
// uint64 values.
//
// Grounded on fabbench's internal/proto.WriteDelimitedTo (a
// length-prefixed framing helper) and the manual encoding/binary
// field writes in recorders.Latency.WriteTo — adapted from
// protobuf-message framing and duration-bucket framing respectively
// to a single fixed uint64 wire type, since spec §6 fixes the wire
// type itself rather than leaving it to a serialization library.
package tcp

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"

	"github.com/distperm/paraperm/transport"
)

func init() {
	transport.Register("tcp", Dial)
}

// Dial adapts Listen to transport.Dialer's shape: cfg is unused since
// this binding has no implementation-specific options yet, the same
// way fabbench's dummy backend ignores a cfg it doesn't need.
func Dial(rank int, peers []string, cfg []byte) (transport.Group, error) {
	return Listen(rank, peers)
}

// Internal tags used by collectives, kept out of the tag space the
// engine uses for HEADER (1) and PAYLOAD (2) by being negative.
const (
	tagAllToAll     = -1
	tagAllToAllv    = -2
	tagScanValue    = -3
	tagScanResult   = -4
	tagBarrierJoin  = -5
	tagBarrierDone  = -6
)

type message struct {
	src  int
	data []uint64
}

type inbox struct {
	mu    sync.Mutex
	cond  *sync.Cond
	byTag map[int][]message
}

func newInbox() *inbox {
	b := &inbox{byTag: make(map[int][]message)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *inbox) push(m message, tag int) {
	b.mu.Lock()
	b.byTag[tag] = append(b.byTag[tag], m)
	b.cond.Broadcast()
	b.mu.Unlock()
}

func (b *inbox) pop(tag int) message {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.byTag[tag]) == 0 {
		b.cond.Wait()
	}
	m := b.byTag[tag][0]
	b.byTag[tag] = b.byTag[tag][1:]
	return m
}

// popFrom waits for a message tagged tag from src specifically,
// leaving any other sender's messages on the same tag queued in
// place, the same binding recvSegments needs between a wildcard
// HEADER receive and the explicit-source PAYLOAD receive that must
// follow it from that same sender.
func (b *inbox) popFrom(tag, src int) message {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		q := b.byTag[tag]
		for i, m := range q {
			if m.src == src {
				b.byTag[tag] = append(q[:i:i], q[i+1:]...)
				return m
			}
		}
		b.cond.Wait()
	}
}

// conn is one persistent connection to a peer rank. Writes are
// serialized with a mutex; a single reader goroutine demultiplexes
// incoming frames by tag into the group's shared inbox.
type conn struct {
	peer int
	nc   net.Conn
	wmu  sync.Mutex
	bw   *bufio.Writer
}

func (c *conn) send(tag int, data []uint64) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	var hdr [20]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(int32(tag)))
	binary.LittleEndian.PutUint64(hdr[4:12], uint64(len(data)))
	if _, err := c.bw.Write(hdr[:12]); err != nil {
		return err
	}
	for _, v := range data {
		binary.LittleEndian.PutUint64(hdr[:8], v)
		if _, err := c.bw.Write(hdr[:8]); err != nil {
			return err
		}
	}
	return c.bw.Flush()
}

func readFrame(r io.Reader) (tag int, data []uint64, err error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	tag = int(int32(binary.LittleEndian.Uint32(hdr[0:4])))
	n := binary.LittleEndian.Uint64(hdr[4:12])
	data = make([]uint64, n)
	var buf [8]byte
	for i := range data {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, nil, err
		}
		data[i] = binary.LittleEndian.Uint64(buf[:])
	}
	return tag, data, nil
}

func (c *conn) readLoop(in *inbox, errc chan<- error) {
	br := bufio.NewReader(c.nc)
	for {
		tag, data, err := readFrame(br)
		if err != nil {
			if err != io.EOF {
				errc <- errors.Wrapf(err, "tcp: reading from rank %d", c.peer)
			}
			return
		}
		in.push(message{src: c.peer, data: data}, tag)
	}
}

// Group is a transport.Group backed by a full mesh of TCP
// connections, one per peer.
type Group struct {
	rank  int
	conns map[int]*conn // keyed by peer rank
	in    *inbox
	errc  chan error
}

// Listen accepts connections from lower-ranked peers and dials every
// higher-ranked peer, building a full mesh. addrs[i] is the TCP
// address rank i listens on; addrs[rank] must be the local listen
// address this call binds.
func Listen(rank int, addrs []string) (*Group, error) {
	n := len(addrs)
	g := &Group{
		rank:  rank,
		conns: make(map[int]*conn),
		in:    newInbox(),
		errc:  make(chan error, n),
	}

	ln, err := net.Listen("tcp", addrs[rank])
	if err != nil {
		return nil, errors.Wrap(err, "tcp: listen")
	}
	defer ln.Close()

	var mu sync.Mutex
	var wg sync.WaitGroup

	lowerPeers := rank // number of ranks with index < rank, who will dial us
	for i := 0; i < lowerPeers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			nc, err := ln.Accept()
			if err != nil {
				g.errc <- errors.Wrap(err, "tcp: accept")
				return
			}
			peer, err := identify(nc)
			if err != nil {
				g.errc <- err
				return
			}
			c := &conn{peer: peer, nc: nc, bw: bufio.NewWriter(nc)}
			mu.Lock()
			g.conns[peer] = c
			mu.Unlock()
			go c.readLoop(g.in, g.errc)
		}()
	}

	for j := rank + 1; j < n; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			nc, err := net.Dial("tcp", addrs[j])
			if err != nil {
				g.errc <- errors.Wrapf(err, "tcp: dial rank %d", j)
				return
			}
			if err := announce(nc, rank); err != nil {
				g.errc <- err
				return
			}
			c := &conn{peer: j, nc: nc, bw: bufio.NewWriter(nc)}
			mu.Lock()
			g.conns[j] = c
			mu.Unlock()
			go c.readLoop(g.in, g.errc)
		}(j)
	}

	wg.Wait()
	select {
	case err := <-g.errc:
		return nil, err
	default:
	}

	g.rank = rank
	return g, nil
}

// announce/identify perform the one-shot rank handshake a freshly
// dialed connection needs before it can be added to conns.
func announce(nc net.Conn, rank int) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(rank))
	_, err := nc.Write(buf[:])
	return err
}

func identify(nc net.Conn) (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(nc, buf[:]); err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint32(buf[:])), nil
}

func (g *Group) Rank() int { return g.rank }
func (g *Group) Size() int { return len(g.conns) + 1 }

type doneRequest struct{ err error }

func (d doneRequest) Wait() error { return d.err }

func (g *Group) ISend(dest int, tag int, data []uint64) (transport.Request, error) {
	if dest == g.rank {
		return nil, fmt.Errorf("tcp: cannot send to self (rank %d)", dest)
	}
	c, ok := g.conns[dest]
	if !ok {
		return nil, fmt.Errorf("tcp: no connection to rank %d", dest)
	}
	// The write itself blocks on socket buffer space, not on the
	// peer processing the message, which is enough to satisfy
	// spec §4.5's "may complete eagerly or queue" non-blocking
	// contract without a background goroutine per send.
	err := c.send(tag, data)
	return doneRequest{err: err}, err
}

func (g *Group) IRecv(tag int) ([]uint64, int, error) {
	m := g.in.pop(tag)
	return m.data, m.src, nil
}

func (g *Group) IRecvInto(tag int, src int, into []uint64) error {
	m := g.in.popFrom(tag, src)
	if len(m.data) != len(into) {
		return fmt.Errorf("tcp: expected %d values, got %d", len(into), len(m.data))
	}
	copy(into, m.data)
	return nil
}

func (g *Group) peers() []int {
	out := make([]int, 0, len(g.conns))
	for p := range g.conns {
		out = append(out, p)
	}
	return out
}

func (g *Group) AllToAll(send []uint64) ([]uint64, error) {
	n := g.Size()
	if len(send) != n {
		return nil, fmt.Errorf("tcp: AllToAll send must have length %d, got %d", n, len(send))
	}
	for _, p := range g.peers() {
		if err := g.conns[p].send(tagAllToAll, []uint64{send[p]}); err != nil {
			return nil, errors.Wrapf(err, "tcp: AllToAll send to rank %d", p)
		}
	}
	recv := make([]uint64, n)
	recv[g.rank] = send[g.rank]
	for range g.peers() {
		m := g.in.pop(tagAllToAll)
		recv[m.src] = m.data[0]
	}
	return recv, nil
}

func (g *Group) AllToAllv(send []uint64, sendCounts, sendDispls, recvCounts, recvDispls []int) ([]uint64, error) {
	n := g.Size()
	if len(sendCounts) != n || len(sendDispls) != n || len(recvCounts) != n || len(recvDispls) != n {
		return nil, fmt.Errorf("tcp: AllToAllv counts/displs must have length %d", n)
	}
	for _, p := range g.peers() {
		cnt := sendCounts[p]
		off := sendDispls[p]
		if err := g.conns[p].send(tagAllToAllv, send[off:off+cnt]); err != nil {
			return nil, errors.Wrapf(err, "tcp: AllToAllv send to rank %d", p)
		}
	}
	total := 0
	for _, c := range recvCounts {
		total += c
	}
	recv := make([]uint64, total)
	selfOff, selfCnt := sendDispls[g.rank], sendCounts[g.rank]
	copy(recv[recvDispls[g.rank]:recvDispls[g.rank]+recvCounts[g.rank]], send[selfOff:selfOff+selfCnt])
	for range g.peers() {
		m := g.in.pop(tagAllToAllv)
		if recvCounts[m.src] != len(m.data) {
			return nil, fmt.Errorf("tcp: rank %d declared recvCount %d for src %d, got %d values", g.rank, recvCounts[m.src], m.src, len(m.data))
		}
		copy(recv[recvDispls[m.src]:recvDispls[m.src]+len(m.data)], m.data)
	}
	return recv, nil
}

// ScanSum centralizes at rank 0: every other rank reports its value,
// rank 0 computes every rank's exclusive prefix and reports back.
func (g *Group) ScanSum(v uint64) (uint64, error) {
	n := g.Size()
	if g.rank != 0 {
		if err := g.conns[0].send(tagScanValue, []uint64{v}); err != nil {
			return 0, errors.Wrap(err, "tcp: ScanSum report to rank 0")
		}
		m := g.in.pop(tagScanResult)
		return m.data[0], nil
	}

	values := make([]uint64, n)
	values[0] = v
	for i := 1; i < n; i++ {
		m := g.in.pop(tagScanValue)
		values[m.src] = m.data[0]
	}

	exclusive := make([]uint64, n)
	var running uint64
	for r := 0; r < n; r++ {
		exclusive[r] = running
		running += values[r]
	}
	for _, p := range g.peers() {
		if err := g.conns[p].send(tagScanResult, []uint64{exclusive[p]}); err != nil {
			return 0, errors.Wrapf(err, "tcp: ScanSum reply to rank %d", p)
		}
	}
	return exclusive[0], nil
}

// Barrier centralizes at rank 0 the same way ScanSum does.
func (g *Group) Barrier() error {
	n := g.Size()
	if g.rank != 0 {
		if err := g.conns[0].send(tagBarrierJoin, nil); err != nil {
			return errors.Wrap(err, "tcp: Barrier join")
		}
		g.in.pop(tagBarrierDone)
		return nil
	}
	for i := 1; i < n; i++ {
		g.in.pop(tagBarrierJoin)
	}
	for _, p := range g.peers() {
		if err := g.conns[p].send(tagBarrierDone, nil); err != nil {
			return errors.Wrapf(err, "tcp: Barrier release rank %d", p)
		}
	}
	return nil
}

// Close tears down every peer connection.
func (g *Group) Close() error {
	var first error
	for _, c := range g.conns {
		if err := c.nc.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
