// Package transport defines the collective-transport contract the
// permutation engine consumes (spec §4.6) and a small registry of
// named constructors for concrete bindings, the way fabbench's db
// package lets a host pick "dummy", "cassandra", or "eckv" by name
// without the benchmark harness importing any of them directly.
package transport

import "fmt"

// Request represents an outstanding non-blocking send, per spec
// §4.6's "non-blocking point-to-point send ... a request-completion
// wait".
type Request interface {
	Wait() error
}

// Group is the contract the engine needs from its transport: a fixed
// process group of known size, fixed-size and variable-size
// all-to-all, an exclusive prefix scan over one integer,
// tagged non-blocking point-to-point messaging with a source
// wildcard on receive, and a barrier. None of this is specific to any
// messaging library; it is the same shape MPI, gRPC streams, or plain
// TCP sockets can all satisfy.
type Group interface {
	// Rank returns this process's rank in [0, Size()).
	Rank() int
	// Size returns the fixed size of the process group.
	Size() int

	// AllToAll exchanges a fixed-size slice of small integers: send
	// must have length Size(), and the returned recv has length
	// Size(), with recv[j] the value j sent to this rank.
	AllToAll(send []uint64) ([]uint64, error)

	// AllToAllv exchanges variable-size payloads. send is the
	// concatenation of per-destination slices described by
	// sendCounts/sendDispls (both length Size()); the caller has
	// already learned recvCounts/recvDispls from a prior AllToAll of
	// the counts (spec §4.3 steps 4-6), and supplies them here rather
	// than having this call rediscover them. The returned recv is the
	// concatenation of per-source slices in rank order.
	AllToAllv(send []uint64, sendCounts, sendDispls, recvCounts, recvDispls []int) (recv []uint64, err error)

	// ScanSum computes an exclusive prefix sum of v across ranks in
	// rank order: rank r gets the sum of v from ranks 0..r-1.
	ScanSum(v uint64) (exclusive uint64, err error)

	// ISend starts a non-blocking send of data to dest tagged tag.
	// The caller must not reuse data until the returned Request's
	// Wait returns.
	ISend(dest int, tag int, data []uint64) (Request, error)

	// IRecv blocks until a message tagged tag arrives from any
	// source and returns it along with the sender's rank. This
	// matches spec §4.5's "post a matching HEADER receive from any
	// source" — unlike ISend, a receive on an unknown-length message
	// has no useful non-blocking form here, so it is blocking by
	// contract. Callers that go on to receive a second, related
	// message (e.g. a PAYLOAD matching this HEADER) must pass src
	// back into IRecvInto rather than wildcarding it again: with more
	// than one sender outstanding on the same tag, a second wildcard
	// receive has no way to guarantee it pairs with the same sender.
	IRecv(tag int) (data []uint64, src int, err error)

	// IRecvInto blocks until a message tagged tag arrives from src
	// and copies exactly len(into) values into into. Unlike IRecv,
	// the source is never wildcarded: this is the explicit-source
	// receive the original MPI implementation issues with
	// status.MPI_SOURCE captured from the preceding wildcard HEADER
	// receive, so a PAYLOAD can never be paired with the wrong
	// sender's HEADER.
	IRecvInto(tag int, src int, into []uint64) error

	// Barrier blocks until every rank in the group has called
	// Barrier.
	Barrier() error
}

// Dialer constructs a Group given a peer address list and
// implementation-specific configuration bytes, mirroring fabbench's
// db.Dial(name, hosts, cfgData).
type Dialer func(rank int, peers []string, cfg []byte) (Group, error)

var dialers = make(map[string]Dialer)

// Register makes a named transport implementation available to
// Dial. Implementations call this from an init function, the same
// way fabbench's db backends self-register.
func Register(name string, d Dialer) {
	dialers[name] = d
}

// Dial constructs the named transport's Group.
func Dial(name string, rank int, peers []string, cfg []byte) (Group, error) {
	d, ok := dialers[name]
	if !ok {
		return nil, fmt.Errorf("transport: unknown transport %q", name)
	}
	return d(rank, peers, cfg)
}
