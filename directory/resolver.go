package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/shadowlink/crypto"
	"github.com/opd-ai/shadowlink/limits"
	"github.com/opd-ai/shadowlink/transport"
)

// Resolver is the broadcast implementation of Directory. It is both the
// responder for the local identity and the requester for local lookups.
type Resolver struct {
	self      Self
	transport transport.Transport
	timeout   time.Duration

	pending     *xsync.MapOf[string, *pendingRequest]
	unsubscribe func()

	closeOnce sync.Once
	done      chan struct{}
	closed    atomic.Bool
}

type pendingRequest struct {
	code   string
	result chan Result
}

var _ Directory = (*Resolver)(nil)

// NewResolver subscribes to the directory topic and starts answering
// queries for self. A non-positive timeout selects DefaultResolveTimeout.
func NewResolver(self Self, t transport.Transport, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	r := &Resolver{
		self:      self,
		transport: t,
		timeout:   timeout,
		pending:   xsync.NewMapOf[string, *pendingRequest](),
		done:      make(chan struct{}),
	}
	r.unsubscribe = t.Subscribe(transport.TopicDirectory, r.handlePacket)
	return r
}

// Resolve broadcasts a query for code and waits for the first matching
// response. A timeout yields ErrCodeNotFound; responses arriving after the
// call returns are dropped. Resolving the local code yields ErrSelfLink.
func (r *Resolver) Resolve(ctx context.Context, code string) (Result, error) {
	if r.closed.Load() {
		return Result{}, ErrClosed
	}

	requestID := uuid.NewString()
	req := &pendingRequest{code: code, result: make(chan Result, 1)}
	r.pending.Store(requestID, req)
	defer r.pending.Delete(requestID)

	logger := logrus.WithFields(logrus.Fields{
		"function":   "Resolve",
		"code":       code,
		"request_id": requestID,
	})

	query := &transport.DirectoryPacket{
		Type:        transport.PacketQuery,
		Code:        code,
		RequesterID: r.self.PublicKey(),
		RequestID:   requestID,
	}
	data, err := query.Serialize()
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.transport.Broadcast(ctx, transport.TopicDirectory, data); err != nil {
		logger.WithError(err).Warn("Failed to broadcast directory query")
		return Result{}, fmt.Errorf("broadcast query: %w", err)
	}
	logger.Debug("Directory query sent")

	select {
	case res := <-req.result:
		if res.PublicKey == r.self.PublicKey() {
			logger.Info("Code resolved to local identity")
			return Result{}, ErrSelfLink
		}
		logger.WithField("public_key", crypto.KeyPrefix(res.PublicKey)).Info("Code resolved")
		return res, nil
	case <-r.done:
		return Result{}, ErrClosed
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			return Result{}, ctx.Err()
		}
		logger.Info("No response before timeout")
		return Result{}, fmt.Errorf("%w: %s", ErrCodeNotFound, code)
	}
}

func (r *Resolver) handlePacket(data []byte) {
	if err := limits.ValidateDirectoryPacket(data); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "handlePacket",
			"error":    err.Error(),
		}).Debug("Dropping oversized directory packet")
		return
	}
	pkt, err := transport.ParseDirectoryPacket(data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "handlePacket",
			"error":    err.Error(),
		}).Debug("Dropping malformed directory packet")
		return
	}

	switch pkt.Type {
	case transport.PacketQuery:
		r.answer(pkt)
	case transport.PacketResponse:
		r.accept(pkt)
	}
}

// answer replies to a query for the current local code. It keeps no state,
// so repeated queries get identical answers.
func (r *Resolver) answer(query *transport.DirectoryPacket) {
	if r.closed.Load() || query.Code != r.self.CurrentCode() {
		return
	}

	resp := &transport.DirectoryPacket{
		Type:        transport.PacketResponse,
		Code:        query.Code,
		PublicKey:   r.self.PublicKey(),
		Username:    r.self.DisplayName(),
		RequesterID: query.RequesterID,
		RequestID:   query.RequestID,
	}
	data, err := resp.Serialize()
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.transport.Broadcast(ctx, transport.TopicDirectory, data); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "answer",
			"code":     query.Code,
			"error":    err.Error(),
		}).Warn("Failed to answer directory query")
		return
	}

	logrus.WithFields(logrus.Fields{
		"function":  "answer",
		"code":      query.Code,
		"requester": crypto.KeyPrefix(query.RequesterID),
	}).Debug("Answered directory query")
}

// accept hands a response to its waiting Resolve call. Only the first
// response for a live request id is delivered.
func (r *Resolver) accept(resp *transport.DirectoryPacket) {
	if resp.RequesterID != r.self.PublicKey() {
		return
	}
	req, ok := r.pending.Load(resp.RequestID)
	if !ok || req.code != resp.Code {
		return
	}
	if _, ok := r.pending.LoadAndDelete(resp.RequestID); !ok {
		return
	}
	req.result <- Result{
		Code:        resp.Code,
		PublicKey:   resp.PublicKey,
		DisplayName: resp.Username,
	}
}

// Pending returns the number of in-flight resolutions.
func (r *Resolver) Pending() int {
	return r.pending.Size()
}

// Close unsubscribes from the directory topic and fails every pending
// resolution with ErrClosed.
func (r *Resolver) Close() error {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		r.unsubscribe()
		close(r.done)
		r.pending.Clear()
	})
	return nil
}
