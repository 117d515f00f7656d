// Package rpc implements the JSON-RPC 2.0 batch dispatcher that fronts
// the action handlers. Every request in a batch yields exactly one
// response entry, success or error, in input order.
package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stellar/go/support/log"

	"github.com/stellar-connect/platform-rpc-go/errors"
	"github.com/stellar-connect/platform-rpc-go/handler"
	"github.com/stellar-connect/platform-rpc-go/metrics"
)

// Version is the only JSON-RPC protocol version the dispatcher accepts.
const Version = "2.0"

// DefaultBatchSizeLimit caps batch length when the configuration does
// not set one.
const DefaultBatchSizeLimit = 100

// Request is one JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is one JSON-RPC 2.0 response envelope. The id member is
// always serialized: envelope-level failures carry an explicit null,
// and a numeric id of 0 is a legitimate value.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *ErrorObj `json:"error,omitempty"`
}

// ErrorObj is the error member of a response.
type ErrorObj struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Service dispatches RPC batches to the registered action handlers.
type Service struct {
	registry       map[handler.Method]handler.Handler
	deps           *handler.Deps
	batchSizeLimit int
	metrics        *metrics.Metrics
}

// Option customizes a Service.
type Option func(*Service)

// WithBatchSizeLimit overrides the default batch cap.
func WithBatchSizeLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.batchSizeLimit = limit
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the dispatcher over a handler dependency bundle.
func NewService(deps *handler.Deps, opts ...Option) *Service {
	s := &Service{
		registry:       handler.NewRegistry(deps),
		deps:           deps,
		batchSizeLimit: DefaultBatchSizeLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle processes a batch of requests and returns one response per
// request, in input order. An oversized batch fails whole with a single
// error entry before any per-item processing begins.
func (s *Service) Handle(ctx context.Context, requests []Request) []Response {
	if len(requests) > s.batchSizeLimit {
		err := errors.NewInvalidRequest("RPC batch size limit[%d] exceeded", s.batchSizeLimit)
		return []Response{errorResponse(nil, err)}
	}

	responses := make([]Response, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, s.handleOne(ctx, req))
	}
	return responses
}

func (s *Service) handleOne(ctx context.Context, req Request) Response {
	started := time.Now()

	result, err := s.process(ctx, req)
	if err == nil {
		s.observe(req.Method, metrics.OutcomeSuccess, started)
		return Response{JSONRPC: Version, ID: req.ID, Result: result}
	}

	rpcErr := errors.AsError(err)
	if rpcErr.Code == errors.INTERNAL_ERROR || rpcErr.Code == errors.STORE_ERROR {
		log.WithField("method", req.Method).
			WithField("id", req.ID).
			WithField("error", rpcErr.Error()).
			Error("internal error while processing RPC request")
	}
	s.observe(req.Method, metrics.OutcomeError, started)
	return errorResponse(req.ID, rpcErr)
}

func (s *Service) process(ctx context.Context, req Request) (any, error) {
	if err := validateEnvelope(req); err != nil {
		return nil, err
	}

	h, ok := s.registry[handler.Method(req.Method)]
	if !ok {
		return nil, errors.NewMethodNotFound("RPC method[%s] handler is not found", req.Method)
	}

	return handler.Execute(ctx, s.deps, h, req.Params)
}

func validateEnvelope(req Request) error {
	if req.JSONRPC != Version {
		return errors.NewInvalidRequest("Unsupported JSON-RPC protocol version[%s]", req.JSONRPC)
	}
	if req.Method == "" {
		return errors.NewInvalidRequest("Method name can't be NULL or empty")
	}
	if req.ID == nil {
		return errors.NewInvalidRequest("Id can't be NULL")
	}
	return nil
}

func (s *Service) observe(method, outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveRequest(method, outcome, time.Since(started))
}

func errorResponse(id any, err *errors.Error) Response {
	return Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &ErrorObj{Code: err.JSONRPCCode(), Message: err.Message},
	}
}

// HandleJSON decodes a raw batch payload, processes it and re-encodes
// the responses. A payload that is a single object is treated as a
// batch of one.
func (s *Service) HandleJSON(ctx context.Context, payload []byte) ([]byte, error) {
	var requests []Request
	if err := json.Unmarshal(payload, &requests); err != nil {
		var single Request
		if err := json.Unmarshal(payload, &single); err != nil {
			resp := errorResponse(nil, errors.NewInvalidRequest("Invalid JSON-RPC payload"))
			return json.Marshal([]Response{resp})
		}
		requests = []Request{single}
	}
	return json.Marshal(s.Handle(ctx, requests))
}
