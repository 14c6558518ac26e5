// Package mcpbridge exposes the core's host-registered tool handlers to an
// out-of-process MCP-style consumer over gRPC, translating each call into a
// runtime.TaskToolInvoke enqueued on the same MessageQueue and dispatch
// table JS calls use (spec §4.6, "ToolInvoke variant exists for external
// (non-JS) producers so tools and JS share the same dispatch table").
//
// Request and response payloads use google.protobuf.Struct rather than a
// hand-maintained generated message type: this keeps the wire contract
// generic (any JSON-shaped tool args) without requiring a protoc run to
// regenerate .pb.go stubs on every handler change.
package mcpbridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/auroraview/auroraview/internal/logging"
	"github.com/auroraview/auroraview/internal/runtime"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var log = logging.For("mcpbridge")

// Enqueuer is the narrow slice of the instance's MessageQueue this service
// needs: push a ToolInvoke task and wait for its reply.
type Enqueuer interface {
	Push(t runtime.Task) int
}

// Server implements the ToolInvoke gRPC service.
type Server struct {
	queue    Enqueuer
	timeout  time.Duration
	inflight singleflight.Group
}

// NewServer constructs a Server. timeout bounds how long a single
// ToolInvoke call waits for its reply before returning DeadlineExceeded.
func NewServer(queue Enqueuer, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Server{queue: queue, timeout: timeout}
}

// Invoke handles a single tool call. Duplicate concurrent calls sharing
// the same correlation key are coalesced via singleflight so a retrying
// client doesn't run the host handler twice for one logical request.
func (s *Server) Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	toolName := fields["tool_name"].GetStringValue()
	id := fields["id"].GetStringValue()
	if toolName == "" {
		return nil, status.Error(codes.InvalidArgument, "tool_name is required")
	}
	if id == "" {
		// No caller-supplied correlation key: mint one so concurrent calls
		// to the same tool with different args don't get coalesced by the
		// singleflight group below.
		id = uuid.NewString()
	}

	argsJSON, err := structToJSON(fields["args"].GetStructValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "args: %v", err)
	}

	result, err, _ := s.inflight.Do(id, func() (any, error) {
		return s.dispatch(ctx, id, toolName, argsJSON)
	})
	if err != nil {
		return nil, err
	}
	return resultToStruct(result)
}

func (s *Server) dispatch(ctx context.Context, id, toolName, argsJSON string) (any, error) {
	reply := runtime.NewReply()
	s.queue.Push(runtime.ToolInvokeTask(id, toolName, argsJSON, reply))

	deadline := time.Now().Add(s.timeout)
	select {
	case res := <-reply:
		if res.Err != nil {
			return nil, toGRPCError(res.Err)
		}
		return res.Value, nil
	case <-ctx.Done():
		return nil, status.FromContextError(ctx.Err()).Err()
	case <-time.After(time.Until(deadline)):
		return nil, status.Error(codes.DeadlineExceeded, "tool invocation timed out")
	}
}

func toGRPCError(err error) error {
	re, ok := err.(*runtime.Error)
	if !ok {
		return status.Error(codes.Unknown, err.Error())
	}
	switch re.Kind {
	case runtime.ErrMethodNotFound:
		return status.Error(codes.NotFound, re.Detail)
	case runtime.ErrInvalidArguments:
		return status.Error(codes.InvalidArgument, re.Detail)
	case runtime.ErrTimeout:
		return status.Error(codes.DeadlineExceeded, re.Detail)
	case runtime.ErrCancelled, runtime.ErrClosed:
		return status.Error(codes.Unavailable, re.Detail)
	default:
		return status.Error(codes.Internal, re.Detail)
	}
}

func structToJSON(s *structpb.Struct) (string, error) {
	if s == nil {
		return "{}", nil
	}
	raw, err := s.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func resultToStruct(result any) (*structpb.Struct, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal result: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		m = map[string]any{"value": json.RawMessage(raw)}
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return st, nil
}

// RegisterWith mounts the ToolInvoke service on an existing *grpc.Server.
func RegisterWith(gs *grpc.Server, srv *Server) {
	gs.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "auroraview.mcpbridge.ToolInvoke",
	HandlerType: (*toolInvokeServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler:    invokeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mcpbridge.proto",
}

type toolInvokeServer interface {
	Invoke(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(toolInvokeServer).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/auroraview.mcpbridge.ToolInvoke/Invoke"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(toolInvokeServer).Invoke(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DialWithRetry creates a client connection to target with grpc.NewClient,
// retrying with exponential backoff only while NewClient itself returns an
// error. NewClient does not contact the server: the connection is made
// lazily by gRPC, and this function does not wait for the listener to
// come up.
func DialWithRetry(ctx context.Context, target string, opts ...grpc.DialOption) (conn *grpc.ClientConn, err error) {
	b := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	op := func() error {
		conn, err = grpc.NewClient(target, opts...)
		return err
	}
	if retryErr := backoff.Retry(op, b); retryErr != nil {
		return nil, retryErr
	}
	log.Info("mcpbridge client created for %s", target)
	return conn, nil
}
