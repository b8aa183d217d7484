// Package rpc exposes player lighting over gRPC. Messages are the protobuf
// well-known wrappers; the Lighting payload inside BytesValue uses the
// protobuf encoding from package wire.
package rpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/xtding233/lighting-backend/internal/lighting"
	"github.com/xtding233/lighting-backend/internal/preset"
	"github.com/xtding233/lighting-backend/internal/registry"
	"github.com/xtding233/lighting-backend/internal/service"
	"github.com/xtding233/lighting-backend/internal/wire"
)

const (
	ServiceName = "lighting.v1.LightingService"

	getMethod   = "/" + ServiceName + "/Get"
	watchMethod = "/" + ServiceName + "/Watch"

	// RevisionHeader carries the registry revision of a Get response.
	RevisionHeader = "x-lighting-revision"
)

// LightingServer is the server API for the lighting service.
type LightingServer interface {
	Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Watch(*wrapperspb.StringValue, grpc.ServerStreamingServer[wrapperspb.BytesValue]) error
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LightingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Get", Handler: getHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
	},
	Metadata: "lighting/v1/lighting.proto",
}

func Register(s grpc.ServiceRegistrar, srv LightingServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func getHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LightingServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LightingServer).Get(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(LightingServer).Watch(in, &grpc.GenericServerStream[wrapperspb.StringValue, wrapperspb.BytesValue]{ServerStream: stream})
}

// Server implements LightingServer on top of a Service.
type Server struct {
	svc *service.Service
}

func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Get(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	e, err := s.svc.Get(in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(RevisionHeader, e.Revision))
	return wrapperspb.Bytes(wire.MarshalProto(e.Lighting)), nil
}

// Watch sends the player's current lighting, if any, then every update until
// the client goes away.
func (s *Server) Watch(in *wrapperspb.StringValue, stream grpc.ServerStreamingServer[wrapperspb.BytesValue]) error {
	if in.GetValue() == "" {
		return status.Error(codes.InvalidArgument, "player is required")
	}
	ctx := stream.Context()
	for e := range s.svc.Watch(ctx, in.GetValue()) {
		if err := stream.Send(wrapperspb.Bytes(wire.MarshalProto(e.Lighting))); err != nil {
			return err
		}
	}
	return status.FromContextError(ctx.Err()).Err()
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, registry.ErrUnknownPlayer):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, preset.ErrBadName), errors.Is(err, lighting.ErrInvalidLighting):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// Client is a typed client for the lighting service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Get fetches a player's lighting and its registry revision.
func (c *Client) Get(ctx context.Context, player string, opts ...grpc.CallOption) (lighting.Lighting, string, error) {
	var header metadata.MD
	out := new(wrapperspb.BytesValue)
	opts = append(opts, grpc.Header(&header))
	if err := c.cc.Invoke(ctx, getMethod, wrapperspb.String(player), out, opts...); err != nil {
		return lighting.Lighting{}, "", err
	}
	l, err := wire.UnmarshalProto(out.GetValue())
	if err != nil {
		return lighting.Lighting{}, "", err
	}
	var rev string
	if v := header.Get(RevisionHeader); len(v) > 0 {
		rev = v[0]
	}
	return l, rev, nil
}

// Watcher receives lighting updates from a Watch stream.
type Watcher struct {
	stream grpc.ServerStreamingClient[wrapperspb.BytesValue]
}

func (w *Watcher) Recv() (lighting.Lighting, error) {
	m, err := w.stream.Recv()
	if err != nil {
		return lighting.Lighting{}, err
	}
	return wire.UnmarshalProto(m.GetValue())
}

func (c *Client) Watch(ctx context.Context, player string, opts ...grpc.CallOption) (*Watcher, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], watchMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, wrapperspb.BytesValue]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(wrapperspb.String(player)); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return &Watcher{stream: x}, nil
}
