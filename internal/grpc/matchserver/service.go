package matchserver

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "isotactics.v1.MatchService"

// MatchServiceServer is the server API for MatchService. Requests and
// responses are google.protobuf.Struct documents.
type MatchServiceServer interface {
	CreateMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitCommand(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EndMatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterMatchServiceServer registers srv on s
func RegisterMatchServiceServer(s grpc.ServiceRegistrar, srv MatchServiceServer) {
	s.RegisterService(&MatchService_ServiceDesc, srv)
}

func unaryHandler(method string, call func(MatchServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MatchServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(MatchServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// MatchService_ServiceDesc is the grpc.ServiceDesc for MatchService
var MatchService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateMatch", Handler: unaryHandler("CreateMatch", MatchServiceServer.CreateMatch)},
		{MethodName: "GetSnapshot", Handler: unaryHandler("GetSnapshot", MatchServiceServer.GetSnapshot)},
		{MethodName: "SubmitCommand", Handler: unaryHandler("SubmitCommand", MatchServiceServer.SubmitCommand)},
		{MethodName: "EndMatch", Handler: unaryHandler("EndMatch", MatchServiceServer.EndMatch)},
		{MethodName: "GetHistory", Handler: unaryHandler("GetHistory", MatchServiceServer.GetHistory)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "isotactics/v1/match.proto",
}

// MatchServiceClient calls MatchService over a client connection
type MatchServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMatchServiceClient creates a client on cc
func NewMatchServiceClient(cc grpc.ClientConnInterface) *MatchServiceClient {
	return &MatchServiceClient{cc: cc}
}

func (c *MatchServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		return nil, errors.New("nil request")
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MatchServiceClient) CreateMatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateMatch", in, opts...)
}

func (c *MatchServiceClient) GetSnapshot(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetSnapshot", in, opts...)
}

func (c *MatchServiceClient) SubmitCommand(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SubmitCommand", in, opts...)
}

func (c *MatchServiceClient) EndMatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "EndMatch", in, opts...)
}

func (c *MatchServiceClient) GetHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetHistory", in, opts...)
}
