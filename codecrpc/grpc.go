package codecrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "xdao.reservecid.codec.v1.Codec"

// CodecServer is the server API for the codec service.
type CodecServer interface {
	NormalizeCID(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	AddressFromCID(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	CIDFromAddress(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	ResolveURL(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	ExpandReserve(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
}

// UnimplementedCodecServer can be embedded to have forward compatible implementations.
type UnimplementedCodecServer struct{}

func (UnimplementedCodecServer) NormalizeCID(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method NormalizeCID not implemented")
}
func (UnimplementedCodecServer) AddressFromCID(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method AddressFromCID not implemented")
}
func (UnimplementedCodecServer) CIDFromAddress(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method CIDFromAddress not implemented")
}
func (UnimplementedCodecServer) ResolveURL(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ResolveURL not implemented")
}
func (UnimplementedCodecServer) ExpandReserve(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ExpandReserve not implemented")
}

// RegisterCodecServer registers the codec service on a gRPC server.
func RegisterCodecServer(s grpc.ServiceRegistrar, srv CodecServer) {
	s.RegisterService(&Codec_ServiceDesc, srv)
}

// CodecClient is the client API for the codec service.
type CodecClient interface {
	NormalizeCID(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	AddressFromCID(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	CIDFromAddress(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	ResolveURL(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	ExpandReserve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type codecClient struct{ cc grpc.ClientConnInterface }

func NewCodecClient(cc grpc.ClientConnInterface) CodecClient { return &codecClient{cc: cc} }

func (c *codecClient) invoke(ctx context.Context, method string, in any, opts []grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *codecClient) NormalizeCID(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return c.invoke(ctx, "NormalizeCID", in, opts)
}

func (c *codecClient) AddressFromCID(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return c.invoke(ctx, "AddressFromCID", in, opts)
}

func (c *codecClient) CIDFromAddress(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return c.invoke(ctx, "CIDFromAddress", in, opts)
}

func (c *codecClient) ResolveURL(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return c.invoke(ctx, "ResolveURL", in, opts)
}

func (c *codecClient) ExpandReserve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return c.invoke(ctx, "ExpandReserve", in, opts)
}

func stringHandler(method string, call func(CodecServer, context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(wrapperspb.StringValue)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CodecServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CodecServer), ctx, req.(*wrapperspb.StringValue))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func structHandler(method string, call func(CodecServer, context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CodecServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CodecServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Codec_ServiceDesc is the grpc.ServiceDesc for the codec service.
var Codec_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CodecServer)(nil),
	Methods: []grpc.MethodDesc{
		stringHandler("NormalizeCID", CodecServer.NormalizeCID),
		stringHandler("AddressFromCID", CodecServer.AddressFromCID),
		stringHandler("CIDFromAddress", CodecServer.CIDFromAddress),
		structHandler("ResolveURL", CodecServer.ResolveURL),
		structHandler("ExpandReserve", CodecServer.ExpandReserve),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "codec.proto",
}
