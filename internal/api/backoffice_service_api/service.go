package backoffice_service_api

import (
	"context"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The back-office service only exchanges well-known protobuf types, so its
// descriptor is declared here instead of being generated from a .proto file.

const ServiceName = "flightbooking.backoffice.v1.Backoffice"

const (
	ListPendingCancellationsMethod = "/" + ServiceName + "/ListPendingCancellations"
	ApproveCancellationMethod      = "/" + ServiceName + "/ApproveCancellation"
	RejectCancellationMethod       = "/" + ServiceName + "/RejectCancellation"
	GetTicketMethod                = "/" + ServiceName + "/GetTicket"
)

type BackofficeServer interface {
	ListPendingCancellations(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	ApproveCancellation(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	RejectCancellation(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	GetTicket(ctx context.Context, req *wrapperspb.Int64Value) (*httpbody.HttpBody, error)
}

func RegisterBackofficeServer(s grpc.ServiceRegistrar, srv BackofficeServer) {
	s.RegisterService(&BackofficeServiceDesc, srv)
}

var BackofficeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BackofficeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListPendingCancellations", Handler: listPendingCancellationsHandler},
		{MethodName: "ApproveCancellation", Handler: approveCancellationHandler},
		{MethodName: "RejectCancellation", Handler: rejectCancellationHandler},
		{MethodName: "GetTicket", Handler: getTicketHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flightbooking/backoffice/v1/backoffice.proto",
}

func listPendingCancellationsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BackofficeServer).ListPendingCancellations(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListPendingCancellationsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BackofficeServer).ListPendingCancellations(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func approveCancellationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BackofficeServer).ApproveCancellation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ApproveCancellationMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BackofficeServer).ApproveCancellation(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func rejectCancellationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BackofficeServer).RejectCancellation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RejectCancellationMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BackofficeServer).RejectCancellation(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getTicketHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BackofficeServer).GetTicket(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetTicketMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BackofficeServer).GetTicket(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

type BackofficeClient interface {
	ListPendingCancellations(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ApproveCancellation(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	RejectCancellation(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetTicket(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*httpbody.HttpBody, error)
}

type backofficeClient struct {
	cc grpc.ClientConnInterface
}

func NewBackofficeClient(cc grpc.ClientConnInterface) BackofficeClient {
	return &backofficeClient{cc: cc}
}

func (c *backofficeClient) ListPendingCancellations(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListPendingCancellationsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *backofficeClient) ApproveCancellation(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ApproveCancellationMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *backofficeClient) RejectCancellation(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RejectCancellationMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *backofficeClient) GetTicket(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*httpbody.HttpBody, error) {
	out := new(httpbody.HttpBody)
	if err := c.cc.Invoke(ctx, GetTicketMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
