package backoffice_service_api

import (
	"context"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const GatewayPrefix = "/v1/backoffice"

type gatewayCall func(ctx context.Context, client BackofficeClient, pathParams map[string]string, opts ...grpc.CallOption) (proto.Message, error)

// RegisterBackofficeHandlerClient exposes the back-office RPCs as REST routes
// under GatewayPrefix. Requests are forwarded to client.
func RegisterBackofficeHandlerClient(mux *runtime.ServeMux, client BackofficeClient) error {
	routes := []struct {
		method  string
		pattern string
		rpc     string
		call    gatewayCall
	}{
		{
			method:  http.MethodGet,
			pattern: GatewayPrefix + "/pending-cancellations",
			rpc:     ListPendingCancellationsMethod,
			call: func(ctx context.Context, client BackofficeClient, _ map[string]string, opts ...grpc.CallOption) (proto.Message, error) {
				return client.ListPendingCancellations(ctx, &emptypb.Empty{}, opts...)
			},
		},
		{
			method:  http.MethodPost,
			pattern: GatewayPrefix + "/bookings/{id}/approve",
			rpc:     ApproveCancellationMethod,
			call: func(ctx context.Context, client BackofficeClient, params map[string]string, opts ...grpc.CallOption) (proto.Message, error) {
				id, err := bookingID(params)
				if err != nil {
					return nil, err
				}
				return client.ApproveCancellation(ctx, id, opts...)
			},
		},
		{
			method:  http.MethodPost,
			pattern: GatewayPrefix + "/bookings/{id}/reject",
			rpc:     RejectCancellationMethod,
			call: func(ctx context.Context, client BackofficeClient, params map[string]string, opts ...grpc.CallOption) (proto.Message, error) {
				id, err := bookingID(params)
				if err != nil {
					return nil, err
				}
				return client.RejectCancellation(ctx, id, opts...)
			},
		},
		{
			method:  http.MethodGet,
			pattern: GatewayPrefix + "/bookings/{id}/ticket",
			rpc:     GetTicketMethod,
			call: func(ctx context.Context, client BackofficeClient, params map[string]string, opts ...grpc.CallOption) (proto.Message, error) {
				id, err := bookingID(params)
				if err != nil {
					return nil, err
				}
				return client.GetTicket(ctx, id, opts...)
			},
		},
	}

	for _, route := range routes {
		if err := mux.HandlePath(route.method, route.pattern, forward(mux, client, route.rpc, route.pattern, route.call)); err != nil {
			return err
		}
	}
	return nil
}

func forward(mux *runtime.ServeMux, client BackofficeClient, rpc, pattern string, call gatewayCall) runtime.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request, pathParams map[string]string) {
		ctx, cancel := context.WithCancel(req.Context())
		defer cancel()

		_, outbound := runtime.MarshalerForRequest(mux, req)
		annotated, err := runtime.AnnotateContext(ctx, mux, req, rpc, runtime.WithHTTPPathPattern(pattern))
		if err != nil {
			runtime.HTTPError(ctx, mux, outbound, w, req, err)
			return
		}

		var md runtime.ServerMetadata
		resp, err := call(annotated, client, pathParams, grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD))
		annotated = runtime.NewServerMetadataContext(annotated, md)
		if err != nil {
			runtime.HTTPError(annotated, mux, outbound, w, req, err)
			return
		}
		runtime.ForwardResponseMessage(annotated, mux, outbound, w, req, resp, mux.GetForwardResponseOptions()...)
	}
}

func bookingID(params map[string]string) (*wrapperspb.Int64Value, error) {
	raw, ok := params["id"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "missing parameter id")
	}
	id, err := runtime.Int64(raw)
	if err != nil || id < 1 {
		return nil, status.Errorf(codes.InvalidArgument, "type mismatch, parameter: id, value: %q", raw)
	}
	return wrapperspb.Int64(id), nil
}
