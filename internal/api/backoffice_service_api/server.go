package backoffice_service_api

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server exposes the cancellation review workflow to back-office tools.
type Server struct {
	bookings booking.BookingUseCase
}

var _ BackofficeServer = (*Server)(nil)

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

func (s *Server) ListPendingCancellations(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	bookings, err := s.bookings.ListPendingCancellations(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"bookings": bookings})
}

func (s *Server) ApproveCancellation(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	b, err := s.bookings.ApproveCancellation(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(b)
}

func (s *Server) RejectCancellation(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	b, err := s.bookings.RejectCancellation(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(b)
}

func (s *Server) GetTicket(ctx context.Context, req *wrapperspb.Int64Value) (*httpbody.HttpBody, error) {
	ticket, err := s.bookings.TicketByID(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return &httpbody.HttpBody{ContentType: "application/pdf", Data: ticket.Content}, nil
}

// toStruct converts a JSON-tagged value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return status.Error(codes.FailedPrecondition, validationErr.Message)
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, "booking not found")
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.Aborted, "booking was modified concurrently")
	default:
		log.Printf("ERROR: backoffice: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
}
