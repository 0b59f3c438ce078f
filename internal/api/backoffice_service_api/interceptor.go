package backoffice_service_api

import (
	"context"
	"log"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AdminInterceptor only lets admin bearer tokens through to back-office methods.
func AdminInterceptor(tokens TokenParser, revocations RevocationChecker) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization metadata")
		}
		scheme, token, ok := strings.Cut(values[0], " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return nil, status.Error(codes.Unauthenticated, "malformed authorization metadata")
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		revoked, err := revocations.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			log.Printf("ERROR: check token revocation: %v", err)
			return nil, status.Error(codes.Internal, "internal error")
		}
		if revoked {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		if !claims.IsAdmin() {
			return nil, status.Error(codes.PermissionDenied, "admin role required")
		}
		return handler(ctx, req)
	}
}
