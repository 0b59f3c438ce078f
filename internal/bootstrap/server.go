package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	backofficeapi "github.com/Domenick1991/flightbooking/internal/api/backoffice_service_api"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const swaggerSpec = "/swagger/backoffice.swagger.json"

type Dependencies struct {
	Services    api.Services
	Tokens      api.TokenParser
	Revocations api.RevocationStore
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	gatewayCC  *grpc.ClientConn
}

// Run starts the gRPC and HTTP (gin + grpc-gateway + swagger) servers and
// blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, deps Dependencies) error {
	s, err := newServers(cfg, deps)
	if err != nil {
		return err
	}
	defer s.gatewayCC.Close()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPC.Address)
		errCh <- s.grpcServer.Serve(lis)
	}()

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTP.Address)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Printf("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, deps Dependencies) (*Servers, error) {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(backofficeapi.AdminInterceptor(deps.Tokens, deps.Revocations)))
	backofficeapi.RegisterBackofficeServer(grpcSrv, backofficeapi.NewServer(deps.Services.Bookings))

	conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC gateway endpoint: %w", err)
	}

	handler, err := newHandler(cfg, deps, backofficeapi.NewBackofficeClient(conn))
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{Addr: cfg.HTTP.Address, Handler: handler},
		gatewayCC:  conn,
	}, nil
}

// newHandler mounts the public gin routes, the back-office gateway and the docs.
func newHandler(cfg *config.Config, deps Dependencies, backoffice backofficeapi.BackofficeClient) (http.Handler, error) {
	router, err := api.NewRouter(deps.Services, api.NewAuthenticator(deps.Tokens, deps.Revocations))
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	gateway := runtime.NewServeMux()
	if err := backofficeapi.RegisterBackofficeHandlerClient(gateway, backoffice); err != nil {
		return nil, fmt.Errorf("register backoffice gateway: %w", err)
	}
	router.Any(backofficeapi.GatewayPrefix+"/*path", gin.WrapH(gateway))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerSpec))))
	}

	return router, nil
}
