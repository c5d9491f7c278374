package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/rpc"
	"github.com/afoley587/coding-challenges-2025/user-directory/internal/service"
)

// New builds a gRPC server with the user service and the standard health
// service registered.  The user service is reported as SERVING right away,
// since svc only exists once its storage is ready.
func New(svc *service.Service, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	grpcServer := grpc.NewServer(opts...)
	rpc.RegisterUserServiceServer(grpcServer, NewGRPCServer(svc))

	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)
	return grpcServer, hs
}

// Run starts a plaintext gRPC server listening on addr.  It blocks until
// ctx is cancelled, then drains in-flight calls and returns.  Any error
// encountered while starting or serving will be returned.
func Run(ctx context.Context, addr string, svc *service.Service, logger *slog.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	grpcServer, hs := New(svc, logger)
	return Serve(ctx, lis, grpcServer, hs, logger)
}

// RunTLS is Run with TLS, or mutual TLS when cfg.CAFile is set.
func RunTLS(ctx context.Context, addr string, cfg TLSConfig, svc *service.Service, logger *slog.Logger) error {
	creds, err := serverCredentials(cfg)
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	grpcServer, hs := New(svc, logger, grpc.Creds(creds))
	return Serve(ctx, lis, grpcServer, hs, logger)
}

// Serve runs grpcServer on lis until ctx is done or serving fails.  On
// shutdown the health status flips to NOT_SERVING before the server stops
// gracefully.
func Serve(ctx context.Context, lis net.Listener, grpcServer *grpc.Server, hs *health.Server, logger *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return errors.Wrap(err, "grpc serve")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down grpc server")
		hs.Shutdown()
		grpcServer.GracefulStop()
		return nil
	})
	return g.Wait()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		level := slog.LevelInfo
		switch code {
		case codes.OK:
		case codes.Internal, codes.Unknown:
			level = slog.LevelError
		default:
			level = slog.LevelWarn
		}
		logger.LogAttrs(ctx, level, "rpc",
			slog.String("method", info.FullMethod),
			slog.String("code", code.String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
