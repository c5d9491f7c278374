package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/rpc"
)

func dial(cfg DialConfig) (*grpc.ClientConn, error) {
	if cfg.Address == "" {
		return nil, errors.New("server address is required")
	}
	creds, err := transportCredentials(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(cfg.Address, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial server")
	}
	return conn, nil
}

func transportCredentials(cfg DialConfig) (credentials.TransportCredentials, error) {
	if cfg.Insecure {
		return insecure.NewCredentials(), nil
	}
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.RootCA != "" {
		pem, err := os.ReadFile(cfg.RootCA)
		if err != nil {
			return nil, errors.Wrap(err, "read root ca")
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("no certificates found in %s", cfg.RootCA)
		}
		tlsCfg.RootCAs = pool
	}
	if cfg.ClientCert != "" || cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, errors.Wrap(err, "load client key pair")
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	return credentials.NewTLS(tlsCfg), nil
}

// PutUser creates a user and returns the server's confirmation message.
func (c *GRPCClient) PutUser(ctx context.Context, id, name, email string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.users.PutUser(ctx, &rpc.PutUserRequest{UserUUID: id, UserName: name, UserEmail: email})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *GRPCClient) GetUser(ctx context.Context, id string) (*rpc.GetUserByIDResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.users.GetUserByID(ctx, &rpc.GetUserByIDRequest{UserUUID: id})
}

func (c *GRPCClient) GetUserID(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.users.GetUserIDByName(ctx, &rpc.GetUserIDByNameRequest{UserName: name})
	if err != nil {
		return "", err
	}
	return resp.UserUUID, nil
}

// UpdateUser changes the non-empty fields of the user with the given id.
func (c *GRPCClient) UpdateUser(ctx context.Context, id, name, email string) (*rpc.UpdateUserResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.users.UpdateUser(ctx, &rpc.UpdateUserRequest{UserUUID: id, UserName: name, UserEmail: email})
}

func (c *GRPCClient) UpdateUserByName(ctx context.Context, current, name, email string) (*rpc.UpdateUserResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.users.UpdateUserByName(ctx, &rpc.UpdateUserByNameRequest{CurrentName: current, UserName: name, UserEmail: email})
}

func (c *GRPCClient) ListUsers(ctx context.Context) ([]*rpc.User, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.users.GetAllUsers(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// Health asks the standard health service about the user service.
func (c *GRPCClient) Health(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
