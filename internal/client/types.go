package client

import (
	"time"

	"google.golang.org/grpc"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/rpc"
)

// DefaultTimeout bounds every call made through GRPCClient.
const DefaultTimeout = 10 * time.Second

type DialConfig struct {
	Address    string
	Insecure   bool
	RootCA     string // optional root CA cert
	ClientCert string // optional client cert (mTLS)
	ClientKey  string // optional client key (mTLS)
	Timeout    time.Duration
}

type GRPCClient struct {
	conn    *grpc.ClientConn
	users   *rpc.UserServiceClient
	timeout time.Duration
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func NewClient(cfg DialConfig) (*GRPCClient, error) {
	conn, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GRPCClient{conn: conn, users: rpc.NewUserServiceClient(conn), timeout: timeout}, nil
}
