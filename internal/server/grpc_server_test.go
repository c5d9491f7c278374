package server_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/rpc"
	srv "github.com/afoley587/coding-challenges-2025/user-directory/internal/server"
	"github.com/afoley587/coding-challenges-2025/user-directory/internal/service"
	"github.com/afoley587/coding-challenges-2025/user-directory/internal/store"
)

const testUserID = "0189a30a-60c7-7135-b683-7d7f3783d4b7"

// startTestServer spins up a gRPC server on a random local port backed by
// the provided repository.  It returns a connection to it; the server is
// stopped when the test ends.
func startTestServer(t *testing.T, repo store.Repository) *grpc.ClientConn {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	grpcServer, hs := srv.New(service.New(repo, logger), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis, grpcServer, hs, logger) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial server: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		if err := <-done; err != nil {
			t.Errorf("serve returned error: %v", err)
		}
	})
	return conn
}

func requireStatus(t *testing.T, err error, want codes.Code) {
	t.Helper()
	if got := status.Code(err); got != want {
		t.Fatalf("expected status %s, got %s (%v)", want, got, err)
	}
}

// TestGrpcService exercises every RPC against an in‑memory backed server.
// It verifies the end‑to‑end behavior through gRPC rather than invoking the
// service directly.
func TestGrpcService(t *testing.T) {
	client := rpc.NewUserServiceClient(startTestServer(t, store.NewMemoryStore()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	put, err := client.PutUser(ctx, &rpc.PutUserRequest{UserUUID: testUserID, UserName: "testuser", UserEmail: "testuser@test.com"})
	if err != nil {
		t.Fatalf("PutUser RPC failed: %v", err)
	}
	if want := "User " + testUserID + " added successfully"; put.Message != want {
		t.Fatalf("unexpected PutUser message %q", put.Message)
	}

	gu, err := client.GetUserByID(ctx, &rpc.GetUserByIDRequest{UserUUID: testUserID})
	if err != nil {
		t.Fatalf("GetUserByID RPC failed: %v", err)
	}
	if gu.UserName != "testuser" || gu.UserEmail != "testuser@test.com" {
		t.Fatalf("GetUserByID returned unexpected user: %+v", gu)
	}

	up, err := client.UpdateUser(ctx, &rpc.UpdateUserRequest{UserUUID: testUserID, UserName: "updateduser"})
	if err != nil {
		t.Fatalf("UpdateUser RPC failed: %v", err)
	}
	if !up.Changed {
		t.Fatalf("expected the update to change the user: %+v", up)
	}

	gu, err = client.GetUserByID(ctx, &rpc.GetUserByIDRequest{UserUUID: testUserID})
	if err != nil {
		t.Fatalf("GetUserByID RPC failed: %v", err)
	}
	if gu.UserName != "updateduser" || gu.UserEmail != "testuser@test.com" {
		t.Fatalf("update not visible: %+v", gu)
	}

	_, err = client.GetUserIDByName(ctx, &rpc.GetUserIDByNameRequest{UserName: "testuser"})
	requireStatus(t, err, codes.NotFound)

	id, err := client.GetUserIDByName(ctx, &rpc.GetUserIDByNameRequest{UserName: "updateduser"})
	if err != nil {
		t.Fatalf("GetUserIDByName RPC failed: %v", err)
	}
	if id.UserUUID != testUserID {
		t.Fatalf("expected id %s, got %s", testUserID, id.UserUUID)
	}

	up, err = client.UpdateUserByName(ctx, &rpc.UpdateUserByNameRequest{CurrentName: "updateduser", UserEmail: "new@test.com"})
	if err != nil {
		t.Fatalf("UpdateUserByName RPC failed: %v", err)
	}
	if !up.Changed {
		t.Fatalf("expected the update to change the user: %+v", up)
	}

	all, err := client.GetAllUsers(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("GetAllUsers RPC failed: %v", err)
	}
	if len(all.Users) != 1 {
		t.Fatalf("expected 1 user from GetAllUsers, got %d", len(all.Users))
	}
	if u := all.Users[0]; u.UserUUID != testUserID || u.UserName != "updateduser" || u.UserEmail != "new@test.com" {
		t.Fatalf("GetAllUsers returned unexpected user: %+v", u)
	}
}

func TestGrpcStatusCodes(t *testing.T) {
	client := rpc.NewUserServiceClient(startTestServer(t, store.NewMemoryStore()))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetUserByID(ctx, &rpc.GetUserByIDRequest{UserUUID: "invalid-uuid"})
	requireStatus(t, err, codes.InvalidArgument)
	if msg := status.Convert(err).Message(); msg != "Invalid UUID" {
		t.Fatalf("unexpected message %q", msg)
	}

	_, err = client.GetUserByID(ctx, &rpc.GetUserByIDRequest{UserUUID: testUserID})
	requireStatus(t, err, codes.NotFound)

	req := &rpc.PutUserRequest{UserUUID: testUserID, UserName: "a", UserEmail: "a@test.com"}
	if _, err := client.PutUser(ctx, req); err != nil {
		t.Fatalf("PutUser RPC failed: %v", err)
	}
	_, err = client.PutUser(ctx, req)
	requireStatus(t, err, codes.AlreadyExists)

	_, err = client.PutUser(ctx, &rpc.PutUserRequest{UserUUID: testUserID, UserName: "a", UserEmail: "not-an-email"})
	requireStatus(t, err, codes.InvalidArgument)

	up, err := client.UpdateUser(ctx, &rpc.UpdateUserRequest{UserUUID: testUserID})
	if err != nil {
		t.Fatalf("UpdateUser RPC failed: %v", err)
	}
	if up.Changed || up.Message != "No changes for user "+testUserID {
		t.Fatalf("unexpected no-op update response: %+v", up)
	}

	all, err := client.GetAllUsers(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("GetAllUsers RPC failed: %v", err)
	}
	if len(all.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(all.Users))
	}
}

func TestHealthServing(t *testing.T) {
	conn := startTestServer(t, store.NewMemoryStore())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %s", resp.GetStatus())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewMemoryStore(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0", svc, logger) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunTLSRequiresKeyPair(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewMemoryStore(), logger)

	err := srv.RunTLS(context.Background(), "127.0.0.1:0", srv.TLSConfig{CertFile: "missing.pem"}, svc, logger)
	if err == nil {
		t.Fatal("expected an error without a key")
	}
}
