package server

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/rpc"
	"github.com/afoley587/coding-challenges-2025/user-directory/internal/service"
)

// grpcServer implements rpc.UserServiceServer by delegating every call to
// the service layer.  It contains no business rules of its own: it only
// converts messages and turns service errors into gRPC statuses.
//
// Use NewGRPCServer to construct an instance.
type grpcServer struct {
	svc *service.Service
}

// NewGRPCServer constructs a gRPC service implementation backed by svc.
func NewGRPCServer(svc *service.Service) rpc.UserServiceServer {
	return &grpcServer{svc: svc}
}

func (s *grpcServer) PutUser(ctx context.Context, req *rpc.PutUserRequest) (*rpc.PutUserResponse, error) {
	msg, err := s.svc.Create(ctx, service.PutUserRequest{
		UUID:  req.UserUUID,
		Name:  req.UserName,
		Email: req.UserEmail,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.PutUserResponse{Message: msg}, nil
}

func (s *grpcServer) GetUserByID(ctx context.Context, req *rpc.GetUserByIDRequest) (*rpc.GetUserByIDResponse, error) {
	data, err := s.svc.GetByID(ctx, req.UserUUID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.GetUserByIDResponse{UserName: data.Name, UserEmail: data.Email}, nil
}

func (s *grpcServer) GetUserIDByName(ctx context.Context, req *rpc.GetUserIDByNameRequest) (*rpc.GetUserIDByNameResponse, error) {
	id, err := s.svc.GetIDByName(ctx, req.UserName)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.GetUserIDByNameResponse{UserUUID: id}, nil
}

func (s *grpcServer) UpdateUser(ctx context.Context, req *rpc.UpdateUserRequest) (*rpc.UpdateUserResponse, error) {
	res, err := s.svc.Update(ctx, service.UpdateUserRequest{
		UUID:  req.UserUUID,
		Name:  req.UserName,
		Email: req.UserEmail,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.UpdateUserResponse{Message: res.Message, Changed: res.Changed}, nil
}

func (s *grpcServer) UpdateUserByName(ctx context.Context, req *rpc.UpdateUserByNameRequest) (*rpc.UpdateUserResponse, error) {
	res, err := s.svc.UpdateByName(ctx, service.UpdateUserByNameRequest{
		CurrentName: req.CurrentName,
		Name:        req.UserName,
		Email:       req.UserEmail,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.UpdateUserResponse{Message: res.Message, Changed: res.Changed}, nil
}

// GetAllUsers returns every user in a single response.  An empty directory
// yields an empty list, not an error.
func (s *grpcServer) GetAllUsers(ctx context.Context, _ *emptypb.Empty) (*rpc.GetAllUsersResponse, error) {
	records, err := s.svc.ListAll(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	users := make([]*rpc.User, 0, len(records))
	for _, r := range records {
		users = append(users, &rpc.User{UserUUID: r.UUID, UserName: r.Name, UserEmail: r.Email})
	}
	return &rpc.GetAllUsersResponse{Users: users}, nil
}

// toStatus converts a service error into a gRPC status carrying the same
// caller-safe message.
func toStatus(err error) error {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		return status.Error(codes.Unknown, "Unknown error")
	}
	return status.Error(statusCode(svcErr.Code), svcErr.Message)
}

func statusCode(c service.Code) codes.Code {
	switch c {
	case service.InvalidArgument:
		return codes.InvalidArgument
	case service.NotFound:
		return codes.NotFound
	case service.AlreadyExists:
		return codes.AlreadyExists
	case service.Internal:
		return codes.Internal
	default:
		return codes.Unknown
	}
}
