package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// UserServiceClient is the client stub of the user service.  Every call is
// sent with the json content-subtype.
type UserServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewUserServiceClient(cc grpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

func (c *UserServiceClient) PutUser(ctx context.Context, in *PutUserRequest, opts ...grpc.CallOption) (*PutUserResponse, error) {
	out := new(PutUserResponse)
	if err := c.invoke(ctx, PutUserMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) GetUserByID(ctx context.Context, in *GetUserByIDRequest, opts ...grpc.CallOption) (*GetUserByIDResponse, error) {
	out := new(GetUserByIDResponse)
	if err := c.invoke(ctx, GetUserByIDMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) GetUserIDByName(ctx context.Context, in *GetUserIDByNameRequest, opts ...grpc.CallOption) (*GetUserIDByNameResponse, error) {
	out := new(GetUserIDByNameResponse)
	if err := c.invoke(ctx, GetUserIDByNameMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*UpdateUserResponse, error) {
	out := new(UpdateUserResponse)
	if err := c.invoke(ctx, UpdateUserMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) UpdateUserByName(ctx context.Context, in *UpdateUserByNameRequest, opts ...grpc.CallOption) (*UpdateUserResponse, error) {
	out := new(UpdateUserResponse)
	if err := c.invoke(ctx, UpdateUserByNameMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) GetAllUsers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*GetAllUsersResponse, error) {
	out := new(GetAllUsersResponse)
	if err := c.invoke(ctx, GetAllUsersMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, FullMethod(method), in, out, opts...)
}
