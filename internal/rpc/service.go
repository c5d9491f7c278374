// Package rpc describes the userdirectory.v1.UserService gRPC surface.
//
// There is no .proto file behind it: the service descriptor, the message
// types and the client stub are written by hand, and messages travel as
// JSON through the codec registered in this package.  Importing the
// package is enough to make the codec available to both servers and
// clients.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "userdirectory.v1.UserService"

const (
	PutUserMethod          = "PutUser"
	GetUserByIDMethod      = "GetUserByID"
	GetUserIDByNameMethod  = "GetUserIDByName"
	UpdateUserMethod       = "UpdateUser"
	UpdateUserByNameMethod = "UpdateUserByName"
	GetAllUsersMethod      = "GetAllUsers"
)

// FullMethod returns the "/service/method" path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// UserServiceServer is the server API of the user service.
type UserServiceServer interface {
	PutUser(context.Context, *PutUserRequest) (*PutUserResponse, error)
	GetUserByID(context.Context, *GetUserByIDRequest) (*GetUserByIDResponse, error)
	GetUserIDByName(context.Context, *GetUserIDByNameRequest) (*GetUserIDByNameResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*UpdateUserResponse, error)
	UpdateUserByName(context.Context, *UpdateUserByNameRequest) (*UpdateUserResponse, error)
	GetAllUsers(context.Context, *emptypb.Empty) (*GetAllUsersResponse, error)
}

// RegisterUserServiceServer registers srv on s.
func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserServiceDesc, srv)
}

// UserServiceDesc is the grpc.ServiceDesc of the user service.
var UserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: PutUserMethod, Handler: unaryHandler(PutUserMethod, UserServiceServer.PutUser)},
		{MethodName: GetUserByIDMethod, Handler: unaryHandler(GetUserByIDMethod, UserServiceServer.GetUserByID)},
		{MethodName: GetUserIDByNameMethod, Handler: unaryHandler(GetUserIDByNameMethod, UserServiceServer.GetUserIDByName)},
		{MethodName: UpdateUserMethod, Handler: unaryHandler(UpdateUserMethod, UserServiceServer.UpdateUser)},
		{MethodName: UpdateUserByNameMethod, Handler: unaryHandler(UpdateUserByNameMethod, UserServiceServer.UpdateUserByName)},
		{MethodName: GetAllUsersMethod, Handler: unaryHandler(GetAllUsersMethod, UserServiceServer.GetAllUsers)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "userdirectory/v1/user_service",
}

// unaryHandler builds the decode/intercept/dispatch glue that protoc would
// otherwise generate once per method.
func unaryHandler[Req, Resp any](method string, call func(UserServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := FullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UserServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(UserServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
