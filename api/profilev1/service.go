package profilev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "chirp.profile.v1.ProfileService"

// Full method names, as seen by interceptors
const (
	ProfileService_GetUserByUsername_FullMethodName    = "/" + ServiceName + "/GetUserByUsername"
	ProfileService_UpdateProfile_FullMethodName        = "/" + ServiceName + "/UpdateProfile"
	ProfileService_GetProfilesByUserIDs_FullMethodName = "/" + ServiceName + "/GetProfilesByUserIDs"
)

// ProfileServiceClient is the client API for ProfileService
type ProfileServiceClient interface {
	GetUserByUsername(ctx context.Context, in *GetUserByUsernameRequest, opts ...grpc.CallOption) (*GetUserByUsernameResponse, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UpdateProfileResponse, error)
	GetProfilesByUserIDs(ctx context.Context, in *GetProfilesByUserIDsRequest, opts ...grpc.CallOption) (*GetProfilesByUserIDsResponse, error)
}

type profileServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewProfileServiceClient creates a client. Calls are sent with the JSON codec.
func NewProfileServiceClient(cc grpc.ClientConnInterface) ProfileServiceClient {
	return &profileServiceClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *profileServiceClient) GetUserByUsername(ctx context.Context, in *GetUserByUsernameRequest, opts ...grpc.CallOption) (*GetUserByUsernameResponse, error) {
	out := new(GetUserByUsernameResponse)
	if err := c.cc.Invoke(ctx, ProfileService_GetUserByUsername_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UpdateProfileResponse, error) {
	out := new(UpdateProfileResponse)
	if err := c.cc.Invoke(ctx, ProfileService_UpdateProfile_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) GetProfilesByUserIDs(ctx context.Context, in *GetProfilesByUserIDsRequest, opts ...grpc.CallOption) (*GetProfilesByUserIDsResponse, error) {
	out := new(GetProfilesByUserIDsResponse)
	if err := c.cc.Invoke(ctx, ProfileService_GetProfilesByUserIDs_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// ProfileServiceServer is the server API for ProfileService
type ProfileServiceServer interface {
	GetUserByUsername(context.Context, *GetUserByUsernameRequest) (*GetUserByUsernameResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*UpdateProfileResponse, error)
	GetProfilesByUserIDs(context.Context, *GetProfilesByUserIDsRequest) (*GetProfilesByUserIDsResponse, error)
}

// UnimplementedProfileServiceServer can be embedded to have forward compatible implementations
type UnimplementedProfileServiceServer struct{}

func (UnimplementedProfileServiceServer) GetUserByUsername(context.Context, *GetUserByUsernameRequest) (*GetUserByUsernameResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUserByUsername not implemented")
}

func (UnimplementedProfileServiceServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*UpdateProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProfile not implemented")
}

func (UnimplementedProfileServiceServer) GetProfilesByUserIDs(context.Context, *GetProfilesByUserIDsRequest) (*GetProfilesByUserIDsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfilesByUserIDs not implemented")
}

// RegisterProfileServiceServer registers srv on s
func RegisterProfileServiceServer(s grpc.ServiceRegistrar, srv ProfileServiceServer) {
	s.RegisterService(&ProfileService_ServiceDesc, srv)
}

func getUserByUsernameHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetUserByUsernameRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProfileServiceServer).GetUserByUsername(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProfileService_GetUserByUsername_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProfileServiceServer).GetUserByUsername(ctx, req.(*GetUserByUsernameRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func updateProfileHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateProfileRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProfileServiceServer).UpdateProfile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProfileService_UpdateProfile_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProfileServiceServer).UpdateProfile(ctx, req.(*UpdateProfileRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getProfilesByUserIDsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetProfilesByUserIDsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProfileServiceServer).GetProfilesByUserIDs(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProfileService_GetProfilesByUserIDs_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProfileServiceServer).GetProfilesByUserIDs(ctx, req.(*GetProfilesByUserIDsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ProfileService_ServiceDesc is the grpc.ServiceDesc for ProfileService
var ProfileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProfileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetUserByUsername", Handler: getUserByUsernameHandler},
		{MethodName: "UpdateProfile", Handler: updateProfileHandler},
		{MethodName: "GetProfilesByUserIDs", Handler: getProfilesByUserIDsHandler},
	},
	Streams: []grpc.StreamDesc{},
}
