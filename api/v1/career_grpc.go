// Package careerv1 defines the career.v1.CareerPrediction gRPC service. Messages travel
// as google.protobuf.Struct and map onto the Go types in messages.go.
package careerv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "career.v1.CareerPrediction"

const (
	CareerPrediction_Predict_FullMethodName         = "/career.v1.CareerPrediction/Predict"
	CareerPrediction_GetPrediction_FullMethodName   = "/career.v1.CareerPrediction/GetPrediction"
	CareerPrediction_ListPredictions_FullMethodName = "/career.v1.CareerPrediction/ListPredictions"
)

// CareerPredictionClient is the client API for the CareerPrediction service.
type CareerPredictionClient interface {
	Predict(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetPrediction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListPredictions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type careerPredictionClient struct {
	cc grpc.ClientConnInterface
}

func NewCareerPredictionClient(cc grpc.ClientConnInterface) CareerPredictionClient {
	return &careerPredictionClient{cc}
}

func (c *careerPredictionClient) Predict(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CareerPrediction_Predict_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *careerPredictionClient) GetPrediction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CareerPrediction_GetPrediction_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *careerPredictionClient) ListPredictions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CareerPrediction_ListPredictions_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CareerPredictionServer is the server API for the CareerPrediction service.
type CareerPredictionServer interface {
	Predict(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPrediction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPredictions(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedCareerPredictionServer can be embedded to have forward compatible implementations.
type UnimplementedCareerPredictionServer struct{}

func (UnimplementedCareerPredictionServer) Predict(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Predict not implemented")
}

func (UnimplementedCareerPredictionServer) GetPrediction(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPrediction not implemented")
}

func (UnimplementedCareerPredictionServer) ListPredictions(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListPredictions not implemented")
}

func RegisterCareerPredictionServer(s grpc.ServiceRegistrar, srv CareerPredictionServer) {
	s.RegisterService(&CareerPrediction_ServiceDesc, srv)
}

type unaryMethod func(srv CareerPredictionServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CareerPredictionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CareerPredictionServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CareerPrediction_ServiceDesc is the grpc.ServiceDesc for the CareerPrediction service.
var CareerPrediction_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CareerPredictionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Predict",
			Handler: unaryHandler(CareerPrediction_Predict_FullMethodName,
				func(srv CareerPredictionServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.Predict(ctx, in)
				}),
		},
		{
			MethodName: "GetPrediction",
			Handler: unaryHandler(CareerPrediction_GetPrediction_FullMethodName,
				func(srv CareerPredictionServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.GetPrediction(ctx, in)
				}),
		},
		{
			MethodName: "ListPredictions",
			Handler: unaryHandler(CareerPrediction_ListPredictions_FullMethodName,
				func(srv CareerPredictionServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.ListPredictions(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "career/v1/career.proto",
}
