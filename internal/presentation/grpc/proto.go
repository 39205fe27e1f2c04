package grpc

// proto.go hand-writes the service descriptor for anxiety.v1.AnxietyService.
// Messages travel as JSON (see codec.go), so no generated stubs are needed.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AnxietyServiceServer is the server API for AnxietyService.
type AnxietyServiceServer interface {
	Predict(context.Context, *PredictRequest) (*PredictResponse, error)
	Explain(context.Context, *ExplainRequest) (*ExplainResponse, error)
	GetPrediction(context.Context, *GetPredictionRequest) (*GetPredictionResponse, error)
	mustEmbedUnimplementedAnxietyServiceServer()
}

// UnimplementedAnxietyServiceServer provides forward-compatible default implementations.
type UnimplementedAnxietyServiceServer struct{}

func (UnimplementedAnxietyServiceServer) Predict(context.Context, *PredictRequest) (*PredictResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Predict not implemented")
}
func (UnimplementedAnxietyServiceServer) Explain(context.Context, *ExplainRequest) (*ExplainResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Explain not implemented")
}
func (UnimplementedAnxietyServiceServer) GetPrediction(context.Context, *GetPredictionRequest) (*GetPredictionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetPrediction not implemented")
}
func (UnimplementedAnxietyServiceServer) mustEmbedUnimplementedAnxietyServiceServer() {}

// RegisterAnxietyServiceServer registers the AnxietyServiceServer with the gRPC server.
func RegisterAnxietyServiceServer(s grpclib.ServiceRegistrar, srv AnxietyServiceServer) {
	s.RegisterService(&_AnxietyService_serviceDesc, srv)
}

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "anxiety.v1.AnxietyService"

var _AnxietyService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnxietyServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Predict", Handler: _AnxietyService_Predict_Handler},
		{MethodName: "Explain", Handler: _AnxietyService_Explain_Handler},
		{MethodName: "GetPrediction", Handler: _AnxietyService_GetPrediction_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

func _AnxietyService_Predict_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(PredictRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnxietyServiceServer).Predict(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Predict"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnxietyServiceServer).Predict(ctx, req.(*PredictRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _AnxietyService_Explain_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ExplainRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnxietyServiceServer).Explain(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Explain"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnxietyServiceServer).Explain(ctx, req.(*ExplainRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _AnxietyService_GetPrediction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetPredictionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnxietyServiceServer).GetPrediction(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetPrediction"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnxietyServiceServer).GetPrediction(ctx, req.(*GetPredictionRequest))
	}
	return interceptor(ctx, req, info, handler)
}
