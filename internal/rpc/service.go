// Package rpc exposes the backend as console.v1.ConsoleService over gRPC.
// Messages are protobuf well-known types (Struct, ListValue, wrappers), so
// the service needs no generated code and the browser bridge can forward
// frames untouched.
package rpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"industry-console/internal/handler"
	"industry-console/internal/model"
)

const ServiceName = "console.v1.ConsoleService"

// ConsoleServer is the server side of console.v1.ConsoleService.
type ConsoleServer interface {
	Health(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetSettings(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SaveSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAppointments(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	CreateAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateAppointmentStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListStaff(context.Context, *wrapperspb.BoolValue) (*structpb.ListValue, error)
	ListServices(context.Context, *wrapperspb.BoolValue) (*structpb.ListValue, error)
}

func unary[Req proto.Message](name string, newReq func() Req, call func(ConsoleServer, context.Context, Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if ic == nil {
				return call(srv.(ConsoleServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return ic(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(ConsoleServer), ctx, req.(Req))
			})
		},
	}
}

func newStruct() *structpb.Struct        { return &structpb.Struct{} }
func newString() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }
func newBool() *wrapperspb.BoolValue     { return &wrapperspb.BoolValue{} }

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConsoleServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Health", func() *emptypb.Empty { return &emptypb.Empty{} },
			func(s ConsoleServer, ctx context.Context, in *emptypb.Empty) (any, error) { return s.Health(ctx, in) }),
		unary("GetSettings", newString,
			func(s ConsoleServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) { return s.GetSettings(ctx, in) }),
		unary("SaveSettings", newStruct,
			func(s ConsoleServer, ctx context.Context, in *structpb.Struct) (any, error) { return s.SaveSettings(ctx, in) }),
		unary("ListAppointments", newStruct,
			func(s ConsoleServer, ctx context.Context, in *structpb.Struct) (any, error) { return s.ListAppointments(ctx, in) }),
		unary("CreateAppointment", newStruct,
			func(s ConsoleServer, ctx context.Context, in *structpb.Struct) (any, error) { return s.CreateAppointment(ctx, in) }),
		unary("UpdateAppointmentStatus", newStruct,
			func(s ConsoleServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.UpdateAppointmentStatus(ctx, in)
			}),
		unary("ListStaff", newBool,
			func(s ConsoleServer, ctx context.Context, in *wrapperspb.BoolValue) (any, error) { return s.ListStaff(ctx, in) }),
		unary("ListServices", newBool,
			func(s ConsoleServer, ctx context.Context, in *wrapperspb.BoolValue) (any, error) { return s.ListServices(ctx, in) }),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "console/v1/console.proto",
}

// Register attaches srv to a gRPC server.
func Register(r grpc.ServiceRegistrar, srv ConsoleServer) {
	r.RegisterService(&serviceDesc, srv)
}

// Service adapts handler.Handler to ConsoleServer.
type Service struct {
	h *handler.Handler
}

func NewService(h *handler.Handler) *Service {
	return &Service{h: h}
}

var _ ConsoleServer = (*Service)(nil)

func (s *Service) Health(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.h.Health(ctx); err != nil {
		return nil, status.Error(codes.Unavailable, "database unavailable")
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) GetSettings(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	raw, err := s.h.GetSettings(ctx, in.GetValue())
	if err != nil {
		return nil, err
	}
	return rawStruct(raw)
}

// SaveSettings takes {industry, document, idempotency_key}.
func (s *Service) SaveSettings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	doc := in.GetFields()["document"].GetStructValue()
	if doc == nil {
		return nil, status.Error(codes.InvalidArgument, "document must be an object")
	}
	raw, err := protojson.Marshal(doc)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "document must be an object")
	}
	out, err := s.h.SaveSettings(ctx, str(in, "industry"), raw, str(in, "idempotency_key"))
	if err != nil {
		return nil, err
	}
	return rawStruct(out)
}

type listFilter struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StaffID   string `json:"staff_id"`
	Status    string `json:"status"`
	Limit     int    `json:"limit"`
}

func (s *Service) ListAppointments(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {
	var f listFilter
	if err := fromStruct(in, &f); err != nil {
		return nil, err
	}
	apts, err := s.h.ListAppointments(ctx, model.AppointmentFilter(f))
	if err != nil {
		return nil, err
	}
	return toList(apts)
}

func (s *Service) CreateAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req model.BookingRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	apt, err := s.h.CreateAppointment(ctx, req)
	if err != nil {
		return nil, err
	}
	return toStruct(apt)
}

func (s *Service) UpdateAppointmentStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	apt, err := s.h.UpdateAppointmentStatus(ctx, str(in, "id"), str(in, "status"))
	if err != nil {
		return nil, err
	}
	return toStruct(apt)
}

func activeOnly(in *wrapperspb.BoolValue) *bool {
	if !in.GetValue() {
		return nil
	}
	t := true
	return &t
}

func (s *Service) ListStaff(ctx context.Context, in *wrapperspb.BoolValue) (*structpb.ListValue, error) {
	out, err := s.h.ListStaff(ctx, activeOnly(in))
	if err != nil {
		return nil, err
	}
	return toList(out)
}

func (s *Service) ListServices(ctx context.Context, in *wrapperspb.BoolValue) (*structpb.ListValue, error) {
	out, err := s.h.ListServices(ctx, activeOnly(in))
	if err != nil {
		return nil, err
	}
	return toList(out)
}

// ----- conversions -----

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func rawStruct(raw []byte) (*structpb.Struct, error) {
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return rawStruct(raw)
}

func toList(v any) (*structpb.ListValue, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	if string(raw) == "null" {
		raw = []byte("[]")
	}
	out := &structpb.ListValue{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func fromStruct(in *structpb.Struct, v any) error {
	raw, err := protojson.Marshal(in)
	if err == nil {
		err = json.Unmarshal(raw, v)
	}
	if err != nil {
		return status.Error(codes.InvalidArgument, "malformed request")
	}
	return nil
}
