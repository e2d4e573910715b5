package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"industry-console/internal/api"
	"industry-console/internal/cms"
	"industry-console/internal/model"
)

// Client calls ConsoleService. It offers the same methods as api.Client so
// the console sessions can run over either transport.
type Client struct {
	cc    grpc.ClientConnInterface
	token string
}

func NewClient(cc grpc.ClientConnInterface, token string) *Client {
	return &Client{cc: cc, token: token}
}

func (c *Client) invoke(ctx context.Context, method string, in, out proto.Message) error {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out)
}

func decode(m proto.Message, v any) error {
	raw, err := protojson.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (c *Client) Health(ctx context.Context) error {
	return c.invoke(ctx, "Health", &emptypb.Empty{}, &emptypb.Empty{})
}

func (c *Client) GetSettings(ctx context.Context, industry string) (json.RawMessage, error) {
	out := &structpb.Struct{}
	if err := c.invoke(ctx, "GetSettings", wrapperspb.String(industry), out); err != nil {
		return nil, err
	}
	raw, err := protojson.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return raw, nil
}

func (c *Client) SaveSettings(ctx context.Context, industry string, doc cms.Document, idemKey string) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	body := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, body); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"industry":        structpb.NewStringValue(industry),
		"idempotency_key": structpb.NewStringValue(idemKey),
		"document":        structpb.NewStructValue(body),
	}}
	return c.invoke(ctx, "SaveSettings", req, &structpb.Struct{})
}

func (c *Client) ListAppointments(ctx context.Context, q api.AppointmentQuery) ([]model.Appointment, error) {
	req, err := structpb.NewStruct(map[string]any{
		"start_date": q.StartDate,
		"end_date":   q.EndDate,
		"staff_id":   q.StaffID,
		"limit":      q.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := &structpb.ListValue{}
	if err := c.invoke(ctx, "ListAppointments", req, out); err != nil {
		return nil, err
	}
	apts := []model.Appointment{}
	if err := decode(out, &apts); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return apts, nil
}

func (c *Client) CreateAppointment(ctx context.Context, b model.BookingRequest) (*model.Appointment, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	req := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, req); err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := c.invoke(ctx, "CreateAppointment", req, out); err != nil {
		return nil, err
	}
	a := &model.Appointment{}
	if err := decode(out, a); err != nil {
		return nil, fmt.Errorf("decode appointment: %w", err)
	}
	return a, nil
}

func (c *Client) ListStaff(ctx context.Context, activeOnly bool) ([]model.Staff, error) {
	out := &structpb.ListValue{}
	if err := c.invoke(ctx, "ListStaff", wrapperspb.Bool(activeOnly), out); err != nil {
		return nil, err
	}
	staff := []model.Staff{}
	if err := decode(out, &staff); err != nil {
		return nil, fmt.Errorf("decode staff: %w", err)
	}
	return staff, nil
}

func (c *Client) ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	out := &structpb.ListValue{}
	if err := c.invoke(ctx, "ListServices", wrapperspb.Bool(activeOnly), out); err != nil {
		return nil, err
	}
	svcs := []model.Service{}
	if err := decode(out, &svcs); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return svcs, nil
}
