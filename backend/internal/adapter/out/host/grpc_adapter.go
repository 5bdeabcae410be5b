package host

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	portHost "vehprop/backend/internal/core/port/out/host"
)

// ServiceName - имя gRPC сервиса хоста; метод совпадает с именем действия
const ServiceName = "vehprop.Host"

// JSONCodec передает сообщения gRPC в JSON вместо protobuf
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string { return "json" }

// GRPCAdapter отправляет вызовы унарными gRPC запросами
type GRPCAdapter struct {
	conn *grpc.ClientConn
}

var _ portHost.Port = (*GRPCAdapter)(nil)

// NewGRPCAdapter создает клиент хоста. Соединение устанавливается лениво.
func NewGRPCAdapter(address string, opts ...grpc.DialOption) (*GRPCAdapter, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(JSONCodec{})),
	}, opts...)

	conn, err := grpc.NewClient(address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("create host client for %s: %w", address, err)
	}
	return &GRPCAdapter{conn: conn}, nil
}

// Method возвращает полное имя gRPC метода для действия
func Method(action portHost.Action) string {
	return "/" + ServiceName + "/" + string(action)
}

// Send выполняет один вызов хоста
func (a *GRPCAdapter) Send(ctx context.Context, action portHost.Action, payload any) error {
	if payload == nil {
		payload = portHost.Empty{}
	}
	var reply json.RawMessage
	if err := a.conn.Invoke(ctx, Method(action), payload, &reply); err != nil {
		return fmt.Errorf("invoke %s: %w", action, err)
	}
	return nil
}

// Close закрывает соединение
func (a *GRPCAdapter) Close() error {
	return a.conn.Close()
}

// NewGRPCHostServer создает gRPC сервер, принимающий вызовы оверлея
// любого метода сервиса vehprop.Host. Используется тестовым хостом.
func NewGRPCHostServer(fn CallHandler, opts ...grpc.ServerOption) *grpc.Server {
	handler := func(_ any, stream grpc.ServerStream) error {
		method, ok := grpc.MethodFromServerStream(stream)
		if !ok {
			return fmt.Errorf("method not found in stream")
		}
		action, found := strings.CutPrefix(method, "/"+ServiceName+"/")
		if !found {
			return fmt.Errorf("unknown service method %s", method)
		}

		var payload json.RawMessage
		if err := stream.RecvMsg(&payload); err != nil {
			return err
		}
		if err := fn(portHost.Action(action), payload); err != nil {
			return err
		}
		return stream.SendMsg(json.RawMessage(`{}`))
	}

	serverOpts := append([]grpc.ServerOption{
		grpc.ForceServerCodec(JSONCodec{}),
		grpc.UnknownServiceHandler(handler),
	}, opts...)
	return grpc.NewServer(serverOpts...)
}
