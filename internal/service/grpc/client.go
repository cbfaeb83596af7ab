package grpcsvc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client: типизированный клиент pos.v1.CommandService.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient оборачивает готовое соединение.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Invoke выполняет команду. payload сериализуется в JSON (nil: без payload),
// результат декодируется в out, если out не nil.
// Целые числа точны по модулю до MaxExactCents.
func (c *Client) Invoke(ctx context.Context, command string, payload, out any, opts ...grpc.CallOption) error {
	req, err := NewRequest(command, payload)
	if err != nil {
		return err
	}

	resp := new(structpb.Value)
	if err := c.conn.Invoke(ctx, InvokeMethod, req, resp, opts...); err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	raw, err := protojson.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode %s response: %w", command, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", command, err)
	}
	return nil
}

// NewRequest собирает запрос {command, payload}.
func NewRequest(command string, payload any) (*structpb.Struct, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldCommand: structpb.NewStringValue(command),
	}}
	if payload == nil {
		return req, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", command, err)
	}
	v := new(structpb.Value)
	if err := protojson.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", command, err)
	}
	req.Fields[fieldPayload] = v
	return req, nil
}
