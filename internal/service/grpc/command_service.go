package grpcsvc

import (
	"context"
	"encoding/json"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

const (
	// ServiceName: полное имя gRPC-сервиса командной поверхности.
	ServiceName = "pos.v1.CommandService"
	// InvokeMethod: единственный метод: выполнить команду по имени.
	InvokeMethod = "/pos.v1.CommandService/Invoke"

	fieldCommand = "command"
	fieldPayload = "payload"
)

// Dispatcher выполняет команду по имени; реализуется commands.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, payload json.RawMessage) (any, error)
}

// CommandServiceServer: серверная сторона pos.v1.CommandService.
// Запрос: google.protobuf.Struct {command, payload}; ответ: google.protobuf.Value.
type CommandServiceServer interface {
	Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Value, error)
}

// CommandServiceDesc описывает сервис для grpc.Server без сгенерированного кода:
// сообщения запроса и ответа: well-known типы structpb.
var CommandServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommandServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler:    invokeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pos/v1/command.proto",
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandServiceServer).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InvokeMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CommandServiceServer).Invoke(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterCommandServiceServer регистрирует реализацию на gRPC-сервере.
func RegisterCommandServiceServer(s grpc.ServiceRegistrar, srv CommandServiceServer) {
	s.RegisterService(&CommandServiceDesc, srv)
}

// CommandService реализует gRPC API поверх диспетчера команд.
type CommandService struct {
	dispatcher Dispatcher
	logger     *log.Entry
}

// NewCommandService конструирует сервис с зависимостями.
func NewCommandService(dispatcher Dispatcher, logger *log.Entry) *CommandService {
	if logger == nil {
		logger = log.New().WithField("component", "command-service")
	}
	return &CommandService{dispatcher: dispatcher, logger: logger}
}

// Invoke выполняет команду и возвращает её результат как JSON-значение.
func (s *CommandService) Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	fields := req.GetFields()
	command := strings.TrimSpace(fields[fieldCommand].GetStringValue())
	if command == "" {
		return nil, status.Error(codes.InvalidArgument, "command is required")
	}

	var payload json.RawMessage
	if v, ok := fields[fieldPayload]; ok && v != nil {
		raw, err := protojson.Marshal(v)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "encode payload: %v", err)
		}
		payload = raw
	}

	result, err := s.dispatcher.Dispatch(ctx, command, payload)
	if err != nil {
		return nil, toStatus(err)
	}

	resp, err := toValue(result)
	if err != nil {
		s.logger.WithError(err).WithField("command", command).Error("failed to encode command result")
		return nil, status.Error(codes.Internal, "failed to encode command result")
	}
	return resp, nil
}

// toValue переводит результат команды в google.protobuf.Value через JSON,
// чтобы теги json доменных типов совпадали на обоих транспортах.
// Числа в Value хранятся как float64: суммы в центах точны до 2^53 (MaxExactCents),
// большие значения по gRPC округляются. HTTP передаёт int64 без потерь.
func toValue(result any) (*structpb.Value, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	v := new(structpb.Value)
	if err := protojson.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	return v, nil
}

// MaxExactCents: наибольшая сумма в центах, которую gRPC-транспорт передаёт без округления.
const MaxExactCents int64 = 1 << 53

// CodeOf сопоставляет вид доменной ошибки коду gRPC.
func CodeOf(err error) codes.Code {
	switch domain.KindOf(err) {
	case domain.KindNone:
		return codes.OK
	case domain.KindNotFound:
		return codes.NotFound
	case domain.KindConflict:
		return codes.FailedPrecondition
	case domain.KindAlreadyExists:
		return codes.AlreadyExists
	case domain.KindValidation:
		return codes.InvalidArgument
	case domain.KindLock:
		return codes.Unavailable
	case domain.KindRowMapping:
		return codes.DataLoss
	default:
		return codes.Internal
	}
}

func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(CodeOf(err), err.Error())
}

var _ CommandServiceServer = (*CommandService)(nil)
