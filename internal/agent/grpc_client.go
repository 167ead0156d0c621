package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Collaborator service methods. Messages are protobuf well-known types so the
// gateway needs no generated stubs.
const (
	methodAnswer     = "/quoteassist.v1.Collaborator/Answer"
	methodTranscribe = "/quoteassist.v1.Collaborator/Transcribe"
	methodSynthesize = "/quoteassist.v1.Collaborator/Synthesize"
)

var (
	errConnectionShutdown       = errors.New("connection shutdown")
	errConnectionStateUnchanged = errors.New("connection state did not change")
	errEmptyAnswer              = errors.New("collaborator returned an empty answer")
)

// GrpcClientConfig holds configuration for the collaborator client.
type GrpcClientConfig struct {
	Address          string
	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
}

// DefaultGrpcClientConfig returns default configuration for addr.
func DefaultGrpcClientConfig(addr string) GrpcClientConfig {
	return GrpcClientConfig{
		Address:          addr,
		ConnectTimeout:   5 * time.Second,
		RequestTimeout:   20 * time.Second,
		KeepaliveTime:    2 * time.Minute,
		KeepaliveTimeout: 10 * time.Second,
	}
}

// CollaboratorClient talks to the answering, transcription and synthesis
// gateway over gRPC.
type CollaboratorClient struct {
	conn    grpc.ClientConnInterface
	closer  func() error
	timeout time.Duration
	logger  *slog.Logger
}

// NewGrpcClient dials the gateway and waits until it is ready.
func NewGrpcClient(cfg GrpcClientConfig, logger *slog.Logger) (*CollaboratorClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kacp := keepalive.ClientParameters{
		Time:                cfg.KeepaliveTime,
		Timeout:             cfg.KeepaliveTimeout,
		PermitWithoutStream: false,
	}
	conn, err := grpc.NewClient(cfg.Address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(kacp),
	)
	if err != nil {
		return nil, fmt.Errorf("create collaborator client for %s: %w", cfg.Address, err)
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := waitForReady(connectCtx, conn); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("failed to close gRPC connection after readiness failure", "error", closeErr)
		}
		return nil, fmt.Errorf("collaborator at %s not ready: %w", cfg.Address, err)
	}

	logger.Info("connected to collaborator gateway", "address", cfg.Address)
	c := NewCollaboratorClient(conn, cfg.RequestTimeout, logger)
	c.closer = conn.Close
	return c, nil
}

// NewCollaboratorClient wraps an existing connection.
func NewCollaboratorClient(conn grpc.ClientConnInterface, timeout time.Duration, logger *slog.Logger) *CollaboratorClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollaboratorClient{conn: conn, timeout: timeout, logger: logger}
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Idle:
			conn.Connect()
		case connectivity.Shutdown:
			return errConnectionShutdown
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w from %s", errConnectionStateUnchanged, state)
		}
	}
}

func (c *CollaboratorClient) invoke(ctx context.Context, method string, req, resp any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	err := c.conn.Invoke(ctx, method, req, resp)
	c.logger.Debug("collaborator call", "method", method, "duration", time.Since(start), "error", err)
	return err
}

// Answer sends the conversation and documents and returns the reply text.
func (c *CollaboratorClient) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	msgs := make([]any, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = map[string]any{"role": string(m.Role), "content": m.Content}
	}
	docs := make([]any, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = map[string]any{"id": d.ID, "title": d.Title, "text": d.Text}
	}
	in, err := structpb.NewStruct(map[string]any{"messages": msgs, "documents": docs})
	if err != nil {
		return "", fmt.Errorf("encode answer request: %w", err)
	}

	out := &structpb.Struct{}
	if err := c.invoke(ctx, methodAnswer, in, out); err != nil {
		return "", fmt.Errorf("answer request failed: %w", err)
	}
	text := out.GetFields()["text"].GetStringValue()
	if text == "" {
		return "", errEmptyAnswer
	}
	return text, nil
}

// Transcribe sends audio and returns the recognized text, possibly empty.
func (c *CollaboratorClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	out := &wrapperspb.StringValue{}
	if err := c.invoke(ctx, methodTranscribe, wrapperspb.Bytes(audio), out); err != nil {
		return "", fmt.Errorf("transcribe request failed: %w", err)
	}
	return out.GetValue(), nil
}

// Synthesize sends text and returns the audio.
func (c *CollaboratorClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	out := &wrapperspb.BytesValue{}
	if err := c.invoke(ctx, methodSynthesize, wrapperspb.String(text), out); err != nil {
		return nil, fmt.Errorf("synthesize request failed: %w", err)
	}
	return out.GetValue(), nil
}

// Close closes the connection if the client owns it.
func (c *CollaboratorClient) Close() {
	if c.closer == nil {
		return
	}
	if err := c.closer(); err != nil {
		c.logger.Warn("failed to close gRPC connection", "error", err)
	}
}
