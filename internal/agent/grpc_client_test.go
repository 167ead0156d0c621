package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/knowledge"
)

// fakeConn answers unary calls in process.
type fakeConn struct {
	method   string
	request  any
	err      error
	answer   string
	deadline bool
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	f.method = method
	f.request = args
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	switch out := reply.(type) {
	case *structpb.Struct:
		out.Fields = map[string]*structpb.Value{"text": structpb.NewStringValue(f.answer)}
	case *wrapperspb.StringValue:
		out.Value = fmt.Sprintf("%d bytes", len(args.(*wrapperspb.BytesValue).GetValue()))
	case *wrapperspb.BytesValue:
		out.Value = []byte(args.(*wrapperspb.StringValue).GetValue())
	default:
		return fmt.Errorf("unexpected reply type %T", reply)
	}
	return nil
}

func (f *fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("streams not supported")
}

func TestCollaboratorAnswer(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{answer: "Zelena karta ni potrebna."}
	c := NewCollaboratorClient(conn, time.Second, nil)

	got, err := c.Answer(context.Background(), AnswerRequest{
		Messages:  []domain.Message{{Role: domain.RoleSystem, Content: "sys"}, {Role: domain.RoleUser, Content: "Ali rabim zeleno karto?"}},
		Documents: []knowledge.Document{{ID: "zelena-karta", Title: "Zelena karta", Text: "..."}},
	})
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if got != "Zelena karta ni potrebna." {
		t.Fatalf("answer = %q", got)
	}
	if conn.method != methodAnswer {
		t.Fatalf("method = %q", conn.method)
	}
	if !conn.deadline {
		t.Fatal("request timeout not applied")
	}

	req := conn.request.(*structpb.Struct).AsMap()
	msgs := req["messages"].([]any)
	if len(msgs) != 2 || msgs[1].(map[string]any)["role"] != "user" {
		t.Fatalf("messages = %v", msgs)
	}
	docs := req["documents"].([]any)
	if len(docs) != 1 || docs[0].(map[string]any)["id"] != "zelena-karta" {
		t.Fatalf("documents = %v", docs)
	}
}

func TestCollaboratorAnswerErrors(t *testing.T) {
	t.Parallel()

	empty := NewCollaboratorClient(&fakeConn{}, 0, nil)
	if _, err := empty.Answer(context.Background(), AnswerRequest{}); !errors.Is(err, errEmptyAnswer) {
		t.Fatalf("err = %v, want errEmptyAnswer", err)
	}

	down := NewCollaboratorClient(&fakeConn{err: errors.New("unavailable")}, 0, nil)
	if _, err := down.Answer(context.Background(), AnswerRequest{}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestCollaboratorAudio(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	c := NewCollaboratorClient(conn, time.Second, nil)

	text, err := c.Transcribe(context.Background(), []byte{1, 2, 3})
	if err != nil || text != "3 bytes" {
		t.Fatalf("Transcribe = %q, %v", text, err)
	}
	if conn.method != methodTranscribe {
		t.Fatalf("method = %q", conn.method)
	}

	audio, err := c.Synthesize(context.Background(), "zdravo")
	if err != nil || string(audio) != "zdravo" {
		t.Fatalf("Synthesize = %q, %v", audio, err)
	}
	if conn.method != methodSynthesize {
		t.Fatalf("method = %q", conn.method)
	}
	c.Close()
}
