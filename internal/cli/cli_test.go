package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/krea02/ai-agent-demo/internal/agent"
	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/pricing"
)

func executeCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestQuoteCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, "", "quote", "--age", "5", "--hp", "150", "--city", "Ljubljana", "--coverage", "full")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if !strings.Contains(stdout, "627 EUR/year") || !strings.Contains(stdout, "52 EUR/month") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestQuoteCommandJSON(t *testing.T) {
	stdout, _, err := executeCLI(t, "", "quote", "--age", "5", "--hp", "150", "--city", "Ljubljana", "--coverage", "full", "--json")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	var q pricing.Quote
	if err := json.Unmarshal([]byte(stdout), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Annual != 627 || q.Breakdown.CoverageFactor != 1.55 {
		t.Fatalf("quote = %+v", q)
	}
}

func TestQuoteCommandRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing flag", []string{"quote", "--age", "5", "--city", "Kranj"}, `required flag(s) "hp" not set`},
		{"unknown tier", []string{"quote", "--age", "5", "--hp", "90", "--city", "Kranj", "--coverage", "gold"}, "invalid"},
		{"zero power", []string{"quote", "--age", "5", "--hp", "0", "--city", "Kranj"}, "horsepower"},
	}
	for _, tt := range tests {
		_, _, err := executeCLI(t, "", tt.args...)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want mention of %q", tt.name, err, tt.want)
		}
	}
}

func TestParseCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, "", "parse", "Avto je star 5 let, ima 150 konjev, polni kasko, v Ljubljani.")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var got ParseResult
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.VehicleAge == nil || *got.VehicleAge != 5 {
		t.Fatalf("vehicle_age = %v", got.VehicleAge)
	}
	if got.Horsepower == nil || *got.Horsepower != 150 {
		t.Fatalf("horsepower = %v", got.Horsepower)
	}
	if got.City != "Ljubljana" || got.Coverage != domain.CoverageFull {
		t.Fatalf("city/coverage = %q/%q", got.City, got.Coverage)
	}
	if got.Intent != "premium_request" {
		t.Fatalf("intent = %q", got.Intent)
	}
}

func TestParseRequiresPhrase(t *testing.T) {
	if _, _, err := executeCLI(t, "", "parse"); err == nil {
		t.Fatal("expected an argument error")
	}
}

func TestChatCommand(t *testing.T) {
	t.Setenv("COLLABORATOR_ADDR", "")
	t.Setenv("KNOWLEDGE_PATH", "")

	stdin := strings.Join([]string{
		"Avto je star 5 let, ima 150 konjev, polni kasko, v Ljubljani.",
		"",
		"/reset",
		"/quit",
		"never read",
	}, "\n")
	stdout, stderr, err := executeCLI(t, stdin, "chat")
	if err != nil {
		t.Fatalf("chat failed: %v (stderr %q)", err, stderr)
	}
	if !strings.Contains(stdout, "627 €") {
		t.Fatalf("stdout = %q", stdout)
	}
	if !strings.Contains(stdout, "(new conversation)") {
		t.Fatalf("reset not acknowledged: %q", stdout)
	}
}

func TestChatCommandJSON(t *testing.T) {
	t.Setenv("COLLABORATOR_ADDR", "")
	t.Setenv("KNOWLEDGE_PATH", "")

	stdout, _, err := executeCLI(t, "Kaj pomeni franšiza?\n", "chat", "--json")
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	var res agent.TurnResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &res); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if res.Reply == "" || len(res.RAGDocs) == 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
