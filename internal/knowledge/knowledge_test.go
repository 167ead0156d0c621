package knowledge

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testRetriever(t *testing.T) *Retriever {
	t.Helper()
	r, err := New([]Document{
		{ID: "a", Title: "Toča", Text: "toča in požar"},
		{ID: "b", Title: "Steklo", Text: "razbito steklo in toča"},
		{ID: "c", Title: "Tatvina", Text: "tatvina vozila, steklo, toča"},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func TestRetrieveRanksByOverlap(t *testing.T) {
	t.Parallel()

	r := testRetriever(t)
	tests := []struct {
		query string
		k     int
		want  []string
	}{
		{"razbito steklo", 3, []string{"b", "c"}},
		{"toča", 3, []string{"a", "b", "c"}},
		{"toča", 2, []string{"a", "b"}},
		{"steklo in toča tatvina", 1, []string{"c"}},
		{"Stéklo!", 3, []string{"b", "c"}},
		{"nekaj povsem drugega", 3, []string{}},
		{"in", 3, []string{}},
	}
	for _, tt := range tests {
		got := IDs(r.Retrieve(tt.query, tt.k))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Retrieve(%q, %d) = %v, want %v", tt.query, tt.k, got, tt.want)
		}
	}
}

func TestRetrieveOrFirstFallsBack(t *testing.T) {
	t.Parallel()

	r := testRetriever(t)
	if got := IDs(r.RetrieveOrFirst("brez zadetkov", 2)); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("fallback = %v, want [a b]", got)
	}
	if got := IDs(r.RetrieveOrFirst("tatvina", 2)); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("hits = %v, want [c]", got)
	}
	if got := r.RetrieveOrFirst("x", 10); len(got) != 3 {
		t.Fatalf("fallback length = %d, want 3", len(got))
	}
}

func TestEmbeddedCorpus(t *testing.T) {
	t.Parallel()

	r, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Len() < 5 {
		t.Fatalf("embedded corpus has %d documents", r.Len())
	}

	tests := []struct {
		query, want string
	}{
		{"Kaj je franšiza?", "fransiza"},
		{"Kako prijavim škodo?", "prijava-skode"},
		{"Ali potrebujem zeleno karto za Hrvaško?", "zelena-karta"},
	}
	for _, tt := range tests {
		docs := r.Retrieve(tt.query, 3)
		if len(docs) == 0 || docs[0].ID != tt.want {
			t.Errorf("Retrieve(%q) = %v, want %s first", tt.query, IDs(docs), tt.want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corpus.yaml")
	data := []byte("documents:\n  - id: one\n    title: Ena\n    text: prvi dokument\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}

func TestParseRejectsBadCorpus(t *testing.T) {
	t.Parallel()

	bad := []string{
		"documents: []",
		"documents:\n  - title: brez id\n",
		"documents:\n  - id: x\n  - id: x\n",
		"documents: [",
	}
	for _, in := range bad {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
}
