// Package knowledge holds the static insurance documents used to answer
// customer questions and ranks them by term overlap with a query.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/krea02/ai-agent-demo/internal/nlu"
)

//go:embed corpus.yaml
var embeddedCorpus []byte

// Document is one passage of the corpus.
type Document struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Text  string `yaml:"text" json:"text"`

	terms map[string]struct{}
}

type corpusFile struct {
	Documents []Document `yaml:"documents"`
}

// Retriever ranks a fixed corpus.
type Retriever struct {
	docs []Document
}

// Load reads the corpus from path, or the embedded corpus when path is empty.
func Load(path string) (*Retriever, error) {
	data := embeddedCorpus
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read corpus: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse builds a retriever from YAML corpus data.
func Parse(data []byte) (*Retriever, error) {
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if len(f.Documents) == 0 {
		return nil, fmt.Errorf("parse corpus: no documents")
	}
	return New(f.Documents)
}

// New builds a retriever over docs, keeping their order.
func New(docs []Document) (*Retriever, error) {
	seen := make(map[string]bool, len(docs))
	out := make([]Document, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return nil, fmt.Errorf("document %d has no id", i)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("duplicate document id %q", d.ID)
		}
		seen[d.ID] = true
		d.terms = termSet(d.Title + " " + d.Text)
		out[i] = d
	}
	return &Retriever{docs: out}, nil
}

// Len returns the number of documents.
func (r *Retriever) Len() int {
	return len(r.docs)
}

// Retrieve returns up to k documents sharing at least one term with query,
// best first. Equal scores keep corpus order.
func (r *Retriever) Retrieve(query string, k int) []Document {
	if k <= 0 {
		return nil
	}
	q := termSet(query)
	if len(q) == 0 {
		return nil
	}

	type scored struct {
		idx   int
		score int
	}
	var hits []scored
	for i, d := range r.docs {
		n := 0
		for t := range q {
			if _, ok := d.terms[t]; ok {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, scored{idx: i, score: n})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]Document, len(hits))
	for i, h := range hits {
		out[i] = r.docs[h.idx]
	}
	return out
}

// RetrieveOrFirst is Retrieve, falling back to the first k documents when
// nothing matches.
func (r *Retriever) RetrieveOrFirst(query string, k int) []Document {
	if docs := r.Retrieve(query, k); len(docs) > 0 {
		return docs
	}
	if k > len(r.docs) {
		k = len(r.docs)
	}
	if k <= 0 {
		return nil
	}
	return append([]Document(nil), r.docs[:k]...)
}

func termSet(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(nlu.Fold(text)) {
		if len(w) < 2 || nlu.IsStopword(w) {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// IDs returns the ids of docs in order.
func IDs(docs []Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
