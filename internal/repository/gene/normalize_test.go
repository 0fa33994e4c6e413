package gene

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/genedex/internal/db"
)

func TestNormalizeHit_PrefersFields(t *testing.T) {
	h := &db.Hit{
		ID:     "1017",
		Source: map[string]any{"symbol": "ignored"},
		Fields: map[string]json.RawMessage{
			"symbol": json.RawMessage(`["CDK2"]`),
			"alias":  json.RawMessage(`["CDKN2","p33"]`),
		},
	}
	doc := normalizeHit(h, false)
	if doc["symbol"] != "CDK2" {
		t.Errorf("symbol = %v, want unwrapped CDK2", doc["symbol"])
	}
	alias, ok := doc["alias"].([]any)
	if !ok || len(alias) != 2 {
		t.Errorf("alias = %v, want two-element list", doc["alias"])
	}
	if doc.ID() != "1017" {
		t.Errorf("_id = %q", doc.ID())
	}
}

func TestNormalizeHit_Source(t *testing.T) {
	h := &db.Hit{
		ID:      "1017",
		Version: ptr(int64(2)),
		Score:   ptr(1.5),
		Source: map[string]any{
			"symbol":        "CDK2",
			"_index":        "genes",
			"_type":         "gene",
			"_seq_no":       4,
			"_primary_term": 1,
			"_shards":       map[string]any{},
		},
	}
	doc := normalizeHit(h, true)
	for _, k := range []string{"_index", "_type", "_seq_no", "_primary_term", "_shards"} {
		if _, ok := doc[k]; ok {
			t.Errorf("%s not stripped", k)
		}
	}
	if v, ok := doc.Version(); !ok || v != 2 {
		t.Errorf("version = %v, %v", v, ok)
	}
	if doc["_score"] != 1.5 {
		t.Errorf("_score = %v", doc["_score"])
	}
}

func TestNormalizeHit_FreshDocument(t *testing.T) {
	src := map[string]any{"symbol": "CDK2"}
	doc := normalizeHit(&db.Hit{ID: "1", Source: src}, false)
	doc["symbol"] = "changed"
	if src["symbol"] != "CDK2" {
		t.Error("normalizing must not alias the raw source")
	}
}

func TestNormalizeHit_NoVersion(t *testing.T) {
	doc := normalizeHit(&db.Hit{ID: "1", Source: map[string]any{"_version": 9}}, false)
	if _, ok := doc.Version(); ok {
		t.Error("_version must come from the hit, not the payload")
	}
}
