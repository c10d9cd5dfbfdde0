package decode

import "testing"

type samplePayload struct {
	SenderID string `json:"senderId"`
	Count    int    `json:"count"`
}

func TestPayloadJSONTagsAndWeakTyping(t *testing.T) {
	p, err := Payload[samplePayload](map[string]any{
		"senderId": "u1",
		"count":    float64(3), // JSON numbers arrive as float64
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.SenderID != "u1" || p.Count != 3 {
		t.Fatalf("decoded = %+v", p)
	}
}

func TestPayloadNilMap(t *testing.T) {
	if _, err := Payload[samplePayload](nil); err == nil {
		t.Fatal("nil payload accepted")
	}
}

func TestReadString(t *testing.T) {
	m := map[string]any{"a": "x", "b": 1}
	if v, err := ReadString(m, "a"); err != nil || v != "x" {
		t.Fatalf("ReadString(a) = %q, %v", v, err)
	}
	if _, err := ReadString(m, "b"); err == nil {
		t.Fatal("non-string field accepted")
	}
	if _, err := ReadString(m, "missing"); err == nil {
		t.Fatal("missing field accepted")
	}
}
