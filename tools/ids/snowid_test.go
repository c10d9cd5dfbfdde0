package ids

import "testing"

func TestGenerateUniqueAndIncreasing(t *testing.T) {
	SetNodeID(7)
	seen := make(map[int64]struct{}, 1000)
	prev := int64(0)
	for i := 0; i < 1000; i++ {
		id := Generate()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d at iteration %d", id, i)
		}
		seen[id] = struct{}{}
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestGenerateStringNotEmpty(t *testing.T) {
	if GenerateString() == "" {
		t.Fatal("empty id")
	}
}
