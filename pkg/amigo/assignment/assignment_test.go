package assignment

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i)
	}
	return ids
}

func TestGenerateTooFewParticipants(t *testing.T) {
	for _, ids := range [][]string{nil, {}, {"only"}} {
		if _, err := Generate(ids); !errors.Is(err, ErrInsufficientParticipants) {
			t.Errorf("Generate(%v) error = %v, want ErrInsufficientParticipants", ids, err)
		}
	}
}

func TestGenerateTwoParticipantsAlwaysSwaps(t *testing.T) {
	// With two participants the only derangement is the swap, regardless
	// of how the shuffle falls.
	for seed := int64(0); seed < 100; seed++ {
		r := rand.New(rand.NewSource(seed))
		pairing, err := GenerateWith(r, []string{"a", "b"})
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		if pairing["a"] != "b" || pairing["b"] != "a" {
			t.Fatalf("seed %d: got %v, want {a:b, b:a}", seed, pairing)
		}
	}
}

func TestGenerateDerangementProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for run := 0; run < 10000; run++ {
		n := 2 + r.Intn(49)
		ids := makeIDs(n)

		pairing, err := GenerateWith(r, ids)
		if err != nil {
			t.Fatalf("run %d (n=%d): unexpected error: %v", run, n, err)
		}
		if len(pairing) != n {
			t.Fatalf("run %d (n=%d): pairing has %d entries", run, n, len(pairing))
		}

		seen := make(map[string]bool, n)
		for _, giver := range ids {
			recipient, ok := pairing[giver]
			if !ok {
				t.Fatalf("run %d: giver %s missing from pairing", run, giver)
			}
			if recipient == giver {
				t.Fatalf("run %d: %s assigned to themselves", run, giver)
			}
			if seen[recipient] {
				t.Fatalf("run %d: %s receives twice", run, recipient)
			}
			seen[recipient] = true
		}
		// seen now holds n distinct recipients drawn from the n input
		// ids, so the pairing is a bijection onto the input set.
	}
}

func TestGenerateWithIsDeterministic(t *testing.T) {
	ids := makeIDs(10)

	first, err := GenerateWith(rand.New(rand.NewSource(7)), ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := GenerateWith(rand.New(rand.NewSource(7)), ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for giver, recipient := range first {
		if second[giver] != recipient {
			t.Fatalf("same seed produced different pairings: %v vs %v", first, second)
		}
	}
}
