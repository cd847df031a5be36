// Package assignment produces the random giver-to-recipient pairing for a
// group. The result is a derangement: every participant gives exactly one
// gift, receives exactly one gift, and nobody draws themselves.
package assignment

import (
	"errors"
	"math/rand"
	"time"
)

var (
	// ErrInsufficientParticipants is returned when fewer than two
	// participants are available to pair up.
	ErrInsufficientParticipants = errors.New("at least two participants are required to generate assignments")
	// ErrGenerationFailed is returned when no valid pairing was found
	// within the retry budget.
	ErrGenerationFailed = errors.New("could not generate a valid assignment")
)

// maxAttempts bounds the number of full reshuffles before giving up.
const maxAttempts = 5

// Generate maps each participant id to the id of the participant they give
// to. Input ids must be distinct.
func Generate(ids []string) (map[string]string, error) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return GenerateWith(r, ids)
}

// GenerateWith is Generate with an explicit random source, so callers and
// tests can get reproducible pairings.
func GenerateWith(r *rand.Rand, ids []string) (map[string]string, error) {
	if len(ids) < 2 {
		return nil, ErrInsufficientParticipants
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if pairing, ok := tryGenerate(r, ids); ok {
			return pairing, nil
		}
	}
	return nil, ErrGenerationFailed
}

// tryGenerate runs one shuffle-and-fixup pass. The adjacent swap removes
// fixed points cheaply at the cost of a slightly non-uniform distribution;
// the final verification catches the rare case where a swap reintroduces
// one, in which case the caller reshuffles from scratch.
func tryGenerate(r *rand.Rand, ids []string) (map[string]string, bool) {
	shuffled := make([]string, len(ids))
	copy(shuffled, ids)

	// Fisher-Yates
	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	// Swap any self-assignment with its neighbour.
	for i := range shuffled {
		if shuffled[i] == ids[i] {
			next := (i + 1) % len(shuffled)
			shuffled[i], shuffled[next] = shuffled[next], shuffled[i]
		}
	}

	for i := range ids {
		if shuffled[i] == ids[i] {
			return nil, false
		}
	}

	pairing := make(map[string]string, len(ids))
	for i := range ids {
		pairing[ids[i]] = shuffled[i]
	}
	return pairing, true
}
