package smoke

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// Constants for random payload generation.
const (
	randomFloatDivisor = 1000000
	maxTags            = 4
	noteEvery          = 3
)

var kinds = []string{"ping", "order", "reading", "profile", "unicode ✓", "quote \"q\""}

// getRandomInt returns a random int64 in [0, n) using crypto/rand.
func getRandomInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 with a fixed
// number of decimals, so it survives a JSON round trip exactly.
func getRandomFloat() float64 {
	return float64(getRandomInt(randomFloatDivisor)) / float64(randomFloatDivisor)
}

// generatePayloads builds n distinct payloads.
func generatePayloads(n int) []Payload {
	payloads := make([]Payload, 0, n)
	for i := range n {
		tags := make([]string, getRandomInt(maxTags+1))
		for j := range tags {
			tags[j] = uuid.NewString()[:8]
		}

		p := Payload{
			ID:    uuid.NewString(),
			Kind:  kinds[getRandomInt(int64(len(kinds)))],
			Value: getRandomInt(1<<53) - (1 << 52),
			Ratio: getRandomFloat(),
			Tags:  tags,
			Nested: map[string]any{
				"index": i,
				"even":  i%2 == 0,
				"empty": map[string]any{},
			},
		}
		if i%noteEvery == 0 {
			note := "note for " + p.ID
			p.Note = &note
		}
		payloads = append(payloads, p)
	}
	return payloads
}
