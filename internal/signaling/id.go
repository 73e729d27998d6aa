package signaling

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// maxIDAttempts bounds how often the hub regenerates an id that is already
// bound before it gives up on the connection.
const maxIDAttempts = 8

// IDGenerator produces candidate peer ids. The hub checks each candidate
// against the registry, so generators only need to be collision resistant.
type IDGenerator func() (string, error)

const (
	IDFormatUUID  = "uuid"
	IDFormatWords = "words"
)

// NewIDGenerator returns the generator for the named format.
func NewIDGenerator(format string) (IDGenerator, error) {
	switch format {
	case "", IDFormatUUID:
		return UUIDGenerator, nil
	case IDFormatWords:
		return WordsGenerator, nil
	default:
		return nil, fmt.Errorf("unknown id format %q", format)
	}
}

// UUIDGenerator returns a random (version 4) uuid.
func UUIDGenerator() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// WordsGenerator returns a memorable id such as "kitten-waffle-stardust-happy",
// taking one word from each of four distinct word lists.
func WordsGenerator() (string, error) {
	picked := make(map[int]bool, 4)
	words := make([]string, 0, 4)

	for len(words) < 4 {
		li, err := randomIndex(len(wordLists))
		if err != nil {
			return "", err
		}
		if picked[li] {
			continue
		}
		picked[li] = true

		wi, err := randomIndex(len(wordLists[li]))
		if err != nil {
			return "", err
		}
		words = append(words, wordLists[li][wi])
	}

	return strings.Join(words, "-"), nil
}

// randomIndex returns a cryptographically secure index in [0, n).
func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random index: %w", err)
	}
	return int(v.Int64()), nil
}
