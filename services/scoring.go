package services

import (
	"hash/fnv"
	"strconv"
)

// Scoring constants. A correct answer is always worth at least the base;
// the speed bonus scales linearly with the remaining time fraction.
const (
	basePoints    = 100
	maxSpeedBonus = 50
)

// CalculatePoints is the single authoritative scoring function: 0 for an
// incorrect answer, otherwise 100 plus floor(speedRatio*50) where
// speedRatio = (limit - taken) / limit clamped to [0, 1]. The result is
// always in {0} or [100, 150].
func CalculatePoints(isCorrect bool, timeTaken, timeLimit float64) int {
	if !isCorrect {
		return 0
	}
	if timeLimit <= 0 {
		return basePoints
	}

	speedRatio := (timeLimit - timeTaken) / timeLimit
	if speedRatio < 0 {
		speedRatio = 0
	}
	if speedRatio > 1 {
		speedRatio = 1
	}

	return basePoints + int(speedRatio*maxSpeedBonus)
}

// OptionOrder returns the permutation of the four option slots shown to a
// specific player for a specific question. The permutation is derived from
// a splitmix64 generator seeded with a stable hash of the player's session
// identity, so the server and the client independently compute the same
// order and answer patterns cannot be read off a neighbor's screen.
//
// order[displayPosition] = canonicalIndex.
func OptionOrder(code, playerName string, questionIndex int) [4]int {
	rng := splitmix64(identitySeed(code, playerName, questionIndex))

	order := [4]int{0, 1, 2, 3}
	for i := 3; i > 0; i-- {
		j := int(rng.next() % uint64(i+1))
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// ResolveAnswer maps the option index a player tapped (a position in their
// shuffled display order) back to the canonical option index the question
// bank uses. Out-of-range input resolves to -1, which never matches.
func ResolveAnswer(code, playerName string, questionIndex, displayedIndex int) int {
	if displayedIndex < 0 || displayedIndex > 3 {
		return -1
	}
	order := OptionOrder(code, playerName, questionIndex)
	return order[displayedIndex]
}

func identitySeed(code, playerName string, questionIndex int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(code))
	h.Write([]byte{'|'})
	h.Write([]byte(playerName))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.Itoa(questionIndex)))
	return h.Sum64()
}

// splitmix64 is the reference splitmix64 sequence; small, seedable and
// good enough for permutations that only need to be stable and unbiased.
type splitmix64 uint64

func (s *splitmix64) next() uint64 {
	*s += 0x9e3779b97f4a7c15
	z := uint64(*s)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
