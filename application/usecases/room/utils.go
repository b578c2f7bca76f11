package room

import (
	"math/rand/v2"
	"strings"
	"unicode"
)

// RandomDescription picks one of candidates using rng. It returns "" when there are no candidates.
func RandomDescription(candidates []string, rng *rand.Rand) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rng.IntN(len(candidates))]
}

const maxChannelNameLength = 100

// channelName turns an activity into a platform-safe channel name.
func channelName(activity string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(activity) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
		if b.Len() >= maxChannelNameLength {
			break
		}
	}

	name := strings.Trim(b.String(), "-")
	if name == "" {
		return "room"
	}
	return name
}
