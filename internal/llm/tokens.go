package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/brightpath-advisory/concierge/internal/config"
)

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// EstimateTokens approximates the token count of text. Used for the info
// agent's output budget heuristic and as a usage fallback when the provider
// omits counts. Falls back to a chars/4 estimate when the encoder cannot
// initialize (e.g. no BPE data available offline).
func EstimateTokens(text string) int {
	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoder = enc
		}
	})
	if encoder != nil {
		return len(encoder.Encode(text, nil, nil))
	}
	return (len(text) + config.TokenEstimateRatio - 1) / config.TokenEstimateRatio
}
