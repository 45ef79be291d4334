// Package imageprompt derives text-to-image prompts from generated village
// descriptions. The diffusion model itself runs elsewhere; this package only
// shapes the request it would receive.
package imageprompt

import (
	"strings"
)

const (
	// Suffix is appended to every derived prompt.
	Suffix = " Create a beautiful, top down view of a of a willage. Trending on ArtStation, highly detailed, sharp focus,cartoon style"

	// DefaultNegativePrompt lists artifacts the image model should avoid.
	DefaultNegativePrompt = "blurry, low quality, distorted, deformed, disfigured, bad anatomy, ugly, duplicate, error"

	// TokenBudget is the approximate token limit of the image model's text
	// encoder, minus a small margin.
	TokenBudget = 70

	// fallbackWords bounds the first sentence when no whole sentence fits.
	fallbackWords = 50
)

// Request is what a diffusion service is asked to render.
type Request struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Steps          int     `json:"num_steps"`
	GuidanceScale  float64 `json:"guidance_scale"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Tokens         int     `json:"tokens"`
}

// NewRequest builds a Request for response with the default render settings.
func NewRequest(response string) Request {
	p := FromResponse(response)
	return Request{
		Prompt:         p,
		NegativePrompt: DefaultNegativePrompt,
		Steps:          30,
		GuidanceScale:  7.5,
		Width:          512,
		Height:         768,
		Tokens:         CountTokens(p),
	}
}

var punctuationPadder = strings.NewReplacer(".", " . ", ",", " , ", "!", " ! ", "?", " ? ")

// CountTokens roughly estimates the token count of text: words and the
// punctuation marks . , ! ? each count as one.
func CountTokens(text string) int {
	return len(strings.Fields(punctuationPadder.Replace(text)))
}

// FromResponse keeps as many leading sentences of response as fit in
// TokenBudget together with Suffix, then appends Suffix.
func FromResponse(response string) string {
	suffixTokens := CountTokens(Suffix)
	sentences := strings.Split(response, ".")

	var current string
	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) == "" {
			continue
		}
		candidate := sentence + "."
		if current != "" {
			candidate = current + sentence + "."
		}
		if CountTokens(candidate)+suffixTokens > TokenBudget {
			break
		}
		current = candidate
	}

	if current == "" {
		words := strings.Fields(sentences[0] + ".")
		if len(words) > fallbackWords {
			words = words[:fallbackWords]
		}
		current = strings.Join(words, " ")
	}

	return strings.TrimSpace(current) + Suffix
}
