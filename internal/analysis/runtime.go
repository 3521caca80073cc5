package analysis

import "context"

// Params tunes a single model invocation.
type Params struct {
	MaxTokens   int
	Temperature float64
}

// Fixed invocation parameters per pipeline stage. Analysis stages run
// cool for consistency; the similar-customer stage runs warmer because
// it benefits from broader recall.
var (
	LeadParams     = Params{MaxTokens: 4096, Temperature: 0.3}
	DealParams     = Params{MaxTokens: 8192, Temperature: 0.3}
	ScoringParams  = Params{MaxTokens: 1024, Temperature: 0.2}
	SimilarParams  = Params{MaxTokens: 4096, Temperature: 0.5}
	EmbedInputCap  = 8000
	EmbedDimension = 1536
)

// Runtime abstracts the hosted model endpoints used by the pipeline.
type Runtime interface {
	Invoke(ctx context.Context, system, prompt string, params Params) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
