package chat

// GenerateOptions control a single chat-completion call. Zero-value
// fields are filled with service defaults; pointer fields are omitted
// from the request when nil.
type GenerateOptions struct {
	Temperature      float64
	TopP             float64
	MaxTokens        int
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Stop             []string
}

func Float64(v float64) *float64 { return &v }
