package ai

// Embedding is the result of one successful embedding call: the vector plus
// the usage and cost accounting the provider reported for it.
type Embedding struct {
	// Vector is the fixed-dimension embedding of the input text.
	Vector []float32

	// Tokens is the number of input tokens the provider billed.
	Tokens int

	// Cost is the monetary cost of the call in USD.
	Cost float64

	// Model is the model identifier that produced the vector.
	Model string

	// APISource identifies the provider, e.g. "openai".
	APISource string
}

// Summary is the result of one summarization call.
type Summary struct {
	// Text is the model's free-text answer.
	Text string

	// Tokens is the total token usage (prompt + completion).
	Tokens int

	// Cost is the monetary cost of the call in USD.
	Cost float64
}
