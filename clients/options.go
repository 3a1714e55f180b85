package clients

type RetryPolicy struct {
	MaxRetries      int
	BackoffInterval int
}

// ClientOptions holds the cross-cutting concerns shared by every
// transport-specific client: authentication, retries, and circuit
// breaking.
type ClientOptions struct {
	// Auth holds the authentication provider applied to each request.
	Auth AuthProvider
	// RetryPolicy holds the retry configuration for the client.
	RetryPolicy *RetryInfo
	// CircuitBreaker holds the circuit breaker configuration for the client
	CircuitBreaker *CircuitBreaker
}

// OptionsBuilder builds a ClientOptions value fluently. Transport-specific
// builders (e.g. rest.ClientOptsBuilder) embed it to add their own options
// on top.
type OptionsBuilder struct {
	options *ClientOptions
}

// NewOptionsBuilder returns a builder seeded with an empty ClientOptions.
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{options: &ClientOptions{}}
}

// Auth sets the authentication provider.
func (b *OptionsBuilder) Auth(auth AuthProvider) *OptionsBuilder {
	b.options.Auth = auth
	return b
}

// Retry sets the retry policy.
func (b *OptionsBuilder) Retry(retry *RetryInfo) *OptionsBuilder {
	b.options.RetryPolicy = retry
	return b
}

// Breaker sets the circuit breaker.
func (b *OptionsBuilder) Breaker(cb *CircuitBreaker) *OptionsBuilder {
	b.options.CircuitBreaker = cb
	return b
}

// Build returns the assembled ClientOptions.
func (b *OptionsBuilder) Build() *ClientOptions {
	return b.options
}
