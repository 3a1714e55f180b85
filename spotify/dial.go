package spotify

import (
	"github.com/spotifreak/spotifreak/clients"
	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/errs"
	"github.com/spotifreak/spotifreak/rest"
)

// defaultRetry is used when GlobalConfig.Runtime.DefaultRetry is unset.
var defaultRetry = &clients.RetryInfo{
	MaxRetries:  3,
	Wait:        500,
	Exponential: true,
	Multiplier:  2,
	MaxWait:     8000,
	Jitter:      true,
}

// Dial builds a Client authorized via auth against the Spotify Web API,
// wiring the teacher's rest.Client with the configured retry policy and a
// circuit breaker tuned for a single slow collaborator (spec.md treats the
// Spotify API as the one external dependency on the hot path).
func Dial(auth clients.AuthProvider, global *config.GlobalConfig) (*Client, error) {
	builder := rest.CliOptsBuilder()
	if err := builder.BaseUrl(defaultBaseURL); err != nil {
		return nil, errs.Newf(errs.InternalError, "configuring spotify base url: %v", err)
	}

	retry := defaultRetry
	if global.Runtime.DefaultRetry != nil {
		retry = &clients.RetryInfo{
			MaxRetries:  global.Runtime.DefaultRetry.MaxRetries,
			Wait:        global.Runtime.DefaultRetry.WaitMs,
			Exponential: true,
			Multiplier:  2,
			MaxWait:     8000,
			Jitter:      true,
		}
	}

	builder.OptionsBuilder.Auth(auth).Retry(retry).Breaker(clients.NewCircuitBreaker(&clients.BreakerInfo{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		MaxHalfOpen:      1,
		Timeout:          30,
	}))

	rc := rest.NewClientWithOptions(builder.Build())
	return NewClient(rc), nil
}
