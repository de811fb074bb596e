// Package notify defines the channel adapter contract used by the alert fan-out.
//
// An adapter reports provider-side failures (rate limits, invalid tokens or numbers,
// timeouts) as a Result with Success=false. The error return is reserved for
// malformed input, which is a programming error on the caller's side.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
)

var ErrMalformedPayload = errors.New("malformed payload")

type Payload struct {
	Title string
	Body  string
	Data  map[string]string
}

type Envelope struct {
	To      string
	Payload Payload
}

type Result struct {
	Success           bool   `json:"success"`
	ProviderMessageID string `json:"providerMessageId,omitempty"`
	Error             string `json:"error,omitempty"`
}

type Adapter interface {
	Channel() domain.Channel
	Send(ctx context.Context, to string, p Payload) (Result, error)
}

// BatchSender is implemented by adapters whose provider accepts many recipients per call.
// Results are positional: results[i] belongs to envs[i].
type BatchSender interface {
	SendBatch(ctx context.Context, envs []Envelope) ([]Result, error)
}

func (e Envelope) Validate() error {
	if strings.TrimSpace(e.To) == "" {
		return fmt.Errorf("%w: empty recipient", ErrMalformedPayload)
	}
	if strings.TrimSpace(e.Payload.Body) == "" {
		return fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}
	return nil
}

func Failed(reason string) Result {
	return Result{Success: false, Error: reason}
}

func FailedErr(err error) Result {
	if err == nil {
		return Failed("unknown error")
	}
	return Failed(err.Error())
}

// FailAll fills a result slice of length n with the same failure.
func FailAll(n int, reason string) []Result {
	out := make([]Result, n)
	for i := range out {
		out[i] = Failed(reason)
	}
	return out
}
