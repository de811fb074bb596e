// Package whatsapp delivers alerts over WhatsApp (or plain SMS) through the Twilio Messages API.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/notify"
)

// MessageCreator is satisfied by the Api service of a twilio.RestClient.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type Twilio struct {
	api     MessageCreator
	from    string
	smsMode bool
	logger  *slog.Logger
}

func New(api MessageCreator, from string, smsMode bool, logger *slog.Logger) *Twilio {
	return &Twilio{api: api, from: from, smsMode: smsMode, logger: logger}
}

func NewFromCredentials(accountSID, authToken, from string, smsMode bool, logger *slog.Logger) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return New(client.Api, from, smsMode, logger)
}

func (t *Twilio) Channel() domain.Channel { return domain.ChannelWhatsApp }

// Send never blocks past ctx: the Twilio client has no context support, so the call
// runs in its own goroutine and a deadline is reported as a failed delivery.
func (t *Twilio) Send(ctx context.Context, to string, p notify.Payload) (notify.Result, error) {
	env := notify.Envelope{To: to, Payload: p}
	if err := env.Validate(); err != nil {
		return notify.Result{}, err
	}

	phone := normalizePhone(to)
	if !validE164(phone) {
		return notify.Failed(fmt.Sprintf("invalid phone number %q", to)), nil
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(t.address(phone))
	params.SetFrom(t.address(normalizePhone(t.from)))
	params.SetBody(text(p))

	type reply struct {
		msg *openapi.ApiV2010Message
		err error
	}
	done := make(chan reply, 1)
	go func() {
		msg, err := t.api.CreateMessage(params)
		done <- reply{msg: msg, err: err}
	}()

	select {
	case <-ctx.Done():
		t.logger.Warn("twilio send abandoned", slog.String("reason", ctx.Err().Error()))
		return notify.Failed("timeout: " + ctx.Err().Error()), nil
	case r := <-done:
		if r.err != nil {
			reason := describe(r.err)
			t.logger.Warn("twilio send failed", slog.String("reason", reason))
			return notify.Failed(reason), nil
		}
		res := notify.Result{Success: true}
		if r.msg != nil && r.msg.Sid != nil {
			res.ProviderMessageID = *r.msg.Sid
		}
		return res, nil
	}
}

func (t *Twilio) address(phone string) string {
	if t.smsMode {
		return phone
	}
	return "whatsapp:" + phone
}

func text(p notify.Payload) string {
	if p.Title == "" {
		return p.Body
	}
	return "*" + p.Title + "*\n" + p.Body
}

func normalizePhone(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "whatsapp:")
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return r.Replace(s)
}

func validE164(s string) bool {
	if len(s) < 8 || len(s) > 16 || s[0] != '+' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func describe(err error) string {
	var restErr *twclient.TwilioRestError
	if errors.As(err, &restErr) {
		return fmt.Sprintf("twilio error %d: %s", restErr.Code, restErr.Message)
	}
	return err.Error()
}
