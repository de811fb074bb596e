package domain

import (
	"strings"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelPush     Channel = "push"
	ChannelWhatsApp Channel = "whatsapp"
)

// Recipient is a read-only projection of a user record owned by the user store.
type Recipient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	PushToken *string   `json:"-"`
	Phone     *string   `json:"-"`
	Active    bool      `json:"active"`
	DistanceM float64   `json:"distanceM"`
}

// Address returns the channel identifier for ch, or "" when the recipient lacks it.
func (r Recipient) Address(ch Channel) string {
	var v *string
	switch ch {
	case ChannelPush:
		v = r.PushToken
	case ChannelWhatsApp:
		v = r.Phone
	}
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func (r Recipient) Channels() []Channel {
	out := make([]Channel, 0, 2)
	if r.Address(ChannelPush) != "" {
		out = append(out, ChannelPush)
	}
	if r.Address(ChannelWhatsApp) != "" {
		out = append(out, ChannelWhatsApp)
	}
	return out
}

func (r Recipient) Reachable() bool {
	return r.Active && len(r.Channels()) > 0
}
