package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestRecipient_Channels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		r    Recipient
		want []Channel
	}{
		{"push_only", Recipient{Active: true, PushToken: strPtr("tok")}, []Channel{ChannelPush}},
		{"phone_only", Recipient{Active: true, Phone: strPtr("+911234567890")}, []Channel{ChannelWhatsApp}},
		{"both", Recipient{Active: true, PushToken: strPtr("tok"), Phone: strPtr("+91")}, []Channel{ChannelPush, ChannelWhatsApp}},
		{"blank_values", Recipient{Active: true, PushToken: strPtr("  "), Phone: strPtr("")}, []Channel{}},
		{"none", Recipient{Active: true}, []Channel{}},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, c.want, c.r.Channels())
			assert.Equal(t, len(c.want) > 0, c.r.Reachable())
		})
	}

	inactive := Recipient{Active: false, PushToken: strPtr("tok")}
	assert.False(t, inactive.Reachable())
}

func TestClassification_Validate(t *testing.T) {
	t.Parallel()

	police := ServicePolice
	bogus := PrimaryService("Coast Guard")
	high := ConfidenceHigh
	unsure := Confidence("Maybe")

	cases := []struct {
		name    string
		c       Classification
		wantErr bool
	}{
		{"emergency_ok", Classification{IsEmergency: true, PrimaryService: &police, Confidence: &high}, false},
		{"emergency_missing_service", Classification{IsEmergency: true, Confidence: &high}, true},
		{"emergency_unknown_service", Classification{IsEmergency: true, PrimaryService: &bogus, Confidence: &high}, true},
		{"emergency_bad_confidence", Classification{IsEmergency: true, PrimaryService: &police, Confidence: &unsure}, true},
		{"not_emergency_ok", Classification{IsEmergency: false}, false},
		{"not_emergency_with_service", Classification{IsEmergency: false, PrimaryService: &police}, true},
		{"not_emergency_with_confidence", Classification{IsEmergency: false, Confidence: &high}, true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			err := c.c.Validate()
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReviewStatus_IsDecision(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusApproved.IsDecision())
	assert.True(t, StatusRejected.IsDecision())
	assert.False(t, StatusPending.IsDecision())
	assert.False(t, ReviewStatus("maybe").IsDecision())
}
