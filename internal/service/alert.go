package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/config"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/geo"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/notify"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/render"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/workers"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

type deliveryState int

const (
	deliveryPending deliveryState = iota
	deliverySent
	deliveryFailed
	deliverySkipped // already claimed in the ledger by an earlier attempt
)

type delivery struct {
	recipient domain.Recipient
	channel   domain.Channel
	to        string
	payload   notify.Payload
	state     deliveryState
	reason    string
}

type AlertOrchestrator struct {
	logger     *slog.Logger
	recipients RecipientRepository
	alerts     AlertRepository
	ledger     DeliveryLedger
	renderer   *render.Renderer
	pool       *workers.FanOut
	adapters   map[domain.Channel]notify.Adapter
	cfg        config.AlertConfig
	now        func() time.Time
}

func NewAlertOrchestrator(
	logger *slog.Logger,
	cfg config.AlertConfig,
	recipients RecipientRepository,
	alerts AlertRepository,
	ledger DeliveryLedger,
	renderer *render.Renderer,
	pool *workers.FanOut,
	adapters ...notify.Adapter,
) *AlertOrchestrator {
	byChannel := make(map[domain.Channel]notify.Adapter, len(adapters))
	for _, a := range adapters {
		if a == nil {
			continue
		}
		byChannel[a.Channel()] = a
	}
	return &AlertOrchestrator{
		logger:     logger,
		recipients: recipients,
		alerts:     alerts,
		ledger:     ledger,
		renderer:   renderer,
		pool:       pool,
		adapters:   byChannel,
		cfg:        cfg,
		now:        time.Now,
	}
}

// DispatchAlert notifies every eligible user around the incident on each channel they can be
// reached on. The alert record is persisted before the first send and marked sent afterwards,
// whatever the individual delivery outcomes were. Only e.ErrNoRecipients and store failures
// (e.ErrUpstreamUnavailable) are returned as errors.
func (o *AlertOrchestrator) DispatchAlert(ctx context.Context, inc *domain.Incident) (domain.DispatchSummary, error) {
	const op = "service.AlertOrchestrator.DispatchAlert"
	l := o.logger.With(slog.String("op", op), slog.String("incident_id", inc.ID.String()))

	lat, lng := inc.Location.Latitude, inc.Location.Longitude

	found, err := o.recipients.FindEligible(ctx, lat, lng, o.cfg.RadiusM, inc.ReporterID)
	if err != nil {
		return domain.DispatchSummary{}, fmt.Errorf("%s: find recipients: %w", op, upstream(err))
	}
	recipients := eligible(found, inc.ReporterID)
	if len(recipients) == 0 {
		l.Info("no eligible recipients", slog.Float64("radius_m", o.cfg.RadiusM))
		return domain.DispatchSummary{}, fmt.Errorf("%s: %w", op, e.ErrNoRecipients)
	}

	message, err := o.renderer.Alert(render.AlertData{
		Category: string(inc.Category),
		Message:  inc.Message,
		Address:  inc.Location.Address,
	})
	if err != nil {
		l.Warn("render alert failed", slog.Any("error", err))
		message = fmt.Sprintf("%s emergency reported near %s.", inc.Category, geo.FormatCoordinates(lat, lng))
	}

	ids := make([]uuid.UUID, 0, len(recipients))
	for _, r := range recipients {
		ids = append(ids, r.ID)
	}
	alert := &domain.Alert{
		ID:           uuid.New(),
		IncidentID:   inc.ID,
		Latitude:     lat,
		Longitude:    lng,
		RecipientIDs: ids,
		Message:      message,
		Status:       domain.AlertSending,
		DispatchedAt: o.now().UTC(),
	}
	if err := o.alerts.Create(ctx, alert); err != nil {
		return domain.DispatchSummary{}, fmt.Errorf("%s: create alert: %w", op, upstream(err))
	}

	return o.deliver(ctx, l, inc, alert, recipients), nil
}

// Resume finishes an alert left in the sending state by an interrupted dispatch. The recipient
// snapshot is reloaded and every delivery is planned again; the ledger skips the ones that
// already went out.
func (o *AlertOrchestrator) Resume(ctx context.Context, inc *domain.Incident, alert *domain.Alert) (domain.DispatchSummary, error) {
	const op = "service.AlertOrchestrator.Resume"
	l := o.logger.With(
		slog.String("op", op),
		slog.String("incident_id", inc.ID.String()),
		slog.String("alert_id", alert.ID.String()),
	)

	if alert.Status != domain.AlertSending || alert.IncidentID != inc.ID {
		return domain.DispatchSummary{}, fmt.Errorf("%s: %w", op, e.ErrConflict)
	}

	found, err := o.recipients.FindByIDs(ctx, alert.RecipientIDs)
	if err != nil {
		return domain.DispatchSummary{}, fmt.Errorf("%s: load recipients: %w", op, upstream(err))
	}
	recipients := eligible(found, inc.ReporterID)
	if dropped := len(alert.RecipientIDs) - len(recipients); dropped > 0 {
		l.Info("recipients no longer reachable", slog.Int("dropped", dropped))
	}

	return o.deliver(ctx, l, inc, alert, recipients), nil
}

// deliver runs every (recipient, channel) send of the alert and completes the record.
func (o *AlertOrchestrator) deliver(ctx context.Context, l *slog.Logger, inc *domain.Incident, alert *domain.Alert, recipients []domain.Recipient) domain.DispatchSummary {
	deliveries := o.plan(inc, alert, recipients)
	l.Info("dispatching alert",
		slog.String("alert_id", alert.ID.String()),
		slog.Int("recipients", len(recipients)),
		slog.Int("deliveries", len(deliveries)),
	)

	o.pool.Run(ctx, len(deliveries), func(lo, hi int) []workers.Job {
		return o.jobs(inc.ID, deliveries[lo:hi])
	})

	counts, recipientCount := aggregate(deliveries)

	if err := o.alerts.Complete(ctx, alert.ID, domain.AlertSent, counts, recipientCount); err != nil {
		l.Error("complete alert failed", slog.String("alert_id", alert.ID.String()), slog.Any("error", err))
	}

	l.Info("alert dispatched",
		slog.String("alert_id", alert.ID.String()),
		slog.Int("recipient_count", recipientCount),
		slog.Int("push_sent", counts.PushSent),
		slog.Int("push_failed", counts.PushFailed),
		slog.Int("whatsapp_sent", counts.WhatsAppSent),
		slog.Int("whatsapp_failed", counts.WhatsAppFailed),
	)

	return domain.DispatchSummary{
		RecipientCount: recipientCount,
		AlertID:        alert.ID,
		DeliveryCounts: counts,
	}
}

// eligible drops the reporter and anyone without an active reachable channel.
func eligible(in []domain.Recipient, reporter uuid.UUID) []domain.Recipient {
	out := make([]domain.Recipient, 0, len(in))
	seen := make(map[uuid.UUID]struct{}, len(in))
	for _, r := range in {
		if r.ID == reporter || !r.Reachable() {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (o *AlertOrchestrator) plan(inc *domain.Incident, alert *domain.Alert, recipients []domain.Recipient) []*delivery {
	out := make([]*delivery, 0, len(recipients)*2)
	for _, r := range recipients {
		distanceKm := geo.HaversineDistanceKm(alert.Latitude, alert.Longitude, r.Latitude, r.Longitude)
		eta := geo.ETAMinutes(distanceKm, o.cfg.AvgSpeedKmh)

		title, body, err := o.renderer.Delivery(render.DeliveryData{
			Category:   string(inc.Category),
			Alert:      alert.Message,
			Distance:   geo.FormatDistance(distanceKm),
			ETAMinutes: eta,
		})
		if err != nil {
			title, body = "SOS alert nearby", alert.Message
		}

		p := notify.Payload{
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":       "sos_alert",
				"sosId":      inc.ID.String(),
				"alertId":    alert.ID.String(),
				"category":   string(inc.Category),
				"priority":   string(inc.Priority),
				"latitude":   strconv.FormatFloat(alert.Latitude, 'f', 6, 64),
				"longitude":  strconv.FormatFloat(alert.Longitude, 'f', 6, 64),
				"distanceKm": strconv.FormatFloat(distanceKm, 'f', 2, 64),
				"etaMinutes": strconv.Itoa(eta),
			},
		}

		for _, ch := range r.Channels() {
			out = append(out, &delivery{recipient: r, channel: ch, to: r.Address(ch), payload: p})
		}
	}
	return out
}

// jobs groups a window by channel: batch-capable adapters get one call for the whole group,
// the rest get one call per delivery.
func (o *AlertOrchestrator) jobs(incidentID uuid.UUID, window []*delivery) []workers.Job {
	byChannel := make(map[domain.Channel][]*delivery)
	order := make([]domain.Channel, 0, 2)
	for _, d := range window {
		if _, ok := byChannel[d.channel]; !ok {
			order = append(order, d.channel)
		}
		byChannel[d.channel] = append(byChannel[d.channel], d)
	}

	var out []workers.Job
	for _, ch := range order {
		group := byChannel[ch]
		adapter, ok := o.adapters[ch]
		if !ok {
			for _, d := range group {
				d.state, d.reason = deliveryFailed, "channel not configured"
			}
			continue
		}
		if batcher, ok := adapter.(notify.BatchSender); ok {
			out = append(out, func(ctx context.Context) { o.sendBatch(ctx, incidentID, batcher, group) })
			continue
		}
		for _, d := range group {
			d := d
			out = append(out, func(ctx context.Context) { o.sendOne(ctx, incidentID, adapter, d) })
		}
	}
	return out
}

func (o *AlertOrchestrator) sendOne(ctx context.Context, incidentID uuid.UUID, a notify.Adapter, d *delivery) {
	if !o.claim(ctx, incidentID, d) {
		return
	}
	res, err := a.Send(ctx, d.to, d.payload)
	o.settle(ctx, incidentID, d, res, err)
}

func (o *AlertOrchestrator) sendBatch(ctx context.Context, incidentID uuid.UUID, b notify.BatchSender, group []*delivery) {
	claimed := make([]*delivery, 0, len(group))
	for _, d := range group {
		if o.claim(ctx, incidentID, d) {
			claimed = append(claimed, d)
		}
	}
	if len(claimed) == 0 {
		return
	}

	envs := make([]notify.Envelope, len(claimed))
	for i, d := range claimed {
		envs[i] = notify.Envelope{To: d.to, Payload: d.payload}
	}

	results, err := b.SendBatch(ctx, envs)
	if err == nil && len(results) != len(claimed) {
		err = fmt.Errorf("batch returned %d results for %d envelopes", len(results), len(claimed))
	}
	for i, d := range claimed {
		var res notify.Result
		if err == nil {
			res = results[i]
		}
		o.settle(ctx, incidentID, d, res, err)
	}
}

func (o *AlertOrchestrator) claim(ctx context.Context, incidentID uuid.UUID, d *delivery) bool {
	if o.ledger == nil {
		return true
	}
	ok, err := o.ledger.Claim(ctx, incidentID, d.recipient.ID, d.channel)
	if err != nil {
		// ledger outage must not suppress an alert
		o.logger.Warn("delivery ledger claim failed",
			slog.String("recipient_id", d.recipient.ID.String()),
			slog.String("channel", string(d.channel)),
			slog.Any("error", err),
		)
		return true
	}
	if !ok {
		d.state = deliverySkipped
	}
	return ok
}

func (o *AlertOrchestrator) settle(ctx context.Context, incidentID uuid.UUID, d *delivery, res notify.Result, err error) {
	switch {
	case err != nil:
		d.state, d.reason = deliveryFailed, err.Error()
	case res.Success:
		d.state = deliverySent
		return
	default:
		d.state, d.reason = deliveryFailed, res.Error
	}

	o.logger.Warn("delivery failed",
		slog.String("recipient_id", d.recipient.ID.String()),
		slog.String("channel", string(d.channel)),
		slog.String("reason", d.reason),
	)

	if o.ledger == nil {
		return
	}
	if err := o.ledger.Release(context.WithoutCancel(ctx), incidentID, d.recipient.ID, d.channel); err != nil {
		o.logger.Warn("delivery ledger release failed", slog.Any("error", err))
	}
}

// aggregate counts per-channel outcomes and the distinct recipients reached at least once.
// Skipped deliveries were sent by an earlier attempt: the recipient counts as reached but
// the send is not counted again.
func aggregate(deliveries []*delivery) (domain.DeliveryCounts, int) {
	var counts domain.DeliveryCounts
	reached := make(map[uuid.UUID]struct{})

	for _, d := range deliveries {
		switch d.state {
		case deliverySent:
			reached[d.recipient.ID] = struct{}{}
			if d.channel == domain.ChannelPush {
				counts.PushSent++
			} else {
				counts.WhatsAppSent++
			}
		case deliverySkipped:
			reached[d.recipient.ID] = struct{}{}
		default:
			if d.channel == domain.ChannelPush {
				counts.PushFailed++
			} else {
				counts.WhatsAppFailed++
			}
		}
	}
	return counts, len(reached)
}

func upstream(err error) error {
	if errors.Is(err, e.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s", e.ErrUpstreamUnavailable, err.Error())
}
