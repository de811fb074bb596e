package postgres

import (
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/service"
)

var (
	_ service.IncidentRepository  = (*IncidentRepo)(nil)
	_ service.RecipientRepository = (*RecipientRepo)(nil)
	_ service.AlertRepository     = (*AlertRepo)(nil)
	_ service.StatsRepository     = (*StatsRepo)(nil)
)

func (p *Postgres) Incidents() service.IncidentRepository   { return p.Incident }
func (p *Postgres) Recipients() service.RecipientRepository { return p.Recipient }
func (p *Postgres) Alerts() service.AlertRepository         { return p.Alert }
func (p *Postgres) Stats() service.StatsRepository          { return p.Stat }

type rowScanner interface {
	Scan(dest ...any) error
}
