package domain

import (
	"time"
)

// Promotion is a scheduled storefront banner. EndAt doubles as the countdown target.
type Promotion struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Message  string     `json:"message,omitempty"`
	Image    string     `json:"image,omitempty"`
	Link     string     `json:"link,omitempty"`
	IsActive bool       `json:"isActive"`
	StartAt  *time.Time `json:"startAt,omitempty"`
	EndAt    *time.Time `json:"endAt,omitempty"`
}

// IsCurrentlyActive returns true if the promotion is active and within its schedule.
func (p *Promotion) IsCurrentlyActive(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartAt != nil && now.Before(*p.StartAt) {
		return false
	}
	if p.EndAt != nil && now.After(*p.EndAt) {
		return false
	}
	return true
}

// Remaining is the countdown until EndAt; ok is false for open-ended promotions.
func (p *Promotion) Remaining(now time.Time) (time.Duration, bool) {
	if p.EndAt == nil {
		return 0, false
	}
	d := p.EndAt.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}
