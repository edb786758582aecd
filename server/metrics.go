package server

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"magbank/events"
)

var playsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "magbank_slot_plays_total",
	Help: "Settled slot plays, labeled by outcome.",
}, []string{"won"})

var magysWagered = promauto.NewCounter(prometheus.CounterOpts{
	Name: "magbank_magys_wagered_total",
	Help: "Total Magys spent on slot plays.",
})

var ticketsWonTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "magbank_tickets_won_total",
	Help: "Total tickets paid out by slot plays.",
})

var requestsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "magbank_account_requests_resolved_total",
	Help: "Resolved account requests, labeled by final state.",
}, []string{"state"})

var prizesRedeemed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "magbank_prizes_redeemed_total",
	Help: "Prize redemptions, labeled by prize category.",
}, []string{"category"})

// RegisterEventMetrics wires the metric counters to the event bus. Events
// fire only after a successful commit, so the counters track durable
// outcomes, not attempts.
func RegisterEventMetrics(bus *events.Bus) {
	bus.Subscribe(events.EventTypePlayCompleted, func(ctx context.Context, e events.Event) {
		play, ok := e.(events.PlayCompletedEvent)
		if !ok {
			return
		}
		playsTotal.WithLabelValues(strconv.FormatBool(play.Won)).Inc()
		magysWagered.Add(float64(play.Bet))
		ticketsWonTotal.Add(float64(play.TicketsWon))
	})

	bus.Subscribe(events.EventTypeRequestResolved, func(ctx context.Context, e events.Event) {
		resolved, ok := e.(events.RequestResolvedEvent)
		if !ok {
			return
		}
		requestsResolved.WithLabelValues(string(resolved.State)).Inc()
	})

	bus.Subscribe(events.EventTypePrizeRedeemed, func(ctx context.Context, e events.Event) {
		redeemed, ok := e.(events.PrizeRedeemedEvent)
		if !ok {
			return
		}
		prizesRedeemed.WithLabelValues(string(redeemed.Category)).Inc()
	})
}
