package delivery

import (
	"context"
	"log"
	"time"

	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/trips"
)

// TripSource is the ground-truth trip store the reconciler polls.
// *trips.Service satisfies it.
type TripSource interface {
	ListTodayTrips(ctx context.Context) ([]trips.Trip, error)
}

// Reconciler keeps the in-memory session consistent with the trip store,
// running independently of the tick loop.
type Reconciler struct {
	session         *Session
	source          TripSource
	defaultSpeedKmh float64
}

func NewReconciler(session *Session, source TripSource, defaultSpeedKmh float64) *Reconciler {
	return &Reconciler{
		session:         session,
		source:          source,
		defaultSpeedKmh: defaultSpeedKmh,
	}
}

// SyncOnce pulls today's trips and applies hydrate, complete and prune in
// that order.
func (r *Reconciler) SyncOnce(ctx context.Context) error {
	list, err := r.source.ListTodayTrips(ctx)
	if err != nil {
		return err
	}

	r.session.HydrateFromTrips(list, r.defaultSpeedKmh)

	var inProgress []string
	for _, t := range list {
		switch t.Status {
		case trips.StatusInProgress:
			inProgress = append(inProgress, t.ID)
		case trips.StatusArrived:
			arrival := time.Time{}
			if t.ActualArrivalAt != nil {
				arrival = *t.ActualArrivalAt
			}
			r.session.CompleteTruckFromDB(t.ID, arrival)
		}
	}

	r.session.PruneInactiveTrips(inProgress)
	return nil
}

// Run syncs on a fixed interval until the context is cancelled. A failed
// sync is logged; the next attempt proceeds unchanged.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.SyncOnce(ctx); err != nil {
				log.Printf("trip sync failed: %v", err)
			}
		}
	}
}
