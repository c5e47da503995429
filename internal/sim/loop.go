package sim

import "mechmania/internal/metrics"

// RunMatch drives the full turn loop (spec §4.H):
//
//	connect_all_clients()
//	receive_initial_team_descriptors()
//	while game_time < 300.0:
//	    for 5 substeps: physics_model(0.2)
//	    laser_model()
//	    resolve_pending()
//	    broadcast_world()
//	    wait_observer_ack()
//	    receive_orders()
//	    clear team message buffers
//	set_game_over()
//
// It returns when the match has run its full length and one final frozen
// snapshot has been broadcast, or when tr returns an error (a severed
// connection or a transport-level failure).
func RunMatch(w *World, tr Transport) error {
	descs, err := tr.ConnectAll(len(w.Teams))
	if err != nil {
		return err
	}
	for i, desc := range descs {
		w.SetupTeam(i, desc)
	}
	w.SpawnInitialAsteroids()
	metrics.ActiveTeams.Set(float64(len(w.Teams)))

	for !w.MatchOver() {
		if err := tr.WaitWhilePaused(); err != nil {
			return err
		}

		w.RunTurn()

		snapshot := w.Snapshot()
		if err := tr.Broadcast(snapshot); err != nil {
			return err
		}
		if err := tr.WaitObserverAck(); err != nil {
			return err
		}

		orders, err := tr.ReceiveOrders()
		if err != nil {
			return err
		}
		w.ApplyOrders(orders)
		w.SyncThinkTimes(tr.ThinkTimes())
		w.ClearTeamMessages()
	}

	w.SetGameOver()
	// Ships are frozen from here, but a still-moving non-ship Thing (a
	// drifting asteroid, say) can still reach a station or ship and
	// resolve a collision, so the substep/collision pipeline keeps
	// running for one more turn's worth of ticks before the final
	// snapshot (spec §4.H: "ships frozen; collisions still resolved").
	for i := 0; i < 5; i++ {
		w.RunSubstep()
	}
	return tr.Broadcast(w.Snapshot())
}
