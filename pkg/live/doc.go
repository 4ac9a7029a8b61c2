// Package live serves mounted reactors over HTTP and pushes their HTML to
// browsers after every event.
//
// # Routes
//
//	GET  /                 page with every mounted reactor
//	GET  /ws               WebSocket: {"event","args"} in, render messages out
//	POST /events/{event}   fire event with a JSON array of arguments
//	GET  /reactors/{name}  HTML of one mounted reactor
//	GET  /healthz          liveness
//	GET  /metrics          Prometheus, when WithMetrics is set
//
// # Usage
//
//	srv := live.New(rt, live.WithLogger(logger))
//	srv.Mount("counter", counter)
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//	if err := srv.ListenAndServe(ctx, ":3000"); err != nil {
//	    log.Fatal(err)
//	}
//
// Reactors are single-goroutine values. The server runs every event and
// every read of reactor HTML under one mutex.
package live
