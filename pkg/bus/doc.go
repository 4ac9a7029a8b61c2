// Package bus provides the synchronous publish/subscribe registry that
// reactors communicate through.
//
// A Bus maps event names to ordered subscriber lists. Broadcast calls every
// subscriber's Catch method in subscription order before returning. The bus
// is an ordinary value: create one per application root (reactor.Runtime
// does this) and tests get isolated buses for free.
//
// Subscribers are held by value and compared by SubscriberID, so the bus
// never owns the components behind them. reactor.Handle resolves its
// reactor through a registry on every delivery and turns deliveries to
// destroyed reactors into no-ops.
//
// # Re-entrancy
//
// Subscribers may broadcast, subscribe and unsubscribe while a broadcast is
// running. Each broadcast walks a snapshot of the list taken when it
// started; entries unsubscribed mid-dispatch are skipped, entries added
// mid-dispatch first receive the next broadcast.
package bus
