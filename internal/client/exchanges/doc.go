// Package exchanges holds the exchange lifecycle: who may accept or reject
// a proposal, how a record is shown, and the Controller that owns the
// current user's exchange list.
//
// A Controller serializes transitions: while one accept or reject is in
// flight, or while the list is being fetched, further transitions are
// refused instead of queued.
package exchanges
