// Package rpc is the client side of the store connection.
//
// A Proxy drives a Store Owner (see internal/storeowner) that holds the only
// writable handle to the SQLite file. The two sides talk exclusively through
// Messages and Responses carried by a Conn; nothing on the caller's side
// blocks on the store.
//
// # Readiness gate
//
// Initialize performs a one-time handshake per Proxy:
//
//	Uninitialized → Initializing → Ready
//	Initializing  → Failed   (control-error, transport fault, timeout)
//	Ready         → Failed   (transport fault, Close)
//
// Concurrent Initialize callers share the single in-flight handshake and
// observe the same outcome. Failed is terminal; a new Proxy is required.
//
// # Correlation
//
// Every Execute/ExportSnapshot call gets a strictly increasing RequestID and
// a Future. Responses are matched by id only, never by arrival order. Each
// Future settles exactly once. A transport fault rejects every pending
// Future with a TransportError and empties the pending set.
//
// # Reserved ids
//
// HandshakeID, ControlReady and ControlError belong to the handshake and are
// never allocated to ordinary requests.
package rpc
