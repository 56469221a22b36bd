// Package repository persists plotboard projects through an rpc.Proxy.
//
// Every method turns into one or more statements sent to the Store Owner.
// Statements belonging to one operation are all submitted before any is
// awaited; the Store Owner applies them in submission order.
//
// The repository does not wrap operations in transactions. A failure part
// way through ApplyChanges leaves earlier statements applied; callers
// recover by reloading the board.
package repository
