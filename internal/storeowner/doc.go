// Package storeowner runs the Store Owner: the single goroutine that holds
// the writable SQLite handle for a plotboard database.
//
// An Owner implements rpc.Conn. Messages are queued in arrival order and
// handled one at a time, so the database needs no locking and later writes
// to a row always win over earlier ones.
//
// # Actions
//
//   - init: open the file, apply pragmas and embedded migrations, then
//     signal control-ready (or control-error with the reason)
//   - exec: run one statement with bound parameters and return its rows
//   - export: write a VACUUM INTO image and return its bytes
//
// A statement failure is answered on the request's own id and leaves the
// owner running. A panic while handling a message is reported on Faults and
// stops the owner.
//
// # Database Configuration
//
//   - foreign_keys=ON: deleting a project or act cascades to its scenes
//   - WAL mode with synchronous=NORMAL
//   - busy_timeout=5000
//   - one open connection
package storeowner
