// Package session persists small JSON values with an expiry and exposes the
// current-user session built on top of them.
//
// Cache is the storage-facing layer. It never returns errors: storage
// failures are logged and degrade to a miss or a no-op, since persistence is
// a convenience and the in-memory state stays authoritative for the running
// process.
//
// Binding is a mounted consumer of one key. It keeps the value in memory,
// persists it through Cache, and can Watch the stored entry so that expiry
// is noticed without an explicit read.
//
// Session is the explicit auth context: Login stores the user with a TTL
// (bounded by the token's exp claim when the token is a JWT), Logout removes
// it, and Run keeps the periodic sweep going.
package session
