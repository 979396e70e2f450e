// Package form tracks add/edit dialog state so unsaved changes are never
// dropped silently.
//
// A Dialog snapshots its values when it opens. It is dirty while the live
// values differ structurally from that snapshot. Closing a dirty dialog
// parks it in ConfirmPending until the caller resolves the prompt, and
// submitting is only possible from a dirty, valid, idle dialog.
//
//	Closed -> Clean <-> Dirty -> ConfirmPending -> Closed | Dirty
//	Clean|Dirty -> Submitting -> Closed (saved) | Dirty (rejected or failed)
package form
