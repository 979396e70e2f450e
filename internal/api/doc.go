// Package api talks to the console's REST backend.
//
// Every backend call answers with an envelope {data, errors}. The package
// normalizes that loose shape into Result at the HTTP boundary so callers
// branch on one discriminated value: OK, Rejected (a business rule said no,
// Errors carries the reasons) or failed (anything else, Detail says why).
package api
