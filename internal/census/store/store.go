// Package store persists census records.
//
// Error contract, shared by every implementation:
//   - sentinel.ErrNotFound when the record does not exist
//   - sentinel.ErrAlreadyUsed when a write would give a second record the same
//     (identity proof type, identity number) pair
//   - wrapped errors for infrastructure failures
//
// Listings are always ordered by submission time, newest first.
package store
