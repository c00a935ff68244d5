// Package models defines the core domain records for LexHour.
//
// # Models
//
//   - User: an account; every other record is owned by exactly one user
//   - Client: a billable client with an hourly rate
//   - TimeEntry: a recorded span of activity, optionally assigned to a client
//   - Invoice / InvoiceItem: a billing document built from time entries
//   - DashboardStats: derived summary figures, never persisted
//
// # Design principles
//
//  1. Ownership: all records carry a UserID and are scoped to it; there is
//     no cross-user sharing at any layer.
//  2. Relationships use ID strings instead of pointers to avoid circular
//     references between records.
//  3. Merge metadata on TimeEntry (Merged, MergedCount, MergedIDs, span) is
//     synthesized by the calculator package for display and is never written
//     back to storage.
package models
