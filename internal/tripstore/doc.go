// Package tripstore keeps the in-memory mirror of the shared trip data for one
// logged-in session and synchronises it with the database.
//
// Every mutation is applied to the mirror immediately and persisted in the
// background. A failed write is logged and never rolled back; the next
// successful reload replaces the mirror with what the database holds. A reload
// either replaces the whole mirror or, on any fetch error, none of it.
package tripstore
