// Package model defines the core domain types shared by every component:
// entity types, requests, historical records, sync status/results, and the
// error kinds the resolver surfaces to callers.
package model
