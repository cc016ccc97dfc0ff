// Package models defines domain entities and persistence interfaces for the chartx chart companion.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [ChartRef] : Basic metadata for a chart published by the provider
//   - [Chart] : A ranked chart week with its entries
//   - [ChartEntry] : A single ranked song with movement metadata
//   - [SongInfo] : Enriched song metadata from the iTunes Search API
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [User] : Local user profiles
//   - [Favorite] : A song a user saved against a chart
//   - [Prediction] : A forecast about a future chart change (entry, move, exit)
//   - [Contest] : A time-boxed window during which predictions may be submitted
//   - [PersistedSong] : Cached enrichment results keyed by normalized song key
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
