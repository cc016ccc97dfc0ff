// Package services implements HTTP clients for the chart provider and
// the iTunes Search API.
//
// # Service
//
// The [Service] interface abstracts a chart provider: a source that
// publishes named weekly charts. [ProviderService] implements it against
// the chart provider's JSON API using OAuth2 or an imported browser
// session.
//
// # Enrichment
//
// [AppleMusicService] queries the iTunes Search API to attach song
// metadata (album, genre, artwork, previews) to chart entries. It does
// not implement [Service]; the tasks package consumes it through a
// narrow searcher interface.
//
// # Raw access
//
// [APIService] issues raw GET/POST requests against the provider for
// debugging and scripting.
package services
