// Package fingerprint turns a remote repository into a stable, cacheable
// summary of its content at one version.
//
// # Overview
//
// A [Fingerprint] records what a repository is built with: languages by
// byte count, dependency names read from manifest files, structural markers
// such as "has_tests" or "dockerized", a bounded readme excerpt, and a
// per-language [symbols.CodeSummary] extracted from the source archive.
//
// The [Builder] computes fingerprints through a [Fetcher] and stores them in
// a [cache.Store] keyed by repository and last-push marker:
//
//	b := fingerprint.NewBuilder(githubClient, store)
//	fp, err := b.Build(ctx, fingerprint.Identity{Owner: "octo", Name: "demo", PushedAt: "2024-05-01T10:00:00Z"})
//
// A second Build for the same identity and marker is served from the cache
// without contacting the remote. A new marker produces a new entry; the old
// one stays readable until its TTL expires.
//
// # Partial Failure
//
// Every remote call degrades independently. A missing readme, an unreadable
// manifest or a failed archive download leave the corresponding field empty
// and the rest of the fingerprint intact. Only an invalid identity or a
// cancelled context fails a build.
//
// [symbols.CodeSummary]: github.com/matzehuels/repolens/pkg/symbols.CodeSummary
// [cache.Store]: github.com/matzehuels/repolens/pkg/cache.Store
package fingerprint
