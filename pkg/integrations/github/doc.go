// Package github provides an HTTP client for the GitHub REST API.
//
// # Overview
//
// [Client] implements [fingerprint.Fetcher]: it lists a user's
// repositories, reads readmes, language statistics, root directory listings
// and raw files, and downloads source archives.
//
// # Usage
//
//	client := github.NewClient(os.Getenv("GITHUB_TOKEN"))
//
//	repos, err := client.ListUserRepositories(ctx, "octocat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	langs, _ := client.GetLanguages(ctx, "octocat", repos[0].Name)
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour. Rate-limited responses are
// retried after the Retry-After hint.
//
// # Archives
//
// [Client.DownloadArchive] follows the zipball redirect, caps the download
// at [Client.MaxArchiveBytes], and extracts with zip-slip protection:
// entries with absolute paths, ".." segments or non-regular modes are
// skipped.
//
// [fingerprint.Fetcher]: github.com/matzehuels/repolens/pkg/fingerprint.Fetcher
package github
