// Package services defines the [Service] interface for music platforms and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates with the client-credentials grant from golang.org/x/oauth2/clientcredentials;
// the token source refreshes itself, so no user authorization or redirect handling is involved. API calls go
// through github.com/zmb3/spotify/v2.
//
// Both token and API requests share a go-retryablehttp transport. Its retry budget is spotify.max_retries
// (default 0), so by default a failed call surfaces immediately.
//
// # Error Handling
//
// Upstream failures are mapped onto sentinels from the shared package:
//   - [shared.ErrAuthFailed] : token request rejected, or 401/403 from the API
//   - [shared.ErrPlaylistNotFound] : 404 on a playlist lookup
//   - [shared.ErrRateLimited] : 429
//   - [shared.ErrServiceUnavailable] : transport failure with no HTTP status
//   - [shared.ErrAPIRequest] : any other non-2xx status
package services
