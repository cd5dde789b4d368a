package shared

import "errors"

var (
	// Configuration errors
	ErrMissingConfig      = errors.New("configuration not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMissingCredentials = errors.New("missing credentials")

	// Authentication errors
	ErrAuthFailed = errors.New("authentication failed")

	// Upstream API errors
	ErrAPIRequest         = errors.New("API request failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrPlaylistNotFound   = errors.New("playlist not found")
	ErrRateLimited        = errors.New("rate limited by upstream API")

	// Playlist analysis errors
	ErrInvalidPlaylistURL = errors.New("invalid playlist format, please provide a valid Spotify playlist URL, URI, or ID")
	ErrEmptyPlaylist      = errors.New("playlist is empty")
	ErrNoValidTracks      = errors.New("no valid tracks found in playlist")
	ErrNoAudioFeatures    = errors.New("could not analyze audio features")
	ErrInvalidWeights     = errors.New("invalid feature weights")

	// Input validation errors
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("record not found")
)

// IsInputError reports whether err was caused by bad caller input rather than an upstream failure.
func IsInputError(err error) bool {
	for _, target := range []error{
		ErrInvalidPlaylistURL, ErrInvalidWeights, ErrInvalidArgument, ErrMissingArgument,
		ErrEmptyPlaylist, ErrNoValidTracks, ErrNoAudioFeatures,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
