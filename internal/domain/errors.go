package domain

import "github.com/hilthontt/melody/internal/errs"

var (
	ErrEmailTaken          = errs.New(errs.ErrInvalidInput, "user with this email already exists")
	ErrUserNotFound        = errs.New(errs.ErrNotFound, "user not found")
	ErrInvalidCredentials  = errs.New(errs.ErrUnauthorized, "invalid credentials")
	ErrUserBlocked         = errs.New(errs.ErrUnauthorized, "user is blocked or inactive")
	ErrInvalidRefreshToken = errs.New(errs.ErrUnauthorized, "invalid refresh token")

	ErrProfileNotFound = errs.New(errs.ErrNotFound, "profile not found")
	ErrProfileExists   = errs.New(errs.ErrConflict, "profile already exists")

	ErrAlbumNotFound = errs.New(errs.ErrNotFound, "album not found")
	ErrTrackNotFound = errs.New(errs.ErrNotFound, "track not found in catalog")

	// ErrCatalogUnavailable rejects an operation whose precondition could not
	// be checked because the catalog did not answer.
	ErrCatalogUnavailable = errs.New(errs.ErrUnavailable, "catalog service unavailable")

	ErrPlaylistNotFound   = errs.New(errs.ErrNotFound, "playlist not found")
	ErrTrackInPlaylist    = errs.New(errs.ErrConflict, "track already in playlist")
	ErrFavoriteExists     = errs.New(errs.ErrConflict, "track already in favorites")
	ErrFavoriteNotFound   = errs.New(errs.ErrNotFound, "favorite track not found")
	ErrSessionNotFound    = errs.New(errs.ErrNotFound, "playback session not found")
	ErrSessionFinished    = errs.New(errs.ErrConflict, "playback session already finished")
	ErrInvalidVolume      = errs.New(errs.ErrInvalidInput, "volume must be between 0 and 100")
	ErrEmptySettingsPatch = errs.New(errs.ErrInvalidInput, "no settings to update")
	ErrEmptySearchQuery   = errs.New(errs.ErrInvalidInput, "search query must not be empty")
	ErrInvalidSearchKind  = errs.New(errs.ErrInvalidInput, "type must be album or track")
)
