// Package contracts holds the wire contract shared by every producer and
// consumer: the closed routing key vocabulary and the event body format.
package contracts

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRoutingKey = errors.New("unknown routing key")

// RoutingKey is a dot-delimited topic naming one domain occurrence.
type RoutingKey string

// Routing keys, one per domain occurrence. The producing service is the
// first segment.
const (
	UserRegistered     RoutingKey = "auth.user.registered"
	AlbumPublished     RoutingKey = "catalog.album.published"
	TrackPublished     RoutingKey = "catalog.track.published"
	PlaylistCreated    RoutingKey = "library.playlist.created"
	PlaylistTrackAdded RoutingKey = "library.playlist.track_added"
	TrackStarted       RoutingKey = "playback.track.started"
	TrackFinished      RoutingKey = "playback.track.finished"
	ProfileCreated     RoutingKey = "profile.created"
)

var registry = []RoutingKey{
	UserRegistered,
	AlbumPublished,
	TrackPublished,
	PlaylistCreated,
	PlaylistTrackAdded,
	TrackStarted,
	TrackFinished,
	ProfileCreated,
}

// All returns a copy of the registry in declaration order.
func All() []RoutingKey {
	out := make([]RoutingKey, len(registry))
	copy(out, registry)
	return out
}

func (k RoutingKey) String() string { return string(k) }

// Known reports whether k belongs to the registry.
func (k RoutingKey) Known() bool {
	for _, r := range registry {
		if r == k {
			return true
		}
	}
	return false
}

// Producer returns the service owning the key.
func (k RoutingKey) Producer() string {
	producer, _, _ := strings.Cut(string(k), ".")
	return producer
}

func Parse(s string) (RoutingKey, error) {
	k := RoutingKey(s)
	if !k.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoutingKey, s)
	}
	return k, nil
}

// ValidPattern reports whether pattern is a well formed binding key: non-empty
// dot separated words where "*" and "#" only appear as whole words.
func ValidPattern(pattern string) bool {
	if pattern == "" {
		return false
	}
	for _, word := range strings.Split(pattern, ".") {
		if word == "" {
			return false
		}
		if word != "*" && word != "#" && strings.ContainsAny(word, "*#") {
			return false
		}
	}
	return true
}

// Match applies topic exchange semantics: "*" matches exactly one word and
// "#" matches zero or more words.
func Match(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}

// Matching returns the registered keys a binding pattern would receive.
func Matching(pattern string) []RoutingKey {
	var out []RoutingKey
	for _, k := range registry {
		if Match(pattern, string(k)) {
			out = append(out, k)
		}
	}
	return out
}
