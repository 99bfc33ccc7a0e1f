// Copyright (c) 2026 desokit Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package profile resolves DeSo user profiles and provides the helpers used
// to present them.
package profile

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/desotools/desokit/internal/deso"
	"github.com/desotools/desokit/internal/graphql"
)

// Profile is a user profile.
type Profile struct {
	PublicKey   string `json:"public_key"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	PictureURL  string `json:"picture_url,omitempty"`
	Description string `json:"description,omitempty"`
	Verified    bool   `json:"verified,omitempty"`
}

// Name returns the name to show for the profile: the display name, the
// username or the shortened public key, whichever is present first.
func (p Profile) Name() string {
	switch {
	case p.DisplayName != "":
		return p.DisplayName
	case p.Username != "":
		return p.Username
	}
	return ShortKey(p.PublicKey)
}

// Handle returns "@username" or the shortened public key.
func (p Profile) Handle() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	return ShortKey(p.PublicKey)
}

// FromAccount converts a GraphQL account.
func FromAccount(a *graphql.Account) Profile {
	if a == nil {
		return Profile{}
	}
	p := Profile{
		PublicKey:   a.PublicKey,
		Username:    a.Username,
		DisplayName: a.Extra("DisplayName"),
		Description: a.Description,
	}
	for _, raw := range []string{a.Extra("LargeProfilePicURL"), a.ProfilePic} {
		if u, ok := BuildProfilePictureURL(raw); ok {
			p.PictureURL = u
			break
		}
	}
	return p
}

// FromEntry converts a node profile entry.
func FromEntry(e *deso.ProfileEntry) Profile {
	if e == nil {
		return Profile{}
	}
	p := Profile{
		PublicKey:   e.PublicKeyBase58Check,
		Username:    e.Username,
		DisplayName: e.DisplayName(),
		Description: e.Description,
		Verified:    e.IsVerified,
	}
	if u, ok := BuildProfilePictureURL(e.LargeProfilePicURL()); ok {
		p.PictureURL = u
	}
	return p
}

// TruncateMiddle shortens s to head characters, "..." and tail characters.
// Strings not longer than head+tail are returned unchanged.
func TruncateMiddle(s string, head, tail int) string {
	head, tail = max(head, 0), max(tail, 0)
	r := []rune(s)
	if len(r) <= head+tail {
		return s
	}
	return string(r[:head]) + "..." + string(r[len(r)-tail:])
}

// ShortKey shortens a public key for display.
func ShortKey(pk string) string {
	return TruncateMiddle(pk, 6, 6)
}

const hexPrefix = `\x`

// BuildProfilePictureURL turns the stored profile picture value into a URL
// suitable for an image source.  Values stored as a `\x` prefixed hex string
// are decoded first.  It returns false if the value does not yield a data
// image or http(s) URL.
func BuildProfilePictureURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if rest, ok := strings.CutPrefix(s, hexPrefix); ok {
		b, err := hex.DecodeString(rest)
		if err != nil || !utf8.Valid(b) {
			return "", false
		}
		s = strings.TrimSpace(string(b))
	}
	if isImageURL(s) {
		return s, true
	}
	return "", false
}

func isImageURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "data:image/") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "http://")
}

// PictureURL returns the node URL serving the profile picture of the public
// key, falling back to the default avatar.
func PictureURL(nodeURL, publicKey string) string {
	if nodeURL == "" {
		nodeURL = deso.DefaultNodeURL
	}
	return strings.TrimRight(nodeURL, "/") + "/api/v0/get-single-profile-picture/" + publicKey +
		"?fallback=" + strings.TrimRight(nodeURL, "/") + "/assets/img/default_profile_pic.png"
}

// FormatNanos formats an amount of nanos as DESO.
func FormatNanos(n uint64) string {
	whole := n / deso.NanosPerDESO
	frac := n % deso.NanosPerDESO
	s := humanize.Comma(int64(whole))
	if frac != 0 {
		s += "." + strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	}
	return s + " DESO"
}
