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

package profile

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/desotools/desokit/internal/deso"
	"github.com/desotools/desokit/internal/graphql"
)

const testKey = "BC1YLhtBTFXAsKZgoaoYNW8mWAJWdfQjycheAeYjaX46azVrnZfJ94s"

func TestTruncateMiddle(t *testing.T) {
	tests := []struct {
		name       string
		s          string
		head, tail int
		want       string
	}{
		{"exactly head+tail", "BC1YLhtBTFXA", 6, 6, "BC1YLhtBTFXA"},
		{"shorter", "abc", 6, 6, "abc"},
		{"one longer", "abcdefghijklm", 6, 6, "abcdef...hijklm"},
		{"empty", "", 6, 6, ""},
		{"zero tail", "abcdef", 2, 0, "ab..."},
		{"negative is zero", "abcdef", -1, 2, "...ef"},
		{"runes", "ààààààbbbbbbcccccc", 6, 6, "àààààà...cccccc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateMiddle(tt.s, tt.head, tt.tail))
		})
	}
}

func TestTruncateMiddle_key(t *testing.T) {
	got := TruncateMiddle(testKey, 6, 6)
	assert.Equal(t, testKey[:6]+"..."+testKey[len(testKey)-6:], got)
	assert.Equal(t, got, ShortKey(testKey))
}

func TestBuildProfilePictureURL(t *testing.T) {
	dataURL := "data:image/webp;base64,UklGRlIAAABXRUJQ"
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"hex encoded data url", `\x` + hex.EncodeToString([]byte(dataURL)), dataURL, true},
		{"hex encoded https url", `\x` + hex.EncodeToString([]byte("https://images.deso.org/a.webp")), "https://images.deso.org/a.webp", true},
		{"plain data url", dataURL, dataURL, true},
		{"plain https", "https://images.deso.org/a.webp", "https://images.deso.org/a.webp", true},
		{"surrounding space", "  https://x/y.png ", "https://x/y.png", true},
		{"malformed hex", `\xZZ12`, "", false},
		{"odd length hex", `\xabc`, "", false},
		{"hex of something else", `\x` + hex.EncodeToString([]byte("hello")), "", false},
		{"hex of invalid utf8", `\xfffe`, "", false},
		{"empty", "", "", false},
		{"only prefix", `\x`, "", false},
		{"javascript", "javascript:alert(1)", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BuildProfilePictureURL(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatNanos(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0 DESO"},
		{1, "0.000000001 DESO"},
		{1_500_000_000, "1.5 DESO"},
		{deso.NanosPerDESO, "1 DESO"},
		{1_234_567_000_000_000, "1,234,567 DESO"},
		{12_000_000_001, "12.000000001 DESO"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNanos(tt.n), "nanos %d", tt.n)
	}
}

func TestProfile_Name(t *testing.T) {
	assert.Equal(t, "Alice", Profile{DisplayName: "Alice", Username: "alice"}.Name())
	assert.Equal(t, "alice", Profile{Username: "alice"}.Name())
	assert.Equal(t, ShortKey(testKey), Profile{PublicKey: testKey}.Name())
	assert.Equal(t, "@alice", Profile{Username: "alice"}.Handle())
	assert.Equal(t, ShortKey(testKey), Profile{PublicKey: testKey}.Handle())
}

func TestFromAccount(t *testing.T) {
	acc := &graphql.Account{
		PublicKey:  testKey,
		Username:   "alice",
		ProfilePic: `\x` + hex.EncodeToString([]byte("data:image/png;base64,AAAA")),
		ExtraData:  map[string]any{"DisplayName": "Alice A."},
	}
	p := FromAccount(acc)
	assert.Equal(t, Profile{
		PublicKey:   testKey,
		Username:    "alice",
		DisplayName: "Alice A.",
		PictureURL:  "data:image/png;base64,AAAA",
	}, p)

	acc.ExtraData["LargeProfilePicURL"] = "https://images.deso.org/large.webp"
	assert.Equal(t, "https://images.deso.org/large.webp", FromAccount(acc).PictureURL)
	assert.Equal(t, Profile{}, FromAccount(nil))
}

func TestFromEntry(t *testing.T) {
	e := &deso.ProfileEntry{
		PublicKeyBase58Check: testKey,
		Username:             "alice",
		IsVerified:           true,
		ExtraData:            map[string]string{"LargeProfilePicURL": "not a url"},
	}
	assert.Equal(t, Profile{PublicKey: testKey, Username: "alice", Verified: true}, FromEntry(e))
	assert.Equal(t, Profile{}, FromEntry(nil))
}

func TestPictureURL(t *testing.T) {
	assert.Equal(t,
		"https://node.deso.org/api/v0/get-single-profile-picture/BC1YLx?fallback=https://node.deso.org/assets/img/default_profile_pic.png",
		PictureURL("", "BC1YLx"))
}
