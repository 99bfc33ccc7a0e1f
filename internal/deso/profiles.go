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

package deso

import (
	"context"
	"errors"
	"strings"
)

type singleProfileRequest struct {
	PublicKeyBase58Check string `json:"PublicKeyBase58Check,omitempty"`
	Username             string `json:"Username,omitempty"`
	NoErrorOnMissing     bool   `json:"NoErrorOnMissing"`
}

type singleProfileResponse struct {
	Profile *ProfileEntry `json:"Profile"`
}

// SingleProfile calls get-single-profile.  key is either a public key or a
// username (with or without the leading "@").  It returns ErrNotFound when
// there is no such profile.
func (c *HTTPClient) SingleProfile(ctx context.Context, key string) (*ProfileEntry, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "@")
	if key == "" {
		return nil, errors.New("profile key is empty")
	}
	req := singleProfileRequest{NoErrorOnMissing: true}
	if IsPublicKey(key) {
		req.PublicKeyBase58Check = key
	} else {
		req.Username = key
	}
	var r singleProfileResponse
	if err := c.post(ctx, "/api/v0/get-single-profile", req, &r); err != nil {
		return nil, err
	}
	if r.Profile == nil {
		return nil, ErrNotFound
	}
	return r.Profile, nil
}
