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
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/desotools/desokit/internal/graphql"
	"github.com/desotools/desokit/internal/profile"
	"github.com/desotools/desokit/internal/profile/mock_profile"
)

const testKey = "BC1YLgAlice00000000000000000000000000000000000000000000"

func Test_lookup(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		expect  func(m *mock_profile.MockAccountSource)
		want    []string
		wantErr error
	}{
		{
			"found by key and username",
			[]string{testKey, "@bob"},
			func(m *mock_profile.MockAccountSource) {
				m.EXPECT().AccountByPublicKey(gomock.Any(), testKey).Return(&graphql.Account{PublicKey: testKey, Username: "alice"}, nil)
				m.EXPECT().AccountByUsername(gomock.Any(), "bob").Return(&graphql.Account{PublicKey: "BC1YLgBob", Username: "bob"}, nil)
			},
			[]string{"alice", "bob"},
			nil,
		},
		{
			"missing one is skipped",
			[]string{"ghost", "@bob"},
			func(m *mock_profile.MockAccountSource) {
				m.EXPECT().AccountByUsername(gomock.Any(), "ghost").Return(nil, graphql.ErrNotFound)
				m.EXPECT().AccountByUsername(gomock.Any(), "bob").Return(&graphql.Account{PublicKey: "BC1YLgBob", Username: "bob"}, nil)
			},
			[]string{"bob"},
			nil,
		},
		{
			"none found",
			[]string{"ghost"},
			func(m *mock_profile.MockAccountSource) {
				m.EXPECT().AccountByUsername(gomock.Any(), "ghost").Return(nil, graphql.ErrNotFound)
			},
			nil,
			profile.ErrNotFound,
		},
		{
			"service failure stops",
			[]string{"bob", "carol"},
			func(m *mock_profile.MockAccountSource) {
				m.EXPECT().AccountByUsername(gomock.Any(), "bob").Return(nil, errors.New("boom"))
			},
			nil,
			errors.New("boom"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := mock_profile.NewMockAccountSource(ctrl)
			tt.expect(m)
			r := profile.NewResolver(profile.WithGraphQL(m))

			got, err := lookup(t.Context(), r, tt.keys)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			var names []string
			for _, p := range got {
				names = append(names, p.Username)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func Test_printPictures(t *testing.T) {
	var buf bytes.Buffer
	pp := []profile.Profile{
		{PublicKey: testKey, Username: "alice", PictureURL: "https://images.example/alice.png"},
		{PublicKey: "BC1YLgBob"},
	}
	require.NoError(t, printPictures(&buf, "https://node.example/", pp))
	assert.Equal(t,
		"@alice\thttps://images.example/alice.png\n"+
			"BC1YLgBob\thttps://node.example/api/v0/get-single-profile-picture/BC1YLgBob?fallback=https://node.example/assets/img/default_profile_pic.png\n",
		buf.String())
}

var _ resolver = (*profile.Resolver)(nil)
