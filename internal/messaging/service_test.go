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

package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/desotools/desokit/internal/chatstore"
	"github.com/desotools/desokit/internal/deso"
	"github.com/desotools/desokit/internal/deso/mock_deso"
	"github.com/desotools/desokit/internal/profile"
)

var aliceGroups = &deso.AccessGroups{AccessGroupsOwned: []deso.AccessGroupEntry{
	{AccessGroupOwnerPublicKeyBase58Check: alice, AccessGroupKeyName: deso.DefaultGroupKeyName, AccessGroupPublicKeyBase58Check: alice + "-grp"},
}}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *mock_deso.MockClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	cl := mock_deso.NewMockClient(ctrl)
	cl.EXPECT().AccessGroups(gomock.Any(), alice).Return(aliceGroups, nil)
	s := NewService(t.Context(), cl, alice, opts...)
	require.NoError(t, s.Err())
	return s, cl
}

func testStore(t *testing.T) *chatstore.Store {
	t.Helper()
	st, err := chatstore.Open(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestNewService_disabled(t *testing.T) {
	t.Run("no public key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := NewService(t.Context(), mock_deso.NewMockClient(ctrl), "")
		assert.ErrorIs(t, s.Err(), ErrDisabled)
		_, err := s.Conversations(t.Context())
		assert.ErrorIs(t, err, ErrDisabled)
	})
	t.Run("node unreachable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cl := mock_deso.NewMockClient(ctrl)
		cl.EXPECT().AccessGroups(gomock.Any(), alice).Return(nil, errors.New("connection refused"))
		s := NewService(t.Context(), cl, alice)
		assert.ErrorIs(t, s.Err(), ErrDisabled)
		_, err := s.Thread(t.Context(), Conversation{OtherKey: bob}, time.Time{}, 0)
		assert.ErrorIs(t, err, ErrDisabled)
		_, err = s.Send(t.Context(), Conversation{OtherKey: bob}, "hi")
		assert.ErrorIs(t, err, ErrDisabled)
		_, err = s.Submit(t.Context(), "", "00")
		assert.ErrorIs(t, err, ErrDisabled)
	})
	t.Run("no client", func(t *testing.T) {
		s := NewService(t.Context(), nil, alice)
		assert.ErrorIs(t, s.Err(), ErrDisabled)
	})
}

func TestService_Conversations(t *testing.T) {
	threads := &deso.ThreadsResponse{
		MessageThreads: []deso.MessageEntry{
			dm(bob, alice, "hi alice", 100),
			dm(alice, carol, "hi carol", 200),
		},
		Profiles: map[string]*deso.ProfileEntry{
			bob: {PublicKeyBase58Check: bob, Username: "bob"},
		},
	}
	t.Run("without store", func(t *testing.T) {
		s, cl := newTestService(t)
		cl.EXPECT().MessageThreads(gomock.Any(), alice).Return(threads, nil)

		cc, err := s.Conversations(t.Context())
		require.NoError(t, err)
		require.Len(t, cc, 2)
		assert.Equal(t, carol, cc[0].OtherKey)
		assert.Equal(t, "hi carol", cc[0].LastMessage)
		assert.Empty(t, cc[0].Username)
		assert.Equal(t, "bob", cc[1].Username)
		assert.Zero(t, cc[1].Unread)
	})
	t.Run("with store and profiles", func(t *testing.T) {
		st := testStore(t)
		res := profile.NewResolver()
		res.Put(profile.Profile{PublicKey: carol, Username: "carol"})
		s, cl := newTestService(t, WithStore(st), WithProfiles(res))
		cl.EXPECT().MessageThreads(gomock.Any(), alice).Return(threads, nil).Times(2)

		cc, err := s.Conversations(t.Context())
		require.NoError(t, err)
		require.Len(t, cc, 2)
		assert.Equal(t, "carol", cc[0].Username)
		assert.Zero(t, cc[0].Unread, "own message")
		assert.Equal(t, 1, cc[1].Unread)

		bobProfile, err := res.Resolve(t.Context(), "bob")
		require.NoError(t, err)
		assert.Equal(t, bob, bobProfile.PublicKey, "thread profiles are added to the resolver")

		require.NoError(t, s.MarkRead(t.Context(), cc[1], time.Time{}))
		cc, err = s.Conversations(t.Context())
		require.NoError(t, err)
		assert.Zero(t, cc[1].Unread)
	})
	t.Run("accounts sharing a store", func(t *testing.T) {
		st := testStore(t)
		as, acl := newTestService(t, WithStore(st))
		acl.EXPECT().MessageThreads(gomock.Any(), alice).Return(&deso.ThreadsResponse{
			MessageThreads: []deso.MessageEntry{dm(carol, alice, "hi alice", 100)},
		}, nil).Times(2)

		ctrl := gomock.NewController(t)
		bcl := mock_deso.NewMockClient(ctrl)
		bcl.EXPECT().AccessGroups(gomock.Any(), bob).Return(&deso.AccessGroups{}, nil)
		bcl.EXPECT().MessageThreads(gomock.Any(), bob).Return(&deso.ThreadsResponse{
			MessageThreads: []deso.MessageEntry{dm(carol, bob, "hi bob", 200)},
		}, nil)
		bs := NewService(t.Context(), bcl, bob, WithStore(st))
		require.NoError(t, bs.Err())

		ac, err := as.Conversations(t.Context())
		require.NoError(t, err)
		require.Len(t, ac, 1)
		require.NoError(t, as.MarkRead(t.Context(), ac[0], time.Time{}))

		bc, err := bs.Conversations(t.Context())
		require.NoError(t, err)
		require.Len(t, bc, 1)
		assert.Equal(t, ac[0].ID, bc[0].ID, "IDs are relative to the user")
		assert.Equal(t, 1, bc[0].Unread)

		ac, err = as.Conversations(t.Context())
		require.NoError(t, err)
		require.Len(t, ac, 1)
		assert.Zero(t, ac[0].Unread)
		assert.Equal(t, "hi alice", ac[0].LastMessage)

		cached, err := bs.CachedThread(t.Context(), bc[0], 0)
		require.NoError(t, err)
		require.Len(t, cached, 1)
		assert.Equal(t, bob, cached[0].RecipientKey)
	})
	t.Run("node error", func(t *testing.T) {
		s, cl := newTestService(t)
		cl.EXPECT().MessageThreads(gomock.Any(), alice).Return(nil, errors.New("boom"))
		_, err := s.Conversations(t.Context())
		assert.Error(t, err)
	})
}

func TestService_Thread(t *testing.T) {
	conv := Conversation{ID: ConversationID(bob, ""), ChatType: deso.ChatTypeDM, OtherKey: bob, GroupKeyName: deso.DefaultGroupKeyName, Username: "bob"}
	page := &deso.ThreadsResponse{ThreadMessages: []deso.MessageEntry{
		dm(bob, alice, "three", 30),
		dm(alice, bob, "two", 20),
		encrypted(bob, alice, 10),
	}}
	t.Run("newest page", func(t *testing.T) {
		st := testStore(t)
		s, cl := newTestService(t, WithStore(st), WithPageSize(3))
		cl.EXPECT().ThreadMessages(gomock.Any(), deso.ThreadRequest{
			ChatType:   deso.ChatTypeDM,
			UserKey:    alice,
			UserGroup:  deso.DefaultGroupKeyName,
			PartyKey:   bob,
			PartyGroup: deso.DefaultGroupKeyName,
			Limit:      3,
		}).Return(page, nil)
		cl.EXPECT().AccessGroups(gomock.Any(), alice).Return(aliceGroups, nil)

		msgs, err := s.Thread(t.Context(), conv, time.Time{}, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, Placeholder, msgs[0].Text)
		assert.Equal(t, "two", msgs[1].Text)
		assert.Equal(t, "three", msgs[2].Text)

		cached, err := s.CachedThread(t.Context(), conv, 2)
		require.NoError(t, err)
		require.Len(t, cached, 2)
		assert.Equal(t, "two", cached[0].Text)
		assert.Equal(t, "three", cached[1].Text)
	})
	t.Run("older page", func(t *testing.T) {
		s, cl := newTestService(t)
		before := at(40)
		cl.EXPECT().ThreadMessages(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, req deso.ThreadRequest) (*deso.ThreadsResponse, error) {
			assert.Equal(t, before, req.Before)
			assert.Equal(t, 10, req.Limit)
			return &deso.ThreadsResponse{ThreadMessages: page.ThreadMessages[:2]}, nil
		})
		msgs, err := s.Thread(t.Context(), conv, before, 10)
		require.NoError(t, err)
		assert.Len(t, msgs, 2)
	})
	t.Run("no store", func(t *testing.T) {
		s, _ := newTestService(t)
		msgs, err := s.CachedThread(t.Context(), conv, 10)
		require.NoError(t, err)
		assert.Nil(t, msgs)
		assert.NoError(t, s.MarkRead(t.Context(), conv, at(1)))
	})
}

func TestService_Send(t *testing.T) {
	conv := Conversation{ID: ConversationID(bob, ""), OtherKey: bob, GroupKeyName: deso.DefaultGroupKeyName}
	t.Run("pending until returned by the node", func(t *testing.T) {
		s, cl := newTestService(t)
		cl.EXPECT().AccessGroups(gomock.Any(), bob).Return(&deso.AccessGroups{AccessGroupsOwned: []deso.AccessGroupEntry{
			{AccessGroupOwnerPublicKeyBase58Check: bob, AccessGroupKeyName: deso.DefaultGroupKeyName, AccessGroupPublicKeyBase58Check: bob + "-grp"},
		}}, nil)
		cl.EXPECT().SendDM(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, req deso.SendDMRequest) (*deso.TxnResponse, error) {
			assert.Equal(t, alice, req.SenderAccessGroupOwnerPublicKeyBase58Check)
			assert.Equal(t, alice+"-grp", req.SenderAccessGroupPublicKeyBase58Check)
			assert.Equal(t, bob+"-grp", req.RecipientAccessGroupPublicKeyBase58Check)
			assert.Equal(t, "true", req.ExtraData["unencrypted"])
			return &deso.TxnResponse{TransactionHex: "abcd"}, nil
		})

		out, err := s.Send(t.Context(), conv, "  hello  ")
		require.NoError(t, err)
		assert.Equal(t, "abcd", out.Txn.TransactionHex)
		assert.True(t, out.Message.Pending)
		assert.Equal(t, "hello", out.Message.Text)
		assert.Len(t, out.Message.ID, 36)
		assert.Len(t, s.Pending(conv.ID), 1)

		cl.EXPECT().SubmitTransaction(gomock.Any(), "signed").Return(&deso.SubmitResponse{TxnHashHex: "ff"}, nil)
		resp, err := s.Submit(t.Context(), out.Message.ID, "signed")
		require.NoError(t, err)
		assert.Equal(t, "ff", resp.TxnHashHex)

		// the node has not seen it yet.
		cl.EXPECT().ThreadMessages(gomock.Any(), gomock.Any()).Return(&deso.ThreadsResponse{
			ThreadMessages: []deso.MessageEntry{dm(bob, alice, "earlier", 1)},
		}, nil)
		msgs, err := s.Thread(t.Context(), conv, time.Time{}, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.True(t, msgs[1].Pending)

		// now it has.
		cl.EXPECT().ThreadMessages(gomock.Any(), gomock.Any()).Return(&deso.ThreadsResponse{
			ThreadMessages: []deso.MessageEntry{dm(alice, bob, "hello", time.Now().Unix()+1)},
		}, nil)
		msgs, err = s.Thread(t.Context(), conv, time.Time{}, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.False(t, msgs[0].Pending)
		assert.Empty(t, s.Pending(conv.ID))
	})
	t.Run("known group key, node refuses", func(t *testing.T) {
		s, cl := newTestService(t)
		c := conv
		c.GroupKey = bob + "-grp"
		cl.EXPECT().SendDM(gomock.Any(), gomock.Any()).Return(nil, &deso.APIError{StatusCode: 400, Message: "insufficient balance"})
		out, err := s.Send(t.Context(), c, "hello")
		require.Error(t, err)
		assert.True(t, out.Message.Failed)
		assert.Nil(t, out.Txn)
		assert.True(t, s.Pending(conv.ID)[0].Failed)
	})
	t.Run("submit failure marks message failed", func(t *testing.T) {
		s, cl := newTestService(t)
		c := conv
		c.GroupKey = bob + "-grp"
		cl.EXPECT().SendDM(gomock.Any(), gomock.Any()).Return(&deso.TxnResponse{TransactionHex: "abcd"}, nil)
		out, err := s.Send(t.Context(), c, "hello")
		require.NoError(t, err)
		cl.EXPECT().SubmitTransaction(gomock.Any(), "signed").Return(nil, errors.New("rejected"))
		_, err = s.Submit(t.Context(), out.Message.ID, "signed")
		require.Error(t, err)
		p := s.Pending(conv.ID)
		require.Len(t, p, 1)
		assert.True(t, p[0].Failed)
		assert.False(t, p[0].Pending)
	})
	t.Run("recipient has no group", func(t *testing.T) {
		s, cl := newTestService(t)
		cl.EXPECT().AccessGroups(gomock.Any(), bob).Return(&deso.AccessGroups{}, nil)
		_, err := s.Send(t.Context(), conv, "hello")
		assert.ErrorIs(t, err, deso.ErrNoAccessGroup)
	})
	t.Run("invalid", func(t *testing.T) {
		s, _ := newTestService(t)
		_, err := s.Send(t.Context(), conv, "   ")
		assert.Error(t, err)
		_, err = s.Send(t.Context(), Conversation{ChatType: deso.ChatTypeGroup, OtherKey: carol}, "hi")
		assert.ErrorIs(t, err, errors.ErrUnsupported)
		_, err = s.Send(t.Context(), Conversation{}, "hi")
		assert.Error(t, err)
	})
}
