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

package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
	"github.com/desotools/desokit/internal/deso"
	"github.com/desotools/desokit/internal/format"
	"github.com/desotools/desokit/internal/messaging"
	"github.com/desotools/desokit/internal/profile"
)

const (
	alice = "BC1YLgAlice00000000000000000000000000000000000000000000"
	bob   = "BC1YLgBob0000000000000000000000000000000000000000000000"
	carol = "BC1YLgCarol00000000000000000000000000000000000000000000"
)

var (
	t0       = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bobConv  = messaging.Conversation{ID: messaging.ConversationID(bob, ""), ChatType: deso.ChatTypeDM, OtherKey: bob, GroupKeyName: deso.DefaultGroupKeyName, Username: "bob", LastMessage: "hi", LastTimestamp: t0}
	devsConv = messaging.Conversation{ID: messaging.ConversationID(carol, "devs"), ChatType: deso.ChatTypeGroup, OtherKey: carol, GroupKeyName: "devs"}
	convs    = []messaging.Conversation{bobConv, devsConv}
)

func Test_findConversation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		newDM   bool
		expect  func(r *MockprofileResolver)
		want    messaging.Conversation
		wantErr bool
	}{
		{"by id", devsConv.ID, false, nil, devsConv, false},
		{"by public key", bob, false, nil, bobConv, false},
		{"by username", "@Bob", false, nil, bobConv, false},
		{"group owner key is not a dm", carol, false, nil, messaging.Conversation{}, true},
		{"unknown", "@dave", false, nil, messaging.Conversation{}, true},
		{
			"new dm by public key",
			carol,
			true,
			nil,
			messaging.Conversation{ID: messaging.ConversationID(carol, ""), ChatType: deso.ChatTypeDM, OtherKey: carol, GroupKeyName: deso.DefaultGroupKeyName},
			false,
		},
		{
			"new dm by username",
			"@carol",
			true,
			func(r *MockprofileResolver) {
				r.EXPECT().Resolve(gomock.Any(), "carol").Return(profile.Profile{PublicKey: carol, Username: "carol"}, nil)
			},
			messaging.Conversation{ID: messaging.ConversationID(carol, ""), ChatType: deso.ChatTypeDM, OtherKey: carol, GroupKeyName: deso.DefaultGroupKeyName, Username: "carol"},
			false,
		},
		{
			"new dm unknown user",
			"dave",
			true,
			func(r *MockprofileResolver) {
				r.EXPECT().Resolve(gomock.Any(), "dave").Return(profile.Profile{}, profile.ErrNotFound)
			},
			messaging.Conversation{},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockchatService(ctrl)
			res := NewMockprofileResolver(ctrl)
			svc.EXPECT().Conversations(gomock.Any()).Return(convs, nil)
			if tt.expect != nil {
				tt.expect(res)
			}
			got, err := findConversation(t.Context(), svc, res, tt.key, tt.newDM)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoConversation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_findConversation_serviceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewMockchatService(ctrl)
	svc.EXPECT().Conversations(gomock.Any()).Return(nil, messaging.ErrDisabled)
	_, err := findConversation(t.Context(), svc, nil, bob, true)
	assert.ErrorIs(t, err, messaging.ErrDisabled)
}

func Test_listConversations(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewMockchatService(ctrl)
	svc.EXPECT().Conversations(gomock.Any()).Return(convs, nil)

	var buf bytes.Buffer
	require.NoError(t, listConversations(t.Context(), &buf, format.NewJSON(), svc))
	var got []messaging.Conversation
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 2)
	assert.Equal(t, bobConv.ID, got[0].ID)
}

func Test_printThread(t *testing.T) {
	msgs := []messaging.Message{
		{ID: "1", SenderKey: bob, Text: "hi", Timestamp: t0},
		{ID: "2", SenderKey: alice, Text: "hello", Timestamp: t0.Add(time.Minute)},
	}
	t.Run("newest page is marked read", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockchatService(ctrl)
		svc.EXPECT().Conversations(gomock.Any()).Return(convs, nil)
		svc.EXPECT().Thread(gomock.Any(), bobConv, time.Time{}, 10).Return(msgs, nil)
		svc.EXPECT().User().Return(alice)
		svc.EXPECT().MarkRead(gomock.Any(), bobConv, time.Time{}).Return(nil)

		var buf bytes.Buffer
		require.NoError(t, printThread(t.Context(), &buf, format.NewText(), svc, "bob", threadOptions{limit: 10, markRead: true}))
		assert.Contains(t, buf.String(), "> bob")
		assert.Contains(t, buf.String(), "> you")
	})
	t.Run("older page is not marked read", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockchatService(ctrl)
		svc.EXPECT().Conversations(gomock.Any()).Return(convs, nil)
		svc.EXPECT().Thread(gomock.Any(), bobConv, t0, 10).Return(msgs[:1], nil)
		svc.EXPECT().User().Return(alice)

		require.NoError(t, printThread(t.Context(), &bytes.Buffer{}, format.NewText(), svc, bob, threadOptions{limit: 10, before: t0, markRead: true}))
	})
	t.Run("cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockchatService(ctrl)
		svc.EXPECT().Conversations(gomock.Any()).Return(convs, nil)
		svc.EXPECT().CachedThread(gomock.Any(), bobConv, 5).Return(msgs, nil)
		svc.EXPECT().User().Return(alice)

		require.NoError(t, printThread(t.Context(), &bytes.Buffer{}, format.NewText(), svc, bob, threadOptions{limit: 5, cached: true, markRead: true}))
	})
	t.Run("fetch error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockchatService(ctrl)
		svc.EXPECT().Conversations(gomock.Any()).Return(convs, nil)
		svc.EXPECT().Thread(gomock.Any(), bobConv, time.Time{}, 10).Return(nil, errors.New("node down"))

		err := printThread(t.Context(), &bytes.Buffer{}, format.NewText(), svc, bob, threadOptions{limit: 10})
		assert.ErrorContains(t, err, "node down")
	})
}

func Test_send(t *testing.T) {
	always := func(string) bool { return true }
	t.Run("prepared", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockchatService(ctrl)
		svc.EXPECT().Conversations(gomock.Any()).Return(convs, nil)
		svc.EXPECT().Send(gomock.Any(), bobConv, "hello").Return(messaging.Outgoing{
			Message: messaging.Message{ID: "m-1", ConversationID: bobConv.ID, Pending: true},
			Txn:     &deso.TxnResponse{TransactionHex: "cafe", FeeNanos: 1500},
		}, nil)

		var buf bytes.Buffer
		require.NoError(t, send(t.Context(), &buf, svc, nil, "@bob", "hello", always))
		out := buf.String()
		assert.Contains(t, out, "Message:      m-1\n")
		assert.Contains(t, out, "Fee:          0.0000015 DESO\n")
		assert.True(t, strings.HasSuffix(out, "\ncafe\n"))
	})
	t.Run("declined", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockchatService(ctrl)
		svc.EXPECT().Conversations(gomock.Any()).Return(convs, nil)

		var asked string
		err := send(t.Context(), &bytes.Buffer{}, svc, nil, bob, "hello", func(to string) bool { asked = to; return false })
		assert.ErrorIs(t, err, base.ErrOpCancelled)
		assert.Equal(t, "bob", asked)
	})
	t.Run("group chat", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockchatService(ctrl)
		svc.EXPECT().Conversations(gomock.Any()).Return(convs, nil)
		svc.EXPECT().Send(gomock.Any(), devsConv, "hello").Return(messaging.Outgoing{}, errors.ErrUnsupported)

		err := send(t.Context(), &bytes.Buffer{}, svc, nil, devsConv.ID, "hello", always)
		assert.ErrorIs(t, err, errors.ErrUnsupported)
	})
}

func Test_printSent_json(t *testing.T) {
	var buf bytes.Buffer
	out := messaging.Outgoing{
		Message: messaging.Message{ID: "m-1", ConversationID: bobConv.ID},
		Txn:     &deso.TxnResponse{TransactionHex: "cafe", FeeNanos: 10},
	}
	require.NoError(t, printSent(&buf, bobConv, out, true))
	var got sent
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sent{MessageID: "m-1", ConversationID: bobConv.ID, Recipient: bob, FeeNanos: 10, TransactionHex: "cafe"}, got)
}

func Test_submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewMockchatService(ctrl)
	svc.EXPECT().Submit(gomock.Any(), "", "signed").Return(&deso.SubmitResponse{TxnHashHex: "abc123"}, nil)
	svc.EXPECT().Submit(gomock.Any(), "", "bad").Return(nil, errors.New("rejected"))

	var buf bytes.Buffer
	require.NoError(t, submit(t.Context(), &buf, svc, "signed"))
	assert.Equal(t, "abc123\n", buf.String())

	assert.ErrorContains(t, submit(t.Context(), &buf, svc, "bad"), "rejected")
}

func Test_argOrStdin(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		stdin   string
		want    string
		wantErr bool
	}{
		{"argument", "hello", "ignored", "hello", false},
		{"stdin", "-", "line one\nline two\n", "line one\nline two", false},
		{"empty stdin", "-", "\n\n", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := argOrStdin(tt.arg, strings.NewReader(tt.stdin))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
