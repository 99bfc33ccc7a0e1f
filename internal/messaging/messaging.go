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

// Package messaging turns DeSo message threads into conversations and
// messages ready to be shown, and builds outgoing direct messages.
package messaging

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/desotools/desokit/internal/deso"
)

// Message is a decrypted (or undecryptable) message.
type Message struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	ChatType       deso.ChatType `json:"chat_type"`
	SenderKey      string        `json:"sender_key"`
	RecipientKey   string        `json:"recipient_key"`
	Text           string        `json:"text"`
	Timestamp      time.Time     `json:"timestamp"`
	// Encrypted is true when the text could not be decrypted and holds a
	// placeholder.
	Encrypted bool `json:"encrypted,omitempty"`
	// Pending is true for a sent message not yet seen on the node.
	Pending bool `json:"pending,omitempty"`
	// Failed is true for a message that could not be sent.
	Failed bool `json:"failed,omitempty"`

	// PartyKey, PartyGroup and PartyGroupKey identify the counterparty
	// access group.
	PartyKey      string `json:"party_key,omitempty"`
	PartyGroup    string `json:"party_group,omitempty"`
	PartyGroupKey string `json:"party_group_key,omitempty"`
}

// IsFrom reports whether the message was sent by publicKey.
func (m Message) IsFrom(publicKey string) bool {
	return m.SenderKey == publicKey
}

// Conversation is a thread with a counterparty.
type Conversation struct {
	ID            string        `json:"id"`
	ChatType      deso.ChatType `json:"chat_type"`
	OtherKey      string        `json:"other_key"`
	GroupKeyName  string        `json:"group_key_name"`
	GroupKey      string        `json:"group_key,omitempty"` // public key of the counterparty access group
	Username      string        `json:"username,omitempty"`
	LastMessage   string        `json:"last_message"`
	LastTimestamp time.Time     `json:"last_timestamp"`
	Unread        int           `json:"unread"`
}

// ConversationID returns the identifier of the conversation with the
// counterparty owner key and access group name.
func ConversationID(otherKey, groupKeyName string) string {
	if groupKeyName == "" {
		groupKeyName = deso.DefaultGroupKeyName
	}
	return otherKey + ":" + groupKeyName
}

// counterparty returns the access group of the other side of the message,
// as seen by user.  For group chats it is the group itself.
func counterparty(user string, e deso.MessageEntry) deso.AccessGroupInfo {
	if e.ChatType == deso.ChatTypeGroup {
		return e.RecipientInfo
	}
	if e.SenderInfo.OwnerPublicKeyBase58Check == user {
		return e.RecipientInfo
	}
	return e.SenderInfo
}

// messageID returns a stable identifier for the message entry.
func messageID(e deso.MessageEntry) string {
	ts := e.MessageInfo.TimestampNanosString
	if ts == "" {
		ts = strconv.FormatUint(e.MessageInfo.TimestampNanos, 10)
	}
	return e.SenderInfo.OwnerPublicKeyBase58Check + "-" + ts
}

// newMessage converts the entry, without the text, as seen by user.
func newMessage(user string, e deso.MessageEntry) Message {
	party := counterparty(user, e)
	chatType := e.ChatType
	if chatType == "" {
		chatType = deso.ChatTypeDM
	}
	return Message{
		ID:             messageID(e),
		ConversationID: ConversationID(party.OwnerPublicKeyBase58Check, party.AccessGroupKeyName),
		ChatType:       chatType,
		SenderKey:      e.SenderInfo.OwnerPublicKeyBase58Check,
		RecipientKey:   e.RecipientInfo.OwnerPublicKeyBase58Check,
		Timestamp:      e.MessageInfo.Time(),
		Encrypted:      true,
		PartyKey:       party.OwnerPublicKeyBase58Check,
		PartyGroup:     cmp.Or(party.AccessGroupKeyName, deso.DefaultGroupKeyName),
		PartyGroupKey:  party.AccessGroupPublicKeyBase58Check,
	}
}

// BuildConversations groups messages by counterparty (owner key and access
// group name), keeps the newest message of each group as the last message
// and returns the conversations newest first.  Unread counts are left at
// zero.
func BuildConversations(msgs []Message) []Conversation {
	byID := make(map[string]int)
	var cc []Conversation
	for _, m := range msgs {
		i, ok := byID[m.ConversationID]
		if !ok {
			byID[m.ConversationID] = len(cc)
			cc = append(cc, conversationOf(m))
			continue
		}
		if m.Timestamp.After(cc[i].LastTimestamp) {
			cc[i] = conversationOf(m)
		}
	}
	slices.SortStableFunc(cc, func(a, b Conversation) int {
		if c := b.LastTimestamp.Compare(a.LastTimestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return cc
}

func conversationOf(m Message) Conversation {
	return Conversation{
		ID:            m.ConversationID,
		ChatType:      m.ChatType,
		OtherKey:      m.PartyKey,
		GroupKeyName:  m.PartyGroup,
		GroupKey:      m.PartyGroupKey,
		LastMessage:   m.Text,
		LastTimestamp: m.Timestamp,
	}
}

// SortChronological sorts messages oldest first.
func SortChronological(msgs []Message) {
	slices.SortStableFunc(msgs, func(a, b Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}
