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
	"strings"
	"time"
)

// NanosPerDESO is the number of nanos in one DESO.
const NanosPerDESO = 1_000_000_000

// DefaultGroupKeyName is the access group every user has for direct
// messages.
const DefaultGroupKeyName = "default-key"

// ChatType distinguishes direct messages from group chats.
type ChatType string

const (
	ChatTypeDM    ChatType = "DM"
	ChatTypeGroup ChatType = "GroupChat"
)

// AccessGroupInfo identifies one side of a message.
type AccessGroupInfo struct {
	OwnerPublicKeyBase58Check       string `json:"OwnerPublicKeyBase58Check"`
	AccessGroupPublicKeyBase58Check string `json:"AccessGroupPublicKeyBase58Check"`
	AccessGroupKeyName              string `json:"AccessGroupKeyName"`
}

// MessageInfo is the payload of a message.
type MessageInfo struct {
	EncryptedText        string            `json:"EncryptedText"`
	TimestampNanos       uint64            `json:"TimestampNanos"`
	TimestampNanosString string            `json:"TimestampNanosString"`
	ExtraData            map[string]string `json:"ExtraData,omitempty"`
}

// Time returns the message timestamp.
func (mi MessageInfo) Time() time.Time {
	return NanosToTime(mi.TimestampNanos)
}

// MessageEntry is a message as returned by the thread endpoints.
type MessageEntry struct {
	ChatType      ChatType        `json:"ChatType"`
	SenderInfo    AccessGroupInfo `json:"SenderInfo"`
	RecipientInfo AccessGroupInfo `json:"RecipientInfo"`
	MessageInfo   MessageInfo     `json:"MessageInfo"`
}

// IsUnencrypted reports whether the message text is plain hex encoded text.
func (m MessageEntry) IsUnencrypted() bool {
	return strings.EqualFold(m.MessageInfo.ExtraData["unencrypted"], "true")
}

// ThreadsResponse is the response of get-all-user-message-threads and the
// paginated thread endpoints.
type ThreadsResponse struct {
	MessageThreads []MessageEntry `json:"MessageThreads,omitempty"`
	ThreadMessages []MessageEntry `json:"ThreadMessages,omitempty"`
	// Profiles maps public keys to profiles of the participants.
	Profiles map[string]*ProfileEntry `json:"PublicKeyToProfileEntryResponse,omitempty"`
}

// Messages returns the messages of the response regardless of the endpoint
// that produced it.
func (r *ThreadsResponse) Messages() []MessageEntry {
	if len(r.ThreadMessages) > 0 {
		return r.ThreadMessages
	}
	return r.MessageThreads
}

// ThreadRequest selects a page of a thread.
type ThreadRequest struct {
	ChatType ChatType
	// UserKey and UserGroup identify the requesting user's access group.
	UserKey   string
	UserGroup string
	// PartyKey and PartyGroup identify the counterparty (for DMs) or the
	// group owner and group name (for group chats).
	PartyKey   string
	PartyGroup string
	// Before returns messages older than this time; zero means newest.
	Before time.Time
	// Limit is the maximum number of messages.
	Limit int
}

// AccessGroupMember is the membership record of the user in a group.
type AccessGroupMember struct {
	AccessGroupMemberPublicKeyBase58Check string            `json:"AccessGroupMemberPublicKeyBase58Check"`
	AccessGroupMemberKeyName              string            `json:"AccessGroupMemberKeyName"`
	EncryptedKey                          string            `json:"EncryptedKey"`
	ExtraData                             map[string]string `json:"ExtraData,omitempty"`
}

// AccessGroupEntry is an access group.
type AccessGroupEntry struct {
	AccessGroupOwnerPublicKeyBase58Check string             `json:"AccessGroupOwnerPublicKeyBase58Check"`
	AccessGroupKeyName                   string             `json:"AccessGroupKeyName"`
	AccessGroupPublicKeyBase58Check      string             `json:"AccessGroupPublicKeyBase58Check"`
	AccessGroupMemberEntryResponse       *AccessGroupMember `json:"AccessGroupMemberEntryResponse,omitempty"`
	ExtraData                            map[string]string  `json:"ExtraData,omitempty"`
}

// AccessGroups are the groups a user owns or is a member of.
type AccessGroups struct {
	AccessGroupsOwned  []AccessGroupEntry `json:"AccessGroupsOwned"`
	AccessGroupsMember []AccessGroupEntry `json:"AccessGroupsMember"`
}

// Find returns the group owned by owner with the given key name.
func (ag *AccessGroups) Find(owner, keyName string) (AccessGroupEntry, error) {
	if ag != nil {
		for _, list := range [][]AccessGroupEntry{ag.AccessGroupsOwned, ag.AccessGroupsMember} {
			for _, g := range list {
				if g.AccessGroupOwnerPublicKeyBase58Check == owner && g.AccessGroupKeyName == keyName {
					return g, nil
				}
			}
		}
	}
	return AccessGroupEntry{}, ErrNoAccessGroup
}

// ProfileEntry is a user profile.
type ProfileEntry struct {
	PublicKeyBase58Check string            `json:"PublicKeyBase58Check"`
	Username             string            `json:"Username"`
	Description          string            `json:"Description"`
	IsVerified           bool              `json:"IsVerified"`
	IsHidden             bool              `json:"IsHidden"`
	CoinPriceDeSoNanos   uint64            `json:"CoinPriceDeSoNanos"`
	ExtraData            map[string]string `json:"ExtraData,omitempty"`
}

// DisplayName returns the display name from the profile extra data.
func (p *ProfileEntry) DisplayName() string {
	if p == nil {
		return ""
	}
	return p.ExtraData["DisplayName"]
}

// LargeProfilePicURL returns the large profile picture from the extra data.
func (p *ProfileEntry) LargeProfilePicURL() string {
	if p == nil {
		return ""
	}
	return p.ExtraData["LargeProfilePicURL"]
}

// SendDMRequest is the body of send-dm-message.
type SendDMRequest struct {
	SenderAccessGroupOwnerPublicKeyBase58Check    string            `json:"SenderAccessGroupOwnerPublicKeyBase58Check"`
	SenderAccessGroupPublicKeyBase58Check         string            `json:"SenderAccessGroupPublicKeyBase58Check"`
	SenderAccessGroupKeyName                      string            `json:"SenderAccessGroupKeyName"`
	RecipientAccessGroupOwnerPublicKeyBase58Check string            `json:"RecipientAccessGroupOwnerPublicKeyBase58Check"`
	RecipientAccessGroupPublicKeyBase58Check      string            `json:"RecipientAccessGroupPublicKeyBase58Check"`
	RecipientAccessGroupKeyName                   string            `json:"RecipientAccessGroupKeyName"`
	EncryptedMessageText                          string            `json:"EncryptedMessageText"`
	MinFeeRateNanosPerKB                          uint64            `json:"MinFeeRateNanosPerKB"`
	ExtraData                                     map[string]string `json:"ExtraData,omitempty"`
}

// TxnResponse is an unsigned transaction constructed by the node.
type TxnResponse struct {
	TstampNanos     uint64 `json:"TstampNanos"`
	TransactionHex  string `json:"TransactionHex"`
	FeeNanos        uint64 `json:"FeeNanos"`
	TotalInputNanos uint64 `json:"TotalInputNanos"`
}

// SubmitResponse is the response of submit-transaction.
type SubmitResponse struct {
	TxnHashHex string `json:"TxnHashHex"`
}

// NanosToTime converts a nanosecond unix timestamp to time.
func NanosToTime(n uint64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(n))
}

// TimeToNanos converts t to a nanosecond unix timestamp.
func TimeToNanos(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano())
}

// IsPublicKey reports whether s looks like a base58check public key rather
// than a username.
func IsPublicKey(s string) bool {
	return len(s) >= 50 && (strings.HasPrefix(s, "BC1YL") || strings.HasPrefix(s, "tBC1YL"))
}
