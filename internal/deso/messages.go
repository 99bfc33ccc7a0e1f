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

// In this file: message threads, access groups and transactions.

import (
	"context"
	"errors"
	"strconv"
	"time"
)

type threadsRequest struct {
	UserPublicKeyBase58Check string `json:"UserPublicKeyBase58Check"`
}

// MessageThreads calls get-all-user-message-threads.
func (c *HTTPClient) MessageThreads(ctx context.Context, publicKey string) (*ThreadsResponse, error) {
	if publicKey == "" {
		return nil, errors.New("public key is empty")
	}
	var r ThreadsResponse
	if err := c.post(ctx, "/api/v0/get-all-user-message-threads", threadsRequest{UserPublicKeyBase58Check: publicKey}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

type dmThreadRequest struct {
	UserGroupOwnerPublicKeyBase58Check  string `json:"UserGroupOwnerPublicKeyBase58Check"`
	UserGroupKeyName                    string `json:"UserGroupKeyName"`
	PartyGroupOwnerPublicKeyBase58Check string `json:"PartyGroupOwnerPublicKeyBase58Check"`
	PartyGroupKeyName                   string `json:"PartyGroupKeyName"`
	StartTimeStamp                      uint64 `json:"StartTimeStamp"`
	StartTimeStampString                string `json:"StartTimeStampString"`
	MaxMessagesToFetch                  int    `json:"MaxMessagesToFetch"`
}

type groupThreadRequest struct {
	UserPublicKeyBase58Check             string `json:"UserPublicKeyBase58Check"`
	AccessGroupOwnerPublicKeyBase58Check string `json:"AccessGroupOwnerPublicKeyBase58Check"`
	AccessGroupKeyName                   string `json:"AccessGroupKeyName"`
	StartTimeStamp                       uint64 `json:"StartTimeStamp"`
	StartTimeStampString                 string `json:"StartTimeStampString"`
	MaxMessagesToFetch                   int    `json:"MaxMessagesToFetch"`
}

// defThreadLimit is the page size when ThreadRequest.Limit is not set.
const defThreadLimit = 25

// ThreadMessages calls get-paginated-messages-for-dm-thread or
// get-paginated-messages-for-group-chat-thread depending on the chat type.
func (c *HTTPClient) ThreadMessages(ctx context.Context, req ThreadRequest) (*ThreadsResponse, error) {
	if req.UserKey == "" || req.PartyKey == "" {
		return nil, errors.New("user and party keys are required")
	}
	before := req.Before
	if before.IsZero() {
		before = time.Now()
	}
	ts := TimeToNanos(before)
	limit := req.Limit
	if limit <= 0 {
		limit = defThreadLimit
	}

	var (
		r    ThreadsResponse
		path string
		body any
	)
	switch req.ChatType {
	case ChatTypeGroup:
		path = "/api/v0/get-paginated-messages-for-group-chat-thread"
		body = groupThreadRequest{
			UserPublicKeyBase58Check:             req.UserKey,
			AccessGroupOwnerPublicKeyBase58Check: req.PartyKey,
			AccessGroupKeyName:                   req.PartyGroup,
			StartTimeStamp:                       ts,
			StartTimeStampString:                 strconv.FormatUint(ts, 10),
			MaxMessagesToFetch:                   limit,
		}
	default:
		path = "/api/v0/get-paginated-messages-for-dm-thread"
		body = dmThreadRequest{
			UserGroupOwnerPublicKeyBase58Check:  req.UserKey,
			UserGroupKeyName:                    orDefaultGroup(req.UserGroup),
			PartyGroupOwnerPublicKeyBase58Check: req.PartyKey,
			PartyGroupKeyName:                   orDefaultGroup(req.PartyGroup),
			StartTimeStamp:                      ts,
			StartTimeStampString:                strconv.FormatUint(ts, 10),
			MaxMessagesToFetch:                  limit,
		}
	}
	if err := c.post(ctx, path, body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func orDefaultGroup(name string) string {
	if name == "" {
		return DefaultGroupKeyName
	}
	return name
}

type accessGroupsRequest struct {
	PublicKeyBase58Check string `json:"PublicKeyBase58Check"`
}

// AccessGroups calls get-all-user-access-groups.
func (c *HTTPClient) AccessGroups(ctx context.Context, publicKey string) (*AccessGroups, error) {
	if publicKey == "" {
		return nil, errors.New("public key is empty")
	}
	var r AccessGroups
	if err := c.post(ctx, "/api/v0/get-all-user-access-groups", accessGroupsRequest{PublicKeyBase58Check: publicKey}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SendDM calls send-dm-message.  The returned transaction is unsigned.
func (c *HTTPClient) SendDM(ctx context.Context, req SendDMRequest) (*TxnResponse, error) {
	if req.SenderAccessGroupOwnerPublicKeyBase58Check == "" || req.RecipientAccessGroupOwnerPublicKeyBase58Check == "" {
		return nil, errors.New("sender and recipient are required")
	}
	if req.EncryptedMessageText == "" {
		return nil, errors.New("message is empty")
	}
	req.SenderAccessGroupKeyName = orDefaultGroup(req.SenderAccessGroupKeyName)
	req.RecipientAccessGroupKeyName = orDefaultGroup(req.RecipientAccessGroupKeyName)
	if req.MinFeeRateNanosPerKB == 0 {
		req.MinFeeRateNanosPerKB = DefaultFeeRateNanosPerKB
	}
	var r TxnResponse
	if err := c.post(ctx, "/api/v0/send-dm-message", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DefaultFeeRateNanosPerKB is the fee rate used when none is given.
const DefaultFeeRateNanosPerKB = 1000

type submitRequest struct {
	TransactionHex string `json:"TransactionHex"`
}

// SubmitTransaction calls submit-transaction.
func (c *HTTPClient) SubmitTransaction(ctx context.Context, signedHex string) (*SubmitResponse, error) {
	if signedHex == "" {
		return nil, errors.New("transaction is empty")
	}
	var r SubmitResponse
	if err := c.post(ctx, "/api/v0/submit-transaction", submitRequest{TransactionHex: signedHex}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
