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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desotools/desokit/internal/network"
)

const (
	testAlice = "BC1YLhtBTFXAsKZgoaoYNW8mWAJWdfQjycheAeYjaX46azVrnZfJ94s"
	testBob   = "BC1YLgw3KMdQav8w5juVRc3Ko5gzNJ7NzBHE1FfyYWGwpBEQEmnKG2v"
)

// apiHandler routes requests by path to canned JSON responses and records
// the decoded request bodies.
type apiHandler struct {
	t      *testing.T
	routes map[string]func(w http.ResponseWriter, body map[string]any)
	mu     sync.Mutex
	bodies map[string]map[string]any
}

func (h *apiHandler) body(path string) map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bodies[path]
}

func (h *apiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fn, ok := h.routes[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	data, err := io.ReadAll(r.Body)
	require.NoError(h.t, err)
	var body map[string]any
	require.NoError(h.t, json.Unmarshal(data, &body))
	h.mu.Lock()
	if h.bodies == nil {
		h.bodies = make(map[string]map[string]any)
	}
	h.bodies[r.URL.Path] = body
	h.mu.Unlock()
	fn(w, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, h http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cl, err := New(srv.URL, WithLimits(network.Limits{RateLimit: 6000, Burst: 10, Retries: 3, Timeout: 5 * time.Second}))
	require.NoError(t, err)
	return cl
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://node.deso.org", false},
		{"trailing slash", "http://localhost:17001/", false},
		{"no scheme", "node.deso.org", true},
		{"ftp", "ftp://node.deso.org", true},
		{"garbage", "://", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.url)
			assert.Equal(t, tt.wantErr, err != nil, "error: %v", err)
		})
	}
}

func TestHTTPClient_MessageThreads(t *testing.T) {
	h := &apiHandler{t: t, routes: map[string]func(http.ResponseWriter, map[string]any){
		"/api/v0/get-all-user-message-threads": func(w http.ResponseWriter, _ map[string]any) {
			writeJSON(w, http.StatusOK, map[string]any{
				"MessageThreads": []map[string]any{{
					"ChatType":      "DM",
					"SenderInfo":    map[string]any{"OwnerPublicKeyBase58Check": testBob, "AccessGroupKeyName": "default-key"},
					"RecipientInfo": map[string]any{"OwnerPublicKeyBase58Check": testAlice, "AccessGroupKeyName": "default-key"},
					"MessageInfo":   map[string]any{"EncryptedText": "abcd", "TimestampNanos": 1700000000000000000},
				}},
				"PublicKeyToProfileEntryResponse": map[string]any{
					testBob: map[string]any{"PublicKeyBase58Check": testBob, "Username": "bob"},
				},
			})
		},
	}}
	cl := newTestClient(t, h)

	got, err := cl.MessageThreads(t.Context(), testAlice)
	require.NoError(t, err)
	require.Len(t, got.Messages(), 1)
	m := got.Messages()[0]
	assert.Equal(t, ChatTypeDM, m.ChatType)
	assert.Equal(t, testBob, m.SenderInfo.OwnerPublicKeyBase58Check)
	assert.Equal(t, time.Unix(0, 1700000000000000000), m.MessageInfo.Time())
	assert.Equal(t, "bob", got.Profiles[testBob].Username)
	assert.Equal(t, testAlice, h.body("/api/v0/get-all-user-message-threads")["UserPublicKeyBase58Check"])

	_, err = cl.MessageThreads(t.Context(), "")
	assert.Error(t, err)
}

func TestHTTPClient_ThreadMessages(t *testing.T) {
	h := &apiHandler{t: t, routes: map[string]func(http.ResponseWriter, map[string]any){
		"/api/v0/get-paginated-messages-for-dm-thread": func(w http.ResponseWriter, _ map[string]any) {
			writeJSON(w, http.StatusOK, map[string]any{"ThreadMessages": []map[string]any{{"ChatType": "DM"}, {"ChatType": "DM"}}})
		},
		"/api/v0/get-paginated-messages-for-group-chat-thread": func(w http.ResponseWriter, _ map[string]any) {
			writeJSON(w, http.StatusOK, map[string]any{"ThreadMessages": []map[string]any{{"ChatType": "GroupChat"}}})
		},
	}}
	cl := newTestClient(t, h)

	before := time.Unix(1700000000, 0)
	got, err := cl.ThreadMessages(t.Context(), ThreadRequest{UserKey: testAlice, PartyKey: testBob, Before: before})
	require.NoError(t, err)
	assert.Len(t, got.Messages(), 2)
	body := h.body("/api/v0/get-paginated-messages-for-dm-thread")
	assert.Equal(t, "default-key", body["UserGroupKeyName"])
	assert.Equal(t, "default-key", body["PartyGroupKeyName"])
	assert.Equal(t, "1700000000000000000", body["StartTimeStampString"])
	assert.EqualValues(t, defThreadLimit, body["MaxMessagesToFetch"])

	got, err = cl.ThreadMessages(t.Context(), ThreadRequest{ChatType: ChatTypeGroup, UserKey: testAlice, PartyKey: testBob, PartyGroup: "devs", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, ChatTypeGroup, got.Messages()[0].ChatType)
	body = h.body("/api/v0/get-paginated-messages-for-group-chat-thread")
	assert.Equal(t, "devs", body["AccessGroupKeyName"])
	assert.EqualValues(t, 5, body["MaxMessagesToFetch"])

	_, err = cl.ThreadMessages(t.Context(), ThreadRequest{UserKey: testAlice})
	assert.Error(t, err)
}

func TestHTTPClient_AccessGroups(t *testing.T) {
	h := &apiHandler{t: t, routes: map[string]func(http.ResponseWriter, map[string]any){
		"/api/v0/get-all-user-access-groups": func(w http.ResponseWriter, _ map[string]any) {
			writeJSON(w, http.StatusOK, map[string]any{
				"AccessGroupsOwned": []map[string]any{{
					"AccessGroupOwnerPublicKeyBase58Check": testAlice,
					"AccessGroupKeyName":                   "default-key",
					"AccessGroupPublicKeyBase58Check":      "BC1YLgroup",
				}},
			})
		},
	}}
	cl := newTestClient(t, h)

	ag, err := cl.AccessGroups(t.Context(), testAlice)
	require.NoError(t, err)
	g, err := ag.Find(testAlice, "default-key")
	require.NoError(t, err)
	assert.Equal(t, "BC1YLgroup", g.AccessGroupPublicKeyBase58Check)

	_, err = ag.Find(testAlice, "other")
	assert.ErrorIs(t, err, ErrNoAccessGroup)

	var nilGroups *AccessGroups
	_, err = nilGroups.Find(testAlice, "default-key")
	assert.ErrorIs(t, err, ErrNoAccessGroup)
}

func TestHTTPClient_SingleProfile(t *testing.T) {
	h := &apiHandler{t: t, routes: map[string]func(http.ResponseWriter, map[string]any){
		"/api/v0/get-single-profile": func(w http.ResponseWriter, body map[string]any) {
			if body["Username"] == "ghost" {
				writeJSON(w, http.StatusOK, map[string]any{"Profile": nil})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"Profile": map[string]any{
				"PublicKeyBase58Check": testAlice,
				"Username":             "alice",
				"IsVerified":           true,
				"ExtraData":            map[string]string{"DisplayName": "Alice A.", "LargeProfilePicURL": "https://images.example/a.png"},
			}})
		},
	}}
	cl := newTestClient(t, h)

	p, err := cl.SingleProfile(t.Context(), "@alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", h.body("/api/v0/get-single-profile")["Username"])
	assert.Equal(t, "Alice A.", p.DisplayName())
	assert.Equal(t, "https://images.example/a.png", p.LargeProfilePicURL())
	assert.True(t, p.IsVerified)

	_, err = cl.SingleProfile(t.Context(), testAlice)
	require.NoError(t, err)
	assert.Equal(t, testAlice, h.body("/api/v0/get-single-profile")["PublicKeyBase58Check"])

	_, err = cl.SingleProfile(t.Context(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = cl.SingleProfile(t.Context(), " @ ")
	assert.Error(t, err)
}

func TestHTTPClient_SendDM(t *testing.T) {
	h := &apiHandler{t: t, routes: map[string]func(http.ResponseWriter, map[string]any){
		"/api/v0/send-dm-message": func(w http.ResponseWriter, _ map[string]any) {
			writeJSON(w, http.StatusOK, map[string]any{"TransactionHex": "01ab", "FeeNanos": 168})
		},
		"/api/v0/submit-transaction": func(w http.ResponseWriter, body map[string]any) {
			writeJSON(w, http.StatusOK, map[string]any{"TxnHashHex": "hash-of-" + body["TransactionHex"].(string)})
		},
	}}
	cl := newTestClient(t, h)

	txn, err := cl.SendDM(t.Context(), SendDMRequest{
		SenderAccessGroupOwnerPublicKeyBase58Check:    testAlice,
		RecipientAccessGroupOwnerPublicKeyBase58Check: testBob,
		EncryptedMessageText:                          "68656c6c6f",
		ExtraData:                                     map[string]string{"unencrypted": "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, "01ab", txn.TransactionHex)
	assert.EqualValues(t, 168, txn.FeeNanos)
	body := h.body("/api/v0/send-dm-message")
	assert.Equal(t, "default-key", body["SenderAccessGroupKeyName"])
	assert.EqualValues(t, DefaultFeeRateNanosPerKB, body["MinFeeRateNanosPerKB"])

	sub, err := cl.SubmitTransaction(t.Context(), "01ab-signed")
	require.NoError(t, err)
	assert.Equal(t, "hash-of-01ab-signed", sub.TxnHashHex)

	_, err = cl.SendDM(t.Context(), SendDMRequest{SenderAccessGroupOwnerPublicKeyBase58Check: testAlice})
	assert.Error(t, err)
	_, err = cl.SubmitTransaction(t.Context(), "")
	assert.Error(t, err)
}

func TestHTTPClient_errors(t *testing.T) {
	t.Run("api error message", func(t *testing.T) {
		cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad public key"})
		}))
		_, err := cl.AccessGroups(t.Context(), testAlice)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr), "error: %v", err)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "bad public key", apiErr.Message)
		assert.False(t, apiErr.Temporary())
	})
	t.Run("404 is ErrNotFound", func(t *testing.T) {
		cl := newTestClient(t, http.NotFoundHandler())
		_, err := cl.SubmitTransaction(t.Context(), "00")
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("429 is retried", func(t *testing.T) {
		var calls atomic.Int32
		cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"TxnHashHex": "ok"})
		}))
		sub, err := cl.SubmitTransaction(t.Context(), "00")
		require.NoError(t, err)
		assert.Equal(t, "ok", sub.TxnHashHex)
		assert.EqualValues(t, 2, calls.Load())
	})
	t.Run("malformed json", func(t *testing.T) {
		cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "{not json")
		}))
		_, err := cl.SubmitTransaction(t.Context(), "00")
		assert.ErrorContains(t, err, "decode")
	})
}

func TestAPIError(t *testing.T) {
	assert.Equal(t, "deso api: 503 Service Unavailable", (&APIError{StatusCode: 503}).Error())
	assert.Equal(t, "deso api: 400: nope", (&APIError{StatusCode: 400, Message: "nope"}).Error())
	assert.True(t, (&APIError{StatusCode: 503}).Temporary())
	assert.True(t, (&APIError{StatusCode: 429}).Temporary())
	assert.False(t, (&APIError{StatusCode: 501}).Temporary())
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, time.Second, retryAfter(""))
	assert.Equal(t, time.Second, retryAfter("soon"))
	assert.Equal(t, 3*time.Second, retryAfter("3"))
	assert.Equal(t, time.Duration(0), retryAfter("0"))
}

func TestNanos(t *testing.T) {
	assert.True(t, NanosToTime(0).IsZero())
	assert.Zero(t, TimeToNanos(time.Time{}))
	ts := time.Unix(1700000000, 123)
	assert.True(t, ts.Equal(NanosToTime(TimeToNanos(ts))))
}

func TestIsPublicKey(t *testing.T) {
	assert.True(t, IsPublicKey(testAlice))
	assert.False(t, IsPublicKey("alice"))
	assert.False(t, IsPublicKey("BC1YL"))
}

func TestMessageEntry_IsUnencrypted(t *testing.T) {
	assert.True(t, MessageEntry{MessageInfo: MessageInfo{ExtraData: map[string]string{"unencrypted": "TRUE"}}}.IsUnencrypted())
	assert.False(t, MessageEntry{}.IsUnencrypted())
}
