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
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/desotools/desokit/internal/chatstore"
	"github.com/desotools/desokit/internal/deso"
	"github.com/desotools/desokit/internal/profile"
)

// ErrDisabled is returned by all Service methods when the service failed to
// initialise.
var ErrDisabled = errors.New("messaging is disabled")

// defPageSize is the default number of messages per thread page.
const defPageSize = 25

// Store is the local chat store.
type Store interface {
	UpsertConversations(ctx context.Context, cc []chatstore.Conversation) error
	UpsertMessages(ctx context.Context, mm []chatstore.Message) error
	Messages(ctx context.Context, owner, convID string, limit int) ([]chatstore.Message, error)
	MarkRead(ctx context.Context, owner, convID string, ts time.Time) error
	UnreadCounts(ctx context.Context, owner string) (map[string]int, error)
}

// Profiles resolves the usernames of counterparties.
type Profiles interface {
	Resolve(ctx context.Context, key string) (profile.Profile, error)
	Put(pp ...profile.Profile)
}

// Service lists the conversations and threads of one user and prepares
// outgoing messages.
type Service struct {
	cl       deso.Client
	user     string
	dec      Decrypter
	enc      Encrypter
	store    Store
	profiles Profiles
	pageSize int
	lg       *slog.Logger

	err error // initialisation error

	mu      sync.Mutex
	groups  *deso.AccessGroups
	pending map[string][]Message // by conversation ID
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithDecrypter sets the decrypter.  The default is PlainDecrypter.
func WithDecrypter(d Decrypter) ServiceOption {
	return func(s *Service) {
		if d != nil {
			s.dec = d
		}
	}
}

// WithEncrypter sets the encrypter.  The default is PlainEncrypter.
func WithEncrypter(e Encrypter) ServiceOption {
	return func(s *Service) {
		if e != nil {
			s.enc = e
		}
	}
}

// WithStore enables the local store, which is required for unread counts
// and cached threads.
func WithStore(st Store) ServiceOption {
	return func(s *Service) {
		s.store = st
	}
}

// WithProfiles sets the profile resolver.
func WithProfiles(p Profiles) ServiceOption {
	return func(s *Service) {
		s.profiles = p
	}
}

// WithPageSize sets the default thread page size.
func WithPageSize(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) ServiceOption {
	return func(s *Service) {
		if lg != nil {
			s.lg = lg
		}
	}
}

// NewService creates the service for user and fetches the access groups.
// If that fails, the service is disabled for the session and every method
// returns an error wrapping ErrDisabled; Err returns the cause.
func NewService(ctx context.Context, cl deso.Client, user string, opts ...ServiceOption) *Service {
	s := &Service{
		cl:       cl,
		user:     user,
		dec:      PlainDecrypter{},
		enc:      PlainEncrypter{},
		pageSize: defPageSize,
		lg:       slog.Default(),
		pending:  make(map[string][]Message),
	}
	for _, opt := range opts {
		opt(s)
	}
	switch {
	case cl == nil:
		s.err = fmt.Errorf("%w: no node client", ErrDisabled)
	case user == "":
		s.err = fmt.Errorf("%w: no public key", ErrDisabled)
	default:
		groups, err := cl.AccessGroups(ctx, user)
		if err != nil {
			s.err = fmt.Errorf("%w: %w", ErrDisabled, err)
		} else {
			s.groups = groups
		}
	}
	if s.err != nil {
		s.lg.WarnContext(ctx, "messaging disabled", "error", s.err)
	}
	return s
}

// Err returns the initialisation error, if any.
func (s *Service) Err() error {
	return s.err
}

// User returns the public key of the user.
func (s *Service) User() string {
	return s.user
}

func (s *Service) accessGroups() *deso.AccessGroups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups
}

func (s *Service) setAccessGroups(ag *deso.AccessGroups) {
	if ag == nil {
		return
	}
	s.mu.Lock()
	s.groups = ag
	s.mu.Unlock()
}

func (s *Service) decryptor() *decryptor {
	return &decryptor{dec: s.dec, groups: s.cl, lg: s.lg}
}

// Conversations returns the conversations of the user, newest first.
func (s *Service) Conversations(ctx context.Context) ([]Conversation, error) {
	if s.err != nil {
		return nil, s.err
	}
	resp, err := s.cl.MessageThreads(ctx, s.user)
	if err != nil {
		return nil, fmt.Errorf("message threads: %w", err)
	}
	msgs, groups, err := s.decryptor().decryptAll(ctx, s.user, s.accessGroups(), resp.Messages())
	if err != nil {
		return nil, err
	}
	s.setAccessGroups(groups)

	cc := BuildConversations(msgs)
	s.resolveNames(ctx, cc, resp.Profiles)

	if s.store != nil {
		if err := s.persist(ctx, cc, lastMessages(msgs)); err != nil {
			s.lg.WarnContext(ctx, "unable to save conversations", "error", err)
		}
		unread, err := s.store.UnreadCounts(ctx, s.user)
		if err != nil {
			s.lg.WarnContext(ctx, "unable to count unread messages", "error", err)
		}
		for i := range cc {
			cc[i].Unread = unread[cc[i].ID]
		}
	}
	return cc, nil
}

// lastMessages returns the decryptable messages of msgs.
func lastMessages(msgs []Message) []Message {
	var out []Message
	for _, m := range msgs {
		if !m.Encrypted {
			out = append(out, m)
		}
	}
	return out
}

// resolveNames fills in usernames, preferring the profiles returned with
// the threads.
func (s *Service) resolveNames(ctx context.Context, cc []Conversation, profiles map[string]*deso.ProfileEntry) {
	for i := range cc {
		if cc[i].ChatType == deso.ChatTypeGroup {
			cc[i].Username = cc[i].GroupKeyName
			continue
		}
		if pe, ok := profiles[cc[i].OtherKey]; ok && pe != nil {
			cc[i].Username = pe.Username
			if s.profiles != nil {
				s.profiles.Put(profile.FromEntry(pe))
			}
			continue
		}
		if s.profiles == nil {
			continue
		}
		p, err := s.profiles.Resolve(ctx, cc[i].OtherKey)
		if err != nil {
			s.lg.DebugContext(ctx, "username not resolved", "key", cc[i].OtherKey, "error", err)
			continue
		}
		cc[i].Username = p.Username
	}
}

// Thread returns a page of messages of the conversation older than before
// in chronological order.  Zero before returns the newest page together
// with the messages sent in this session that the node does not return yet.
// Non-positive limit uses the page size.
func (s *Service) Thread(ctx context.Context, conv Conversation, before time.Time, limit int) ([]Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit <= 0 {
		limit = s.pageSize
	}
	resp, err := s.cl.ThreadMessages(ctx, deso.ThreadRequest{
		ChatType:   cmp.Or(conv.ChatType, deso.ChatTypeDM),
		UserKey:    s.user,
		UserGroup:  deso.DefaultGroupKeyName,
		PartyKey:   conv.OtherKey,
		PartyGroup: conv.GroupKeyName,
		Before:     before,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("thread messages: %w", err)
	}
	msgs, groups, err := s.decryptor().decryptAll(ctx, s.user, s.accessGroups(), resp.Messages())
	if err != nil {
		return nil, err
	}
	s.setAccessGroups(groups)
	SortChronological(msgs)

	if s.store != nil && len(msgs) > 0 {
		last := BuildConversations(msgs)
		if len(last) > 0 && conv.Username != "" {
			last[0].Username = conv.Username
		}
		if err := s.persist(ctx, last, msgs); err != nil {
			s.lg.WarnContext(ctx, "unable to save thread", "conversation", conv.ID, "error", err)
		}
	}
	if before.IsZero() {
		msgs = s.reconcile(conv.ID, msgs)
	}
	return msgs, nil
}

// reconcile drops the pending messages that appear in fetched and appends
// the rest.
func (s *Service) reconcile(convID string, fetched []Message) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.pending[convID]
	if len(pending) == 0 {
		return fetched
	}
	var keep []Message
	for _, p := range pending {
		if !p.Failed && containsSent(fetched, p) {
			continue
		}
		keep = append(keep, p)
	}
	if len(keep) == 0 {
		delete(s.pending, convID)
	} else {
		s.pending[convID] = keep
	}
	out := append(fetched, keep...)
	SortChronological(out)
	return out
}

// containsSent reports whether msgs holds the confirmed version of the
// pending message p.
func containsSent(msgs []Message, p Message) bool {
	for _, m := range msgs {
		if m.SenderKey == p.SenderKey && m.Text == p.Text && !m.Timestamp.Before(p.Timestamp.Add(-time.Minute)) {
			return true
		}
	}
	return false
}

// CachedThread returns up to limit newest messages of the conversation from
// the local store in chronological order.
func (s *Service) CachedThread(ctx context.Context, conv Conversation, limit int) ([]Message, error) {
	if s.store == nil {
		return nil, nil
	}
	rows, err := s.store.Messages(ctx, s.user, conv.ID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, Message{
			ID:             r.ID,
			ConversationID: r.ConversationID,
			ChatType:       cmp.Or(conv.ChatType, deso.ChatTypeDM),
			SenderKey:      r.SenderKey,
			RecipientKey:   r.RecipientKey,
			Text:           r.Text,
			Timestamp:      r.Time(),
			Encrypted:      r.Encrypted,
			Failed:         r.Failed,
			PartyKey:       conv.OtherKey,
			PartyGroup:     conv.GroupKeyName,
			PartyGroupKey:  conv.GroupKey,
		})
	}
	return out, nil
}

// MarkRead marks the conversation read up to ts.  It is a no-op without a
// store.
func (s *Service) MarkRead(ctx context.Context, conv Conversation, ts time.Time) error {
	if s.store == nil {
		return nil
	}
	if ts.IsZero() {
		ts = conv.LastTimestamp
	}
	return s.store.MarkRead(ctx, s.user, conv.ID, ts)
}

// Outgoing is a message prepared for sending.
type Outgoing struct {
	// Message is the optimistic message shown until the node returns it.
	Message Message
	// Txn is the unsigned transaction to be signed by the user's wallet.
	Txn *deso.TxnResponse
}

// Send prepares a direct message in the conversation.  It returns the
// pending message and the unsigned transaction.  If the node refuses to
// construct the transaction, the message is kept as failed and the error is
// returned.  Sending to group chats is not supported.
func (s *Service) Send(ctx context.Context, conv Conversation, text string) (Outgoing, error) {
	if s.err != nil {
		return Outgoing{}, s.err
	}
	if conv.ChatType == deso.ChatTypeGroup {
		return Outgoing{}, fmt.Errorf("send to group chat: %w", errors.ErrUnsupported)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Outgoing{}, errors.New("message is empty")
	}
	if conv.OtherKey == "" {
		return Outgoing{}, errors.New("conversation has no recipient")
	}
	groupName := cmp.Or(conv.GroupKeyName, deso.DefaultGroupKeyName)

	sender, err := s.senderGroup(ctx)
	if err != nil {
		return Outgoing{}, err
	}
	recipientKey, err := s.recipientGroupKey(ctx, conv.OtherKey, groupName, conv.GroupKey)
	if err != nil {
		return Outgoing{}, err
	}
	body, extra, err := s.enc.Encrypt(ctx, sender, recipientKey, text)
	if err != nil {
		return Outgoing{}, fmt.Errorf("encrypt: %w", err)
	}

	msg := Message{
		ID:             uuid.NewString(),
		ConversationID: ConversationID(conv.OtherKey, groupName),
		ChatType:       deso.ChatTypeDM,
		SenderKey:      s.user,
		RecipientKey:   conv.OtherKey,
		Text:           text,
		Timestamp:      time.Now(),
		Pending:        true,
		PartyKey:       conv.OtherKey,
		PartyGroup:     groupName,
		PartyGroupKey:  recipientKey,
	}
	txn, err := s.cl.SendDM(ctx, deso.SendDMRequest{
		SenderAccessGroupOwnerPublicKeyBase58Check:    s.user,
		SenderAccessGroupPublicKeyBase58Check:         sender.AccessGroupPublicKeyBase58Check,
		SenderAccessGroupKeyName:                      deso.DefaultGroupKeyName,
		RecipientAccessGroupOwnerPublicKeyBase58Check: conv.OtherKey,
		RecipientAccessGroupPublicKeyBase58Check:      recipientKey,
		RecipientAccessGroupKeyName:                   groupName,
		EncryptedMessageText:                          body,
		ExtraData:                                     extra,
	})
	if err != nil {
		msg.Pending = false
		msg.Failed = true
		s.addPending(msg)
		return Outgoing{Message: msg}, fmt.Errorf("send message: %w", err)
	}
	s.addPending(msg)
	return Outgoing{Message: msg, Txn: txn}, nil
}

// senderGroup returns the default access group of the user, refetching the
// access groups once if it is missing.
func (s *Service) senderGroup(ctx context.Context) (deso.AccessGroupEntry, error) {
	g, err := s.accessGroups().Find(s.user, deso.DefaultGroupKeyName)
	if err == nil {
		return g, nil
	}
	groups, ferr := s.cl.AccessGroups(ctx, s.user)
	if ferr != nil {
		return deso.AccessGroupEntry{}, fmt.Errorf("access groups: %w", ferr)
	}
	s.setAccessGroups(groups)
	return groups.Find(s.user, deso.DefaultGroupKeyName)
}

// recipientGroupKey returns the public key of the recipient access group.
func (s *Service) recipientGroupKey(ctx context.Context, owner, name, known string) (string, error) {
	if known != "" {
		return known, nil
	}
	groups, err := s.cl.AccessGroups(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("recipient access groups: %w", err)
	}
	g, err := groups.Find(owner, name)
	if err != nil {
		return "", fmt.Errorf("recipient %s: %w", owner, err)
	}
	return g.AccessGroupPublicKeyBase58Check, nil
}

func (s *Service) addPending(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[m.ConversationID] = append(s.pending[m.ConversationID], m)
}

// Pending returns the messages sent in this session that the node has not
// returned yet, including failed ones.
func (s *Service) Pending(convID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.pending[convID]...)
}

// Submit submits the signed transaction of the pending message msgID.  If
// submission fails, the message is marked failed.
func (s *Service) Submit(ctx context.Context, msgID string, signedHex string) (*deso.SubmitResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	resp, err := s.cl.SubmitTransaction(ctx, signedHex)
	if err != nil {
		s.markFailed(msgID)
		return nil, fmt.Errorf("submit transaction: %w", err)
	}
	return resp, nil
}

func (s *Service) markFailed(msgID string) {
	if msgID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, mm := range s.pending {
		for i := range mm {
			if mm[i].ID == msgID {
				mm[i].Pending = false
				mm[i].Failed = true
				s.pending[id] = mm
				return
			}
		}
	}
}

// persist saves the conversations and messages to the store.
func (s *Service) persist(ctx context.Context, cc []Conversation, msgs []Message) error {
	rows := make([]chatstore.Conversation, 0, len(cc))
	for _, c := range cc {
		rows = append(rows, chatstore.Conversation{
			ID:           c.ID,
			OwnerKey:     s.user,
			OtherKey:     c.OtherKey,
			GroupKeyName: c.GroupKeyName,
			ChatType:     string(c.ChatType),
			Username:     optional(c.Username),
			LastMessage:  optional(c.LastMessage),
			LastTS:       int64(deso.TimeToNanos(c.LastTimestamp)),
		})
	}
	if err := s.store.UpsertConversations(ctx, rows); err != nil {
		return err
	}
	mm := make([]chatstore.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Pending {
			continue
		}
		mm = append(mm, chatstore.Message{
			OwnerKey:       s.user,
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderKey:      m.SenderKey,
			RecipientKey:   m.RecipientKey,
			Text:           m.Text,
			TS:             int64(deso.TimeToNanos(m.Timestamp)),
			Encrypted:      m.Encrypted,
			Failed:         m.Failed,
		})
	}
	return s.store.UpsertMessages(ctx, mm)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
