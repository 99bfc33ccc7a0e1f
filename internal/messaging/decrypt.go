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

// In this file: decryption fan-out with a single access group refetch.

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/desotools/desokit/internal/deso"
)

// Placeholder replaces the text of messages that cannot be decrypted.
const Placeholder = "[unable to decrypt message]"

// ErrDecrypt is returned by a Decrypter that cannot decrypt a message.
var ErrDecrypt = errors.New("unable to decrypt")

// maxDecryptWorkers limits the number of concurrent decryptions.
const maxDecryptWorkers = 8

// Decrypter decrypts the text of a message entry for user.  groups are the
// access groups of user; implementations return deso.ErrNoAccessGroup when
// the group needed for the message is missing.
type Decrypter interface {
	Decrypt(ctx context.Context, user string, e deso.MessageEntry, groups *deso.AccessGroups) (string, error)
}

// DecrypterFunc adapts a function to the Decrypter interface.
type DecrypterFunc func(ctx context.Context, user string, e deso.MessageEntry, groups *deso.AccessGroups) (string, error)

func (f DecrypterFunc) Decrypt(ctx context.Context, user string, e deso.MessageEntry, groups *deso.AccessGroups) (string, error) {
	return f(ctx, user, e, groups)
}

// PlainDecrypter reads messages sent unencrypted (ExtraData
// "unencrypted"="true", hex encoded text).  Encrypted messages yield
// ErrDecrypt.
type PlainDecrypter struct{}

func (PlainDecrypter) Decrypt(_ context.Context, _ string, e deso.MessageEntry, _ *deso.AccessGroups) (string, error) {
	if !e.IsUnencrypted() {
		return "", ErrDecrypt
	}
	b, err := hex.DecodeString(e.MessageInfo.EncryptedText)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(b), nil
}

// GroupFetcher fetches the access groups of a user.
type GroupFetcher interface {
	AccessGroups(ctx context.Context, publicKey string) (*deso.AccessGroups, error)
}

// Encrypter prepares the text of an outgoing message for the recipient
// access group.  It returns the text to send and the extra data to attach.
type Encrypter interface {
	Encrypt(ctx context.Context, sender deso.AccessGroupEntry, recipientGroupKey string, text string) (string, map[string]string, error)
}

// PlainEncrypter sends messages unencrypted, hex encoded and flagged with
// "unencrypted"="true".  It is read back by PlainDecrypter.
type PlainEncrypter struct{}

func (PlainEncrypter) Encrypt(_ context.Context, _ deso.AccessGroupEntry, _ string, text string) (string, map[string]string, error) {
	return hex.EncodeToString([]byte(text)), map[string]string{"unencrypted": "true"}, nil
}

// DecryptAll decrypts entries for user with dec.  Failures trigger one
// refetch of the access groups from gf and a retry; messages that still
// fail carry the Placeholder text.  It returns the messages in the order of
// entries and the access groups in use.
func DecryptAll(ctx context.Context, gf GroupFetcher, dec Decrypter, user string, groups *deso.AccessGroups, entries []deso.MessageEntry) ([]Message, *deso.AccessGroups, error) {
	d := decryptor{dec: dec, groups: gf, lg: slog.Default()}
	return d.decryptAll(ctx, user, groups, entries)
}

// decryptor decrypts batches of messages for one user.
type decryptor struct {
	dec    Decrypter
	groups GroupFetcher
	lg     *slog.Logger
}

// decryptAll decrypts entries concurrently.  Messages that fail to decrypt
// are retried once after refetching the access groups of user; messages that
// still fail get the Placeholder text.  It returns the messages in the
// order of entries and the access groups in use after the call.  The only
// error returned is the context error.
func (d *decryptor) decryptAll(ctx context.Context, user string, groups *deso.AccessGroups, entries []deso.MessageEntry) ([]Message, *deso.AccessGroups, error) {
	msgs := make([]Message, len(entries))
	for i, e := range entries {
		msgs[i] = newMessage(user, e)
	}

	failed := d.run(ctx, user, groups, entries, msgs, allIndexes(len(entries)))
	if err := ctx.Err(); err != nil {
		return nil, groups, err
	}
	if len(failed) > 0 {
		d.lg.DebugContext(ctx, "refetching access groups", "failed", len(failed))
		fresh, err := d.groups.AccessGroups(ctx, user)
		if err != nil {
			d.lg.WarnContext(ctx, "access groups refetch failed", "error", err)
		} else {
			groups = fresh
			failed = d.run(ctx, user, groups, entries, msgs, failed)
		}
		if err := ctx.Err(); err != nil {
			return nil, groups, err
		}
	}
	for _, i := range failed {
		msgs[i].Text = Placeholder
		msgs[i].Encrypted = true
	}
	return msgs, groups, nil
}

// run decrypts the entries at indexes idx into msgs and returns the indexes
// that failed, in ascending order.
func (d *decryptor) run(ctx context.Context, user string, groups *deso.AccessGroups, entries []deso.MessageEntry, msgs []Message, idx []int) []int {
	var (
		mu     sync.Mutex
		failed = make([]bool, len(entries))
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxDecryptWorkers)
	for _, i := range idx {
		eg.Go(func() error {
			text, err := d.dec.Decrypt(ctx, user, entries[i], groups)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[i] = true
				return nil
			}
			msgs[i].Text = text
			msgs[i].Encrypted = false
			return nil
		})
	}
	_ = eg.Wait()

	var out []int
	for i, f := range failed {
		if f {
			out = append(out, i)
		}
	}
	return out
}

func allIndexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
