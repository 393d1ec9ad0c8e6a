package mailbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"daysheet/internal/model"
)

func writeMessage(t *testing.T, dir, name, date, subject string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := "From: \"Jane Roe\" <jane@example.com>\r\n" +
		"To: team@example.com\r\n" +
		"Subject: " + subject + "\r\n" +
		"Date: " + date + "\r\n" +
		"\r\n" +
		"Hello\r\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func newSource(t *testing.T, root string) *Source {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	return &Source{Root: root, SentFolders: []string{"Sent Items", "Éléments envoyés"}, Zone: loc}
}

func TestMessagesOnlyFromSentFolders(t *testing.T) {
	root := t.TempDir()
	top := filepath.Join(root, "Top of Personal Folders")
	writeMessage(t, filepath.Join(top, "Inbox"), "1.eml", "Tue, 05 Mar 2024 13:00:00 +0000", "incoming")
	writeMessage(t, filepath.Join(top, "Sent Items"), "2.eml", "Tue, 05 Mar 2024 13:00:00 +0000", "Budget")
	writeMessage(t, filepath.Join(top, "Éléments envoyés"), "3.eml", "Wed, 06 Mar 2024 08:30:00 +0100", "=?UTF-8?Q?R=C3=A9ponse?=")
	// A sub-folder of a sent folder only counts if its own name matches.
	writeMessage(t, filepath.Join(top, "Sent Items", "Archive"), "4.eml", "Tue, 05 Mar 2024 13:00:00 +0000", "archived")

	msgs, skipped, err := newSource(t, root).Messages(context.Background())
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, msgs, 2)

	require.Equal(t, "Budget", msgs[0].Subject)
	require.Equal(t, "Jane Roe", msgs[0].Sender)
	require.Equal(t, "14:00", model.ClockOf(msgs[0].SentAt).String(), "converted to the reporting zone")
	require.Equal(t, "Réponse", msgs[1].Subject)
}

func TestMaildirLayout(t *testing.T) {
	root := t.TempDir()
	sent := filepath.Join(root, ".Sent Items")
	writeMessage(t, filepath.Join(sent, "cur"), "1700000000.M1:2,S", "Tue, 05 Mar 2024 09:00:00 +0100", "seen")
	writeMessage(t, filepath.Join(sent, "new"), "1700000001.M2", "Tue, 05 Mar 2024 10:00:00 +0100", "new")
	writeMessage(t, filepath.Join(sent, "tmp"), "partial", "Tue, 05 Mar 2024 11:00:00 +0100", "partial")

	msgs, _, err := newSource(t, root).Messages(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
}

func TestCollectSkipsBrokenMessages(t *testing.T) {
	root := t.TempDir()
	sent := filepath.Join(root, "Sent Items")
	writeMessage(t, sent, "ok.eml", "Tue, 05 Mar 2024 09:00:00 +0100", "fine")
	writeMessage(t, sent, "nodate.eml", "not a date", "broken")

	batch, err := newSource(t, root).Collect(context.Background(), model.Period{})
	require.NoError(t, err)
	require.Equal(t, 1, batch.Skipped)
	require.Len(t, batch.Events, 1)
	require.Equal(t, model.KindMail, batch.Events[0].Kind)
	require.Equal(t, "fine", batch.Events[0].Label)
	require.Equal(t, "mail", batch.Source)
}

func TestMissingArchiveIsFatal(t *testing.T) {
	_, err := newSource(t, filepath.Join(t.TempDir(), "missing")).Collect(context.Background(), model.Period{})
	require.Error(t, err)
}

func TestDeepTreeDoesNotRecurse(t *testing.T) {
	root := t.TempDir()
	dir := root
	for i := 0; i < 60; i++ {
		dir = filepath.Join(dir, "f")
	}
	writeMessage(t, filepath.Join(dir, "Sent Items"), "deep.eml", "Tue, 05 Mar 2024 09:00:00 +0100", "deep")

	msgs, _, err := newSource(t, root).Messages(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestCharsetReader(t *testing.T) {
	subject, err := wordDecoder.DecodeHeader("=?windows-1252?Q?R=E9union?=")
	require.NoError(t, err)
	require.Equal(t, "Réunion", subject)
}
