// Package mailbox reads sent messages from a mail archive laid out as a
// folder tree: directories are folders, regular files are RFC 5322 messages
// (Maildir "cur" and "new" children are folded into their parent folder).
package mailbox

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	appLog "daysheet/internal/log"
	"daysheet/internal/model"
)

const sourceName = "mail"

// maildirParts are folded into their parent folder rather than walked as
// sub-folders.
var maildirParts = map[string]bool{"cur": true, "new": true, "tmp": true}

// Message is one sent message as read from the archive.
type Message struct {
	Subject string
	Sender  string
	SentAt  time.Time
	Path    string
}

// Source collects sent messages from an archive root.
type Source struct {
	Root        string
	SentFolders []string
	Zone        *time.Location
}

func (s *Source) Name() string { return sourceName }

// Collect walks the archive and converts every readable sent message into a
// mail event. The period filter is left to the core.
func (s *Source) Collect(ctx context.Context, _ model.Period) (model.Batch, error) {
	msgs, skipped, err := s.Messages(ctx)
	if err != nil {
		return model.Batch{}, err
	}

	batch := model.Batch{Source: sourceName, Skipped: skipped, Events: make([]model.RawEvent, 0, len(msgs))}
	for _, m := range msgs {
		batch.Events = append(batch.Events, model.RawEvent{
			Kind:  model.KindMail,
			Label: m.Subject,
			At:    m.SentAt,
		})
	}
	appLog.Info("mail archive read", "root", s.Root, "messages", len(msgs), "skipped", skipped)
	return batch, nil
}

type folder struct {
	path string
	name string
}

// Messages walks the folder tree with an explicit stack. Only folders whose
// own name matches a sent-folder name contribute messages, but every folder
// is descended into.
func (s *Source) Messages(ctx context.Context) ([]Message, int, error) {
	info, err := os.Stat(s.Root)
	if err != nil {
		return nil, 0, fmt.Errorf("mailbox: open archive: %w", err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("mailbox: archive %s is not a directory", s.Root)
	}

	zone := s.Zone
	if zone == nil {
		zone = time.Local
	}

	var (
		out     []Message
		skipped int
	)
	stack := []folder{{path: s.Root, name: filepath.Base(s.Root)}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		files, subs, err := listFolder(cur.path)
		if err != nil {
			if cur.path == s.Root {
				return nil, 0, fmt.Errorf("mailbox: read %s: %w", cur.path, err)
			}
			appLog.Error("mail folder unreadable, skipping", err, "folder", cur.path)
			continue
		}

		// Push in reverse so folders are visited in name order.
		for i := len(subs) - 1; i >= 0; i-- {
			stack = append(stack, subs[i])
		}

		if !s.isSentFolder(cur.name) {
			continue
		}
		for _, p := range files {
			msg, err := readMessage(p, zone)
			if err != nil {
				skipped++
				appLog.Error("mail message skipped", err, "path", p)
				continue
			}
			out = append(out, msg)
		}
	}
	return out, skipped, nil
}

func (s *Source) isSentFolder(name string) bool {
	lower := strings.ToLower(name)
	for _, target := range s.SentFolders {
		if target != "" && strings.Contains(lower, strings.ToLower(target)) {
			return true
		}
	}
	return false
}

// listFolder returns message files (including Maildir cur/new) and
// sub-folders, both sorted by name.
func listFolder(dir string) ([]string, []folder, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	var (
		files []string
		subs  []folder
	)
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		switch {
		case e.IsDir() && maildirParts[e.Name()]:
			if e.Name() == "tmp" {
				continue
			}
			inner, err := os.ReadDir(p)
			if err != nil {
				return nil, nil, err
			}
			for _, ie := range inner {
				if ie.Type().IsRegular() {
					files = append(files, filepath.Join(p, ie.Name()))
				}
			}
		case e.IsDir():
			subs = append(subs, folder{path: p, name: e.Name()})
		case e.Type().IsRegular() && !strings.HasPrefix(e.Name(), "."):
			files = append(files, p)
		}
	}
	sort.Strings(files)
	sort.Slice(subs, func(i, j int) bool { return subs[i].name < subs[j].name })
	return files, subs, nil
}

var wordDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

func readMessage(path string, zone *time.Location) (Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return Message{}, err
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return Message{}, fmt.Errorf("parse headers: %w", err)
	}

	sent, err := msg.Header.Date()
	if err != nil {
		return Message{}, fmt.Errorf("date header: %w", err)
	}

	subject := msg.Header.Get("Subject")
	if dec, err := wordDecoder.DecodeHeader(subject); err == nil {
		subject = dec
	}

	return Message{
		Subject: strings.TrimSpace(subject),
		Sender:  senderName(msg.Header.Get("From")),
		SentAt:  sent.In(zone),
		Path:    path,
	}, nil
}

func senderName(from string) string {
	if from == "" {
		return ""
	}
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return strings.TrimSpace(from)
	}
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Address
}

// charsetReader decodes RFC 2047 words in charsets the standard library
// does not know (windows-1252, iso-8859-15, ...).
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
