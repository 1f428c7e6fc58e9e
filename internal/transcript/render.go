package transcript

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"slackdm/internal/slack"
	"slackdm/internal/status"
)

// Renderer formats a chronological message sequence into the transcript text.
// It carries the grouping cursor (last emitted date and speaker) across one
// single left-to-right pass; thread sub-renders run on a fresh instance so a
// nested render can never alias its parent's state.
type Renderer struct {
	resolver *Resolver
	logger   *slog.Logger
	status   *status.Status

	// Broadcast renders thread_broadcast messages inline as standalone
	// messages instead of as "replied to a thread" pointers. Forced on for
	// thread sub-renders.
	Broadcast bool

	lastDate   time.Time
	lastUser   string
	threadMsgs map[string]slack.Message
}

// NewRenderer creates a renderer over the run's lookup maps and counters.
func NewRenderer(resolver *Resolver, st *status.Status, logger *slog.Logger) *Renderer {
	return &Renderer{resolver: resolver, status: st, logger: logger}
}

// Render formats the full sequence. Thread children are skipped in the main
// pass; they surface under their parent's T: marker.
func (r *Renderer) Render(msgs []slack.Message) string {
	return r.render(msgs, false)
}

func (r *Renderer) render(msgs []slack.Message, children bool) string {
	r.threadMsgs = collectThreadChildren(msgs)
	r.lastDate = time.Time{}
	r.lastUser = ""

	var b strings.Builder
	for i := range msgs {
		msg := &msgs[i]
		if msg.IsThreadChild() && !children &&
			classifySubtype(msg.Subtype) != SubtypeThreadBroadcast {
			continue
		}
		b.WriteString(r.formatMessage(msg))
	}
	return strings.TrimSpace(b.String())
}

// collectThreadChildren indexes every thread child by its own timestamp so
// reply references can be resolved in one pass. Roots are not indexed.
func collectThreadChildren(msgs []slack.Message) map[string]slack.Message {
	children := make(map[string]slack.Message)
	for _, msg := range msgs {
		if msg.IsThreadChild() {
			children[msg.TS] = msg
		}
	}
	return children
}

func (r *Renderer) formatMessage(msg *slack.Message) string {
	prefix := "\n"

	ts := ParseTS(msg.TS)
	if r.lastDate.IsZero() || !sameDate(r.lastDate, ts) {
		prefix += fmt.Sprintf("\n -- %d/%d/%d -- \n\n", ts.Day(), int(ts.Month()), ts.Year())
		r.lastDate = ts
	}

	name := r.resolver.DisplayName(msg.User, msg.Username)

	// New speaker on an unchanged date still gets a separating blank line.
	if r.lastUser != name && prefix == "\n" {
		prefix = "\n\n"
	}

	header := Timestamp(msg.TS)
	var body string

	st := classifySubtype(msg.Subtype)
	if st == SubtypeUnknown {
		r.logger.Warn("unrecognized message subtype, rendering as standard",
			"subtype", msg.Subtype, "ts", msg.TS)
		st = SubtypeStandard
	}

	switch st {
	case SubtypeNoPrefix:
		body = r.formatText(msg, false)

	case SubtypeMe:
		if r.lastUser != name {
			body = name + ": "
		}
		body += "_" + r.formatText(msg, true) + "_"

	case SubtypeThreadBroadcast:
		if r.Broadcast {
			if r.lastUser != name {
				header = indent + name + ":\n" + header
			}
			body = r.formatText(msg, true)
		} else {
			body = name + " replied to a thread:\n" + indent + r.formatText(msg, true)
		}

	default:
		if r.lastUser != name {
			header = indent + name + ":\n" + header
		}
		body = r.formatText(msg, true)
	}

	if clause := r.fileClause(msg.Files, msg.Upload, msg.IsShare, name); clause != "" {
		if body != "" {
			body += "\n" + indent
		}
		body += clause
	}

	if msg.ThreadTS != "" && len(msg.Replies) > 0 {
		body += "\n\n" + indentShort + "T: " + r.renderThread(msg)
	}

	r.lastUser = name
	return prefix + header + body
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// formatText renders the message text plus any attachments.
func (r *Renderer) formatText(msg *slack.Message, ampersand bool) string {
	var s string
	if msg.Text != "" {
		s = r.resolver.Expand(msg.Text, ampersand)
	}
	s += r.formatAttachments(msg)
	return s
}

func (r *Renderer) formatAttachments(msg *slack.Message) string {
	var out string
	name := r.resolver.DisplayName(msg.User, msg.Username)
	for i := range msg.Attachments {
		out += r.formatAttachment(&msg.Attachments[i], name)
	}
	// The last attachment should not leave a trailing newline behind.
	return strings.TrimSuffix(out, "\n")
}

func (r *Renderer) formatAttachment(a *slack.Attachment, user string) string {
	if !a.Renderable() {
		return ""
	}

	// Pretext reads as standard text above the attachment block.
	var ret string
	if a.Pretext != "" {
		ret = r.resolver.Expand(a.Pretext, true)
	}

	var title string
	switch {
	case a.TitleLink != "" && a.Title != "":
		title = "<" + a.TitleLink + "|" + a.Title + ">"
	case a.TitleLink != "":
		title = "<" + a.TitleLink + ">"
	case a.Title != "":
		title = a.Title
	}

	var body string
	if title != "" {
		body = r.resolver.Expand(title, true)
		if a.Text != "" {
			body += "\n" + indent
		}
	}
	if a.Text != "" {
		body += r.resolver.Expand(a.Text, true) + "\n"
	}

	if len(a.Fields) > 0 {
		body = strings.TrimSuffix(body, "\n")

		var fields string
		for _, f := range a.Fields {
			if f.Title != "" {
				fields += f.Title + "\n"
			}
			fields += f.Value + "\n\n"
		}
		fields = r.resolver.Expand(strings.TrimSpace(fields), true)

		if body == "" {
			body = fields
		} else {
			body += "\n\n" + indent + fields
		}
	}

	if clause := r.fileClause(a.Files, a.Upload, a.IsShare, user); clause != "" {
		body += "\n" + indent + clause
	}

	return ret + "\n" + indentShort + "A: " + body
}

// fileClause describes each file carried by a message or attachment:
// uploaded, shared by the author, or shared on someone else's behalf.
func (r *Renderer) fileClause(files []slack.File, upload, isShare bool, msgUser string) string {
	if len(files) == 0 {
		return ""
	}

	clauses := make([]string, 0, len(files))
	for i := range files {
		f := &files[i]
		if f.Deleted() {
			clauses = append(clauses, "File deleted")
			continue
		}

		owner := r.resolver.DisplayName(f.User, "")
		if !upload && !isShare {
			r.logger.Warn("file was neither shared nor uploaded", "file", f.ID)
			r.status.UnclassifiedFiles++
		}

		var clause string
		switch {
		case upload:
			clause = msgUser + " uploaded a file: "
		case owner == msgUser:
			clause = msgUser + " shared their file: "
		default:
			clause = msgUser + " shared a file by " + owner + ": "
		}

		title := f.Title
		if title == "" {
			title = "No title given"
		}
		clauses = append(clauses, clause+"'"+title+"'")
	}

	return strings.Join(clauses, "\n"+indent)
}

// renderThread resolves the parent's reply references against the thread
// child index and renders them with a fresh renderer, broadcast mode forced
// on, then reindents every line under a pipe-prefixed continuation marker.
func (r *Renderer) renderThread(parent *slack.Message) string {
	thread := make([]slack.Message, 0, len(parent.Replies))
	for _, reply := range parent.Replies {
		child, ok := r.threadMsgs[reply.TS]
		if !ok {
			r.logger.Warn("thread message not found", "ts", reply.TS, "parent", parent.TS)
			r.status.ThreadMsgsNotFound++
			continue
		}
		thread = append(thread, child)
	}

	sub := NewRenderer(r.resolver, r.status, r.logger)
	sub.Broadcast = true
	out := sub.render(thread, true)

	out = strings.ReplaceAll(out, "\n", "\n"+indentShort+threadPipe+"  ")
	return out + "\n"
}
