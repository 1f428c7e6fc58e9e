// Package transcript turns a chronological message sequence into the
// human-readable text document: date banners, speaker grouping, attachment
// and file annotations, and nested thread replies.
package transcript

import (
	"regexp"
	"strings"
)

const (
	// indent nests message bodies under their header line.
	indent = "        " // 8 spaces
	// indentShort prefixes the A:/T: markers.
	indentShort = "     " // 5 spaces
	threadPipe  = "|"

	slackbotID   = "USLACKBOT"
	slackbotName = "Slackbot"
	unknownUser  = "Unknown"
)

var (
	userMention    = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|([^>]*))?>`)
	channelMention = regexp.MustCompile(`<#([A-Z0-9]+)(?:\|([^>]*))?>`)
)

// entityReplacer undoes the three entities Slack HTML-escapes in message text.
var entityReplacer = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">")

// Resolver rewrites inline user and channel reference tokens into display
// names. The lookup maps are built once per run and read-only after that.
type Resolver struct {
	users    map[string]string
	channels map[string]string
}

// NewResolver creates a resolver over the run's lookup maps.
func NewResolver(users, channels map[string]string) *Resolver {
	return &Resolver{users: users, channels: channels}
}

// DisplayName resolves a message author. The user id is preferred over the
// literal username field, since the id is authoritative and username can be
// present but blank.
func (r *Resolver) DisplayName(userID, username string) string {
	if userID != "" {
		if userID == slackbotID {
			return slackbotName
		}
		if name, ok := r.users[userID]; ok {
			return name
		}
		return userID
	}
	if username != "" {
		return username
	}
	return unknownUser
}

// Expand rewrites mention tokens, unescapes entities, and reindents embedded
// newlines so multi-line bodies stay visually nested under their header line.
// With ampersand false, user mentions are substituted without the leading "@"
// (used for administrative subtypes whose text reads as prose).
func (r *Resolver) Expand(text string, ampersand bool) string {
	text = userMention.ReplaceAllStringFunc(text, func(tok string) string {
		m := userMention.FindStringSubmatch(tok)
		name := m[2]
		if name == "" {
			name = r.DisplayName(m[1], "")
		}
		if ampersand {
			return "@" + name
		}
		return name
	})

	text = channelMention.ReplaceAllStringFunc(text, func(tok string) string {
		m := channelMention.FindStringSubmatch(tok)
		name := m[2]
		if name == "" {
			name = m[1]
			if mapped, ok := r.channels[m[1]]; ok {
				name = mapped
			}
		}
		return "#" + name
	})

	text = entityReplacer.Replace(text)
	return strings.ReplaceAll(text, "\n", "\n"+indent)
}
