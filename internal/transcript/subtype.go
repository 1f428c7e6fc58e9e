package transcript

// Subtype is the closed set of message subtype categories the renderer
// distinguishes. Anything else is passed through as a standard message.
type Subtype int

const (
	// SubtypeStandard is a plain message (no subtype tag).
	SubtypeStandard Subtype = iota
	// SubtypeNoPrefix renders its text as prose, with no speaker prefix and
	// no ampersand substitution: pinned items and channel administrative
	// events.
	SubtypeNoPrefix
	// SubtypeMe is a "/me"-style action message: speaker name inline,
	// body wrapped in emphasis markers.
	SubtypeMe
	// SubtypeThreadBroadcast is a thread reply also sent to the channel.
	SubtypeThreadBroadcast
	// SubtypeUnknown is an unrecognized tag, logged and rendered as
	// standard.
	SubtypeUnknown
)

func classifySubtype(tag string) Subtype {
	switch tag {
	case "":
		return SubtypeStandard
	case "me_message":
		return SubtypeMe
	case "thread_broadcast":
		return SubtypeThreadBroadcast
	case "pinned_item",
		"channel_join", "channel_leave", "channel_topic",
		"channel_purpose", "channel_name", "channel_archive",
		"channel_unarchive":
		return SubtypeNoPrefix
	default:
		return SubtypeUnknown
	}
}
