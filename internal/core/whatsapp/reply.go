package whatsapp

import "strings"

// ReplyKind is how a short reply to a confirmation prompt reads
type ReplyKind int

const (
	ReplyOther ReplyKind = iota
	ReplyConfirm
	ReplyDiscard
)

var (
	confirmWords = map[string]bool{"yes": true, "y": true, "ndio": true, "ndiyo": true, "sawa": true, "ok": true}
	discardWords = map[string]bool{"no": true, "n": true, "hapana": true, "cancel": true, "acha": true}
)

// ParseReply reads "Yes!", " ndiyo " or "Hapana." as a confirm/discard answer.
// Anything longer than one word is treated as a new message.
func ParseReply(text string) ReplyKind {
	word := strings.ToLower(strings.TrimSpace(text))
	word = strings.TrimRight(word, ".!? ")
	if strings.ContainsAny(word, " \t\n") {
		return ReplyOther
	}

	switch {
	case confirmWords[word]:
		return ReplyConfirm
	case discardWords[word]:
		return ReplyDiscard
	default:
		return ReplyOther
	}
}

func (k ReplyKind) String() string {
	switch k {
	case ReplyConfirm:
		return "confirm"
	case ReplyDiscard:
		return "discard"
	default:
		return "other"
	}
}
