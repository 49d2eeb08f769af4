package sapgui

import (
	"strings"

	"github.com/lcouto/saprobot/internal/events"
)

// StatusBarID is the object path of the session's status/message slot.
const StatusBarID = "wnd[0]/sbar"

// Classification is a blocking status-bar message that must fail the
// current transaction attempt.
type Classification struct {
	Message string
}

// Classifier reads the SAP status bar and decides whether its last
// message blocks the current operation.
//
// Policy, in priority order:
//   - type E (error) or A (abort): blocking, "Erro SAP: <text>"
//   - type W (warning): logged, non-blocking
//   - type I (informational) whose text contains one of the configured
//     no-op phrases: blocking, "Informação SAP: <text>". SAP reports many
//     harmless informationals, but this subset means the save silently
//     did nothing and must not pass as success.
//   - anything else: non-blocking
type Classifier struct {
	// BlockingPhrases are matched as lowercase substrings against
	// informational message text.
	BlockingPhrases []string
}

// NewClassifier creates a Classifier with the given no-op phrase list
func NewClassifier(phrases []string) *Classifier {
	return &Classifier{BlockingPhrases: phrases}
}

// Check reads the status bar and returns a Classification when the
// message is blocking, nil otherwise. Any failure reading the status slot
// is swallowed: a transiently unreadable status bar never fails a
// transaction on its own.
func (c *Classifier) Check(s Session, sink events.Sink) *Classification {
	bar, err := s.FindByID(StatusBarID)
	if err != nil {
		return nil
	}

	msgType, err := bar.MessageType()
	if err != nil {
		return nil
	}
	text, err := bar.Text()
	if err != nil {
		return nil
	}
	text = strings.TrimSpace(text)

	switch msgType {
	case "E", "A":
		return &Classification{Message: "Erro SAP: " + text}
	case "W":
		sink.Log("⚠️ Aviso SAP: " + text)
		return nil
	case "I":
		lower := strings.ToLower(text)
		for _, phrase := range c.BlockingPhrases {
			if strings.Contains(lower, strings.ToLower(phrase)) {
				return &Classification{Message: "Informação SAP: " + text}
			}
		}
	}
	return nil
}
