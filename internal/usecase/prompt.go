package usecase

import (
	"strings"

	"dzine-mind/internal/domain"
	"dzine-mind/internal/modes"
)

// Model variants targeted by the router.
const (
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-2.5-flash-image"
)

const (
	samplingTemperature = float32(0.7)
	fallbackReplyText   = "Strategic synthesis complete. No textual output generated."
)

// editVocabulary is matched as case-insensitive substrings of the prompt.
// It is a lexical approximation of edit intent, not a classifier: "address"
// contains "add" and routes like an edit request.
var editVocabulary = []string{"filter", "add", "remove", "change", "edit", "aesthetic", "propose"}

// wantsImageEdit reports whether a request with an attachment should be
// routed to the image-capable model.
func wantsImageEdit(text string, hasAttachment bool) bool {
	if !hasAttachment {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range editVocabulary {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// systemNote renders the per-request note prepended to the user's text.
func systemNote(mode domain.Mode, includeDirectives bool) string {
	note := modes.Instruction(mode)
	if includeDirectives {
		note += "\nCORE DIRECTIVES:\n" + modes.DirectiveList()
	}
	return "[SYSTEM NOTE: " + note + "]"
}

// composeMessage builds the outgoing parts: the attachment first when
// present, then the system note followed by the caller's raw text.
func composeMessage(mode domain.Mode, text string, att *domain.Attachment, includeDirectives bool) []domain.Part {
	parts := make([]domain.Part, 0, 2)
	if att != nil {
		a := *att
		parts = append(parts, domain.Part{Inline: &a})
	}
	parts = append(parts, domain.Part{Text: systemNote(mode, includeDirectives) + "\n\n" + text})
	return parts
}

// historyToContents maps turns onto the model's role-tagged content format.
// Turns with neither text nor attachment carry nothing and are skipped.
func historyToContents(history []domain.Turn) []domain.Content {
	out := make([]domain.Content, 0, len(history))
	for _, t := range history {
		role := domain.RoleUser
		if t.Speaker == domain.SpeakerAssistant {
			role = domain.RoleModel
		}
		var parts []domain.Part
		if t.Text != "" {
			parts = append(parts, domain.Part{Text: t.Text})
		}
		if t.Attachment != nil {
			a := *t.Attachment
			parts = append(parts, domain.Part{Inline: &a})
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, domain.Content{Role: role, Parts: parts})
	}
	return out
}

// parseReply folds response parts into a reply. Text parts are concatenated
// in order; only the first inline part is kept and the number of dropped
// inline parts is returned.
func parseReply(parts []domain.Part) (Reply, int) {
	var (
		b       strings.Builder
		reply   Reply
		dropped int
	)
	for _, p := range parts {
		switch {
		case p.Inline != nil:
			if reply.Attachment == nil {
				a := *p.Inline
				reply.Attachment = &a
			} else {
				dropped++
			}
		case p.Text != "":
			b.WriteString(p.Text)
		}
	}
	reply.Text = b.String()
	if reply.Text == "" && reply.Attachment == nil {
		reply.Text = fallbackReplyText
	}
	return reply, dropped
}
