package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	digestdomain "resurface-backend/internal/digest/domain"
	notedomain "resurface-backend/internal/note/domain"
	userdomain "resurface-backend/internal/user/domain"
	"resurface-backend/pkg/mailer"
)

const excerptLimit = 240

// renderDigest builds the outbound email for one digest. Items keep their
// selection order; each entry is the note title plus a short excerpt.
func renderDigest(u *userdomain.User, items []*digestdomain.DigestItem, docs map[string]*notedomain.Document, from string) *mailer.Message {
	var text strings.Builder
	var html strings.Builder

	greeting := "Hi"
	if u.Name != "" {
		greeting = "Hi " + u.Name
	}
	fmt.Fprintf(&text, "%s,\n\nHere are %d notes worth another look:\n\n", greeting, len(items))
	fmt.Fprintf(&html, "<p>%s,</p><p>Here are %d notes worth another look:</p><ol>", greeting, len(items))

	for _, item := range items {
		doc := docs[item.DocumentID]
		title := doc.Title
		if title == "" {
			title = "Untitled note"
		}
		fmt.Fprintf(&text, "%d. %s\n", item.Position, title)
		fmt.Fprintf(&html, "<li><strong>%s</strong>", title)
		if excerpt := excerptOf(doc.Content); excerpt != "" {
			fmt.Fprintf(&text, "   %s\n", excerpt)
			fmt.Fprintf(&html, "<br>%s", excerpt)
		}
		text.WriteString("\n")
		html.WriteString("</li>")
	}

	text.WriteString("Until next time,\nResurface\n")
	html.WriteString("</ol><p>Until next time,<br>Resurface</p>")

	return &mailer.Message{
		From:    from,
		To:      []string{u.Email},
		Subject: fmt.Sprintf("Your digest: %d notes to revisit", len(items)),
		Text:    text.String(),
		HTML:    html.String(),
	}
}

// excerptOf returns the first non-empty line of content, truncated on a rune
// boundary.
func excerptOf(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if utf8.RuneCountInString(line) > excerptLimit {
			runes := []rune(line)
			return string(runes[:excerptLimit]) + "..."
		}
		return line
	}
	return ""
}
