package ai

import (
	"fmt"
	"strings"

	"github.com/finalyzer/support/backend/internal/model/profile"
)

const basePrompt = `You are FinAlyzer Support AI, the support agent for FinAlyzer, a financial analytics and consolidation product.
Answer questions about features, multi-currency consolidation, reporting formats, analytics, data refresh, the mobile app and security.
Be concise and friendly. Use short paragraphs, **bold** for key terms and "-" bullets for lists. Include links only when you are sure they exist.
If you do not know an answer, say so and suggest contacting the FinAlyzer team.`

// BuildSystemPrompt personalizes the support prompt with the visitor profile.
func BuildSystemPrompt(p *profile.UserProfile) string {
	if p == nil {
		return basePrompt
	}

	var builder strings.Builder
	builder.WriteString(basePrompt)
	builder.WriteString("\n\nYou are talking to:")
	writeField(&builder, "Name", p.Name)
	writeField(&builder, "Email", p.Email)
	writeField(&builder, "Industry", p.Industry)
	writeField(&builder, "Organization", p.Organization)
	builder.WriteString("\nTailor examples to their industry when it helps.")
	return builder.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(fmt.Sprintf("\n- %s: %s", label, value))
}
