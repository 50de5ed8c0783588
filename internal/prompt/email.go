package prompt

import (
	"github.com/leadrank/leadrank/internal/leads"
	"github.com/leadrank/leadrank/pkg/llm"
)

// DefaultEmailSystemPrompt seeds every new session's email persona. Operators
// may replace it for the life of a session. The leading and trailing newlines
// are part of the copy.
const DefaultEmailSystemPrompt = `
You are an expert email copywriter specializing in personalized outreach for a professional cohort-based course. 
Your emails should be:
- Warm and engaging
- Personalized based on the individual's motivation and background
- Professional yet conversational
- Highlighting the potential value of the course for their specific career goals
`

const emailUserPrefix = "Generate personalized emails for:\n"

// Emails builds the two-message drafting conversation. The system message is
// the session's configured template, verbatim; the collection rides in the
// user message. Personalization rules live entirely in the template.
func Emails(c leads.Collection, systemPrompt string) llm.Conversation {
	return llm.Conversation{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: emailUserPrefix + marshalCollection(c)},
	}
}
