// Package prompt assembles the conversations sent to the model gateway. The
// instructional text is established product copy: point values, wording, and
// the trailing double spaces (markdown line breaks) are all load-bearing and
// must survive edits byte for byte.
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/leadrank/leadrank/internal/leads"
	"github.com/leadrank/leadrank/pkg/llm"
)

const scoringSystem = "You are a lead scoring expert specializing in analyzing potential course participants."

// scoringDocument carries three slots: the mandated table header, the record
// count, and the serialized collection.
const scoringDocument = `You are a marketing genius that works for online cohort-based course instructors. You are trained to find and score leads based on user engagement across various channels. Your task is to generate a lead scoring table that identifies high-potential candidates for the course. 

Here are the scoring criteria you should consider:  
- Channel Presence: Max 50 points  
- Professional Experience: Max 50 points  
- Career Motivation: Max 30 points  
- Geographic Relevance: Max 30 points  

The scoring breakdown is as follows:  
- Cross-Channel Presence: 50 points  
- Product Management/Tech Experience: 60 points  
- Clear Career Goal Alignment: 40 points  
- Location Relevance: 40 points  

You will analyze the provided lead data, calculate lead scores based on the scoring methodology, and generate a table with the specified output format. Ensure that the user with the highest lead score appears at the top of the table. For each lead, provide a clear rationale for their score. 

Make sure to output the information in a table format with the following columns:  
%s

It is crucial that you process and include ALL leads from the input data. The current lead count is: %d. Ensure the following:  
- Verify data completeness  
- Ensure professional and ethical lead scoring  
- No fabricated information  
- Respect data privacy  

Your output should strictly adhere to the table format without any additional commentary or information.

<Lead Data>
%s
</Lead Data>`

// Scoring builds the two-message analysis conversation: a fixed system
// primer, then the scoring document with the whole collection embedded.
// Every record rides along regardless of size; there is no chunking, so very
// large collections hit the model's context limit rather than being sampled.
func Scoring(c leads.Collection) llm.Conversation {
	doc := fmt.Sprintf(scoringDocument, tableHeader(), len(c), marshalCollection(c))
	return llm.Conversation{
		{Role: llm.RoleSystem, Content: scoringSystem},
		{Role: llm.RoleUser, Content: doc},
	}
}

// marshalCollection pretty-prints the full collection. Collections come from
// the parsers, so values are plain decoded JSON and marshaling cannot fail.
func marshalCollection(c leads.Collection) string {
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}
