package prompt

import "strings"

// ResultColumns is the mandated shape of the scoring table, in order. The
// document instructs the model to emit exactly these columns; whether it
// complies is the model's problem, not checked here.
var ResultColumns = []string{
	"Full Name",
	"Preferred Name",
	"Email",
	"Lead Score",
	"Reason",
	"LinkedIn",
	"Motivation",
}

// tableHeader renders the markdown header row embedded in the scoring
// document.
func tableHeader() string {
	return "| " + strings.Join(ResultColumns, " | ") + " |"
}
