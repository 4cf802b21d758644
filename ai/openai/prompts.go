package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/clausewise/core"
)

const noContext = "No context provided."

const extractionSystemPrompt = `You analyze sections of policy and compliance documents and extract clauses.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting, or acknowledgment.
Start your response directly with the opening brace { and end with the closing brace }.
Your output must follow this shape:

{"clauses": [{"clause_text": "...", "area": "...", "relevance": 0.0}]}

Rules:
- A clause is one self-contained obligation, permission, prohibition or definition stated in the section.
- clause_text quotes or closely paraphrases the section. Do not invent clauses.
- area must be exactly one of the listed values.
- relevance is a number from 0 (unrelated) to 1 (directly answers) measuring how relevant the clause is to the context.
- If the section contains no clauses, return {"clauses": []}.
- The JSON must parse without errors; no trailing commas and no extra keys.`

const extractionPromptTemplate = `Analyze the section and generate clauses:

Section: %s

Each clause must have: text, area (from list), and relevance (0-1).
Areas: %s.
Context: %s
`

// buildExtractionPrompt creates the per-section prompt with the areas embedded.
func buildExtractionPrompt(sectionText string, areas []core.Area, contextHint string) string {
	if strings.TrimSpace(contextHint) == "" {
		contextHint = noContext
	}
	return fmt.Sprintf(extractionPromptTemplate,
		sectionText,
		strings.Join(core.AreaNames(areas), ", "),
		contextHint)
}

const judgeSystemPrompt = `You are a validator responsible for validating clauses extracted from documents.
You will receive a clause and the context it must be consistent with.
Compare the clause against the context and decide whether it is supported.

Output ONLY valid JSON of the form:
{"clause": "...", "status": "valid" | "invalid", "message": "..."}

- status is "valid" only when the context supports the clause.
- message briefly explains the verdict.`

// buildJudgePrompt creates the validation prompt for one clause.
func buildJudgePrompt(clauseText, retrievedContext string) string {
	return fmt.Sprintf("Validate the following clause: %s in the context of: %s", clauseText, retrievedContext)
}

const answerSystemPrompt = `You answer questions about company policies using only the validated clauses you are given.
Be concise and precise. Do not cite clauses that were not provided.`

// buildAnswerPrompt creates the synthesis prompt.
func buildAnswerPrompt(question, evidenceText, documentLabel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a response to the following question: %s\n\n", question)
	fmt.Fprintf(&b, "Based on the following validated clauses: \n %s\n\n", evidenceText)
	fmt.Fprintf(&b, "In the end of your response, refer to the document: %s\n\n", documentLabel)
	return b.String()
}
