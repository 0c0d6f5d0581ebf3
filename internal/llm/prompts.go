// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ComparabilityPrompt asks whether the technologies can be compared head to
// head. The model must answer with a single {"is_comparable": bool} object.
func ComparabilityPrompt(technologies []string) string {
	return fmt.Sprintf(`You are a technology classification expert. The user wants to compare the following technologies: %s.
Are these technologies directly comparable for a detailed technical report? For example, "Next.js" and "Nuxt.js" are comparable (both are full-stack frameworks). "Next.js" and "Formik" are not (one is a framework, one is a form library).
Respond with only a single JSON object with one key, "is_comparable", set to either true or false.`,
		strings.Join(technologies, ", "))
}

// StagePlanPrompt asks for the report's section titles as a JSON array of
// strings.
func StagePlanPrompt(technologies []string, mode string) string {
	return fmt.Sprintf(`You are a technology analyst creating the structure for a technical report.
The user wants a report on: **%s**. The report mode is: **%s**.

- If the report mode is "single", create a detailed, standalone report structure.
- If the report mode is "comparison", create a structure that directly compares the technologies against each other for each key aspect. Avoid creating separate sections for each technology.

Example for a "comparison" of Next.js vs Remix:
["Introduction", "Comparative Analysis: Performance", "Comparative Analysis: Scalability", "Comparative Analysis: Developer Experience", "Conclusion"]

Respond with only a single, valid JSON array of the chosen section titles.`,
		strings.Join(technologies, ", "), mode)
}

// QueryPrompt asks for one web search query for a report section. The model
// must return the bare query string.
func QueryPrompt(versus, stage string, year int) string {
	return fmt.Sprintf(`You are a search query expert, tasked with finding information for a high-quality technical report comparing %s. The current year is %d.
For the report section "%s", generate a single, highly effective web search query.
The query must be comparative. For example, for "Performance", a good query would be "%s performance benchmarks %d". For "Developer Experience", a good query would be "comparing developer experience of %s".
Return only the single search query. Do not add any other text.`,
		versus, year, stage, versus, year, versus)
}

// RankBatchItem is the shape of one source in a ranking prompt.
type RankBatchItem struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// RankPrompt asks the model to tag and score a batch of sources for one
// report section. The response must be a JSON array of relevance judgments.
func RankPrompt(stage string, technologies []string, batch []RankBatchItem) string {
	techJSON, _ := json.Marshal(technologies)
	batchJSON, _ := json.Marshal(batch)
	return fmt.Sprintf(`You are a data analyst. The user wants a report on %s. For each source in the JSON list below, perform two tasks:
1. Identify which of the listed technologies are discussed in the source's title and snippet.
2. Determine the source's relevance to the report section: "%s". Rate relevance on a scale from 0.0 to 1.0.

Respond with only a single, valid JSON array. Each object in the array must correspond to an input source and contain its "id", the list of "discussed_technologies", and the "relevance_score".

Input:
%s`,
		techJSON, stage, batchJSON)
}

// SectionPrompt asks for the prose of one report section, cited strictly
// from the supplied context.
func SectionPrompt(stage string, technologies []string, context string) string {
	techs := strings.Join(technologies, ", ")
	return fmt.Sprintf(`You are a meticulous Senior Technology Analyst writing a technical report for a CTO. Your tone must be objective, data-driven, and deeply technical.
Your current task is to write the "%s" section of the report.
If the report is a comparison of %s, you must synthesize information and create a comparative analysis for this section.
If the report is for a single technology (%s), focus solely on that technology.

Instructions:
- Use ONLY the provided context. Do not invent, infer, or use any external knowledge.
- Every single statement of fact or data point MUST be followed by a citation, like this: [source_url].
- If multiple sources support a single point, cite them together: [source_url_1, source_url_2].
- If the context lacks information for a specific point, you MUST explicitly state: "Information regarding [specific point] was not found in the analyzed sources."
- If you find conflicting information, present both sides and cite their respective sources.
- Do NOT include the section title in your response.
- Structure the output in clear, concise markdown.

CONTEXT:
---
%s
---`,
		stage, techs, techs, context)
}

// CritiquePrompt asks for the closing quality review of the whole draft.
func CritiquePrompt(draft string) string {
	return fmt.Sprintf(`You are a Chief Technology Officer reviewing a report generated by an AI analyst. Your task is to perform a final, critical quality check and write the "Final Assessment" section.
Read the entire report draft below. Your goal is to identify weaknesses a senior engineering leader would spot and provide a conclusive summary.

Analyze the report for the following:
1. Contradictions: are there any statements that contradict each other?
2. Weak justifications: are any conclusions based on weak or single sources?
3. Missing citations: are there any statements of fact that are missing a citation?
4. Critical gaps: what crucial information is missing that would be required for a technology adoption decision?

Based on your analysis, write a concise "Final Assessment" section in markdown. This should be your final verdict and summary. If the report is sound, state that. If it has weaknesses, clearly articulate them.

REPORT DRAFT:
---
%s
---`, draft)
}
