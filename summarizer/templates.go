package summarizer

import (
	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/model"
)

// SystemBase establishes the assistant's domain and tone for every exchange.
const SystemBase = "You are an AI assistant specialized in summarizing and analyzing EU regulatory and contractual documents for banking staff. " +
	"Avoid legal jargon, keep a concise business tone, and respond in clear professional English unless explicitly instructed otherwise."

// TemplatePair holds the two instructions owned by a task: one applied to
// each window, one applied to the concatenated partial outputs.
type TemplatePair struct {
	Chunk string
	Final string
}

var taskTemplates = map[model.Task]TemplatePair{
	model.TaskSummary: {
		Chunk: "Extract up to 3 concise bullet points capturing the core obligations, constraints, and operational impacts in this text.",
		Final: "Merge the bullet points into a de-duplicated structured summary (Sections: Scope, Obligations, Risks, Operational Notes). Limit to ~300 words.",
	},
	model.TaskUnfavorableElements: {
		Chunk: "List up to 3 potentially unfavorable or high-risk clauses for the signatory. For each: Bullet: <short clause gist> – Rationale (<risk type>).",
		Final: "Consolidate and de-duplicate all bullets. Group by Risk Type. Output format:\nRisk Type: ...\n- Clause gist – Rationale",
	},
	model.TaskConflicts: {
		Chunk: "Identify at most 2 potential internal conflicts or inconsistencies in this segment. Format each as: Conflict: <Clause A gist> VS <Clause B gist> – Explanation.",
		Final: "Aggregate conflicts removing duplicates. Prioritize those impacting obligations, liability, data protection, or timeline. Output a table-like list (no markdown table needed).",
	},
}

// Templates returns the instruction pair for task. Unknown tasks resolve to
// the summary pair; the silent fallback is deliberate so free-form task
// names from the UI still produce a usable result.
func Templates(task model.Task) TemplatePair {
	if pair, ok := taskTemplates[task]; ok {
		return pair
	}
	return taskTemplates[model.TaskSummary]
}
