package analyzer

import (
	"bytes"
	"text/template"
)

var promptTemplate = template.Must(template.New("prompt").Parse(`You are a business opportunity analyst for SaaS and automation products.

Task: analyze the following business problem and score it across multiple dimensions.

Problem description:
{{.ProblemText}}

Source context:
- Platform: {{or .Metadata.Source "Unknown"}}
- Engagement: {{.Metadata.Upvotes}} upvotes, {{.Metadata.Comments}} comments
- URL: {{or .Metadata.URL "N/A"}}

Scoring criteria (0-10 for each):

1. Pain and urgency
   10: critical problem with direct economic impact, immediate need
   7-9: significant frustration, clear pain points
   4-6: noticeable inconvenience but not blocking
   1-3: nice to have without urgency
   0: no real pain detected

2. Willingness to pay
   10: clear budget mentioned, high-value sector (fintech, healthcare, legal)
   7-9: B2B sector with known purchasing power
   4-6: mention of budget or willingness to pay
   1-3: low-budget sector
   0: non-monetizable segment

3. Technical feasibility
   10: MVP possible in 1-2 weeks with existing APIs and tools
   7-9: MVP in 1 month with a standard stack
   4-6: requires learning 1-2 new technologies
   1-3: requires specialized expertise
   0: not feasible for a solo developer

4. AI/automation synergy
   10: perfect fit for AI or automation (text processing, data analysis, prediction)
   7-9: core features can be automated with AI
   4-6: AI can enhance the experience
   1-3: mostly manual solution
   0: not applicable for AI

Also identify the sector (e.g. "Healthcare - Dental Clinics"), the best solution type
(one of "SaaS Web App", "Mobile App", "Automation Workflow", "AI Agent", "API Service",
"Browser Extension"), a proposed app (name, 2-3 sentence description, 3-5 key features,
pricing model with range, MVP timeline), the ideal users (profile, market size or "Unknown",
buying capacity Low, Medium or High) and 3 tags.

Output format (JSON):
{
  "scores": {"pain": 0, "willingness_to_pay": 0, "technical_feasibility": 0, "ai_synergy": 0},
  "justifications": {"pain": "", "willingness_to_pay": "", "technical_feasibility": "", "ai_synergy": ""},
  "sector": "",
  "solution_type": "",
  "proposed_app": {"name": "", "description": "", "key_features": [], "pricing_model": "", "mvp_estimate": ""},
  "ideal_users": {"profile": "", "market_size": "", "buying_capacity": ""},
  "tags": []
}

Return ONLY valid JSON, no additional text.
`))

// BuildPrompt renders the scoring prompt for an LLM backend
func BuildPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
