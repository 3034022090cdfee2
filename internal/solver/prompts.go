package solver

import (
	"encoding/json"
	"fmt"

	"github.com/crosscut-io/crosscut/internal/aggregator"
)

const solverSystemPrompt = `You are an expert software engineer and DevOps specialist who provides actionable solutions for production errors. Always respond with valid JSON only.`

func solutionPrompt(report aggregator.Report) string {
	context, _ := json.MarshalIndent(report, "", "  ")

	return fmt.Sprintf(`Based on the following aggregated error classification, provide exactly 3 solutions ranked by effectiveness and practicality.

%s

Provide a JSON response with this structure:
{
    "solutions": [
        {
            "title": "Solution title (be specific and actionable)",
            "description": "What this solution does and why it works",
            "steps": ["Step 1 (specific action)", "Step 2 (specific action)"],
            "effectiveness": 85,
            "complexity": "Low|Medium|High",
            "time_estimate": "Brief time estimate (e.g. '5 minutes', '1 hour', '1 day')",
            "risk": "Low|Medium|High"
        }
    ]
}

Requirements:
- Provide exactly 3 solutions
- Effectiveness is an integer from 0 to 100, best solution highest
- Solutions should be practical and actionable
- Be specific and technical
- Focus on root causes, not just symptoms

Return ONLY valid JSON, no additional text.`, string(context))
}
