package classifier

import "fmt"

const systemPrompt = `You are an expert log analyst. You classify application and infrastructure errors from log excerpts and report structured findings. Always respond with valid JSON only.`

const strictRetryNote = ` Your previous reply was not parseable. Return ONLY a single valid JSON object, with no markdown fences and no text before or after it.`

func classifyPrompt(filename, excerpt string) string {
	return fmt.Sprintf(`Analyze the following log errors and provide a structured classification.

Log File: %s
Error Context:
%s

Provide a JSON response with this structure:
{
    "errors": [
        {
            "error_type": "Brief error type (e.g. 'Database Connection Timeout', 'Authentication Failure')",
            "severity": "Critical|High|Medium|Low",
            "message": "Error message summary",
            "causes": ["specific root cause 1", "specific root cause 2"]
        }
    ],
    "key_findings": ["finding 1", "finding 2"]
}

Requirements:
- Be specific and technical
- Focus on root causes, not just symptoms
- One entry per distinct error type

Return ONLY valid JSON, no additional text.`, filename, excerpt)
}
