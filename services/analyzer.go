package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"

	openai "github.com/sashabaranov/go-openai"
)

// ErrAnalysis wraps transport and auth failures of the reviewing model call.
// Unlike a malformed response, which degrades to a fallback result, an
// ErrAnalysis fails the active review.
var ErrAnalysis = errors.New("ai analysis failed")

const maxFindings = 8

const analyzerSystemPrompt = "You are an expert code reviewer with deep knowledge of software engineering best practices, security, performance optimization, and clean code principles."

// AnalysisComment is one observation returned by the model.
type AnalysisComment struct {
	Content    string `json:"content"`
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	FilePath   string `json:"filePath,omitempty"`
	LineNumber int    `json:"lineNumber,omitempty"`
}

// AnalysisResult is the structured verdict of one review.
type AnalysisResult struct {
	Summary  string            `json:"summary"`
	Score    int               `json:"score"`
	Comments []AnalysisComment `json:"comments"`
}

// Analyzer submits diffs to the OpenAI chat completion API and parses the
// structured verdict.
type Analyzer struct {
	client *openai.Client
	model  string
}

func NewAnalyzer(apiKey, model string) *Analyzer {
	return &Analyzer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Analyze reviews the diff and returns the verdict. A response the model
// formatted badly still yields a valid fallback result; only call failures
// return an error.
func (a *Analyzer) Analyze(ctx context.Context, diffContent, prTitle string) (*AnalysisResult, error) {
	log.Printf("starting ai analysis for pr: %s", prTitle)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildAnalysisPrompt(diffContent, prTitle)},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: no analysis content received", ErrAnalysis)
	}

	return parseAnalysisResult(resp.Choices[0].Message.Content), nil
}

func buildAnalysisPrompt(diffContent, prTitle string) string {
	return fmt.Sprintf(`
Please analyze this pull request and provide a comprehensive code review.

PR Title: %s

Code Changes:
`+"```diff\n%s\n```"+`

Please provide your analysis in the following JSON format:
{
  "summary": "Brief overall assessment of the changes",
  "score": 85,
  "comments": [
    {
      "content": "Specific feedback about the code",
      "type": "security|performance|style|logic|best-practice",
      "severity": "low|medium|high",
      "filePath": "path/to/file.js",
      "lineNumber": 42
    }
  ]
}

Focus on:
1. Security vulnerabilities or concerns
2. Performance implications
3. Code style and maintainability
4. Logic errors or potential bugs
5. Best practices and design patterns

Provide constructive, specific feedback. Score should be 1-100 based on code quality.
Be concise but thorough. Limit to maximum %d comments for readability.
`, prTitle, diffContent, maxFindings)
}

var (
	fencedJSONRe = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*\\})\\s*```")
	braceJSONRe  = regexp.MustCompile(`\{[\s\S]*\}`)
)

// parseAnalysisResult extracts the JSON verdict from the raw model response.
// Tries a fenced code block first, then any brace-delimited object, then the
// whole response. Anything unparsable yields the fallback result so the
// pipeline always has a displayable verdict.
func parseAnalysisResult(raw string) *AnalysisResult {
	jsonStr := raw
	if m := fencedJSONRe.FindStringSubmatch(raw); m != nil {
		jsonStr = m[1]
	} else if m := braceJSONRe.FindString(raw); m != "" {
		jsonStr = m
	}

	var parsed struct {
		Summary  *string           `json:"summary"`
		Score    *float64          `json:"score"`
		Comments []AnalysisComment `json:"comments"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		log.Printf("failed to parse ai analysis: %v", err)
		return fallbackResult()
	}
	if parsed.Summary == nil || *parsed.Summary == "" || parsed.Score == nil || parsed.Comments == nil {
		log.Printf("ai analysis response has invalid structure")
		return fallbackResult()
	}

	comments := parsed.Comments
	if len(comments) > maxFindings {
		comments = comments[:maxFindings]
	}

	return &AnalysisResult{
		Summary:  *parsed.Summary,
		Score:    ClampScore(int(*parsed.Score)),
		Comments: comments,
	}
}

// fallbackResult is the fixed verdict substituted for an unparsable model
// response.
func fallbackResult() *AnalysisResult {
	return &AnalysisResult{
		Summary: "AI analysis completed but response format was invalid. Manual review recommended.",
		Score:   75,
		Comments: []AnalysisComment{
			{
				Content:  "AI analysis encountered a parsing error. Please review changes manually.",
				Type:     "logic",
				Severity: "medium",
			},
		},
	}
}

// ClampScore bounds a review score into [1,100].
func ClampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 100 {
		return 100
	}
	return score
}
