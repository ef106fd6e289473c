package services

import (
	"context"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
)

func TestParseAnalysisResultFencedCodeBlock(t *testing.T) {
	raw := "Here is my review:\n```json\n{\"summary\": \"Looks good\", \"score\": 88, \"comments\": [{\"content\": \"Consider a guard clause\", \"type\": \"style\", \"severity\": \"low\", \"filePath\": \"main.go\", \"lineNumber\": 10}]}\n```\nThanks!"

	result := parseAnalysisResult(raw)

	assert.Equal(t, "Looks good", result.Summary)
	assert.Equal(t, 88, result.Score)
	assert.Len(t, result.Comments, 1)
	assert.Equal(t, "Consider a guard clause", result.Comments[0].Content)
	assert.Equal(t, "style", result.Comments[0].Type)
	assert.Equal(t, "main.go", result.Comments[0].FilePath)
	assert.Equal(t, 10, result.Comments[0].LineNumber)
}

func TestParseAnalysisResultBareObject(t *testing.T) {
	raw := "Review below.\n{\"summary\": \"Solid change\", \"score\": 92, \"comments\": []}\n"

	result := parseAnalysisResult(raw)

	assert.Equal(t, "Solid change", result.Summary)
	assert.Equal(t, 92, result.Score)
	assert.Empty(t, result.Comments)
}

func TestParseAnalysisResultWholeResponse(t *testing.T) {
	raw := `{"summary": "Fine", "score": 70, "comments": []}`

	result := parseAnalysisResult(raw)

	assert.Equal(t, "Fine", result.Summary)
	assert.Equal(t, 70, result.Score)
}

func TestParseAnalysisResultClampsScore(t *testing.T) {
	high := parseAnalysisResult(`{"summary": "s", "score": 250, "comments": []}`)
	assert.Equal(t, 100, high.Score)

	low := parseAnalysisResult(`{"summary": "s", "score": -5, "comments": []}`)
	assert.Equal(t, 1, low.Score)
}

func TestParseAnalysisResultCapsComments(t *testing.T) {
	raw := `{"summary": "s", "score": 50, "comments": [
		{"content": "1"}, {"content": "2"}, {"content": "3"}, {"content": "4"},
		{"content": "5"}, {"content": "6"}, {"content": "7"}, {"content": "8"},
		{"content": "9"}, {"content": "10"}
	]}`

	result := parseAnalysisResult(raw)

	assert.Len(t, result.Comments, maxFindings)
}

func TestParseAnalysisResultMalformedFallsBack(t *testing.T) {
	result := parseAnalysisResult("I could not produce JSON, sorry.")

	assert.Contains(t, result.Summary, "response format was invalid")
	assert.Equal(t, 75, result.Score)
	assert.Len(t, result.Comments, 1)
	assert.Contains(t, result.Comments[0].Content, "parsing error")
	assert.Equal(t, "logic", result.Comments[0].Type)
	assert.Equal(t, "medium", result.Comments[0].Severity)
}

func TestParseAnalysisResultInvalidStructureFallsBack(t *testing.T) {
	// well-formed JSON missing required keys still falls back
	for _, raw := range []string{
		`{"score": 80, "comments": []}`,
		`{"summary": "", "score": 80, "comments": []}`,
		`{"summary": "s", "score": "eighty", "comments": []}`,
		`{"summary": "s", "score": 80}`,
	} {
		result := parseAnalysisResult(raw)
		assert.Equal(t, 75, result.Score, "raw: %s", raw)
		assert.Contains(t, result.Summary, "response format was invalid", "raw: %s", raw)
	}
}

func TestAnalyzeReturnsParsedVerdict(t *testing.T) {
	defer gock.Off()

	gock.New("https://api.openai.com").
		Post("/v1/chat/completions").
		Reply(200).
		JSON(map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message": map[string]interface{}{
						"role":    "assistant",
						"content": "```json\n{\"summary\": \"Well structured\", \"score\": 81, \"comments\": []}\n```",
					},
				},
			},
		})

	analyzer := NewAnalyzer("test-key", "gpt-4o-mini")
	result, err := analyzer.Analyze(context.Background(), "diff --git a/x b/x", "Add feature")

	assert.NoError(t, err)
	assert.Equal(t, "Well structured", result.Summary)
	assert.Equal(t, 81, result.Score)
}

func TestAnalyzeTransportFailure(t *testing.T) {
	defer gock.Off()

	gock.New("https://api.openai.com").
		Post("/v1/chat/completions").
		Reply(500).
		JSON(map[string]string{"error": "overloaded"})

	analyzer := NewAnalyzer("test-key", "gpt-4o-mini")
	_, err := analyzer.Analyze(context.Background(), "diff", "title")

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrAnalysis)
}

func TestAnalyzeEmptyCompletion(t *testing.T) {
	defer gock.Off()

	gock.New("https://api.openai.com").
		Post("/v1/chat/completions").
		Reply(200).
		JSON(map[string]interface{}{"choices": []map[string]interface{}{}})

	analyzer := NewAnalyzer("test-key", "gpt-4o-mini")
	_, err := analyzer.Analyze(context.Background(), "diff", "title")

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrAnalysis)
}
