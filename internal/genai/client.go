package genai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"
)

// geminiClient implements the LLMClient interface using the Google Gemini API.
type geminiClient struct {
	client *genai.Client
	cfg    Config
}

// LLMClient defines the interface for interacting with a generative AI model.
type LLMClient interface {
	// ScreenSampleValues analyzes sampled column values and returns synthetic
	// stand-ins if the column likely contains PII.
	ScreenSampleValues(ctx context.Context, tableName, columnName, dataType string, sampleValues []string) (processedValues []string, wasSynthesized bool, err error)

	// IsAPIKeyValid checks if the configured API key is functional.
	IsAPIKeyValid(ctx context.Context) error

	// Close cleans up any resources used by the client.
	Close() error
}

// Config holds configuration for the GenAI client.
type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, cfg Config) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cannot create Gemini client: API key is missing")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash-latest"
		log.Printf("INFO: Gemini model not specified, defaulting to %s", cfg.Model)
	}

	return &geminiClient{
		client: client,
		cfg:    cfg,
	}, nil
}

// Close cleans up the underlying Gemini client.
func (c *geminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAPIKeyValid checks if the Gemini API key is valid by listing models.
func (c *geminiClient) IsAPIKeyValid(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("gemini client not initialized (likely missing API key)")
	}

	modelIterator := c.client.ListModels(ctx)
	_, err := modelIterator.Next() // Attempt to list one model
	if err != nil {
		if st, ok := status.FromError(err); ok {
			if st.Code() == 16 /* UNAUTHENTICATED */ || st.Code() == 7 /* PERMISSION_DENIED */ {
				return fmt.Errorf("invalid Gemini API key or insufficient permissions: %w", err)
			}
		}
		return fmt.Errorf("failed to verify Gemini API key by listing models: %w", err)
	}
	return nil
}

// ScreenSampleValues asks Gemini whether the sampled values look like PII and,
// if so, generates synthetic replacements. Any API or parsing failure degrades
// to the original values.
func (c *geminiClient) ScreenSampleValues(ctx context.Context, tableName, columnName, dataType string, sampleValues []string) (processedValues []string, wasSynthesized bool, err error) {
	if c.client == nil {
		return sampleValues, false, fmt.Errorf("gemini client not initialized")
	}
	if len(sampleValues) == 0 {
		return []string{}, false, nil
	}

	sampleValuesStr := strings.Join(sampleValues, ", ")

	prompt := fmt.Sprintf(`
	You are an expert in data privacy and database metadata. Analyze the following database column and its sampled values for Personally Identifiable Information (PII).

	**Column Information:**
	- Column Name: %s
	- Table Name: %s
	- Data Type: %s
	- Sampled Values: [%s]

	**Instructions:**
	1. **Analyze for PII:** Based ONLY on the column name, data type, and sampled values, determine if this column is LIKELY to contain PII (e.g., names, emails, phones, addresses, specific IDs). Be conservative; if unsure, assume it's NOT PII.
	2. **Decision & Output:**
	- **If LIKELY PII:** Generate %d synthetic, plausible-looking values that match the likely *pattern* and *data type* (%s) of the original data but are clearly fake. Output these values as a comma-separated list enclosed ONLY in <synthetic_values>...</synthetic_values> tags.
	- **If NOT LIKELY PII (or unsure):** Return the sampled values provided. Output these values as a comma-separated list enclosed ONLY in <original_values>...</original_values> tags.

	**Example Output (Synthetic):** <synthetic_values>user1@example.com, user2@example.net, user3@example.org</synthetic_values>
	**Example Output (Original):** <original_values>Active, Inactive, Pending</original_values>

	Provide your output based on the analysis:
	`, columnName, tableName, dataType, sampleValuesStr, len(sampleValues), dataType) // Request same number of values

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(0.5)
	model.SetMaxOutputTokens(500)
	model.SetTopP(0.9)
	model.SetTopK(40)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return sampleValues, false, nil
	}

	fullResponseText, extractErr := getFirstTextPart(resp)
	if extractErr != nil {
		return sampleValues, false, nil
	}

	syntheticContent, foundSynthetic := extractContentBetween(fullResponseText, "<synthetic_values>", "</synthetic_values>")
	if foundSynthetic {
		values := parseCommaSeparated(syntheticContent)
		if len(values) > 0 {
			log.Printf("INFO: Gemini determined column '%s.%s' might be PII; generated %d synthetic values.", tableName, columnName, len(values))
			return values, true, nil
		}
		return sampleValues, false, nil
	}

	return sampleValues, false, nil
}

// getFirstTextPart extracts the first text part from a Gemini response.
func getFirstTextPart(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		safetyRatings := "none"
		if resp != nil && len(resp.Candidates) > 0 {
			finishReason = resp.Candidates[0].FinishReason.String()
			if resp.Candidates[0].SafetyRatings != nil {
				safetyRatings = fmt.Sprintf("%v", resp.Candidates[0].SafetyRatings)
			}
		}
		return "", fmt.Errorf("empty or incomplete response from Gemini API. FinishReason: %s, SafetyRatings: %s", finishReason, safetyRatings)
	}
	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type: %T", part)
	}
	return string(text), nil
}

// extractContentBetween extracts content between start and end tags from a string.
func extractContentBetween(text, startTag, endTag string) (string, bool) {
	startIndex := strings.Index(text, startTag)
	if startIndex == -1 {
		return "", false
	}
	startIndex += len(startTag)
	endIndex := strings.Index(text[startIndex:], endTag)
	if endIndex == -1 {
		return "", false
	}
	return strings.TrimSpace(text[startIndex : startIndex+endIndex]), true
}

// parseCommaSeparated parses a comma-separated string into a slice of trimmed strings.
func parseCommaSeparated(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
