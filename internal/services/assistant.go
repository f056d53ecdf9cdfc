package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

// DefaultGeminiURL is the generateContent endpoint used when none is configured.
const DefaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// ErrAssistantDisabled is returned when no API key is configured.
var ErrAssistantDisabled = errors.New("clinical assistant is not configured")

// --- Gemini request and response bodies ---

type GeminiRequestPart struct {
	Text string `json:"text"`
}

type GeminiRequestContent struct {
	Role  string              `json:"role"`
	Parts []GeminiRequestPart `json:"parts"`
}

type GeminiRequestBody struct {
	Contents []GeminiRequestContent `json:"contents"`
}

type GeminiResponseCandidate struct {
	Content struct {
		Parts []GeminiRequestPart `json:"parts"`
		Role  string              `json:"role"`
	} `json:"content"`
}

type GeminiResponseBody struct {
	Candidates []GeminiResponseCandidate `json:"candidates"`
}

// Assistant asks Gemini for a clinical analysis of a patient file.
type Assistant struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewAssistant(url, apiKey string) *Assistant {
	if url == "" {
		url = DefaultGeminiURL
	}
	return &Assistant{URL: url, APIKey: apiKey, Client: &http.Client{Timeout: 60 * time.Second}}
}

const assistantInstruction = `You are a clinical assistant for a dental clinic. Analyse the patient file below and give the treating dentist: likely diagnoses, treatment priorities, contraindications from the medical history, and points to check at the next visit. Be concise. Do not invent findings that are not in the file. Answer in the language code given as LANGUAGE.`

// PatientPrompt renders the patient file as the analysis request.
func PatientPrompt(p models.Patient, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "LANGUAGE: %s\n\n", language)
	b.WriteString("PATIENT PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n- Age: %d\n- Gender: %s\n- Category: %s\n\n", p.Name, p.Age, p.Gender, p.Category)

	b.WriteString("MEDICAL HISTORY:\n")
	var conditions []string
	for _, c := range p.StructuredMedicalHistory {
		if c.Active {
			conditions = append(conditions, c.Condition)
		}
	}
	fmt.Fprintf(&b, "- Systemic conditions: %s\n", orNone(strings.Join(conditions, ", ")))
	fmt.Fprintf(&b, "- General medical notes: %s\n\n", orNone(p.MedicalHistory))

	b.WriteString("DENTAL HISTORY:\n")
	for _, q := range p.PatientQueries {
		fmt.Fprintf(&b, "- %s: %s\n", q.QuestionID, q.Answer)
	}
	fmt.Fprintf(&b, "- Additional dental notes: %s\n\n", orNone(p.DentalHistoryNotes))

	b.WriteString("DENTAL CHART:\n")
	numbers := make([]int, 0, len(p.Teeth))
	for n := range p.Teeth {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)
	for _, n := range numbers {
		t := p.Teeth[n]
		line := fmt.Sprintf("- Tooth %d: %s", n, t.Status)
		if len(t.Surfaces) > 0 {
			line += " (" + strings.Join(t.Surfaces, ", ") + ")"
		}
		if t.Notes != "" {
			line += " - Note: " + t.Notes
		}
		b.WriteString(line + "\n")
	}
	if len(numbers) == 0 {
		b.WriteString("- No findings in chart.\n")
	}

	fmt.Fprintf(&b, "\nDOCTOR'S CLINICAL NOTES:\n%s\n", orNone(p.Notes))
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

// Insights sends prompt to Gemini and returns the first candidate's text.
func (a *Assistant) Insights(ctx context.Context, prompt string) (string, error) {
	if a == nil || a.APIKey == "" {
		return "", ErrAssistantDisabled
	}
	requestBody := GeminiRequestBody{
		Contents: []GeminiRequestContent{
			{Role: "user", Parts: []GeminiRequestPart{{Text: assistantInstruction}}},
			{Role: "model", Parts: []GeminiRequestPart{{Text: "Understood. Send the patient file."}}},
			{Role: "user", Parts: []GeminiRequestPart{{Text: prompt}}},
		},
	}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL+"?key="+a.APIKey, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.Client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant returned %d: %s", httpResp.StatusCode, bytes.TrimSpace(respBody))
	}

	var geminiResp GeminiResponseBody
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("assistant returned an empty response")
	}
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}
