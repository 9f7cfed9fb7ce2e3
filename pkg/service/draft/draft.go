package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

const (
	// MaxSteps bounds a single drafting request
	MaxSteps = 12

	maxListEntries = 8
)

// Candidate is one AI-drafted step before validation. It is untrusted
// input: consumers run it through the same step validation and rebuild
// trigger as human-entered data.
type Candidate struct {
	Description string
	Hazards     string
	Risks       string
	Controls    string
	PPE         string
	Regulations string
}

// Service drafts candidate steps for an APR through an LLM session
type Service struct {
	llmClient gollem.LLMClient
}

// New creates a drafting service with the provided LLM client
func New(llmClient gollem.LLMClient) (*Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &Service{llmClient: llmClient}, nil
}

type llmStep struct {
	Description string   `json:"description"`
	Hazards     []string `json:"hazards"`
	Risks       []string `json:"risks"`
	Controls    []string `json:"controls"`
	PPE         []string `json:"ppe"`
	Regulations []string `json:"regulations"`
}

type llmResponse struct {
	Steps []llmStep `json:"steps"`
}

// Draft generates up to maxSteps candidate steps for the activity
// described by the APR. maxSteps is clamped to [1, MaxSteps].
func (s *Service) Draft(ctx context.Context, apr *model.APR, maxSteps int) ([]*Candidate, error) {
	if maxSteps < 1 {
		maxSteps = 1
	}
	if maxSteps > MaxSteps {
		maxSteps = MaxSteps
	}

	session, err := s.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(buildSystemPrompt(maxSteps)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(apr)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("LLM returned no content")
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}

	candidates := make([]*Candidate, 0, maxSteps)
	seen := make(map[string]struct{})
	for _, step := range parsed.Steps {
		if len(candidates) >= maxSteps {
			break
		}

		description := model.NormalizeText(step.Description, false)
		if description == "" || isGenericText(description) {
			continue
		}
		key := model.NormalizedKey(description)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		candidates = append(candidates, &Candidate{
			Description: description,
			Hazards:     joinEntries(step.Hazards),
			Risks:       joinEntries(step.Risks),
			Controls:    joinEntries(step.Controls),
			PPE:         joinEntries(step.PPE),
			Regulations: joinEntries(step.Regulations),
		})
	}

	return candidates, nil
}

// joinEntries normalizes, dedups and bounds a drafted list before it is
// folded into the semicolon-separated step field
func joinEntries(values []string) string {
	out := model.UniqueStrings(values)
	if len(out) > maxListEntries {
		out = out[:maxListEntries]
	}
	return model.JoinList(out)
}

// isGenericText drops filler descriptions the model emits when it has
// nothing concrete to say
func isGenericText(value string) bool {
	generic := []string{
		"etapa", "passo", "step", "n/a", "nao se aplica",
	}
	key := model.NormalizedKey(value)
	for _, g := range generic {
		if key == g {
			return true
		}
	}
	return false
}

func buildSystemPrompt(maxSteps int) string {
	var sb strings.Builder
	sb.WriteString("You are a workplace safety engineer drafting a preliminary risk assessment (APR).\n\n")
	sb.WriteString("## Instructions:\n\n")
	fmt.Fprintf(&sb, "1. Break the described activity into at most %d sequential work steps.\n", maxSteps)
	sb.WriteString("2. For each step provide hazards, risks, control measures, PPE and applicable regulations.\n")
	sb.WriteString("3. Write in the same language as the activity description.\n")
	sb.WriteString("4. Use concrete, activity-specific wording; never generic filler.\n")
	sb.WriteString("5. Each hazard name should match common safety-catalog terminology when one applies.\n")
	return sb.String()
}

func buildUserPrompt(apr *model.APR) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Activity: %s\n", apr.ActivityName)
	fmt.Fprintf(&sb, "Title: %s\n", apr.Title)
	if apr.RiskCategory != "" {
		fmt.Fprintf(&sb, "Risk category: %s\n", apr.RiskCategory)
	}
	if apr.Worksite != "" {
		fmt.Fprintf(&sb, "Worksite: %s\n", apr.Worksite)
	}
	if apr.Sector != "" {
		fmt.Fprintf(&sb, "Sector: %s\n", apr.Sector)
	}
	if apr.Description != "" {
		fmt.Fprintf(&sb, "\nDescription:\n%s\n", apr.Description)
	}
	return sb.String()
}

// buildResponseSchema creates the JSON schema for structured output
func buildResponseSchema() *gollem.Parameter {
	entryList := func(description string) *gollem.Parameter {
		return &gollem.Parameter{
			Type:        gollem.TypeArray,
			Description: description,
			Items:       &gollem.Parameter{Type: gollem.TypeString},
		}
	}

	return &gollem.Parameter{
		Title:       "DraftStepsResponse",
		Description: "Candidate work steps for a preliminary risk assessment",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"steps": {
				Type:        gollem.TypeArray,
				Description: "Sequential work steps of the activity",
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"description": {
							Type:        gollem.TypeString,
							Description: "What is done in this step",
							Required:    true,
						},
						"hazards":     entryList("Hazard names present in this step"),
						"risks":       entryList("Risk descriptions derived from the hazards"),
						"controls":    entryList("Control measures mitigating the risks"),
						"ppe":         entryList("Personal protective equipment required"),
						"regulations": entryList("Applicable regulations or norms"),
					},
				},
				Required: true,
			},
		},
	}
}
