package service

import (
	"context"
	"devforge_backend/internal/model"
	"devforge_backend/internal/util"
	"devforge_backend/pkg/monitoring"
	"encoding/json"
	"fmt"
	"strings"
)

// The four artifact generators. Each one is a single request/response call;
// caching is the workspace's responsibility, not this file's.

const projectSystemPrompt = `You are a senior technical lead designing a comprehensive project specification.
Respond with a single JSON object and nothing else. The object must have these fields:
"title" (string), "description" (string), "objective" (string),
"inputFormat" (string, detailed specification of input source, structure and constraints),
"outputFormat" (string), "edgeCases" (array of strings),
"functionalRequirements" (array of strings), "nonFunctionalRequirements" (array of strings),
"techStackRecommendation" (string),
"testCases" (array of objects with "name", "input", "expectedOutput", "explanation").`

const mentorSystemPrompt = `You are a Socratic mentor for a programming student.
The student is working on the project described below.
Your goal is to guide them to the solution without writing the code for them.
- Do not provide full code snippets.
- Ask leading questions.
- Explain concepts (e.g., recursion, hashmaps) if they are stuck on the theory.
- Help debug logic errors by asking them to trace their code.
- Be encouraging but firm on them doing the work.`

const reviewSystemPrompt = `You are a strict, professional code reviewer.
Respond with a single JSON object and nothing else, with these fields:
"score" (integer 0-100), "summary" (string, executive summary of the review),
"strengths" (array of strings), "weaknesses" (array of strings),
"securityConcerns" (array of strings),
"refactoredSnippet" (string, a snippet showing a better way to do one specific part).`

// projectPayload mirrors the structured response; it carries none of the
// persistence fields.
type projectPayload struct {
	Title                     string           `json:"title"`
	Description               string           `json:"description"`
	Objective                 string           `json:"objective"`
	InputFormat               string           `json:"inputFormat"`
	OutputFormat              string           `json:"outputFormat"`
	EdgeCases                 []string         `json:"edgeCases"`
	FunctionalRequirements    []string         `json:"functionalRequirements"`
	NonFunctionalRequirements []string         `json:"nonFunctionalRequirements"`
	TechStackRecommendation   string           `json:"techStackRecommendation"`
	TestCases                 []model.TestCase `json:"testCases"`
}

func (p *projectPayload) validate() error {
	missing := ""
	switch {
	case p.Title == "":
		missing = "title"
	case p.Description == "":
		missing = "description"
	case p.Objective == "":
		missing = "objective"
	case p.InputFormat == "":
		missing = "inputFormat"
	case p.OutputFormat == "":
		missing = "outputFormat"
	case len(p.EdgeCases) == 0:
		missing = "edgeCases"
	case len(p.FunctionalRequirements) == 0:
		missing = "functionalRequirements"
	case len(p.TestCases) == 0:
		missing = "testCases"
	}
	if missing != "" {
		return fmt.Errorf("%w: response missing required field %q", util.ErrGeneration, missing)
	}
	return nil
}

func countGeneration(artifact string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	monitoring.GenerationCounter.WithLabelValues(artifact, outcome).Inc()
}

// GenerateProject asks for a full project spec matching the user's level,
// language and concepts.
func (s *AIService) GenerateProject(ctx context.Context, prefs model.UserPreferences) (project *model.Project, err error) {
	defer func() { countGeneration("project", err) }()

	conceptsStr := ""
	if len(prefs.Concepts) > 0 {
		conceptsStr = fmt.Sprintf(" focusing on %s", strings.Join(prefs.Concepts, ", "))
	}

	prompt := fmt.Sprintf(`Create a highly detailed and rigorous programming project specification for a %s level developer in %s%s.

The project must simulate a real-world technical task. It requires:
1. A clear Problem Statement (Description).
2. Precise Input/Output definitions (e.g., "Input is read from STDIN. First line contains integer N...").
3. Explicit Edge Case handling requirements (e.g., "Handle integer overflow", "Empty arrays").
4. Functional requirements.

The description should be verbose enough to leave no ambiguity about the expected behavior.

Include 3-5 distinct test cases with raw string inputs and expected outputs. Ensure the inputs are provided as they would appear in a raw text file (handling newlines etc).`,
		prefs.Level, prefs.Language, conceptsStr)

	text, err := s.Chat(ctx, projectSystemPrompt, nil, prompt)
	if err != nil {
		return nil, err
	}

	jsonStr, err := util.ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var payload projectPayload
	if err = json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGeneration, err)
	}
	if err = payload.validate(); err != nil {
		return nil, err
	}

	return &model.Project{
		Title:                     payload.Title,
		Description:               payload.Description,
		Objective:                 payload.Objective,
		InputFormat:               payload.InputFormat,
		OutputFormat:              payload.OutputFormat,
		EdgeCases:                 payload.EdgeCases,
		FunctionalRequirements:    payload.FunctionalRequirements,
		NonFunctionalRequirements: payload.NonFunctionalRequirements,
		TechStackRecommendation:   payload.TechStackRecommendation,
		TestCases:                 payload.TestCases,
	}, nil
}

// MentorHint answers one tutoring question grounded in the project spec and
// the prior transcript. Keeping solutions out of the reply is a prompt-level
// instruction, not something enforced here.
func (s *AIService) MentorHint(ctx context.Context, project *model.Project, history []model.ChatMessage, query string) (reply string, err error) {
	defer func() { countGeneration("mentor", err) }()

	grounding := fmt.Sprintf(`
Current Project: %s
Objective: %s
Description: %s
Input Format: %s
Output Format: %s
Edge Cases: %s
Requirements: %s`,
		project.Title,
		project.Objective,
		project.Description,
		project.InputFormat,
		project.OutputFormat,
		strings.Join(project.EdgeCases, "; "),
		strings.Join(project.FunctionalRequirements, "; "),
	)

	turns := make([]AIChatMessage, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == model.RoleModel {
			role = "assistant"
		}
		turns = append(turns, AIChatMessage{Role: role, Content: msg.Text})
	}

	return s.Chat(ctx, mentorSystemPrompt+"\n"+grounding, turns, query)
}

// GenerateCodeReview scores a submission against the project's functional
// requirements.
func (s *AIService) GenerateCodeReview(ctx context.Context, project *model.Project, code string) (review *model.CodeReviewResult, err error) {
	defer func() { countGeneration("review", err) }()

	prompt := fmt.Sprintf(`Review the following code submission for the project "%s".

Project Requirements:
%s

User Code:
%s

Provide a strict, professional code review focusing on:
1. Correctness (Does it solve the problem?)
2. Efficiency (Big O time/space complexity)
3. Clean Code (Naming, modularity)
4. Security (if applicable)

Provide a refactored snippet for the most critical improvement.`,
		project.Title,
		strings.Join(project.FunctionalRequirements, "\n"),
		code,
	)

	text, err := s.Chat(ctx, reviewSystemPrompt, nil, prompt)
	if err != nil {
		return nil, err
	}

	jsonStr, err := util.ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var result model.CodeReviewResult
	if err = json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGeneration, err)
	}
	if result.Summary == "" {
		return nil, fmt.Errorf("%w: review response missing summary", util.ErrGeneration)
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}

	return &result, nil
}

// GenerateReferenceSolution returns unstructured text: source code plus
// commentary. An empty response degrades to a readable placeholder rather
// than an error.
func (s *AIService) GenerateReferenceSolution(ctx context.Context, project *model.Project) (solution string, err error) {
	defer func() { countGeneration("solution", err) }()

	stack := project.TechStackRecommendation
	if stack == "" {
		stack = "the most appropriate language"
	}

	prompt := fmt.Sprintf(`Generate a production-grade reference solution for the following project in %s.

Title: %s
Description: %s

Include comments explaining key decisions.`,
		stack, project.Title, project.Description)

	text, err := s.Chat(ctx, "", nil, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "Unable to generate solution.", nil
	}
	return text, nil
}
