// Package narrator asks Gemini for hints and, in simulations, for the
// choice a player would make.
package narrator

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tatianab/text-game/internal/engine"
)

//go:embed prompts/hint.txt
var hintPrompt string

//go:embed prompts/choose_option.txt
var chooseOptionPrompt string

// DefaultModel is the Gemini model used unless another one is set.
const DefaultModel = "gemini-2.5-flash"

var funcs = template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}

var (
	hintTmpl   = template.Must(template.New("hint").Funcs(funcs).Parse(hintPrompt))
	chooseTmpl = template.Must(template.New("choose_option").Funcs(funcs).Parse(chooseOptionPrompt))
)

type Narrator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func New(ctx context.Context, apiKey string) (*Narrator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(DefaultModel)
	return &Narrator{
		client: client,
		model:  model,
	}, nil
}

func (n *Narrator) Close() {
	n.client.Close()
}

// Hint asks for a nudge about the current position.
func (n *Narrator) Hint(ctx context.Context, req engine.HintRequest) (string, error) {
	prompt, err := render(hintTmpl, req)
	if err != nil {
		return "", err
	}
	text, err := n.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return cleanResponse(text), nil
}

// ChooseOption asks which of req.Options to pick and returns its zero-based
// index.
func (n *Narrator) ChooseOption(ctx context.Context, req engine.HintRequest) (int, error) {
	if len(req.Options) == 0 {
		return 0, fmt.Errorf("no options to choose from")
	}
	prompt, err := render(chooseTmpl, req)
	if err != nil {
		return 0, err
	}
	text, err := n.generate(ctx, prompt)
	if err != nil {
		return 0, err
	}
	return ParseOption(text, len(req.Options))
}

func (n *Narrator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := n.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return string(text), nil
}

func render(tmpl *template.Template, req engine.HintRequest) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// cleanResponse strips the code fences models like to wrap answers in.
func cleanResponse(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```text")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

var number = regexp.MustCompile(`\d+`)

// ParseOption reads the first number in text as a 1-based option out of n
// and returns it zero-based.
func ParseOption(text string, n int) (int, error) {
	m := number.FindString(cleanResponse(text))
	if m == "" {
		return 0, fmt.Errorf("no option number in %q", text)
	}
	i, err := strconv.Atoi(m)
	if err != nil {
		return 0, err
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("option %d out of range 1-%d", i, n)
	}
	return i - 1, nil
}
