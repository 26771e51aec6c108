// Package modules turns the themed tool forms into generation requests.
package modules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/generation"
)

// Input is the union of every tool form field.
type Input struct {
	Mode           string `json:"mode,omitempty"`
	Topic          string `json:"topic,omitempty"`
	Niche          string `json:"niche,omitempty"`
	Query          string `json:"query,omitempty"`
	Resume         string `json:"resume,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	Task           string `json:"task,omitempty"`
	Image          string `json:"image,omitempty"`
}

// Definition describes one themed tool.
type Definition struct {
	Type domain.ModuleType
	// RequiresAccount rejects guests before admission.
	RequiresAccount bool
	build           func(Input, domain.Language) (generation.Request, error)
}

// Build renders the request for in, in the caller's language.
func (d Definition) Build(in Input, lang domain.Language) (generation.Request, error) {
	return d.build(in, lang)
}

// HistoryInput is what gets stored as input_data. Image payloads are dropped.
func (d Definition) HistoryInput(in Input) json.RawMessage {
	in.Image = ""
	raw, err := json.Marshal(in)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}

var registry = map[domain.ModuleType]Definition{
	domain.ModuleCreative:     {Type: domain.ModuleCreative, build: buildCreative},
	domain.ModuleProfessional: {Type: domain.ModuleProfessional, build: buildProfessional},
	domain.ModuleCareer:       {Type: domain.ModuleCareer, build: buildCareer},
	domain.ModuleHealth:       {Type: domain.ModuleHealth, build: buildHealth},
	domain.ModuleAutomation:   {Type: domain.ModuleAutomation, RequiresAccount: true, build: buildAutomation},
}

// Lookup finds a tool by its path name.
func Lookup(name string) (Definition, bool) {
	def, ok := registry[domain.ModuleType(strings.ToLower(strings.TrimSpace(name)))]
	return def, ok
}

// Names lists the registered tools.
func Names() []domain.ModuleType {
	return []domain.ModuleType{
		domain.ModuleCreative,
		domain.ModuleProfessional,
		domain.ModuleCareer,
		domain.ModuleHealth,
		domain.ModuleAutomation,
	}
}

func languageName(lang domain.Language) string {
	if lang == domain.LanguageIndonesian {
		return "Bahasa Indonesia"
	}
	return "English"
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, field)
	}
	return nil
}

func buildCreative(in Input, lang domain.Language) (generation.Request, error) {
	if err := required("topic", in.Topic); err != nil {
		return generation.Request{}, err
	}
	topic := strings.TrimSpace(in.Topic)
	switch strings.ToLower(strings.TrimSpace(in.Mode)) {
	case "", "script":
		prompt := fmt.Sprintf(`Act as a viral content creator. I'll provide a video topic or URL: %q.
Generate the following for a TikTok/Reels Short:
1. Viral Catchy Title
2. Hook-driven 30-60 second Script
3. Caption with relevant hashtags
4. 3 suggestions for visual cuts
Provide the response in %s and format it clearly.`, topic, languageName(lang))
		return generation.TextRequest(prompt, ""), nil
	case "thumbnail":
		prompt := fmt.Sprintf("Create a high-quality cinematic YouTube thumbnail for a video titled: %q. Professional lighting, 4k, vibrant colors, trending style.", topic)
		return generation.ImageGenerationRequest(prompt), nil
	}
	return generation.Request{}, fmt.Errorf("%w: mode must be script or thumbnail", domain.ErrInvalidInput)
}

var nicheFocus = map[string]string{
	"legal":     "Focus on Indonesian and global regulatory clarity.",
	"architect": "Focus on space optimization and modern aesthetics.",
	"business":  "Focus on ROI and scalability.",
}

func buildProfessional(in Input, lang domain.Language) (generation.Request, error) {
	niche := strings.ToLower(strings.TrimSpace(in.Niche))
	focus, ok := nicheFocus[niche]
	if !ok {
		return generation.Request{}, fmt.Errorf("%w: niche must be legal, architect or business", domain.ErrInvalidInput)
	}
	if err := required("query", in.Query); err != nil {
		return generation.Request{}, err
	}
	prompt := fmt.Sprintf(`You are a top-tier %s expert.
Provide professional advice in %s.
User query: %s
%s`, strings.ToUpper(niche), languageName(lang), strings.TrimSpace(in.Query), focus)
	return generation.TextRequest(prompt, ""), nil
}

func buildCareer(in Input, lang domain.Language) (generation.Request, error) {
	if err := required("resume", in.Resume); err != nil {
		return generation.Request{}, err
	}
	job := strings.TrimSpace(in.JobDescription)
	if job == "" {
		job = "N/A"
	}
	prompt := fmt.Sprintf(`Act as a professional Recruiter and ATS Expert.
Analyze the following resume against this job description (if provided).
Resume: %q
Job: %q

Provide:
1. Match Percentage (0-100%%)
2. Keyword gaps (What's missing?)
3. 5 Specific suggestions to improve visibility for AI screens.
4. Rewrite the 'About Me' section to be more impactful.
Response language: %s.`, strings.TrimSpace(in.Resume), job, languageName(lang))
	return generation.TextRequest(prompt, ""), nil
}

func buildHealth(in Input, lang domain.Language) (generation.Request, error) {
	if err := required("image", in.Image); err != nil {
		return generation.Request{}, err
	}
	img, err := generation.ParseInlineImage(in.Image)
	if err != nil {
		return generation.Request{}, err
	}
	prompt := fmt.Sprintf(`Analyze this food image.
1. Identify the items.
2. Estimate calories per item and total.
3. Suggest a healthier alternative.
4. Provide brief nutritional facts (Protein, Carbs, Fats).
Format the response nicely in %s.`, languageName(lang))
	return generation.VisionRequest(prompt, img), nil
}

func buildAutomation(in Input, lang domain.Language) (generation.Request, error) {
	if err := required("task", in.Task); err != nil {
		return generation.Request{}, err
	}
	prompt := fmt.Sprintf(`Act as an Agentic AI Architect. The user wants to automate this task: %q.
Design a complete automation workflow.
Structure:
1. Trigger (e.g., New Email, Schedule)
2. Logic (AI Processing)
3. Actions (e.g., Send SMS, Update Sheet)
4. Tooling (Recommended Zapier/Make.com steps)

Provide the result in %s.
Keep it professional and technical yet easy to implement.`, strings.TrimSpace(in.Task), languageName(lang))
	return generation.TextRequest(prompt, ""), nil
}
