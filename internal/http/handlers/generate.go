package handlers

import (
	"net/http"

	"github.com/danadoen/nusaai/internal/generation"
	"github.com/danadoen/nusaai/internal/middleware"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Image  string `json:"image"`
}

type resultResponse struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	DataURI string `json:"data_uri,omitempty"`
	Tagged  string `json:"tagged"`
	Module  string `json:"module,omitempty"`
}

func toResultResponse(res *generation.Result) resultResponse {
	out := resultResponse{Type: string(res.Kind), Tagged: res.Tagged()}
	if res.Kind == generation.ResultImage {
		out.DataURI = res.DataURI()
	} else {
		out.Text = res.Text
	}
	return out
}

// Generate runs a free-form prompt. A model hint equal to the configured
// image model turns the request into image generation.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := a.decode(w, r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	req, err := generation.RequestFromHints(body.Prompt, body.Model, body.Image, a.Generator.Models().Image)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Generator.Generate(r.Context(), middleware.CallerFromContext(r.Context()), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toResultResponse(res))
}
