// internal/workers/assistant/marketplace-assistant/models.go
package marketplaceassistant

type Input struct {
	Question string    `json:"question"`
	Referer  string    `json:"referer"`
	History  []Message `json:"history,omitempty"`
}

// Message is one earlier conversation turn. Role is "user" or "model".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Output struct {
	Answer        string `json:"answer"`
	Persona       string `json:"persona"`
	AssistantName string `json:"assistantName,omitempty"`
}

// generateRequest and generateResponse follow the generateContent REST shape.
type generateRequest struct {
	SystemInstruction content   `json:"systemInstruction"`
	Contents          []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}
