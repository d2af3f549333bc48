// internal/workers/assistant/marketplace-assistant/persona.go
package marketplaceassistant

import "strings"

const (
	PersonaSME      = "sme"
	PersonaInvestor = "investor"
	PersonaGeneral  = "general"
)

const platformContext = "Just provide smart, shortish answers to their queries. " +
	"Our site is a platform for investors and startups. " +
	"Investors can browse loan applications from SMEs (small and medium-sized enterprises) looking for funding. " +
	"They can view detailed loan information, bid to fund startups, and track the progress of their investments. " +
	"The site also provides personalized investor preferences and a dashboard to manage bids and investments. " +
	"Do not reply to this."

const fallbackAnswer = "I'm sorry, I couldn't process that. Please try again."

type persona struct {
	key   string
	name  string
	intro string
}

var (
	smePersona      = persona{key: PersonaSME, name: "Shark", intro: "You are Shark, a knowledgeable assistant for SMEs."}
	investorPersona = persona{key: PersonaInvestor, name: "Dolphin", intro: "You are Dolphin, a knowledgeable assistant for investors."}
	generalPersona  = persona{key: PersonaGeneral, intro: "You are a general assistant."}
)

// personaFor picks the assistant from the page the question was asked on.
// The SME dashboard check wins over the investor one.
func personaFor(referer string) persona {
	switch {
	case strings.Contains(referer, "smedashboard"):
		return smePersona
	case strings.Contains(referer, "investor"):
		return investorPersona
	default:
		return generalPersona
	}
}

func (p persona) systemPrompt() string {
	return p.intro + " " + platformContext
}
