package enrich

import "strings"

// Automation interest levels. The service fit derivation branches on the
// leading word, so the prefixes are load-bearing.
const (
	interestHigh               = "Alto - menciona directamente automatización/IA"
	interestMedium             = "Medio - tiene pain points que podríamos resolver"
	interestUnknown            = "Por determinar - requiere calificación"
	interestProspectingTimeout = "Por determinar - timeout en prospección"
)

// painKeywords maps message keywords to the pain point they evidence. Kept
// as an ordered slice so repeated runs list pain points in a stable order.
var painKeywords = []struct {
	keyword string
	pain    string
}{
	{"tiempo", "Falta de tiempo para tareas administrativas"},
	{"manual", "Procesos manuales que quieren automatizar"},
	{"factura", "Gestión de facturación"},
	{"cliente", "Atención al cliente"},
	{"dato", "Procesamiento de datos"},
	{"informe", "Generación de informes"},
	{"repetitivo", "Tareas repetitivas"},
	{"eficiencia", "Mejora de eficiencia"},
	{"coste", "Reducción de costes"},
	{"error", "Reducción de errores"},
	{"escalar", "Necesidad de escalar operaciones"},
	{"productividad", "Mejora de productividad"},
}

// automationKeywords mark a lead as directly interested in automation.
var automationKeywords = []string{
	"automatizar", "automatización", "ia", "inteligencia artificial",
	"chatbot", "asistente", "bot", "eficiencia", "optimizar", "ahorrar tiempo",
	"agente", "workflow", "proceso", "digitalizar",
}

// analyzeMessage runs the local keyword analysis over the lead's free-text
// message. No network, no timeout. An empty message leaves the signals
// untouched.
func analyzeMessage(message string, signals *Signals) {
	if message == "" {
		return
	}
	lower := strings.ToLower(message)

	for _, entry := range painKeywords {
		if strings.Contains(lower, entry.keyword) && !containsString(signals.PainPoints, entry.pain) {
			signals.PainPoints = append(signals.PainPoints, entry.pain)
		}
	}

	for _, keyword := range automationKeywords {
		if strings.Contains(lower, keyword) {
			signals.AutomationInterest = interestHigh
			break
		}
	}
	if signals.AutomationInterest == "" {
		if len(signals.PainPoints) > 0 {
			signals.AutomationInterest = interestMedium
		} else {
			signals.AutomationInterest = interestUnknown
		}
	}
}

// deriveServiceFit translates the interest signal into the fit assessment
// the sales team sees.
func deriveServiceFit(signals Signals) string {
	switch {
	case signals.AutomationInterest == "":
		return "Por evaluar"
	case strings.HasPrefix(signals.AutomationInterest, "Alto"):
		return "Alto - Lead caliente, menciona automatización/IA directamente"
	case strings.HasPrefix(signals.AutomationInterest, "Medio"):
		return "Medio - Tiene pain points que podríamos resolver"
	default:
		return "Por determinar - Requiere calificación"
	}
}

func defaultNextSteps() []string {
	return []string{
		"Revisar mensaje y contexto del lead",
		"Responder en las próximas 24h",
		"Agendar llamada de calificación si hay fit",
	}
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
