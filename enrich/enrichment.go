package enrich

// Enrichment is the accumulated prospecting result persisted in the lead's
// prospecting_json column. Stages only add fields; a later stage never erases
// what an earlier one found.
type Enrichment struct {
	Company    Company  `json:"company"`
	Person     Person   `json:"person"`
	Signals    Signals  `json:"signals"`
	Sources    []string `json:"sources"`
	ServiceFit string   `json:"service_fit,omitempty"`
	NextSteps  []string `json:"next_steps"`
}

// Company is what prospecting learned about the lead's company.
type Company struct {
	Name           string   `json:"name"`
	Website        string   `json:"website,omitempty"`
	LinkedInURL    string   `json:"linkedin_url,omitempty"`
	Sector         string   `json:"sector,omitempty"`
	SizeEmployees  string   `json:"size_employees,omitempty"`
	TechStackHints []string `json:"tech_stack_hints"`
	Description    string   `json:"description,omitempty"`
}

// Person is what prospecting learned about the lead themselves.
type Person struct {
	Name        string `json:"name"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Role        string `json:"role,omitempty"`
}

// Signals is the qualification evidence extracted from the lead's message and
// the collected snippets.
type Signals struct {
	AutomationInterest string   `json:"automation_interest,omitempty"`
	PainPoints         []string `json:"pain_points"`
	CurrentTools       []string `json:"current_tools"`
}

const companyUnspecified = "No especificada"

// newEnrichment seeds the result with what the lead form already told us.
func newEnrichment(lead Lead) Enrichment {
	company := lead.Company
	if company == "" {
		company = companyUnspecified
	}
	return Enrichment{
		Company: Company{Name: company, TechStackHints: []string{}},
		Person:  Person{Name: lead.Name},
		Signals: Signals{PainPoints: []string{}, CurrentTools: []string{}},
		Sources: []string{},
	}
}

// timeoutEnrichment is the skeleton persisted when the prospecting phase
// blew its budget: partial snippets are discarded and the interest signal
// records why.
func timeoutEnrichment(lead Lead) Enrichment {
	enr := newEnrichment(lead)
	enr.Signals.AutomationInterest = interestProspectingTimeout
	return enr
}

// dedupeSources drops duplicate URLs keeping first-seen order and caps the
// list at 8 entries.
func (e *Enrichment) dedupeSources() {
	seen := make(map[string]struct{}, len(e.Sources))
	deduped := make([]string, 0, len(e.Sources))
	for _, url := range e.Sources {
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		deduped = append(deduped, url)
		if len(deduped) == 8 {
			break
		}
	}
	e.Sources = deduped
}
