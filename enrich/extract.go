package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/nementium/agentcore/budget"
	"github.com/nementium/agentcore/model"
)

// extraction is the structured output of the snippet extraction call.
type extraction struct {
	Sector             string   `json:"sector"`
	SizeEmployees      string   `json:"size_employees"`
	TechStack          []string `json:"tech_stack"`
	Role               string   `json:"role"`
	CompanyDescription string   `json:"company_description"`
}

const maxExtractionSnippets = 15

// extract sends the collected snippets through the gateway once and decodes
// the structured fields. Any failure, timeout or unparseable output degrades
// to an empty extraction; the pipeline never stops here.
func (p *Pipeline) extract(ctx context.Context, lead Lead, snippets []string) extraction {
	if len(snippets) == 0 {
		return extraction{}
	}
	if len(snippets) > maxExtractionSnippets {
		snippets = snippets[:maxExtractionSnippets]
	}

	var out extraction
	err := budget.Run(ctx, p.budgets.Extraction, "snippet extraction", func(ctx context.Context) error {
		resp, err := p.completer.Complete(ctx, model.Request{
			Messages: []model.Message{{
				Role:    model.RoleUser,
				Content: extractionPrompt(lead, snippets),
			}},
		})
		if err != nil {
			return err
		}
		return decodeModelJSON(resp.Content, &out)
	})
	if err != nil {
		p.logger.Warn("snippet extraction degraded to empty", "lead_id", lead.ID, "error", err.Error())
		return extraction{}
	}
	p.logger.Info("snippet extraction done", "lead_id", lead.ID,
		"sector", out.Sector, "size", out.SizeEmployees, "role", out.Role)
	return out
}

func extractionPrompt(lead Lead, snippets []string) string {
	return fmt.Sprintf(`Analiza los siguientes fragmentos de búsqueda web sobre la empresa "%s" y la persona "%s".
Extrae la información que encuentres. Si no encuentras algo, déjalo como null.

FRAGMENTOS:
%s

Responde SOLO con un JSON válido con esta estructura exacta:
{
    "sector": "sector de la empresa (tecnología, retail, salud, finanzas, etc.) o null",
    "size_employees": "rango de empleados (1-10, 11-50, 51-200, 201-500, 501-1000, 1000+) o null",
    "tech_stack": ["lista de herramientas/tecnologías mencionadas"],
    "role": "cargo de %s si se menciona o null",
    "company_description": "breve descripción de qué hace la empresa (1-2 frases) o null"
}`, lead.Company, lead.Name, strings.Join(snippets, "\n---\n"), lead.Name)
}

// merge folds the extraction into the enrichment without erasing anything
// prospecting already found.
func (e *Enrichment) merge(ex extraction) {
	if ex.Sector != "" {
		e.Company.Sector = ex.Sector
	}
	if ex.SizeEmployees != "" {
		e.Company.SizeEmployees = ex.SizeEmployees
	}
	if len(ex.TechStack) > 0 {
		e.Company.TechStackHints = ex.TechStack
		e.Signals.CurrentTools = ex.TechStack
	}
	if ex.Role != "" {
		e.Person.Role = ex.Role
	}
	if ex.CompanyDescription != "" {
		e.Company.Description = ex.CompanyDescription
	}
}
