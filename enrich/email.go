package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nementium/agentcore/budget"
	"github.com/nementium/agentcore/model"
)

// emailContent is the subject/body pair sent to the lead inbox.
type emailContent struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

// generateEmail asks the gateway for the notification email. Timeout,
// provider failure or unparseable output all fall back to the deterministic
// template; generation quality never blocks the pipeline.
func (p *Pipeline) generateEmail(ctx context.Context, lead Lead, enr Enrichment) emailContent {
	var out emailContent
	err := budget.Run(ctx, p.budgets.Generation, "email generation", func(ctx context.Context) error {
		resp, err := p.completer.Complete(ctx, model.Request{
			System: generationSystemPrompt,
			Messages: []model.Message{{
				Role:    model.RoleUser,
				Content: generationPrompt(lead, enr, p.recipientName, p.notifyEmail),
			}},
		})
		if err != nil {
			return err
		}
		return decodeModelJSON(resp.Content, &out)
	})
	if err != nil || out.Subject == "" || out.HTMLBody == "" {
		if err != nil {
			p.logger.Warn("email generation fell back to template", "lead_id", lead.ID, "error", err.Error())
		}
		return fallbackEmail(lead, enr, p.recipientName, p.now())
	}
	return out
}

const generationSystemPrompt = `Eres un asistente que genera emails de notificación de leads para el equipo comercial de Nementium.

El email debe ser:
- Profesional pero cercano
- Bien estructurado con secciones claras
- Incluir TODOS los datos proporcionados
- Generar preguntas de calificación útiles basadas en el mensaje
- Evaluar el fit con los servicios de Nementium
- Sugerir próximos pasos concretos

IMPORTANTE:
- NO inventes información que no tengas
- Si no hay datos de prospección para algún campo, indica "No encontrado"
- Usa formato HTML con estilos inline para mejor visualización`

func generationPrompt(lead Lead, enr Enrichment, recipient, email string) string {
	prospecting, _ := json.MarshalIndent(enr, "", "  ")
	return fmt.Sprintf(`Genera un email de notificación para %s (%s) sobre un nuevo lead.

DATOS DEL CONTACTO:
- Nombre: %s
- Email: %s
- Teléfono: %s
- Empresa: %s
- Formulario: %s
- Mensaje original: %s

RESULTADOS DE PROSPECCIÓN ONLINE:
%s

Genera el email con estas secciones:
1. Saludo a %s
2. Aviso de nuevo lead con datos del contacto
3. Interpretación del mensaje + 3-4 preguntas de calificación sugeridas
4. Resumen de prospección online con links clickeables
5. Evaluación de fit con servicios de Nementium
6. Próximos pasos recomendados

El formato debe ser HTML limpio con estilos inline. Usa colores corporativos (#2563eb azul, #1e3a5f azul oscuro).

Responde SOLO con un JSON válido con esta estructura:
{"subject": "asunto del email", "html_body": "contenido HTML completo"}`,
		recipient, email,
		orDefault(lead.Name, "No proporcionado"),
		orDefault(lead.Email, "No proporcionado"),
		orDefault(lead.Phone, "No proporcionado"),
		orDefault(lead.Company, companyUnspecified),
		orDefault(lead.SourceURL, "No especificado"),
		orDefault(lead.Message, "Sin mensaje"),
		prospecting, recipient)
}

// fallbackEmail builds the deterministic notification straight from the lead
// and the enrichment. It must work with a fully empty enrichment.
func fallbackEmail(lead Lead, enr Enrichment, recipient string, now time.Time) emailContent {
	name := orDefault(lead.Name, "No proporcionado")
	company := orDefault(lead.Company, companyUnspecified)

	var prosp strings.Builder
	if enr.Company.Website != "" {
		fmt.Fprintf(&prosp, "<li><strong>Web empresa:</strong> <a href='%s'>%s</a></li>", enr.Company.Website, enr.Company.Website)
	}
	if enr.Company.LinkedInURL != "" {
		fmt.Fprintf(&prosp, "<li><strong>LinkedIn empresa:</strong> <a href='%s'>%s</a></li>", enr.Company.LinkedInURL, enr.Company.LinkedInURL)
	}
	if enr.Person.LinkedInURL != "" {
		fmt.Fprintf(&prosp, "<li><strong>LinkedIn persona:</strong> <a href='%s'>%s</a></li>", enr.Person.LinkedInURL, enr.Person.LinkedInURL)
	}
	if enr.Company.Sector != "" {
		fmt.Fprintf(&prosp, "<li><strong>Sector:</strong> %s</li>", enr.Company.Sector)
	}
	if enr.Signals.AutomationInterest != "" {
		fmt.Fprintf(&prosp, "<li><strong>Interés en automatización:</strong> %s</li>", enr.Signals.AutomationInterest)
	}
	if prosp.Len() == 0 {
		prosp.WriteString("<li>No se encontró información adicional online</li>")
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #1e3a5f 0%%, #2563eb 100%%); color: white; padding: 20px; border-radius: 8px 8px 0 0; text-align: center;">
        <h1 style="margin: 0; font-size: 24px;">🎯 Nuevo Lead Web</h1>
    </div>

    <div style="background: #f9fafb; padding: 24px; border: 1px solid #e5e7eb; border-top: none;">
        <p>Hola %s,</p>

        <p>Alguien ha rellenado el formulario de contacto en <strong>%s</strong></p>

        <div style="background: white; padding: 16px; border-radius: 8px; border-left: 4px solid #2563eb; margin: 16px 0;">
            <h3 style="margin-top: 0; color: #1e3a5f;">📋 Datos del contacto</h3>
            <ul style="list-style: none; padding: 0;">
                <li><strong>Nombre:</strong> %s</li>
                <li><strong>Email:</strong> <a href="mailto:%s">%s</a></li>
                <li><strong>Teléfono:</strong> %s</li>
                <li><strong>Empresa:</strong> %s</li>
            </ul>
        </div>

        <div style="background: white; padding: 16px; border-radius: 8px; border-left: 4px solid #10b981; margin: 16px 0;">
            <h3 style="margin-top: 0; color: #1e3a5f;">💬 Mensaje original</h3>
            <p style="white-space: pre-wrap;">%s</p>
        </div>

        <div style="background: white; padding: 16px; border-radius: 8px; border-left: 4px solid #f59e0b; margin: 16px 0;">
            <h3 style="margin-top: 0; color: #1e3a5f;">🔍 Prospección online</h3>
            <ul>%s</ul>
        </div>

        <div style="background: white; padding: 16px; border-radius: 8px; border-left: 4px solid #8b5cf6; margin: 16px 0;">
            <h3 style="margin-top: 0; color: #1e3a5f;">📌 Próximos pasos sugeridos</h3>
            <ol>
                <li>Revisar el mensaje y contexto del lead</li>
                <li>Responder en las próximas 24h</li>
                <li>Agendar llamada de calificación si hay fit</li>
            </ol>
        </div>
    </div>

    <div style="text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px;">
        <p>© %d Nementium.ai - Email generado automáticamente</p>
    </div>
</body>
</html>`,
		recipient,
		orDefault(lead.SourceURL, "No especificado"),
		name,
		orDefault(lead.Email, "No proporcionado"), orDefault(lead.Email, "No proporcionado"),
		orDefault(lead.Phone, "No proporcionado"),
		company,
		orDefault(lead.Message, "Sin mensaje"),
		prosp.String(),
		now.Year())

	subject := "🎯 Nuevo lead: " + name
	if company != companyUnspecified {
		subject += fmt.Sprintf(" (%s)", company)
	}
	return emailContent{Subject: subject, HTMLBody: htmlBody}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
