package assist

import "strings"

// The formatting steps are deterministic: once a side effect happened, the
// user-visible outcome must not depend on another model call.

// formatFinalAction builds the response after a final action. The action
// outcome already carries its ✅/❌ marker.
func formatFinalAction(run Run) string {
	outcome := run.finalActionResult
	if outcome == "" {
		outcome = "Acción completada"
	}
	return outcome + "\n\n" + continuationPrompt
}

// formatResponse polishes the model's final text. Send confirmations pass
// through untouched; welcome or long generic capability text after executed
// actions compresses to a short continuation prompt.
func formatResponse(run Run) string {
	response := run.finalResponse
	if response == "" {
		response = run.lastAssistantContent()
	}
	if response == "" {
		return emptyResponse
	}

	if len(run.actions) == 0 || hasSendConfirmation(response) {
		return response
	}

	switch {
	case isWelcomeMessage(response):
		return continuationPrompt
	case len(response) > 200 && mentionsCapabilities(response):
		return continuationPrompt
	case len(response) > 200:
		return "Listo. " + continuationPrompt
	}
	return response
}

func hasSendConfirmation(response string) bool {
	lower := strings.ToLower(response)
	return strings.Contains(response, "✅") ||
		strings.Contains(lower, "enviado correctamente") ||
		strings.Contains(lower, "enviado a") ||
		strings.Contains(lower, "mensaje enviado")
}

func isWelcomeMessage(response string) bool {
	lower := strings.ToLower(response)
	head := lower
	if len(head) > 10 {
		head = head[:10]
	}
	return strings.Contains(response, "¡Hola!") ||
		strings.Contains(head, "hola") ||
		(strings.Contains(lower, "soy tu asistente") && strings.Contains(lower, "puedo ayudarte"))
}

func mentionsCapabilities(response string) bool {
	lower := strings.ToLower(response)
	return strings.Contains(lower, "puedo ayudarte") ||
		strings.Contains(lower, "preguntas sobre") ||
		strings.Contains(lower, "i can help")
}
