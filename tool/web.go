package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/nementium/agentcore/search"
)

// NewWebSearchTool creates the web_search tool.
func NewWebSearchTool(searcher search.Searcher) *FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Consulta de búsqueda",
			},
			"max_results": map[string]any{
				"type":        "integer",
				"description": "Número máximo de resultados (1-10, por defecto 5)",
			},
		},
		"required": []string{"query"},
	}

	return NewFunctionTool(
		"web_search",
		"Busca en la web y devuelve título, URL y resumen de cada resultado.",
		params,
		func(ctx context.Context, inv *Invocation, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			max := 5
			if v, ok := args["max_results"].(float64); ok {
				max = int(v)
			}

			results, err := searcher.Search(ctx, query, search.ClampMax(max))
			if err != nil {
				return nil, fmt.Errorf("buscando %q: %w", query, err)
			}
			return map[string]any{"results": results, "count": len(results)}, nil
		},
	)
}

// NewFetchURLTool creates the fetch_url tool.
func NewFetchURLTool(fetcher *search.Fetcher) *FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "URL de la página a leer",
			},
			"max_chars": map[string]any{
				"type":        "integer",
				"description": "Máximo de caracteres de texto a devolver (500-10000)",
			},
		},
		"required": []string{"url"},
	}

	return NewFunctionTool(
		"fetch_url",
		"Descarga una página web y devuelve su texto visible.",
		params,
		func(ctx context.Context, inv *Invocation, args map[string]any) (any, error) {
			pageURL, _ := args["url"].(string)
			maxChars := 3000
			if v, ok := args["max_chars"].(float64); ok {
				maxChars = int(v)
			}

			text, err := fetcher.FetchText(ctx, pageURL, maxChars)
			if err != nil {
				return nil, fmt.Errorf("leyendo %s: %w", pageURL, err)
			}
			return map[string]any{"url": pageURL, "content": text}, nil
		},
	)
}

// NewCurrentDateTool creates the get_current_date tool.
func NewCurrentDateTool(now func() time.Time) *FunctionTool {
	if now == nil {
		now = time.Now
	}
	return NewFunctionTool(
		"get_current_date",
		"Devuelve la fecha y hora actuales.",
		nil,
		func(ctx context.Context, inv *Invocation, args map[string]any) (any, error) {
			t := now()
			return map[string]any{
				"date":    t.Format("2006-01-02"),
				"time":    t.Format("15:04"),
				"weekday": t.Weekday().String(),
			}, nil
		},
	)
}
