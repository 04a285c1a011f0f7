package server

import (
	"github.com/invopop/jsonschema"

	"mandi-price/internal/lookup"
)

// ToolName is the function name agents use to call the price lookup.
const ToolName = "get_mandi_prices"

// Tool describes the price lookup tool and its input schema.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

func priceTool() Tool {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&lookup.Arguments{})
	schema.Version = ""
	schema.ID = ""
	return Tool{
		Name:        ToolName,
		Description: "Get the latest modal price of a commodity at a mandi in the given Indian state and district",
		InputSchema: schema,
	}
}
