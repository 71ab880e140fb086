package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"vibeagent/internal/engine"
)

func calculate(operation string, a, b float64) (float64, error) {
	switch operation {
	case "add":
		return a + b, nil
	case "subtract":
		return a - b, nil
	case "multiply":
		return a * b, nil
	case "divide":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	case "power":
		return math.Pow(a, b), nil
	default:
		return 0, fmt.Errorf("unknown operation: %s", operation)
	}
}

// NewCalculatorTool creates an engine.Tool for basic arithmetic.
func NewCalculatorTool() engine.Tool {
	return engine.Tool{
		Name:        "calculator",
		Description: "Performs basic arithmetic on two numbers. Supported operations: add, subtract, multiply, divide, power.",
		SchemaJSON: `{"type":"object","properties":{` +
			`"operation":{"type":"string","enum":["add","subtract","multiply","divide","power"],"description":"The arithmetic operation to perform"},` +
			`"a":{"type":"number","description":"First operand"},` +
			`"b":{"type":"number","description":"Second operand"}},` +
			`"required":["operation","a","b"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			operation, _ := args["operation"].(string)
			a, aOK := args["a"].(float64)
			b, bOK := args["b"].(float64)
			if !aOK || !bOK {
				return "", fmt.Errorf("a and b must be numbers")
			}

			value, err := calculate(operation, a, b)
			if err != nil {
				return "", err
			}

			resultJSON, err := json.Marshal(map[string]any{
				"operation": operation,
				"result":    value,
			})
			if err != nil {
				return "", err
			}
			return string(resultJSON), nil
		},
		Retryable: true,
	}
}
