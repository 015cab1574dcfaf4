package resource

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
)

// Filter keeps the records for which expression evaluates to true. The
// expression sees each record's JSON fields as variables, so a book can be
// matched with `author == "J.R.R. Tolkien"` or `id > 2`.
func Filter[T any](records []T, expression string) ([]T, error) {
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}

	out := make([]T, 0, len(records))
	for _, record := range records {
		env, err := toEnv(record)
		if err != nil {
			return nil, err
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("eval %q: %w", expression, err)
		}
		keep, ok := result.(bool)
		if !ok {
			return nil, fmt.Errorf("filter %q must evaluate to a boolean, got %T", expression, result)
		}
		if keep {
			out = append(out, record)
		}
	}
	return out, nil
}

func toEnv(record any) (map[string]interface{}, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	env := map[string]interface{}{}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return env, nil
}
