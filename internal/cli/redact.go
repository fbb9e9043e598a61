package cli

import "strings"

const redacted = "***REDACTED***"

var redactKeys = map[string]struct{}{
	"password":    {},
	"private_key": {},
	"privatekey":  {},
	"secret":      {},
}

// redactSettings copies a settings tree with secret values masked, for
// debug logging.
func redactSettings(settings map[string]any) map[string]any {
	out, _ := redactValue(settings).(map[string]any)
	return out
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			if _, ok := redactKeys[strings.ToLower(k)]; ok {
				if s, isString := vv.(string); isString && s == "" {
					out[k] = s
					continue
				}
				out[k] = redacted
				continue
			}
			out[k] = redactValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = redactValue(t[i])
		}
		return out
	default:
		return v
	}
}
