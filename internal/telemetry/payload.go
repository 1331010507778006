package telemetry

// Payload value readers. Events are rolled up in-process, so numeric
// values may arrive as int, int64, or float64 depending on the producer;
// after a JSON round trip they are always float64.

func payloadString(p map[string]any, key string) string {
	if p == nil {
		return ""
	}
	s, _ := p[key].(string)
	return s
}

func payloadBool(p map[string]any, key string) bool {
	if p == nil {
		return false
	}
	b, _ := p[key].(bool)
	return b
}

func payloadFloat(p map[string]any, key string) float64 {
	if p == nil {
		return 0
	}
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
