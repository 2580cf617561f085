package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kwakudarkwa/momoflow/internal/model"
)

// cleanMarkdownWrapper strips the ```json fences models sometimes add
// around structured output despite instructions not to.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}

// parseCommand decodes a model's command response. The only field this
// system interprets is action; everything else is passed through to the
// selected product operation.
func parseCommand(content string) (model.ParsedCommand, error) {
	content = cleanMarkdownWrapper(content)

	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return model.ParsedCommand{}, fmt.Errorf("failed to parse command response: %w", err)
	}

	action := asString(raw["action"])
	if action == "" {
		return model.ParsedCommand{}, fmt.Errorf("no action field in command response")
	}

	return model.ParsedCommand{
		Action:       action,
		ExternalID:   asString(raw["externalId"]),
		PartyID:      asString(raw["partyId"]),
		Amount:       asFloat(raw["amount"]),
		Currency:     asString(raw["currency"]),
		PayerMessage: asString(raw["payerMessage"]),
		PayeeNote:    asString(raw["payeeNote"]),
	}, nil
}

// anomalyJSON is the shape we ask models to emit for detected anomalies.
type anomalyJSON struct {
	Type          string `json:"type"`
	TransactionID string `json:"transaction_id"`
	Severity      string `json:"severity"`
	Details       string `json:"details"`
	Timestamp     string `json:"timestamp"`
	Amount        any    `json:"amount"`
}

// parseAnomalies decodes a model's anomaly list. Models are advisory: when
// the output cannot be decoded as the requested array (bare or wrapped in
// an anomalies key), the whole text is forwarded as a single unstructured
// anomaly rather than dropped.
func parseAnomalies(content string) []model.Anomaly {
	cleaned := cleanMarkdownWrapper(content)

	var items []anomalyJSON
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		var wrapper struct {
			Anomalies []anomalyJSON `json:"anomalies"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapper); err != nil || wrapper.Anomalies == nil {
			if strings.TrimSpace(content) == "" {
				return nil
			}
			return []model.Anomaly{{
				Type:     "unstructured",
				Severity: "unknown",
				Details:  content,
			}}
		}
		items = wrapper.Anomalies
	}

	anomalies := make([]model.Anomaly, 0, len(items))
	for _, item := range items {
		anomaly := model.Anomaly{
			Type:          item.Type,
			TransactionID: item.TransactionID,
			Severity:      item.Severity,
			Details:       item.Details,
			Amount:        asFloat(item.Amount),
		}
		if ts, err := time.Parse(time.RFC3339, item.Timestamp); err == nil {
			anomaly.Timestamp = ts
		}
		anomalies = append(anomalies, anomaly)
	}
	return anomalies
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat coerces the number formats models actually produce: JSON numbers
// and numeric strings.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return f
		}
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return 0
}
