package llm

import (
	"encoding/json"
	"fmt"
)

// systemPrompt frames every request; backends that support a system role
// send it separately, others prepend it.
const systemPrompt = "You are an AI assistant specialized in analyzing MTN MOMO transactions and providing insights."

// jsonEncode serializes data for embedding in a prompt. Encoding failures
// degrade to fmt formatting rather than failing the call.
func jsonEncode(data any) string {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(raw)
}

func analyzePrompt(data any) string {
	return "Analyze this MTN MOMO transaction data across collections, disbursements, and remittances. Consider transaction status, amounts, and patterns:\n\n" + jsonEncode(data)
}

func detectFraudPrompt(data any) string {
	return "Evaluate this MTN MOMO transaction for potential fraud indicators. Consider transaction type (collection/disbursement/remittance), amount patterns, and account holder behavior:\n\n" + jsonEncode(data)
}

func retryStrategyPrompt(data any) string {
	return "Based on this failed MTN MOMO transaction data, suggest an optimal retry strategy considering the transaction type, error codes, and historical success patterns:\n\n" + jsonEncode(data)
}

func forecastPrompt(data any) string {
	return "Analyze this MTN MOMO historical transaction data across collections, disbursements, and remittances to forecast future cash flow patterns and trends:\n\n" + jsonEncode(data)
}

func parseCommandPrompt(command string) string {
	return "Parse this natural language command into a JSON object describing an MTN MOMO API request. " +
		"Respond with ONLY a JSON object containing an \"action\" field (one of requestToPay, transfer, remit) " +
		"plus externalId, partyId, amount, currency, payerMessage and payeeNote:\n\n" + command
}

func reportPrompt(data any) string {
	return "Generate a comprehensive MTN MOMO transaction report analyzing patterns across collections, disbursements, and remittances. Include transaction volumes, success rates, and notable trends:\n\n" + jsonEncode(data)
}

func disbursementTimePrompt(amount float64, recipient string) string {
	return fmt.Sprintf("Suggest an optimal disbursement time for this MTN MOMO transfer considering amount: %v, recipient: %s. Consider historical transaction patterns and success rates.", amount, recipient)
}

func detectAnomaliesPrompt(data any) string {
	return "Analyze this MTN MOMO transaction data to detect anomalies across collections, disbursements, and remittances. Consider unusual patterns, amounts, frequencies, and account behaviors. " +
		"Respond with a JSON array of anomaly objects, each with type, transaction_id, amount, severity and details fields:\n\n" + jsonEncode(data)
}

func callTimesPrompt(data any) string {
	return "Based on this MTN MOMO API usage data, suggest optimal times for API calls considering success rates, response times, and error patterns:\n\n" + jsonEncode(data)
}

func explainErrorPrompt(errorCode string, errContext any) string {
	return fmt.Sprintf("Explain this MTN MOMO API error in context of the transaction. Provide potential causes and resolution steps:\nError Code: %s\nContext: %s", errorCode, jsonEncode(errContext))
}
