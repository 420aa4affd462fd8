package scoring

import (
	"fmt"
	"strings"
)

const scoringSystemPrompt = `You are an expert in Indian consumer safety regulations with deep knowledge of BIS standards, FSSAI guidelines, the Consumer Protection Act 2019, Drug Controller regulations, and industry best practices. You conduct thorough analytical evaluations of product transparency responses.`

// buildScoringUserMessage assembles the rubric prompt for one answer.
// The four dimensions and their weights (30/25/25/20) sum to 100.
func buildScoringUserMessage(question, answer string, questionNumber int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Question %d: %s\n", questionNumber, question))
	b.WriteString(fmt.Sprintf("Response: %s\n", answer))

	b.WriteString(`
Evaluate the response against this framework:

1. COMPLETENESS OF INFORMATION (30 points)
   - Is every component of the question addressed, with sufficient depth?
   - Are quantitative claims specific: numbers, percentages, concentrations, units?
   - Are regulatory documents cited concretely (ISO numbers, BIS codes, FSSAI license numbers), and are the cited standards valid and current?

2. HONESTY AND TRANSPARENCY (25 points)
   - Does the response admit knowledge gaps, uncertainties, and product limitations?
   - Are negative aspects and risks disclosed, with severity, probability, and mitigation?
   - Is the tone factual reporting rather than marketing language: qualified, evidence-based claims instead of absolute promotional assertions?

3. COMPLIANCE WITH INDIAN CONSUMER SAFETY GUIDELINES (25 points)
   - Are exact regulatory frameworks cited accurately (BIS Act 2016, FSSAI Act 2006, industry-specific requirements), distinguishing mandatory from voluntary standards?
   - Does the response align with Consumer Protection Act 2019 disclosure requirements and consumer grievance mechanisms?
   - Is compliance evidenced: license numbers, certificates, third-party verification, audit trails?

4. CLARITY AND ACCESSIBILITY (20 points)
   - Is technical jargon explained and the language readable for consumers?
   - Are instructions actionable: specific steps, decision support, emergency guidance where applicable?
   - Is critical safety information prominent, with clear warnings and precautions?

Consider the product's domain context (food/pharma/electronics/cosmetics) and the consumer impact of the information provided.

Scoring calibration:
- 95-100: exceptional transparency exceeding regulatory requirements
- 85-94: strong transparency meeting all regulatory standards
- 75-84: adequate transparency with basic regulatory compliance
- 65-74: minimal transparency with significant gaps
- below 65: inadequate transparency with compliance failures

Return the final numerical score (1-100).`)

	return b.String()
}
