package report

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/abhisek/prism/internal/assessment"
	"github.com/abhisek/prism/internal/questions"
	"github.com/abhisek/prism/internal/store"
)

const reportSystemPrompt = `You are a professional regulatory compliance expert and technical writer. You generate comprehensive HTML transparency assessment reports for consumer products sold in India.`

// assessmentPayload is the JSON document handed to the model. Field
// names are stable; the prompt references them.
type assessmentPayload struct {
	Product    productPayload  `json:"product"`
	Session    sessionPayload  `json:"session"`
	Responses  []answerPayload `json:"responses"`
	Scores     []int           `json:"scores"`
	FinalScore *float64        `json:"final_score"`
	Questions  []string        `json:"questions"`
}

type productPayload struct {
	ProductKey  string `json:"product_key"`
	CompanyName string `json:"company_name"`
	ProductName string `json:"product_name"`
	Description string `json:"description"`
	Domain      string `json:"domain"`
	CreatedAt   string `json:"created_at"`
}

type sessionPayload struct {
	SessionID       string `json:"session_id"`
	Status          string `json:"status"`
	CurrentQuestion int    `json:"current_question"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type answerPayload struct {
	QuestionNumber int    `json:"question_number"`
	Question       string `json:"question"`
	Response       string `json:"response"`
	Timestamp      string `json:"timestamp"`
}

func buildPayload(data *assessment.ReportData) assessmentPayload {
	responses := make([]answerPayload, 0, len(data.Session.Answers))
	for _, a := range data.Session.Answers {
		responses = append(responses, answerPayload{
			QuestionNumber: a.QuestionNumber,
			Question:       a.Question,
			Response:       a.Response,
			Timestamp:      a.Timestamp.Format(time.RFC3339),
		})
	}
	return assessmentPayload{
		Product: productPayload{
			ProductKey:  data.Product.ProductKey,
			CompanyName: data.Product.CompanyName,
			ProductName: data.Product.ProductName,
			Description: data.Product.Description,
			Domain:      data.Product.Domain,
			CreatedAt:   data.Product.CreatedAt.Format(time.RFC3339),
		},
		Session: sessionPayload{
			SessionID:       data.Session.SessionID,
			Status:          data.Session.Status,
			CurrentQuestion: data.Session.CurrentQuestion,
			CreatedAt:       data.Session.CreatedAt.Format(time.RFC3339),
			UpdatedAt:       data.Session.UpdatedAt.Format(time.RFC3339),
		},
		Responses:  responses,
		Scores:     scoresOrEmpty(data.Session),
		FinalScore: data.Session.FinalScore,
		Questions:  questions.All(),
	}
}

func scoresOrEmpty(sess *store.SessionRecord) []int {
	if sess.Scores == nil {
		return []int{}
	}
	return sess.Scores
}

func buildReportUserMessage(data *assessment.ReportData) string {
	payload, err := json.MarshalIndent(buildPayload(data), "", "  ")
	if err != nil {
		// All payload fields are plain values; marshaling cannot fail.
		payload = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("Generate a comprehensive HTML transparency assessment report based on the following product assessment data:\n\n")
	b.WriteString("ASSESSMENT DATA:\n")
	b.Write(payload)
	b.WriteString("\n\nREPORT REQUIREMENTS:\n")
	b.WriteString(`
1. DOCUMENT STRUCTURE:
   - Stick to one color which is Deep Blue in little details.
   - Use a clean and professional layout
   - Generate content which fits in A4 paper size sheets perfectly
   - Professional HTML document with embedded CSS
   - Modern, responsive design
   - Clear sections with proper HTML5 semantic structure
   - Include header, main content sections, and footer

2. CONTENT SECTIONS TO INCLUDE:
   a) Header with product details and assessment metadata
   b) Executive Summary (key findings and overall transparency score)
   c) Assessment Methodology overview
   d) Detailed Analysis for each transparency dimension:
      - Ingredient/Component Transparency
      - Quality Control & Certifications
      - Risk Communication & Safety
      - Environmental Impact & Sustainability
      - Product Information & Usage Guidelines
      - Complaint Management & Recall Systems
   e) Scoring Analysis with visual elements (tables, progress bars)
   f) Regulatory Compliance Assessment
   g) Recommendations for Improvement
   h) Conclusion

3. STYLING REQUIREMENTS:
   - Modern CSS with a professional color scheme
   - Responsive design that works on desktop and mobile
   - Clean typography with good readability
   - Professional tables and progress bars for score visualization
   - Complete print media styles

4. CONTENT GENERATION REQUIREMENTS:
   - Analyze the actual assessment data provided
   - Generate specific insights based on the responses
   - Create detailed findings for each question and score
   - Provide regulatory compliance analysis based on Indian standards
   - Generate actionable recommendations based on assessment gaps
   - Create a professional executive summary reflecting actual results

Generate the COMPLETE HTML document. Do not use any templates, placeholders, or incomplete sections. The output must be a fully functional, comprehensive transparency assessment report that can be immediately saved and used. Start with <!DOCTYPE html> and end with </html> with everything in between fully implemented.
`)

	return b.String()
}
