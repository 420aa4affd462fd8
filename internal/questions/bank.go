// Package questions holds the fixed transparency question bank.
//
// The bank is an ordered, immutable sequence of six questions. Question
// indices are 1-based throughout the codebase: question 1 is the first
// question asked, question Count() the last.
package questions

// bank is the ordered question sequence. Initialized once, never mutated.
var bank = []string{
	"Please provide detailed information about all ingredients/components used in your product. Are there any potentially harmful substances that consumers should be aware of?",

	"What quality control measures and testing procedures do you implement during manufacturing? Please share your quality certifications and compliance standards.",

	"Are there any known side effects, risks, or contraindications associated with your product? How do you communicate these to consumers?",

	"Please describe your product's environmental impact and disposal methods. What sustainable practices do you follow in production?",

	"What is your product's shelf life, storage requirements, and proper usage instructions? How do you ensure consumers receive accurate information?",

	"Do you have a system for tracking adverse events, consumer complaints, and product recalls? How transparent are you about product issues and their resolution?",
}

// Count returns the number of questions in the bank.
func Count() int {
	return len(bank)
}

// Get returns the question at the given 1-based index.
// It returns "" when index is out of range.
func Get(index int) string {
	if index < 1 || index > len(bank) {
		return ""
	}
	return bank[index-1]
}

// All returns a copy of the full ordered question list.
func All() []string {
	out := make([]string, len(bank))
	copy(out, bank)
	return out
}

// Remaining returns copies of the questions from the given 1-based index
// through the end of the bank. An index past the end yields an empty slice.
func Remaining(from int) []string {
	if from < 1 {
		from = 1
	}
	if from > len(bank) {
		return []string{}
	}
	out := make([]string, len(bank)-from+1)
	copy(out, bank[from-1:])
	return out
}
