package server

import "strings"

const (
	maxQuestionLength = 280
	maxAnswerLength   = 280
	maxNameLength     = 64
)

func validateQuestion(text string) (string, error) {
	return validateText("question", text, maxQuestionLength)
}

func validateAnswer(text string) (string, error) {
	return validateText("answer", text, maxAnswerLength)
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", invalidState("%s is required", label)
	}
	if len(trimmed) > maxLen {
		return "", invalidState("%s must be %d characters or fewer", label, maxLen)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
