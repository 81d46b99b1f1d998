package service

import (
	"fmt"
	"strings"

	"github.com/shauryapandit/tutor-api-gdg/internal/models"
)

// Fallback strings substituted when the model returns an empty but
// successful result. Generation emptiness never fails a request.
const (
	fallbackQuestion   = "No question generated."
	fallbackEvaluation = "No response received."
)

// completionMessage is returned by the final answer of a quiz.
const completionMessage = "Quiz completed!"

// levelScope describes the conceptual range expected at each tier.
var levelScope = map[models.Level]string{
	models.LevelBeginner:     "fundamental finance concepts",
	models.LevelIntermediate: "financial instruments and market trends",
	models.LevelAdvanced:     "technical analysis and risk management",
}

// questionPrompt builds the instruction for generating one quiz question.
// previousTopic and topicHint are optional; topicHint names the catalog
// topic the question should cover.
func questionPrompt(level models.Level, previousTopic, topicHint string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a finance quiz tutor. Ask one %s-level question about %s.",
		level, levelScope[level])
	if topicHint != "" {
		fmt.Fprintf(&b, " The question should cover the topic: %s.", topicHint)
	}
	if previousTopic != "" {
		fmt.Fprintf(&b, " It must differ from the previous question: %s", previousTopic)
	}
	b.WriteString(" Respond with a single short sentence containing only the question itself, with no greeting or extra text.")
	return b.String()
}

// evaluationPrompt builds the instruction for judging a user's free-text
// answer to the stored question.
func evaluationPrompt(question, answer string) string {
	return fmt.Sprintf(
		"A finance quiz asked: %s\nThe user answered: %s\nIn 2-3 sentences, state whether the answer is correct and briefly explain why.",
		question, answer)
}

// financialSystemPrompt steers the advice chat assistant.
// TODO: move this to a config file and improve the prompt.
const financialSystemPrompt = `You are an ai assistant that summarises information about companies and stocks that help users make better financial investment planning decisions. Provide the following information:
P/E Ratio: Look for the company's price-to-earnings (P/E) ratio—the current share price relative to its per-share earnings.
Beta: A company's beta can tell you how much risk is involved with a stock compared with the rest of the market.
Dividend: If you want to park your money, invest in stocks with a high dividend.
Answer accordingly in a polite way.
Do not answer any other query about topics other than finance.`
