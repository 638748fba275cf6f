package inference

import (
	"context"

	"github.com/mweller/jotter/internal/logging"
)

const delimiterSystemPrompt = `You are a helpful assistant specialized in analyzing journal entries. Your task is to provide a brief, descriptive title (3-8 words) and a concise summary of the main points and themes from the provided journal entry.

CRITICAL: You must respond using this EXACT format with ALL delimiters:

TITLE_START:Your brief descriptive title here:TITLE_END
SUMMARY_START:Your concise summary of the main points and themes here:SUMMARY_END

IMPORTANT:
- You MUST include both opening AND closing delimiters for each section
- Do not include any other text, formatting, or characters in your response
- Use only the format above with ALL FOUR delimiters
- **The title should be a natural, descriptive phrase for the journal entry's content. Do not use words like 'Found', 'Discovered', or 'Entry'.**
- **When referring to the person who wrote the journal entry, use 'the user' or describe their actions directly (e.g., 'The user reflects...', 'They describe...'), avoiding terms like 'the writer' or 'the author'.**`

const jsonSystemPrompt = "You are a helpful assistant specialized in analyzing journal entries. Your task is to provide a brief, descriptive title (3-8 words) and a concise summary of the main points and themes from the provided journal entry.\n\n" +
	"IMPORTANT: To avoid JSON parsing issues, use backticks(`) instead of regular quotes in your title and summary content.\n" +
	"**The title should be a natural, descriptive phrase for the journal entry's content. Do not use words like 'Found', 'Discovered', or 'Entry'.**\n" +
	"**When referring to the person who wrote the journal entry, use 'the user' or describe their actions directly (e.g., 'The user reflects...', 'They describe...'), avoiding terms like 'the writer' or 'the author'.**\n\n" +
	"Respond with this exact format:\n" +
	`{"title": "Brief descriptive title here", "summary": "Concise summary of the main points and themes here"}` + "\n\n" +
	"Your entire response must be valid JSON only. Do not include any text outside the JSON structure."

// Summarizer turns journal text into a (title, summary) pair. It tries the
// delimiter protocol first, then a JSON reprompt, then a constant
// placeholder. It never returns an error to the caller.
type Summarizer struct {
	chat   ChatCompleter
	logger logging.Logger
}

// NewSummarizer constructs a Summarizer over the given chat client.
func NewSummarizer(chat ChatCompleter, logger logging.Logger) *Summarizer {
	return &Summarizer{chat: chat, logger: logger}
}

type strategy struct {
	systemPrompt string
	userPrefix   string
	parse        Parser
}

var strategies = []strategy{
	{delimiterSystemPrompt, "Analyze this journal entry: ", ParseDelimited},
	{jsonSystemPrompt, "Journal entry: ", ParseJSONObject},
}

// GenerateTitleAndSummary runs the strategies in order and returns the first
// successfully parsed pair, falling back to placeholders when all fail.
func (s *Summarizer) GenerateTitleAndSummary(ctx context.Context, text string) TitleSummary {
	for _, st := range strategies {
		raw, err := s.chat.Complete(ctx, []Message{
			{Role: "system", Content: st.systemPrompt},
			{Role: "user", Content: st.userPrefix + text},
		})
		if err != nil {
			s.logger.Warn(ctx, "chat completion failed", "error", err)
			continue
		}
		if pair, ok := st.parse(raw); ok {
			return pair
		}
		s.logger.Warn(ctx, "could not parse model response", "response_len", len(raw))
	}
	return TitleSummary{Title: PlaceholderTitle, Summary: PlaceholderSummary}
}
