package content

import (
	"fmt"
	"strings"
)

const riddleBase = `You write short pirate-themed riddles that teach children about money and saving.
Respond with a single JSON object and nothing else:
{"title": "...", "question": "...", "options": ["...", "...", "..."], "answer": "..."}
Rules:
- exactly three options; "answer" must equal one of the options character for character
- the question is at most 40 words
- the title is 2 to 5 words`

const decisionBase = `You write short pirate-themed money decisions for children.
Respond with a single JSON object and nothing else:
{"title": "...", "scenario": "...", "choices": [{"text": "...", "is_correct": true, "feedback": "..."}, {"text": "...", "is_correct": false, "feedback": "..."}]}
Rules:
- exactly two choices and exactly one has "is_correct": true
- feedback explains the outcome in one friendly sentence
- the scenario is at most 50 words`

const hintBase = `Give a one-sentence hint for the word %q to a child playing a word guessing game.
Do not use the word itself or spell it out.
Respond with a single JSON object and nothing else: {"hint": "..."}`

func withExclusions(base string, exclude []string) string {
	if len(exclude) == 0 {
		return base
	}
	return base + "\n- do not reuse any of these titles: " + strings.Join(exclude, "; ")
}

func riddlePrompt(exclude []string) string {
	return withExclusions(riddleBase, exclude)
}

func decisionPrompt(exclude []string) string {
	return withExclusions(decisionBase, exclude)
}

func hintPrompt(word string) string {
	return fmt.Sprintf(hintBase, word)
}
