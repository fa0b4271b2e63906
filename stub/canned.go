package stub

import (
	"fmt"
	"strings"

	"github.com/fwojciec/coursechat"
)

var smallTalk = []string{"hi", "hello", "hey", "thanks", "thank you", "bye"}

// CannedAnswer replies to greetings conversationally and to anything else
// with a markdown answer citing three made-up excerpts.
func CannedAnswer(q coursechat.Question) (coursechat.Answer, error) {
	text := strings.ToLower(strings.Trim(strings.TrimSpace(q.Text), "!?."))
	for _, greeting := range smallTalk {
		if text == greeting {
			return coursechat.Answer{
				Generation:       "Hello! Ask me anything about your course material.",
				IsConversational: true,
			}, nil
		}
	}

	course := q.Subject.Label()
	gen := fmt.Sprintf("Here is what the **%s** notes say about _%s_:\n\n"+
		"- It is covered in the lecture slides.\n"+
		"- The textbook chapter has worked examples.\n\n"+
		"See `lecture-notes.pdf` for details.", course, strings.TrimSpace(q.Text))

	sources := make([]coursechat.Source, 3)
	for i := range sources {
		sources[i] = coursechat.Source{
			Excerpt: fmt.Sprintf("Excerpt %d from the %s notes relevant to %q.", i+1, course, q.Text),
			Metadata: map[string]any{
				"source":  "lecture-notes.pdf",
				"page":    float64(10 + i),
				"subject": string(q.Subject),
			},
		}
	}
	return coursechat.Answer{Generation: gen, Sources: sources}, nil
}

var difficulties = []string{"easy", "medium", "hard"}

// CannedQuiz returns req.NumQuestions multiple-choice questions on
// req.Topic, cycling the correct letter through A-D.
func CannedQuiz(req coursechat.QuizRequest) coursechat.Quiz {
	questions := make([]coursechat.QuizQuestion, req.NumQuestions)
	for i := range questions {
		correct := string(rune('A' + i%4))
		questions[i] = coursechat.QuizQuestion{
			Question: fmt.Sprintf("Question %d: which statement about %s is true?", i+1, req.Topic),
			Options: []string{
				fmt.Sprintf("A. Statement A about %s", req.Topic),
				fmt.Sprintf("B. Statement B about %s", req.Topic),
				fmt.Sprintf("C. Statement C about %s", req.Topic),
				fmt.Sprintf("D. Statement D about %s", req.Topic),
			},
			CorrectAnswer: correct,
			Explanation:   fmt.Sprintf("Statement %s matches the %s notes.", correct, req.Subject.Label()),
			Difficulty:    difficulties[i%len(difficulties)],
		}
	}
	return coursechat.Quiz{ID: "quiz-" + strings.ReplaceAll(strings.ToLower(req.Topic), " ", "-"), Questions: questions}
}

// CannedFlashcards returns req.NumCards cards on req.Topic.
func CannedFlashcards(req coursechat.FlashcardRequest) []coursechat.Flashcard {
	cards := make([]coursechat.Flashcard, req.NumCards)
	for i := range cards {
		cards[i] = coursechat.Flashcard{
			Front:      fmt.Sprintf("%s: key term %d", req.Topic, i+1),
			Back:       fmt.Sprintf("Definition %d of a %s concept.", i+1, req.Topic),
			Category:   req.Subject.Label(),
			Difficulty: difficulties[i%len(difficulties)],
			Tags:       []string{strings.ToLower(req.Topic)},
		}
	}
	return cards
}
