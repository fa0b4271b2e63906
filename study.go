package coursechat

import "context"

// Generator produces study material from course content.
type Generator interface {
	GenerateQuiz(ctx context.Context, req QuizRequest) (Quiz, error)
	GenerateFlashcards(ctx context.Context, req FlashcardRequest) ([]Flashcard, error)
}

// QuizRequest asks for a multiple-choice quiz on a topic.
type QuizRequest struct {
	Topic        string
	Subject      Subject
	NumQuestions int // 0 = DefaultQuizQuestions
}

// Quiz is a generated set of questions.
type Quiz struct {
	ID        string
	Questions []QuizQuestion
}

// QuizQuestion is a single multiple-choice question. CorrectAnswer holds the
// option label (for example "A") the backend considers correct.
type QuizQuestion struct {
	Question      string
	Options       []string
	CorrectAnswer string
	Explanation   string
	Difficulty    string
}

// FlashcardRequest asks for a flashcard deck on a topic.
type FlashcardRequest struct {
	Topic    string
	Subject  Subject
	NumCards int // 0 = DefaultFlashcards
}

// Flashcard is a single front/back study card.
type Flashcard struct {
	Front      string
	Back       string
	Category   string
	Difficulty string
	Tags       []string
}
