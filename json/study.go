package json

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/coursechat"
)

type quizRequest struct {
	Topic        string `json:"topic"`
	Subject      string `json:"subject,omitempty"`
	NumQuestions int    `json:"num_questions"`
}

type quizQuestionDTO struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
}

type quizResponse struct {
	Success  bool              `json:"success"`
	Error    string            `json:"error,omitempty"`
	QuizID   string            `json:"quiz_id"`
	QuizData []quizQuestionDTO `json:"quiz_data"`
}

type flashcardRequest struct {
	Topic    string `json:"topic"`
	Subject  string `json:"subject,omitempty"`
	NumCards int    `json:"num_cards"`
}

type flashcardDTO struct {
	Front      string   `json:"front"`
	Back       string   `json:"back"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
}

type flashcardResponse struct {
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
	FlashcardData []flashcardDTO `json:"flashcard_data"`
}

// MarshalQuizRequest encodes a POST /quiz/generate body.
func MarshalQuizRequest(r coursechat.QuizRequest) ([]byte, error) {
	return json.Marshal(quizRequest{Topic: r.Topic, Subject: string(r.Subject), NumQuestions: r.NumQuestions})
}

// UnmarshalQuizRequest decodes a POST /quiz/generate body.
func UnmarshalQuizRequest(data []byte) (coursechat.QuizRequest, error) {
	var req quizRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return coursechat.QuizRequest{}, malformed("decode quiz request", err)
	}
	return coursechat.QuizRequest{Topic: req.Topic, Subject: coursechat.Subject(req.Subject), NumQuestions: req.NumQuestions}, nil
}

// UnmarshalQuiz decodes a POST /quiz/generate response. A response with
// success=false yields coursechat.ErrGeneration.
func UnmarshalQuiz(data []byte) (coursechat.Quiz, error) {
	var resp quizResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return coursechat.Quiz{}, malformed("decode quiz", err)
	}
	if !resp.Success {
		return coursechat.Quiz{}, fmt.Errorf("quiz %q: %w", resp.Error, coursechat.ErrGeneration)
	}
	if len(resp.QuizData) == 0 {
		return coursechat.Quiz{}, malformed("quiz_data empty", nil)
	}
	quiz := coursechat.Quiz{ID: resp.QuizID, Questions: make([]coursechat.QuizQuestion, len(resp.QuizData))}
	for i, q := range resp.QuizData {
		if q.Question == "" || len(q.Options) == 0 || q.CorrectAnswer == "" {
			return coursechat.Quiz{}, malformed(fmt.Sprintf("quiz question %d incomplete", i), nil)
		}
		quiz.Questions[i] = coursechat.QuizQuestion(q)
	}
	return quiz, nil
}

// MarshalQuiz encodes a successful POST /quiz/generate response.
func MarshalQuiz(q coursechat.Quiz) ([]byte, error) {
	resp := quizResponse{Success: true, QuizID: q.ID, QuizData: make([]quizQuestionDTO, len(q.Questions))}
	for i, qq := range q.Questions {
		resp.QuizData[i] = quizQuestionDTO(qq)
	}
	return json.Marshal(resp)
}

// MarshalFlashcardRequest encodes a POST /flashcard/generate body.
func MarshalFlashcardRequest(r coursechat.FlashcardRequest) ([]byte, error) {
	return json.Marshal(flashcardRequest{Topic: r.Topic, Subject: string(r.Subject), NumCards: r.NumCards})
}

// UnmarshalFlashcardRequest decodes a POST /flashcard/generate body.
func UnmarshalFlashcardRequest(data []byte) (coursechat.FlashcardRequest, error) {
	var req flashcardRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return coursechat.FlashcardRequest{}, malformed("decode flashcard request", err)
	}
	return coursechat.FlashcardRequest{Topic: req.Topic, Subject: coursechat.Subject(req.Subject), NumCards: req.NumCards}, nil
}

// UnmarshalFlashcards decodes a POST /flashcard/generate response.
func UnmarshalFlashcards(data []byte) ([]coursechat.Flashcard, error) {
	var resp flashcardResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, malformed("decode flashcards", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("flashcards %q: %w", resp.Error, coursechat.ErrGeneration)
	}
	if len(resp.FlashcardData) == 0 {
		return nil, malformed("flashcard_data empty", nil)
	}
	cards := make([]coursechat.Flashcard, len(resp.FlashcardData))
	for i, c := range resp.FlashcardData {
		if c.Front == "" || c.Back == "" {
			return nil, malformed(fmt.Sprintf("flashcard %d incomplete", i), nil)
		}
		cards[i] = coursechat.Flashcard(c)
	}
	return cards, nil
}

// MarshalFlashcards encodes a successful POST /flashcard/generate response.
func MarshalFlashcards(cards []coursechat.Flashcard) ([]byte, error) {
	resp := flashcardResponse{Success: true, FlashcardData: make([]flashcardDTO, len(cards))}
	for i, c := range cards {
		resp.FlashcardData[i] = flashcardDTO(c)
	}
	return json.Marshal(resp)
}
