package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/coursechat"
	"github.com/fwojciec/coursechat/study"
)

// prompter reads one trimmed line per prompt. ok is false at end of input.
type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (p prompter) ask(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}

// topic asks for a topic until one is given.
func (p prompter) topic(current string) (string, bool) {
	for current == "" {
		var ok bool
		if current, ok = p.ask("Topic: "); !ok {
			return "", false
		}
	}
	return current, true
}

// runQuiz takes a multiple-choice quiz on the terminal.
func runQuiz(ctx context.Context, gen coursechat.Generator, req coursechat.QuizRequest, in io.Reader, out io.Writer) error {
	p := prompter{sc: bufio.NewScanner(in), out: out}
	quiz := study.NewQuiz(gen)

	for {
		topic, ok := p.topic(req.Topic)
		if !ok {
			return nil
		}
		req.Topic = topic
		fmt.Fprintf(out, "Generating quiz on %q...\n", req.Topic)
		if err := quiz.Start(ctx, req); err != nil {
			return fmt.Errorf("generate quiz: %w", err)
		}

		for {
			if ok, err := takeQuiz(p, quiz); !ok || err != nil {
				return err
			}

			correct, total := quiz.Score()
			fmt.Fprintf(out, "\nScore: %d/%d (%d%%)\n%s\n", correct, total, correct*100/total, study.Verdict(correct, total))

			choice, ok := p.ask("[r]etry, [n]ew quiz, [q]uit: ")
			if !ok || strings.EqualFold(choice, "q") {
				return nil
			}
			if !strings.EqualFold(choice, "r") {
				break
			}
			if err := quiz.Retry(); err != nil {
				return err
			}
		}
		quiz.Restart()
		req.Topic = ""
	}
}

// takeQuiz asks every question of a started quiz. It returns false when the
// input ends first.
func takeQuiz(p prompter, quiz *study.Quiz) (bool, error) {
	for quiz.Phase() == study.QuizTaking {
		question, _ := quiz.Current()
		i, n := quiz.Position()
		fmt.Fprintf(p.out, "\nQuestion %d of %d", i+1, n)
		if question.Difficulty != "" {
			fmt.Fprintf(p.out, " [%s]", question.Difficulty)
		}
		fmt.Fprintf(p.out, "\n%s\n", question.Question)
		for j, opt := range question.Options {
			fmt.Fprintf(p.out, "  %c) %s\n", 'A'+j, opt)
		}

		for !quiz.Answered() {
			answer, ok := p.ask("Answer: ")
			if !ok {
				return false, nil
			}
			outcome, err := quiz.Submit(answer)
			if errors.Is(err, coursechat.ErrValidation) {
				fmt.Fprintf(p.out, "Choose a letter between A and %c.\n", 'A'+len(question.Options)-1)
				continue
			}
			if err != nil {
				return false, err
			}
			if outcome.Correct {
				fmt.Fprintln(p.out, "Correct!")
			} else {
				fmt.Fprintf(p.out, "Incorrect. The correct answer is %s.\n", outcome.CorrectAnswer)
			}
			if outcome.Explanation != "" {
				fmt.Fprintf(p.out, "Explanation: %s\n", outcome.Explanation)
			}
		}
		if _, err := quiz.Next(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// runDeck studies a flashcard deck on the terminal.
func runDeck(ctx context.Context, gen coursechat.Generator, req coursechat.FlashcardRequest, in io.Reader, out io.Writer) error {
	p := prompter{sc: bufio.NewScanner(in), out: out}
	deck := study.NewDeck(gen)

	for {
		topic, ok := p.topic(req.Topic)
		if !ok {
			return nil
		}
		req.Topic = topic
		fmt.Fprintf(out, "Generating flashcards on %q...\n", req.Topic)
		if err := deck.Start(ctx, req); err != nil {
			return fmt.Errorf("generate flashcards: %w", err)
		}

		for deck.Studying() {
			card, flipped, _ := deck.Card()
			i, n := deck.Position()
			side, text := "Front", card.Front
			if flipped {
				side, text = "Back", card.Back
			}
			fmt.Fprintf(out, "\nCard %d of %d (%s)\n%s\n", i+1, n, side, text)

			cmd, ok := p.ask("[f]lip, [n]ext, [p]rev, [r]estart, [q]uit: ")
			if !ok {
				return nil
			}
			switch strings.ToLower(cmd) {
			case "f", "":
				deck.Flip()
			case "n":
				if !deck.Next() {
					fmt.Fprintln(out, "This is the last card.")
				}
			case "p":
				if !deck.Prev() {
					fmt.Fprintln(out, "This is the first card.")
				}
			case "r":
				deck.Restart()
				req.Topic = ""
			case "q":
				return nil
			default:
				fmt.Fprintf(out, "Unknown command %q.\n", cmd)
			}
		}
	}
}
