package main

import (
	"fmt"

	"github.com/fwojciec/coursechat"
	"github.com/fwojciec/coursechat/chat"
	"github.com/rs/zerolog"
)

const (
	modeChat       = "chat"
	modeQuiz       = "quiz"
	modeFlashcards = "flashcards"
)

type config struct {
	baseURL string // empty = client default
	subject coursechat.Subject
	mode    string
	level   zerolog.Level
	policy  chat.SendPolicy
}

// resolveConfig combines flags with environment values. Flags win over the
// environment.
func resolveConfig(baseURLFlag, baseURLEnv, subjectFlag, modeFlag, levelFlag string, serialize bool) (config, error) {
	cfg := config{baseURL: baseURLFlag, mode: modeFlag}
	if cfg.baseURL == "" {
		cfg.baseURL = baseURLEnv
	}

	subject, err := coursechat.ParseSubject(subjectFlag)
	if err != nil {
		return config{}, err
	}
	cfg.subject = subject

	switch modeFlag {
	case modeChat, modeQuiz, modeFlashcards:
	default:
		return config{}, fmt.Errorf("unknown mode %q (use chat, quiz or flashcards)", modeFlag)
	}

	level, err := zerolog.ParseLevel(levelFlag)
	if err != nil {
		return config{}, fmt.Errorf("log level: %w", err)
	}
	cfg.level = level

	cfg.policy = chat.SendConcurrent
	if serialize {
		cfg.policy = chat.SendSerialized
	}
	return cfg, nil
}
