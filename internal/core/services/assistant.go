package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/nekolog/internal/core/ports"
)

// DefaultPersona is prepended to every user prompt.
const DefaultPersona = "小学生低学年レベルの返答。45文字以内。\n" +
	"難しい話は『猫に聞かれてもわからんにゃ』と返す。\n" +
	"語尾は必ず「にゃ」をつける。\n" +
	"必ず応援する返答にする。"

// WeatherFallback is returned when no weather phrase is available.
const WeatherFallback = "不明"

// ErrEmptyPrompt is returned for blank user input.
var ErrEmptyPrompt = errors.New("service: empty prompt")

// Assistant wraps the reply generator with the cat persona.
type Assistant struct {
	gen     ports.ReplyGenerator
	persona string
}

// NewAssistant returns an Assistant. An empty persona selects DefaultPersona.
func NewAssistant(gen ports.ReplyGenerator, persona string) *Assistant {
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
	}
	return &Assistant{gen: gen, persona: persona}
}

// Prompt returns the full prompt sent for user text.
func (a *Assistant) Prompt(text string) string {
	return a.persona + "\nユーザー: " + text
}

// Reply answers text in persona.
func (a *Assistant) Reply(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyPrompt
	}
	return a.gen.GenerateReply(ctx, a.Prompt(text)), nil
}

// Weather asks for a one-line forecast for location. It returns
// WeatherFallback when location is empty or the service fails.
func (a *Assistant) Weather(ctx context.Context, location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return WeatherFallback
	}
	prompt := fmt.Sprintf("今日の日本の%sの天気を簡単な一言で教えてにゃ", location)

	if r, ok := a.gen.(ports.ReplyRequester); ok {
		reply, err := r.Request(ctx, prompt)
		if err != nil || strings.TrimSpace(reply) == "" {
			return WeatherFallback
		}
		return reply
	}

	reply := a.gen.GenerateReply(ctx, prompt)
	if strings.TrimSpace(reply) == "" {
		return WeatherFallback
	}
	return reply
}
