package services

import (
	"context"
	"errors"
	"testing"
)

func TestAssistant_Reply(t *testing.T) {
	gen := &mockGenerator{reply: "がんばるにゃ"}
	a := NewAssistant(gen, "やさしい猫。")

	got, err := a.Reply(context.Background(), "  しごとつらい  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "がんばるにゃ" {
		t.Fatalf("unexpected reply %q", got)
	}
	if gen.prompts[0] != "やさしい猫。\nユーザー: しごとつらい" {
		t.Fatalf("unexpected prompt %q", gen.prompts[0])
	}

	if _, err := a.Reply(context.Background(), "   "); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
}

func TestAssistant_Weather(t *testing.T) {
	tests := []struct {
		name     string
		gen      interface{ GenerateReply(context.Context, string) string }
		location string
		want     string
	}{
		{name: "Reply", gen: &mockGenerator{reply: "晴れにゃ"}, location: "大阪", want: "晴れにゃ"},
		{name: "Empty location", gen: &mockGenerator{reply: "晴れにゃ"}, location: " ", want: WeatherFallback},
		{name: "Blank reply", gen: &mockGenerator{reply: ""}, location: "大阪", want: WeatherFallback},
		{name: "Requester failure", gen: &mockRequester{mockGenerator{reply: "サーバに接続できないにゃ"}}, location: "大阪", want: WeatherFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssistant(tt.gen, "")
			if got := a.Weather(context.Background(), tt.location); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}

	gen := &mockGenerator{reply: "雨にゃ"}
	NewAssistant(gen, "").Weather(context.Background(), "東京")
	if gen.prompts[0] != "今日の日本の東京の天気を簡単な一言で教えてにゃ" {
		t.Fatalf("unexpected weather prompt %q", gen.prompts[0])
	}
}
