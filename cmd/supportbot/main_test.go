package main

import (
	"reflect"
	"testing"

	"github.com/MikeSquared-Agency/supportbot/internal/config"
	"github.com/MikeSquared-Agency/supportbot/internal/llm"
)

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example , ,https://b.example")
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
	if splitList("") != nil {
		t.Error("expected nil for empty list")
	}
}

func TestNewProvider(t *testing.T) {
	p, err := newProvider(config.Config{LLMProvider: "openrouter", OpenRouterAPIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*llm.OpenRouter); !ok {
		t.Errorf("expected OpenRouter, got %T", p)
	}

	p, err = newProvider(config.Config{LLMProvider: "anthropic", AnthropicAPIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*llm.Anthropic); !ok {
		t.Errorf("expected Anthropic, got %T", p)
	}

	if _, err := newProvider(config.Config{LLMProvider: "openrouter"}); err == nil {
		t.Error("expected error without api key")
	}
	if _, err := newProvider(config.Config{LLMProvider: "banana"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
