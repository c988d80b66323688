package guardrail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGeneric(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{message: "hi", want: true},
		{message: "Hello!!", want: true},
		{message: "good morning", want: true},
		{message: "help", want: true},
		{message: "can you help me", want: true},
		{message: "what", want: true},
		{message: "tell me more", want: true},
		{message: "ok", want: true},
		{message: "Thanks!", want: true},
		{message: "how do I check my balance", want: false},
		{message: "help me cancel my subscription", want: false},
		{message: "hello is my sim active", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGeneric(tt.message))
		})
	}
}

func TestIsContextualFollowUp(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{message: "why is that", want: true},
		{message: "Why does it cost so much", want: true},
		{message: "what about roaming", want: true},
		{message: "and what happens after that", want: true},
		{message: "but why", want: true},
		{message: "so when does it renew", want: true},
		{message: "why is my internet slow", want: true},
		{message: "how do I check my balance", want: false},
		{message: "what plans do you offer", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, IsContextualFollowUp(tt.message))
		})
	}
}
