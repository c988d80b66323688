// Package guardrail pre-filters inbound messages before any generative
// call: greeting resets, off-topic redirects, human escalation, and
// conversational-filler detection.
package guardrail

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules holds the data-driven classification tables. They ship with
// compiled-in defaults and can be overridden by a versioned YAML file,
// which also lets tests substitute fixture tables.
type Rules struct {
	Version int `yaml:"version"`

	// OffTopicKeywords is the deny-list of substrings spanning domains
	// the assistant does not serve.
	OffTopicKeywords []string `yaml:"off_topic_keywords"`

	// Escalation groups patterns by category; first category with a
	// matching pattern wins.
	Escalation []EscalationGroup `yaml:"escalation"`

	// DomainKeywords is the allow-list used by short-vague-message
	// detection; a short message containing none of these skips FAQ
	// search.
	DomainKeywords []string `yaml:"domain_keywords"`

	// Responses are the canned reply templates.
	Responses Responses `yaml:"responses"`

	// FallbackMessages are shown when a provider fails; one is chosen
	// at random so repeated failures do not read identically.
	FallbackMessages []string `yaml:"fallback_messages"`
}

// EscalationGroup is a named category of escalation trigger patterns.
type EscalationGroup struct {
	Category string   `yaml:"category"`
	Patterns []string `yaml:"patterns"`
}

// Responses holds canned reply templates. Each takes one %s verb:
// the matched keyword for off-topic, the category for escalation.
type Responses struct {
	OffTopic   string `yaml:"off_topic"`
	Escalation string `yaml:"escalation"`
}

// LoadRules reads a rules file, falling back to defaults for any table
// the file leaves empty.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read rules file: %w", err)
	}
	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return rules, fmt.Errorf("parse rules file: %w", err)
	}

	if len(loaded.OffTopicKeywords) > 0 {
		rules.OffTopicKeywords = loaded.OffTopicKeywords
	}
	if len(loaded.Escalation) > 0 {
		rules.Escalation = loaded.Escalation
	}
	if len(loaded.DomainKeywords) > 0 {
		rules.DomainKeywords = loaded.DomainKeywords
	}
	if loaded.Responses.OffTopic != "" {
		rules.Responses.OffTopic = loaded.Responses.OffTopic
	}
	if loaded.Responses.Escalation != "" {
		rules.Responses.Escalation = loaded.Responses.Escalation
	}
	if len(loaded.FallbackMessages) > 0 {
		rules.FallbackMessages = loaded.FallbackMessages
	}
	if loaded.Version > 0 {
		rules.Version = loaded.Version
	}
	return rules, nil
}

// DefaultRules returns the compiled-in classification tables.
func DefaultRules() Rules {
	return Rules{
		Version: 1,
		OffTopicKeywords: []string{
			// finance and crypto
			"bitcoin", "crypto", "cryptocurrency", "forex", "stock market",
			"stocks", "trading", "invest",
			// weather
			"weather", "temperature", "forecast", "rainfall",
			// sports
			"football", "soccer", "basketball", "cricket", "tennis",
			"premier league", "world cup",
			// politics
			"election", "president", "politics", "parliament", "senator",
			// religion
			"church", "mosque", "bible", "quran", "prayer",
			// entertainment
			"movie", "netflix", "celebrity", "music video", "song lyrics",
			// lifestyle
			"recipe", "cooking", "horoscope", "fashion", "dating",
			// health
			"doctor", "medicine", "symptoms", "diagnosis", "vaccine",
			// general education
			"homework", "essay", "exam answers", "mathematics",
		},
		Escalation: []EscalationGroup{
			{
				Category: "billing",
				Patterns: []string{
					"refund", "overcharge", "charged twice", "billing dispute",
					"wrong charge", "double charged",
				},
			},
			{
				Category: "account",
				Patterns: []string{
					"delete my account", "account hacked", "account suspended",
					"account blocked", "change ownership",
				},
			},
			{
				Category: "login",
				Patterns: []string{
					"can't log in", "cannot log in", "can't login", "cannot login",
					"forgot password", "reset password", "locked out",
				},
			},
			{
				Category: "cancel",
				Patterns: []string{
					"cancel my", "cancellation", "terminate my", "deactivate my",
				},
			},
		},
		DomainKeywords: []string{
			"data", "sim", "plan", "bundle", "balance", "recharge", "topup",
			"top-up", "airtime", "network", "internet", "roaming", "router",
			"wifi", "mifi", "signal", "coverage", "sms", "minutes", "bill",
			"subscription", "activation", "port", "esim",
		},
		Responses: Responses{
			OffTopic: "I can only help with questions about our products and services, so I can't help with \"%s\". Is there anything about your account or service I can assist you with?",
			Escalation: "It sounds like you need help with a %s issue. Let me connect you with a member of our support team who can sort this out for you.",
		},
		FallbackMessages: []string{
			"Sorry, I'm having trouble answering right now. Please try again in a moment.",
			"Something went wrong on my side. Could you ask that again?",
			"I couldn't process that just now. Please give it another try shortly.",
		},
	}
}
