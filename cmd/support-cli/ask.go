package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/convodesk/support-engine/internal/compose"
	"github.com/convodesk/support-engine/internal/conversation"
	"github.com/convodesk/support-engine/internal/guardrail"
	"github.com/convodesk/support-engine/internal/match"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Run a question through guardrails, matching, and tiering locally",
	Long: `Runs the full pre-AI pipeline against the local knowledge base:
guardrail checks, lexical FAQ matching, and confidence tiering. No
embedding or generative providers are called; the command prints the
tier decision and what would be sent to the model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		ctx := context.Background()
		pipeline := guardrail.NewPipeline(guardrail.DefaultRules(), nil, cliLogger())

		if decision := pipeline.Preprocess(ctx, question, conversation.Identity{UserID: "cli"}); decision != nil {
			color.Yellow("Blocked by guardrail (%s: %s)", decision.Reason, decision.Detail)
			fmt.Println(decision.Response)
			return nil
		}

		if guardrail.IsGeneric(question) || guardrail.IsContextualFollowUp(question) || pipeline.IsShortVague(question) {
			color.Yellow("FAQ search skipped (conversational message)")
			return nil
		}

		matcher := match.NewLexicalMatcher()
		result, err := matcher.Match(ctx, question, store.Load(ctx))
		if err != nil {
			return err
		}

		plan := compose.Compose(question, result)
		fmt.Printf("score:      %.3f\n", result.Score)
		fmt.Printf("confidence: %s\n", result.Confidence)
		fmt.Printf("tier:       %s\n", plan.Tier)

		switch {
		case plan.SkipAI:
			color.Green("Direct FAQ answer (no generative call):")
			fmt.Println(plan.DirectResponse)
		case plan.FAQContext != "":
			color.Cyan("FAQ context for the generative call:")
			fmt.Println(plan.FAQContext)
		default:
			color.Yellow("No FAQ context; generative call would proceed unaided.")
		}
		return nil
	},
}
