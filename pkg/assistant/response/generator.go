package response

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-shopassist-be/pkg/assistant/analyzer"
	"ai-shopassist-be/pkg/llm"
	"ai-shopassist-be/pkg/search"
	"ai-shopassist-be/pkg/store"
)

// Context caps keep prompts bounded no matter how much retrieval returned.
const (
	productContextLimit   = 3
	knowledgeContextLimit = 3
	historyContextLimit   = 3

	productSnippetLen   = 200
	knowledgeSnippetLen = 300
)

// Input bundles everything one answer is synthesized from.
type Input struct {
	Query     string
	Analysis  *analyzer.QueryAnalysis
	Session   *store.Session
	Products  []search.SearchResult
	Knowledge []search.SearchResult
}

// Generator turns retrieval output into a customer-facing answer. Generation
// never fails the turn: when the model is unreachable the generator composes
// a deterministic answer from whatever retrieval produced.
type Generator struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewGenerator(provider llm.LLMProvider, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		provider: provider,
		logger:   logger,
	}
}

// Generate produces the answer text for one turn.
func (g *Generator) Generate(ctx context.Context, in Input) string {
	if in.Analysis != nil {
		switch in.Analysis.Intent {
		case analyzer.IntentGreeting:
			return MsgGreeting
		case analyzer.IntentOrderTracking:
			return MsgOrderTracking
		}
	}

	if g.provider == nil {
		return g.compose(in)
	}

	prompt := g.buildPrompt(in)
	answer, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.4), llm.WithMaxTokens(512))
	if err != nil {
		g.logger.Printf("[ERROR] Answer generation failed: %v, composing fallback", err)
		return g.compose(in)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		g.logger.Printf("[WARN] Model returned an empty answer, composing fallback")
		return g.compose(in)
	}
	return answer
}

// compose writes an answer without the model. Retrieval results make it a
// plain listing; nothing retrieved makes it a nudge for more detail.
func (g *Generator) compose(in Input) string {
	if len(in.Products) == 0 && len(in.Knowledge) == 0 {
		return MsgNoResults
	}

	var b strings.Builder
	b.WriteString(MsgFallbackIntro)
	for i, r := range in.Products {
		if i >= productContextLimit {
			break
		}
		b.WriteString(fmt.Sprintf("\n- %s ($%.2f)", r.Document.Title, r.Document.Price))
	}
	if len(in.Products) == 0 {
		for i, r := range in.Knowledge {
			if i >= 1 {
				break
			}
			b.WriteString("\n")
			b.WriteString(snippet(r.Document.Content, knowledgeSnippetLen))
		}
	}
	return b.String()
}

func (g *Generator) buildPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("<system>\n")
	b.WriteString("You are the shopping concierge of Maison Lumière, an online boutique for fine watches, perfume and jewelry.\n")
	b.WriteString("Be warm, concise and concrete. Mention products ONLY from the catalog context below, with their exact prices.\n")
	b.WriteString("Never invent products, prices or store policies. If the context does not answer the question, say so.\n")
	b.WriteString("</system>\n\n")

	writeProductContext(&b, in.Products)
	writeKnowledgeContext(&b, in.Knowledge)
	writeConversation(&b, in.Session)

	b.WriteString("<user_query>\n")
	b.WriteString(in.Query)
	b.WriteString("\n</user_query>\n\n")

	b.WriteString("Answer the user in at most two short paragraphs. Plain text only.\n")
	return b.String()
}

func writeProductContext(b *strings.Builder, products []search.SearchResult) {
	if len(products) == 0 {
		return
	}
	b.WriteString("<catalog_context>\n")
	for i, r := range products {
		if i >= productContextLimit {
			break
		}
		d := r.Document
		b.WriteString(fmt.Sprintf("%d. %s", i+1, d.Title))
		if d.Brand != "" {
			b.WriteString(" by " + d.Brand)
		}
		b.WriteString(fmt.Sprintf(" ($%.2f)\n", d.Price))
		if d.Content != "" {
			b.WriteString("   " + snippet(d.Content, productSnippetLen) + "\n")
		}
	}
	b.WriteString("</catalog_context>\n\n")
}

func writeKnowledgeContext(b *strings.Builder, knowledge []search.SearchResult) {
	if len(knowledge) == 0 {
		return
	}
	b.WriteString("<knowledge_context>\n")
	for i, r := range knowledge {
		if i >= knowledgeContextLimit {
			break
		}
		d := r.Document
		if d.Title != "" {
			b.WriteString("[" + d.Title + "] ")
		}
		b.WriteString(snippet(d.Content, knowledgeSnippetLen) + "\n")
	}
	b.WriteString("</knowledge_context>\n\n")
}

func writeConversation(b *strings.Builder, session *store.Session) {
	if session == nil {
		return
	}
	if session.HasContext() {
		b.WriteString("<conversation>\n")
		for _, msg := range session.LastMessages(historyContextLimit) {
			b.WriteString(fmt.Sprintf("[%s] %s\n", msg.Role, snippet(msg.Content, 160)))
		}
		b.WriteString("</conversation>\n\n")
	}
	if len(session.Preferences) > 0 {
		b.WriteString("<customer_preferences>\n")
		for k, v := range session.Preferences {
			b.WriteString(fmt.Sprintf("%s: %s\n", k, v))
		}
		b.WriteString("</customer_preferences>\n\n")
	}
}

// FollowUps suggests up to three next questions for the customer. They are
// composed deterministically so the widget renders them instantly.
func (g *Generator) FollowUps(in Input) []string {
	if in.Analysis == nil {
		return nil
	}

	var questions []string
	switch in.Analysis.Intent {
	case analyzer.IntentGreeting:
		questions = append(questions, "Are you shopping for a watch, perfume, or jewelry today?")
	case analyzer.IntentOrderTracking:
		questions = append(questions, "Is there anything in the collection I can show you meanwhile?")
	case analyzer.IntentProductSearch, analyzer.IntentRecommendation, analyzer.IntentPriceQuery:
		for _, need := range in.Analysis.InformationNeeds {
			switch need {
			case "product category":
				questions = append(questions, "Which would you prefer: a watch, perfume, or jewelry?")
			case "budget range":
				questions = append(questions, "Do you have a budget in mind?")
			case "who the item is for":
				questions = append(questions, "Who is the gift for?")
			}
		}
		if len(in.Products) > 0 {
			questions = append(questions, "Would you like more details on any of these?")
		}
	case analyzer.IntentGeneralQuestion:
		if len(in.Knowledge) > 0 {
			questions = append(questions, "Did that answer your question?")
		}
	}

	if len(questions) > 3 {
		questions = questions[:3]
	}
	return questions
}

func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
