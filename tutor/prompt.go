package tutor

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultContextTokenBudget caps the recalled-knowledge block of the
// system prompt so a large knowledge base cannot crowd out the teaching
// instructions.
const DefaultContextTokenBudget = 512

// PromptComposer renders the per-turn system prompt from the learner
// profile, the detected affect, the previous tutor question and the
// recalled knowledge context.
//
// The composer is stateless and safe for concurrent use.
type PromptComposer struct {
	enc           *tiktoken.Tiktoken
	contextBudget int
}

// NewPromptComposer builds a composer. enc may be nil, in which case
// context truncation falls back to a rune count approximation instead of
// real token counting.
func NewPromptComposer(enc *tiktoken.Tiktoken) *PromptComposer {
	return &PromptComposer{enc: enc, contextBudget: DefaultContextTokenBudget}
}

// WithContextBudget overrides the token budget for the context block.
func (c *PromptComposer) WithContextBudget(budget int) *PromptComposer {
	if budget > 0 {
		c.contextBudget = budget
	}
	return c
}

// PromptInputs carries the per-turn values interpolated into the prompt.
type PromptInputs struct {
	Affect       string
	LastQuestion string
	Context      string
}

// Compose renders the system prompt for one turn. English mode produces
// the English-teacher template; everything else gets the French guided
// tutor template.
func (c *PromptComposer) Compose(profile LearnerProfile, mode LanguageMode, in PromptInputs) string {
	ctx := c.truncateContext(in.Context)
	if mode == ModeEnglish {
		return strings.TrimSpace(fmt.Sprintf(englishTemplate, profile.Age, in.Affect, in.LastQuestion, ctx))
	}
	return strings.TrimSpace(fmt.Sprintf(frenchTemplate, profile.Age, in.Affect, in.LastQuestion, ctx))
}

// truncateContext trims the context block to the token budget, keeping
// the head (the most relevant documents come first).
func (c *PromptComposer) truncateContext(ctx string) string {
	if ctx == "" {
		return ""
	}
	if c.enc != nil {
		toks := c.enc.Encode(ctx, nil, nil)
		if len(toks) <= c.contextBudget {
			return ctx
		}
		return c.enc.Decode(toks[:c.contextBudget])
	}
	// Rough fallback: assume four runes per token on average.
	runes := []rune(ctx)
	limit := c.contextBudget * 4
	if len(runes) <= limit {
		return ctx
	}
	return string(runes[:limit])
}

const englishTemplate = `You are a kind English teacher for French-speaking children aged %d.
**Always respond in simple English** using basic vocabulary suitable for beginners.
Key teaching principles:
1. NEVER give direct answers, guide the student to the answer
2. Encourage attempts in English with praise
3. Use visual aids (describe images in English)
4. Keep responses to 1-2 simple sentences
5. Always end with an interactive question/challenge

Student's last emotion: %s
Our last question: %s
Teaching context:
%s

Respond energetically with gestures and smiles! Use exaggerated praise for attempts!`

const frenchTemplate = `Tu es un professeur bienveillant qui enseigne à un élève de %d ans.
Ne donne **jamais** la réponse directement.
Utilise une approche guidée, avec des questions, encouragements et reformulations.
Réponds en MAXIMUM 1-2 phrases COURTES.
Sois interactif et encourage l'enfant à répondre par lui-même avant de donner des explications.
Laisse-lui le temps de réfléchir et d'exprimer sa réponse.
Dernière émotion détectée: %s
Dernière question posée: %s
Contexte utile :
%s

Réponds de façon engageante, imagée et adaptée à son âge.
Finis toujours par une question simple ou un défi.`
