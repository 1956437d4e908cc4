package tutor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeFrench(t *testing.T) {
	c := NewPromptComposer(nil)
	profile := LearnerProfile{Name: "Léa", Age: 9, Subject: "maths"}

	prompt := c.Compose(profile, ModeFrench, PromptInputs{
		Affect:       "joy",
		LastQuestion: "Combien font 3 fois 4 ?",
		Context:      "Les tables de multiplication.",
	})

	assert.Contains(t, prompt, "9 ans")
	assert.Contains(t, prompt, "Dernière émotion détectée: joy")
	assert.Contains(t, prompt, "Dernière question posée: Combien font 3 fois 4 ?")
	assert.Contains(t, prompt, "Les tables de multiplication.")
	assert.Contains(t, prompt, "jamais")
}

func TestComposeEnglish(t *testing.T) {
	c := NewPromptComposer(nil)
	profile := LearnerProfile{Name: "Léa", Age: 8, Subject: "anglais"}

	prompt := c.Compose(profile, ModeEnglish, PromptInputs{
		Affect:       "neutral",
		LastQuestion: "What colour is the cat?",
		Context:      "Basic colour vocabulary.",
	})

	assert.Contains(t, prompt, "aged 8")
	assert.Contains(t, prompt, "Student's last emotion: neutral")
	assert.Contains(t, prompt, "Our last question: What colour is the cat?")
	assert.Contains(t, prompt, "Basic colour vocabulary.")
	assert.Contains(t, prompt, "simple English")
}

func TestComposeFirstTurnEmptySlots(t *testing.T) {
	c := NewPromptComposer(nil)
	prompt := c.Compose(LearnerProfile{Age: 10}, ModeFrench, PromptInputs{Affect: "neutral"})

	// Empty slots render as empty strings, not placeholders.
	assert.Contains(t, prompt, "Dernière question posée: \n")
	assert.NotContains(t, prompt, "%s")
}

func TestTruncateContextFallback(t *testing.T) {
	c := NewPromptComposer(nil).WithContextBudget(4)

	long := strings.Repeat("abcd ", 100)
	got := c.truncateContext(long)
	assert.Less(t, len(got), len(long))
	assert.Equal(t, 16, len([]rune(got)))

	assert.Equal(t, "short", c.truncateContext("short"))
	assert.Equal(t, "", c.truncateContext(""))
}
