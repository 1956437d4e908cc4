package tutor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/EllouziMedAmin/Pedagogical-RAG/testutil/mocks"
)

// This property test verifies that outages of the optional services can
// never fail a turn: as long as the generation model answers, every
// non-toxic turn produces a reply and exactly one history entry.
func TestProperty_Pipeline_OptionalOutagesNeverFailTheTurn(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		provider := mocks.NewMockProvider().WithResponse("une question guidée ?")

		svcs := Services{LLM: provider, Synthesizer: mocks.NewMockTTS()}
		if rapid.Bool().Draw(rt, "haveToxicity") {
			if rapid.Bool().Draw(rt, "toxicityFails") {
				svcs.Toxicity = mocks.NewMockClassifier().WithError(errors.New("down"))
			} else {
				score := rapid.Float64Range(0, 0.5).Draw(rt, "toxicScore")
				svcs.Toxicity = mocks.NewMockClassifier().WithLabel("toxic", score)
			}
		}
		if rapid.Bool().Draw(rt, "haveAffect") {
			if rapid.Bool().Draw(rt, "affectFails") {
				svcs.Affect = mocks.NewMockClassifier().WithError(errors.New("down"))
			} else {
				svcs.Affect = mocks.NewMockClassifier().WithLabel("joy", 0.9)
			}
		}
		if rapid.Bool().Draw(rt, "haveMemory") {
			if rapid.Bool().Draw(rt, "memoryFails") {
				svcs.Memory = mocks.NewMockStore().WithError(errors.New("down"))
			} else {
				svcs.Memory = mocks.NewMockStore().WithEntries("doc")
			}
		}

		registry := NewRegistry(svcs, NewPromptComposer(nil), RegistryConfig{}, zap.NewNop())
		sess, err := registry.Create(LearnerProfile{Name: "p", Age: 9, Subject: "maths"})
		require.NoError(t, err)

		turns := rapid.IntRange(1, 5).Draw(rt, "turns")
		for i := 0; i < turns; i++ {
			sess.mu.Lock()
			res, err := sess.pipeline.Run(context.Background(), sess, NormalizedTurn{
				Text: fmt.Sprintf("question %d", i),
			})
			sess.mu.Unlock()
			require.NoError(rt, err)
			assert.False(rt, res.Blocked)
			assert.NotEmpty(rt, res.Reply)
		}
		assert.Len(rt, sess.History(), turns)
	})
}

// The refusal path must hold for any toxic score strictly above the
// threshold, in both language modes, and must never touch the history.
func TestProperty_Pipeline_ToxicAlwaysBlocked(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		score := rapid.Float64Range(0.5000001, 1).Draw(rt, "toxicScore")
		subject := rapid.SampledFrom([]string{"maths", "english"}).Draw(rt, "subject")

		provider := mocks.NewMockProvider()
		svcs := Services{
			LLM:         provider,
			Toxicity:    mocks.NewMockClassifier().WithLabel("toxic", score),
			Synthesizer: mocks.NewMockTTS(),
		}

		registry := NewRegistry(svcs, NewPromptComposer(nil), RegistryConfig{}, zap.NewNop())
		sess, err := registry.Create(LearnerProfile{Name: "p", Age: 9, Subject: subject})
		require.NoError(t, err)

		sess.mu.Lock()
		res, err := sess.pipeline.Run(context.Background(), sess, NormalizedTurn{Text: "hostile"})
		sess.mu.Unlock()

		require.NoError(rt, err)
		assert.True(rt, res.Blocked)
		assert.Equal(rt, sess.Mode().RefusalMessage(), res.Reply)
		assert.Zero(rt, provider.CallCount())
		assert.Empty(rt, sess.History())
	})
}
