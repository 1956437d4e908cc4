package tutor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveLanguageMode(t *testing.T) {
	tests := []struct {
		subject string
		want    LanguageMode
	}{
		{"anglais", ModeEnglish},
		{"Anglais", ModeEnglish},
		{"english", ModeEnglish},
		{"ENGLISH", ModeEnglish},
		{"  english  ", ModeEnglish},
		{"maths", ModeFrench},
		{"histoire", ModeFrench},
		{"sciences", ModeFrench},
		{"", ModeFrench},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveLanguageMode(tt.subject))
		})
	}
}

func TestLanguageModeHints(t *testing.T) {
	assert.Equal(t, "en", ModeEnglish.TranscriptionHint())
	assert.Equal(t, "fr", ModeFrench.TranscriptionHint())

	assert.Equal(t, "I prefer we keep things polite. Could you rephrase?", ModeEnglish.RefusalMessage())
	assert.Equal(t, "🤖 Je préfère qu'on reste poli. Peux-tu reformuler ?", ModeFrench.RefusalMessage())
}

func TestLanguageModeVoices(t *testing.T) {
	en := ModeEnglish.Voice()
	require.NotNil(t, en.Settings)
	assert.Equal(t, "EXAVITQu4vr4xnSDxMaL", en.VoiceID)
	assert.InDelta(t, 0.7, en.Settings.Stability, 1e-9)
	assert.InDelta(t, 0.8, en.Settings.SimilarityBoost, 1e-9)
	assert.InDelta(t, 0.9, en.Settings.Style, 1e-9)
	assert.True(t, en.Settings.UseSpeakerBoost)

	fr := ModeFrench.Voice()
	assert.Equal(t, "ViSNE020Z1wEV4uZomv5", fr.VoiceID)
	assert.Nil(t, fr.Settings)
}

func TestLearnerProfileValidate(t *testing.T) {
	valid := LearnerProfile{Name: "Léa", Age: 9, Level: "CM1", Subject: "maths"}
	require.NoError(t, valid.Validate())

	assert.Error(t, LearnerProfile{Age: 9, Subject: "maths"}.Validate())
	assert.Error(t, LearnerProfile{Name: "Léa", Age: 9}.Validate())
	assert.Error(t, LearnerProfile{Name: "Léa", Age: -1, Subject: "maths"}.Validate())
}
