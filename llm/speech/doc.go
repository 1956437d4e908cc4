// Package speech provides the text-to-speech and speech-to-text provider
// contracts and their concrete implementations: ElevenLabs for synthesis and
// OpenAI Whisper for transcription.
package speech
