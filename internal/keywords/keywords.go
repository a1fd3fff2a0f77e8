// Package keywords holds the tiered phrase tables used for relevance
// classification. The set is read-only at runtime; an alternative set can
// be loaded from YAML.
package keywords

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Set struct {
	Version     string   `yaml:"version"`
	Primary     []string `yaml:"primary"`
	Secondary   []string `yaml:"secondary"`
	Company     []string `yaml:"company"`
	Technical   []string `yaml:"technical"`
	Application []string `yaml:"application"`
	Context     []string `yaml:"context"`
	Negative    []string `yaml:"negative"`
}

// Default returns the built-in voice AI keyword set.
func Default() *Set {
	return &Set{
		Version: "2025-08",
		Primary: []string{
			"voice ai", "text-to-speech", "tts", "speech synthesis",
			"voice synthesis", "voice model", "voice generation",
			"voice assistant", "voice clone", "voice cloning",
			"synthetic voice", "ai voice", "neural voice",
		},
		Secondary: []string{
			"audio generation", "speech generation", "voice conversion",
			"voice transformer", "speech-to-speech", "voice streaming",
			"voice api", "conversational ai", "voice chat", "voice bot",
		},
		Company: []string{
			"elevenlabs", "openai voice", "google voice", "amazon alexa",
			"microsoft cortana", "apple siri", "anthropic voice",
			"meta voice", "nvidia voice", "adobe voice",
		},
		Technical: []string{
			"vocoder", "neural vocoder", "wavenet", "tacotron",
			"fastspeech", "melgan", "hifigan", "voice encoder",
			"speaker embedding", "voice embedding", "prosody",
			"phoneme", "mel-spectrogram",
		},
		Application: []string{
			"voice over", "audiobook", "podcast generation",
			"voice dubbing", "voice translation", "multilingual voice",
			"voice accessibility", "voice interface", "voice commerce",
			"voice search", "voice control",
		},
		Context: []string{
			"ai", "artificial intelligence", "model", "neural",
			"deep learning", "machine learning", "generative",
			"algorithm", "training", "dataset", "api", "sdk",
		},
		Negative: []string{
			"voice actor", "voice actress", "singing voice", "music voice",
			"voice coach", "voice lesson", "voice therapy", "voice disorder",
			"voice of america", "voice vote", "voice mail", "voicemail",
		},
	}
}

// LoadFile reads a keyword set from a YAML file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}

	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse keywords file: %w", err)
	}
	return &set, nil
}

// All returns the any-tier keyword pool: primary plus the supporting
// tiers. Context and negative terms are intentionally not part of it.
func (s *Set) All() []string {
	all := make([]string, 0, len(s.Primary)+len(s.Secondary)+len(s.Company)+len(s.Technical)+len(s.Application))
	all = append(all, s.Primary...)
	all = append(all, s.Secondary...)
	all = append(all, s.Company...)
	all = append(all, s.Technical...)
	all = append(all, s.Application...)
	return all
}

// Valid reports whether the set can classify anything at all. A set with
// no primary tier rejects every text.
func (s *Set) Valid() bool {
	return s != nil && len(s.Primary) > 0
}
