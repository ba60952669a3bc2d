/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package quiz scores the player questionnaire and packs results into share
// links the GM tools can import.
package quiz

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Seednode/ulvareth/party"
)

//go:embed questions.yaml
var questionsYAML []byte

var (
	ErrNoQuestions = errors.New("question bank is empty")
	ErrBadQuestion = errors.New("invalid question")
)

// Points is what an option awards to each archetype.
type Points struct {
	SW int `yaml:"SW" json:"SW"`
	SE int `yaml:"SE" json:"SE"`
	SC int `yaml:"SC" json:"SC"`
}

// Tally returns the points indexed by archetype.
func (p Points) Tally() party.Tally {
	return party.Tally{
		party.Swords:   p.SW,
		party.Seekers:  p.SE,
		party.Schemers: p.SC,
	}
}

type Option struct {
	Key    string `yaml:"key" json:"key"`
	Label  string `yaml:"label" json:"label"`
	Points Points `yaml:"points" json:"points"`
}

type Question struct {
	ID      string   `yaml:"id" json:"id"`
	Title   string   `yaml:"title" json:"title"`
	Options []Option `yaml:"options" json:"options"`
}

// Bank is an ordered set of questions.
type Bank struct {
	Questions []Question `yaml:"questions" json:"questions"`
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.Questions)
}

// Question looks up a question by id.
func (b *Bank) Question(id string) (*Question, bool) {
	for i := range b.Questions {
		if b.Questions[i].ID == id {
			return &b.Questions[i], true
		}
	}

	return nil, false
}

func (b *Bank) validate() error {
	if len(b.Questions) == 0 {
		return ErrNoQuestions
	}

	ids := make(map[string]bool, len(b.Questions))

	for i, q := range b.Questions {
		switch {
		case q.ID == "":
			return fmt.Errorf("%w: question %d has no id", ErrBadQuestion, i+1)
		case ids[q.ID]:
			return fmt.Errorf("%w: duplicate id %q", ErrBadQuestion, q.ID)
		case len(q.Options) == 0:
			return fmt.Errorf("%w: %q has no options", ErrBadQuestion, q.ID)
		}
		ids[q.ID] = true

		keys := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if o.Key == "" || keys[o.Key] {
				return fmt.Errorf("%w: %q has a missing or duplicate option key %q", ErrBadQuestion, q.ID, o.Key)
			}
			keys[o.Key] = true
		}
	}

	return nil
}

// Parse decodes and validates a YAML question bank. Unknown fields are
// rejected.
func Parse(data []byte) (*Bank, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var b Bank
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	if err := b.validate(); err != nil {
		return nil, err
	}

	return &b, nil
}

// Load returns the built-in question bank.
func Load() (*Bank, error) {
	return Parse(questionsYAML)
}
