package content

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taroverse/engagebot/internal/model"
)

// Spread describes one bookable spread from the catalog.
type Spread struct {
	Code        string `yaml:"code"`
	Emoji       string `yaml:"emoji"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type file struct {
	Ladders  map[string][]int       `yaml:"ladders"`
	Messages map[string]map[int]string `yaml:"messages"`
	Spreads  []Spread               `yaml:"spreads"`
}

var _ model.TemplateSource = (*Source)(nil)

// Source holds the nurture ladders, message templates and spread
// catalog loaded from the content file. Placeholders ({channel},
// {channel_link}) are substituted once at load time; that substitution
// is pure formatting, the scheduler never sees raw templates.
type Source struct {
	ladders  map[model.Segment][]int
	messages map[model.Segment]map[int]string
	spreads  []Spread
}

// Vars are the values substituted into template placeholders.
type Vars struct {
	Channel     string
	ChannelLink string
}

// Load reads and parses the content file at path.
func Load(path string, vars Vars) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}

	return Parse(data, vars)
}

// Parse builds a Source from raw YAML.
func Parse(data []byte, vars Vars) (*Source, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse content file: %w", err)
	}

	replacer := strings.NewReplacer(
		"{channel}", vars.Channel,
		"{channel_link}", vars.ChannelLink,
	)

	src := &Source{
		ladders:  make(map[model.Segment][]int, len(f.Ladders)),
		messages: make(map[model.Segment]map[int]string, len(f.Messages)),
		spreads:  f.Spreads,
	}

	for seg, offsets := range f.Ladders {
		sorted := append([]int(nil), offsets...)
		sort.Ints(sorted)
		src.ladders[model.Segment(seg)] = sorted
	}

	for seg, byDay := range f.Messages {
		msgs := make(map[int]string, len(byDay))
		for day, text := range byDay {
			msgs[day] = replacer.Replace(text)
		}
		src.messages[model.Segment(seg)] = msgs
	}

	return src, nil
}

// Ladder returns the due day offsets for a segment, ascending.
func (s *Source) Ladder(segment model.Segment) []int {
	return s.ladders[segment]
}

// TemplateFor resolves the message text for a (segment, day offset)
// pair. A missing entry is a content gap, reported via the ok bool.
func (s *Source) TemplateFor(segment model.Segment, dayOffset int) (string, bool) {
	byDay, ok := s.messages[segment]
	if !ok {
		return "", false
	}
	text, ok := byDay[dayOffset]
	return text, ok
}

// Spreads returns the bookable spread catalog.
func (s *Source) Spreads() []Spread {
	return s.spreads
}

// SpreadByCode looks up one spread by its code, case-insensitively.
func (s *Source) SpreadByCode(code string) (Spread, bool) {
	for _, sp := range s.spreads {
		if strings.EqualFold(sp.Code, code) {
			return sp, true
		}
	}
	return Spread{}, false
}
