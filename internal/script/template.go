package script

import (
	"bufio"
	"fmt"
	"strings"
	"text/template"

	"audioverse/internal/domain/podcast"
)

var fallbackTemplate = template.Must(template.New("episode").Parse(`
# {{.}}: A Deep Dive

## Introduction
Welcome to today's episode where we explore the fascinating world of {{.}}. I'm your host, and today we'll journey through the history, current state, and future possibilities of this intriguing subject.

## Background
{{.}} has been a subject of interest for many years. Experts in fields ranging from technology to philosophy have contemplated its significance and impact on our daily lives.

## Main Discussion
When we think about {{.}}, several key aspects come to mind:

1. The historical context and how it evolved over time
2. Current applications and use cases
3. Challenges and controversies surrounding it
4. Future potential and where it might lead us

## Expert Perspectives
Many thought leaders have shared valuable insights on {{.}}. As Dr. Jane Smith from the Institute of Advanced Studies puts it, "{{.}} represents not just a technological advancement, but a fundamental shift in how we perceive our relationship with information."

## Practical Applications
For the average person, {{.}} offers several practical benefits:
- Enhanced efficiency in daily tasks
- New opportunities for learning and growth
- Improved decision-making capabilities
- Novel entertainment experiences

## Looking Ahead
As we look to the future, {{.}} is poised to transform in ways we can hardly imagine. The next decade will likely bring breakthroughs that reshape our understanding and implementation.

## Conclusion
Thank you for joining me on this exploration of {{.}}. Until next time, keep curious and stay informed.
`))

// Fallback builds the deterministic local script for topic
func Fallback(topic podcast.Topic) podcast.Script {
	var sb strings.Builder
	// strings.Builder never returns a write error
	_ = fallbackTemplate.Execute(&sb, topic.String())

	return podcast.Script{
		Title:   DefaultTitle(topic),
		Content: sb.String(),
	}
}

func DefaultTitle(topic podcast.Topic) string {
	return fmt.Sprintf("Exploring %s", topic)
}

// ExtractTitle returns the text of the first "# " heading in content,
// ignoring deeper headings. DefaultTitle is used when there is no such
// heading or when the first one is blank.
func ExtractTitle(content string, topic podcast.Topic) string {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !strings.HasPrefix(line, "#") || strings.HasPrefix(line, "##") {
			continue
		}
		if title := strings.TrimSpace(line[1:]); title != "" {
			return title
		}
		break
	}

	return DefaultTitle(topic)
}
