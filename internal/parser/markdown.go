package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/harrison/getset/internal/models"
)

// MarkdownParser reads commands from a Markdown document. Every level 2
// heading is a title and the first fenced code block below it is the command.
// Optional YAML frontmatter may carry the platformx section.
type MarkdownParser struct {
	markdown goldmark.Markdown
}

func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(),
	}
}

func (p *MarkdownParser) Parse(r io.Reader) (*models.CommandFile, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	cf := &models.CommandFile{}
	content, frontmatter := extractFrontmatter(content)
	if frontmatter != nil {
		var fm struct {
			Telemetry *models.TelemetryConfig `yaml:"platformx"`
		}
		if err := yaml.Unmarshal(frontmatter, &fm); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		if fm.Telemetry != nil {
			if err := checkSecretKey(frontmatter); err != nil {
				return nil, err
			}
		}
		cf.Telemetry = fm.Telemetry
	}

	doc := p.markdown.Parser().Parse(text.NewReader(content))

	commands, err := extractCommands(doc, content)
	if err != nil {
		return nil, err
	}
	cf.Commands = commands
	return cf, nil
}

// extractCommands pairs each level 2 heading with the first fenced code
// block that follows it before the next level 2 heading.
func extractCommands(doc ast.Node, source []byte) ([]models.CommandEntry, error) {
	var commands []models.CommandEntry
	var current *models.CommandEntry
	found := false

	flush := func() error {
		if current == nil {
			return nil
		}
		if !found {
			return fmt.Errorf("step %q has no code block", current.Title)
		}
		commands = append(commands, *current)
		return nil
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level != 2 {
				continue
			}
			if err := flush(); err != nil {
				return nil, err
			}
			current = &models.CommandEntry{Title: strings.TrimSpace(extractText(node, source))}
			found = false
		case *ast.FencedCodeBlock:
			if current == nil || found {
				continue
			}
			current.Command = codeBlockText(node, source)
			found = true
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return commands, nil
}

// extractText extracts plain text from an AST node, including text nested in
// emphasis or code spans.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			continue
		}
		buf.WriteString(extractText(c, source))
	}
	return buf.String()
}

func codeBlockText(cb *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := cb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// extractFrontmatter extracts YAML frontmatter from markdown content
// Returns the content without frontmatter and the frontmatter bytes
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatter := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.Join(lines[i+1:], []byte("\n"))
			return body, frontmatter
		}
	}

	// No closing delimiter found
	return content, nil
}
