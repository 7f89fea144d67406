package parser

import (
	"strings"

	"github.com/harrison/doctest/internal/models"
)

// Reconstruct renders parsed chunks back into doctest text. For text whose
// prompts are each followed by a space, Reconstruct(Parse(text)) equals
// Dedent(text).
func (p *Parser) Reconstruct(chunks []models.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		if !c.IsExample() {
			b.WriteString(c.Text)
			continue
		}

		ex := c.Example
		pad := strings.Repeat(" ", ex.Indent)
		for i, line := range strings.Split(strings.TrimSuffix(ex.Source, "\n"), "\n") {
			prompt := p.ps2
			if i == 0 {
				prompt = p.ps1
			}
			b.WriteString(pad + prompt)
			if line != "" {
				b.WriteString(" " + line)
			}
			b.WriteString("\n")
		}
		if ex.Want != "" {
			for _, line := range strings.Split(strings.TrimSuffix(ex.Want, "\n"), "\n") {
				b.WriteString(pad + line + "\n")
			}
		}
	}
	return b.String()
}

// ScriptFromExamples converts doctest text into a script for the parser's
// language. Example sources are copied verbatim; expected output and all
// other text become comments.
func (p *Parser) ScriptFromExamples(text, name string) (string, error) {
	chunks, err := p.Parse(text, name)
	if err != nil {
		return "", err
	}

	comment := p.syntax.CommentPrefix()
	if comment == "" {
		comment = "#"
	}

	var output []string
	for _, c := range chunks {
		if c.IsExample() {
			output = append(output, strings.TrimSuffix(c.Example.Source, "\n"))
			if want := c.Example.Want; want != "" {
				output = append(output, comment+" Expected:")
				lines := strings.Split(want, "\n")
				for _, l := range lines[:len(lines)-1] {
					output = append(output, comment+comment+" "+l)
				}
			}
			continue
		}

		lines := strings.Split(c.Text, "\n")
		for _, l := range lines[:len(lines)-1] {
			output = append(output, commentLine(l, comment))
		}
	}

	for len(output) > 0 && output[len(output)-1] == comment {
		output = output[:len(output)-1]
	}
	for len(output) > 0 && output[0] == comment {
		output = output[1:]
	}
	return strings.Join(output, "\n") + "\n", nil
}

func commentLine(line, comment string) string {
	line = strings.TrimRight(line, " \t\r")
	if line == "" {
		return comment
	}
	return comment + " " + line
}
