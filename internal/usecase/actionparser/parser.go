// Package actionparser turns a raw model prediction into action descriptors.
//
// A prediction looks like
//
//	Thought: the login button is at the top right
//	Action: click(start_box='[820, 40, 880, 70]')
//
// Coordinate literals are kept as opaque strings; mapping them to pixels is
// the job of package coords.
package actionparser

import (
	"fmt"
	"sort"
	"strings"

	"gui-agent/internal/domain/entity"
)

const (
	thoughtMarker    = "Thought:"
	reflectionMarker = "Reflection:"
	summaryMarker    = "Action_Summary:"
	actionMarker     = "Action:"
)

// Prediction is the structured form of one model response.
type Prediction struct {
	Raw        string
	Thought    string
	Reflection *string
	Actions    []entity.Action
	// Skipped holds the errors of calls that were dropped while others survived.
	Skipped []error
}

// Parse extracts the ordered actions of a prediction. When nothing actionable
// is found it returns an empty action list and a *entity.ParseError; it never panics.
func Parse(prediction string) (p *Prediction, err error) {
	p = &Prediction{Raw: prediction, Actions: []entity.Action{}}
	defer func() {
		if r := recover(); r != nil {
			p.Actions = []entity.Action{}
			err = &entity.ParseError{Kind: entity.ParseMalformedCall, Detail: fmt.Sprint(r)}
		}
	}()

	text := strings.ReplaceAll(prediction, "\r\n", "\n")
	at := findActionMarker(text)
	if at < 0 {
		return p, &entity.ParseError{Kind: entity.ParseMissingMarker, Detail: "no " + actionMarker + " marker", Offset: 0}
	}

	p.Thought, p.Reflection = parseHeader(text[:at])
	segmentStart := at + len(actionMarker)

	calls, skipped := parseCalls(blankActionMarkers(text[segmentStart:]), segmentStart)
	for _, c := range calls {
		actionType, ok := entity.LookupActionType(c.name)
		if !ok {
			skipped = append(skipped, &entity.ParseError{
				Kind:   entity.ParseUnknownAction,
				Detail: c.name,
				Offset: c.pos,
			})
			continue
		}
		p.Actions = append(p.Actions, entity.Action{
			Type:       actionType,
			Inputs:     c.args,
			Thought:    p.Thought,
			Reflection: copyString(p.Reflection),
		})
	}
	p.Skipped = skipped

	if len(p.Actions) == 0 {
		if len(skipped) > 0 {
			if pe, ok := skipped[0].(*entity.ParseError); ok {
				return p, pe
			}
		}
		return p, &entity.ParseError{Kind: entity.ParseNoActions, Detail: "action segment is empty", Offset: segmentStart}
	}
	return p, nil
}

// findActionMarker returns the offset of the first "Action:" that starts a line,
// falling back to the last occurrence anywhere.
func findActionMarker(text string) int {
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], actionMarker)
		if i < 0 {
			break
		}
		i += from
		if strings.TrimSpace(lineBefore(text, i)) == "" {
			return i
		}
		from = i + len(actionMarker)
	}
	return strings.LastIndex(text, actionMarker)
}

// blankActionMarkers replaces every further line-start "Action:" in the action
// segment with spaces, so each such line continues the segment. Offsets are kept.
func blankActionMarkers(segment string) string {
	lines := strings.SplitAfter(segment, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, actionMarker) {
			indent := len(line) - len(trimmed)
			lines[i] = line[:indent] + strings.Repeat(" ", len(actionMarker)) + trimmed[len(actionMarker):]
		}
	}
	return strings.Join(lines, "")
}

func lineBefore(text string, i int) string {
	start := strings.LastIndexByte(text[:i], '\n') + 1
	return text[start:i]
}

type section struct {
	marker string
	start  int
}

// parseHeader splits the text before the action marker into thought and reflection.
func parseHeader(header string) (string, *string) {
	var sections []section
	for _, m := range []string{thoughtMarker, reflectionMarker, summaryMarker} {
		if i := strings.Index(header, m); i >= 0 {
			sections = append(sections, section{marker: m, start: i})
		}
	}
	if len(sections) == 0 {
		return strings.TrimSpace(header), nil
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].start < sections[j].start })

	var thought, summary string
	var reflection *string
	for i, s := range sections {
		end := len(header)
		if i+1 < len(sections) {
			end = sections[i+1].start
		}
		body := strings.TrimSpace(header[s.start+len(s.marker) : end])
		switch s.marker {
		case thoughtMarker:
			thought = body
		case summaryMarker:
			summary = body
		case reflectionMarker:
			r := body
			reflection = &r
		}
	}

	switch {
	case thought == "":
		thought = summary
	case summary != "":
		thought = thought + "\n" + summary
	}
	return thought, reflection
}

type call struct {
	name string
	args map[string]string
	pos  int
}

func parseCalls(segment string, base int) ([]call, []error) {
	lx := newLexer(segment)
	var calls []call
	var errs []error

	for {
		tok := lx.next()
		switch tok.kind {
		case tokEOF:
			return calls, errs
		case tokSep, tokComma:
			continue
		case tokIdent:
			c, err := parseCall(lx, tok)
			if err != nil {
				err.Offset += base
				errs = append(errs, err)
				lx.skipLine()
				continue
			}
			c.pos += base
			calls = append(calls, c)
		default:
			err := malformed(tok, "expected action name, got "+tok.kind.String())
			err.Offset += base
			errs = append(errs, err)
			lx.skipLine()
		}
	}
}

func parseCall(lx *lexer, name token) (call, *entity.ParseError) {
	c := call{name: name.text, args: map[string]string{}, pos: name.pos}

	if tok := lx.next(); tok.kind != tokLParen {
		return c, malformed(tok, "expected '(' after "+name.text)
	}

	tok := lx.nextInCall()
	for tok.kind != tokRParen {
		if tok.kind != tokIdent {
			return c, malformed(tok, "expected argument name, got "+tok.kind.String())
		}
		key := tok.text

		if eq := lx.nextInCall(); eq.kind != tokEquals {
			return c, malformed(eq, "expected '=' after "+key)
		}
		val := lx.value()
		if val.kind == tokInvalid {
			return c, malformed(val, val.text)
		}
		c.args[key] = strings.TrimSpace(val.text)

		tok = lx.nextInCall()
		switch tok.kind {
		case tokComma:
			tok = lx.nextInCall()
		case tokRParen:
		default:
			return c, malformed(tok, "expected ',' or ')', got "+tok.kind.String())
		}
	}
	return c, nil
}

func malformed(tok token, detail string) *entity.ParseError {
	return &entity.ParseError{Kind: entity.ParseMalformedCall, Detail: detail, Offset: tok.pos}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
