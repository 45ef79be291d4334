// Package prompt builds the Dungeon-Master chat prompts sent to the
// text-generation service and recovers their fields from a previously built
// prompt or system message.
//
// Every function in this package is pure and safe for concurrent use.
package prompt

import "strings"

// Section headers recognised by Parse, listed in match priority order.
const (
	HeaderChoice       = "Choice:"
	HeaderBiome        = "Biome:"
	HeaderFeatures     = "Features:"
	HeaderConstriction = "Constriction:"
	HeaderTextStyle    = "Text Style:"
)

// SectionSeparator is the blank line between sections of a system message.
const SectionSeparator = "\n\n"

const (
	instOpen     = "<s>[INST] <<SYS>>"
	sysClose     = "<</SYS>>"
	instClose    = "[/INST]"
	rolePreamble = "I assume role as DM generating content with the following settings:"
	listMarker   = "- "
	stylePrefix  = "Style: "
)

// Fields are the named settings a composed prompt is built from.
// The zero value is a valid, all-empty set of fields.
type Fields struct {
	Choice       string `json:"choice"`
	Biome        string `json:"biome"`
	Features     string `json:"features"`
	Constriction string `json:"constriction"`
	TextStyle    string `json:"textStyle"`
	Message      string `json:"message"`
}

// Compose renders f into the Llama 2 chat format expected by the model.
// Values are substituted verbatim.
func Compose(f Fields) string {
	var b strings.Builder
	b.Grow(256 + len(f.Choice) + len(f.Biome) + len(f.Features) +
		len(f.Constriction) + 2*len(f.TextStyle) + len(f.Message))

	b.WriteString(instOpen + "\n" + rolePreamble + SectionSeparator)
	writeSetting(&b, HeaderChoice, f.Choice)
	b.WriteString(SectionSeparator)
	writeSetting(&b, HeaderBiome, f.Biome)
	b.WriteString(SectionSeparator)
	writeSetting(&b, HeaderFeatures, f.Features)
	b.WriteString(SectionSeparator)
	writeSetting(&b, HeaderConstriction, f.Constriction)
	b.WriteString(SectionSeparator)
	writeSetting(&b, HeaderTextStyle, f.TextStyle)
	b.WriteString("\n" + sysClose + SectionSeparator)
	b.WriteString(f.Message)
	b.WriteString(SectionSeparator + stylePrefix + f.TextStyle + " " + instClose)
	return b.String()
}

func writeSetting(b *strings.Builder, header, value string) {
	b.WriteString(header)
	b.WriteString("\n" + listMarker)
	b.WriteString(value)
}

// Parse extracts Fields from a system message or a prompt produced by
// Compose. Every section is tested against the known headers in any order;
// fields with no matching section stay empty and Parse never fails.
//
// Once a section closes the system block, the following sections that carry
// no header (up to the trailing "Style: ... [/INST]" line) are taken as the
// message.
func Parse(systemMessage string) Fields {
	var f Fields
	if systemMessage == "" {
		return f
	}

	var (
		inMessage bool
		message   []string
	)
	for _, section := range strings.Split(systemMessage, SectionSeparator) {
		body, closed := strings.CutSuffix(strings.TrimRight(section, " \t\r\n"), sysClose)
		if !setField(&f, body) && inMessage {
			message = append(message, section)
		}
		inMessage = inMessage || closed
	}

	if n := len(message); n > 0 && isStyleTrailer(message[n-1]) {
		message = message[:n-1]
	}
	f.Message = strings.Join(message, SectionSeparator)
	return f
}

// setField stores the value of the first header body starts with.
func setField(f *Fields, body string) bool {
	for _, s := range settings {
		if rest, ok := strings.CutPrefix(body, s.header); ok {
			*s.field(f) = settingValue(rest)
			return true
		}
	}
	return false
}

var settings = []struct {
	header string
	field  func(*Fields) *string
}{
	{HeaderChoice, func(f *Fields) *string { return &f.Choice }},
	{HeaderBiome, func(f *Fields) *string { return &f.Biome }},
	{HeaderFeatures, func(f *Fields) *string { return &f.Features }},
	{HeaderConstriction, func(f *Fields) *string { return &f.Constriction }},
	{HeaderTextStyle, func(f *Fields) *string { return &f.TextStyle }},
}

// settingValue trims the text after a header and drops the single list
// marker Compose writes in front of each value. A bare "-" is an empty value.
func settingValue(rest string) string {
	v := strings.TrimSpace(rest)
	if v == strings.TrimSpace(listMarker) {
		return ""
	}
	return strings.TrimPrefix(v, listMarker)
}

func isStyleTrailer(section string) bool {
	return strings.HasPrefix(section, stylePrefix) && strings.HasSuffix(section, instClose)
}

// BuildSystemMessage joins a base instruction with optional example,
// constraint and style blocks. Empty slices and an empty style are omitted.
func BuildSystemMessage(base string, examples, constraints []string, style string) string {
	var b strings.Builder
	b.WriteString(base)
	if len(examples) > 0 {
		b.WriteString("\n\nExamples:\n- ")
		b.WriteString(strings.Join(examples, "\n- "))
	}
	if len(constraints) > 0 {
		b.WriteString("\n\nConstraints:\n* ")
		b.WriteString(strings.Join(constraints, "\n* "))
	}
	if style != "" {
		b.WriteString("\n\nStyle: ")
		b.WriteString(style)
	}
	return b.String()
}
