package component

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/stoewer/go-strcase"
)

// componentNamePattern follows the custom element name grammar: a leading
// ASCII letter, then letters, digits, '-', '.', '_' or name characters
// outside ASCII.
var componentNamePattern = regexp.MustCompile(`^[a-zA-Z][\-\.0-9_a-zA-Z\x{00B7}\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{037D}\x{037F}-\x{1FFF}\x{200C}-\x{200D}\x{203F}-\x{2040}\x{2070}-\x{218F}\x{2C00}-\x{2FEF}\x{3001}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFFD}]*$`)

var builtInTags = setOf("slot", "component")

var htmlTags = setOf(
	"html", "body", "base", "head", "link", "meta", "style", "title",
	"address", "article", "aside", "footer", "header", "h1", "h2", "h3", "h4",
	"h5", "h6", "hgroup", "nav", "section", "div", "dd", "dl", "dt",
	"figcaption", "figure", "picture", "hr", "img", "li", "main", "ol", "p",
	"pre", "ul", "a", "b", "abbr", "bdi", "bdo", "br", "cite", "code", "data",
	"dfn", "em", "i", "kbd", "mark", "q", "rp", "rt", "rtc", "ruby", "s",
	"samp", "small", "span", "strong", "sub", "sup", "time", "u", "var", "wbr",
	"area", "audio", "map", "track", "video", "embed", "object", "param",
	"source", "canvas", "script", "noscript", "del", "ins", "caption", "col",
	"colgroup", "table", "thead", "tbody", "td", "th", "tr", "button",
	"datalist", "fieldset", "form", "input", "label", "legend", "meter",
	"optgroup", "option", "output", "progress", "select", "textarea",
	"details", "dialog", "menu", "menuitem", "summary", "content", "element",
	"shadow", "template", "blockquote", "iframe", "tfoot",
)

var svgTags = setOf(
	"svg", "animate", "circle", "clippath", "cursor", "defs", "desc",
	"ellipse", "filter", "font-face", "foreignObject", "g", "glyph", "image",
	"line", "marker", "mask", "missing-glyph", "path", "pattern", "polygon",
	"polyline", "rect", "switch", "symbol", "text", "textpath", "tspan",
	"use", "view",
)

func setOf(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// ValidateComponentName rejects names that are not valid custom element
// names and names of built-in or reserved HTML/SVG tags.
func ValidateComponentName(name string) error {
	if !componentNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q should conform to the custom element name grammar", ErrInvalidComponentName, name)
	}
	if IsReservedTag(name) {
		return fmt.Errorf("%w: %q is a built-in or reserved HTML element", ErrInvalidComponentName, name)
	}
	return nil
}

// IsReservedTag reports whether name is a built-in component tag or an HTML
// or SVG element. Built-in tags match case-insensitively.
func IsReservedTag(name string) bool {
	if _, ok := builtInTags[strings.ToLower(name)]; ok {
		return true
	}
	if _, ok := htmlTags[name]; ok {
		return true
	}
	_, ok := svgTags[name]
	return ok
}

// FormatComponentName renders a component name for diagnostics: <Root> for
// the root instance, the PascalCase name when known, <Anonymous> otherwise.
// includeFile appends the source file recorded on the options.
func FormatComponentName(vm *Instance, includeFile bool) string {
	if vm == nil {
		return "<Anonymous>"
	}
	if vm.root == vm {
		return "<Root>"
	}
	var name, file string
	if vm.options != nil {
		name = vm.options.Name()
		if name == "" {
			name = vm.options.ComponentTag()
		}
		file = vm.options.File()
		if name == "" && file != "" {
			name = fileBaseName(file)
		}
	}
	out := "<Anonymous>"
	if name != "" {
		out = "<" + strcase.UpperCamelCase(name) + ">"
	}
	if includeFile && file != "" {
		out += " at " + file
	}
	return out
}

func fileBaseName(file string) string {
	base := file
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
