// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"
)

// latexCommands strips single-argument formatting commands, keeping the
// argument text. href keeps the link text, not the target.
var latexCommands = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\\textbf\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\textit\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\emph\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\textrm\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\texttt\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\textsf\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\textsc\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\text\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\mathrm\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\mathbf\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\mathit\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\url\{([^}]*)\}`), "$1"},
	{regexp.MustCompile(`\\href\{[^}]*\}\{([^}]*)\}`), "$1"},
}

// latexAccents reduces accent escapes to their base letter. Both the bare
// form (\'e) and the braced form (\'{e}) appear in the wild.
var latexAccents = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\\'([aeiouAEIOU])`), "$1"},
	{regexp.MustCompile("\\\\`([aeiouAEIOU])"), "$1"},
	{regexp.MustCompile(`\\\^([aeiouAEIOU])`), "$1"},
	{regexp.MustCompile(`\\"([aeiouAEIOU])`), "$1"},
	{regexp.MustCompile(`\\~([nNaAoO])`), "$1"},
	{regexp.MustCompile(`\\c\{([cC])\}`), "$1"},
	{regexp.MustCompile(`\\'\{([aeiouAEIOU])\}`), "$1"},
	{regexp.MustCompile("\\\\`\\{([aeiouAEIOU])\\}"), "$1"},
	{regexp.MustCompile(`\\\^\{([aeiouAEIOU])\}`), "$1"},
	{regexp.MustCompile(`\\"\{([aeiouAEIOU])\}`), "$1"},
	{regexp.MustCompile(`\\~\{([nNaAoO])\}`), "$1"},
}

// latexChars unescapes special characters and folds TeX quote and dash
// ligatures. Longer sequences are listed first so --- wins over --.
var latexChars = strings.NewReplacer(
	`\&`, "&",
	`\%`, "%",
	`\$`, "$",
	`\#`, "#",
	`\_`, "_",
	`\{`, "{",
	`\}`, "}",
	`\~`, "~",
	`\^`, "^",
	"``", `"`,
	"''", `"`,
	"---", "-",
	"--", "-",
	"`", "'",
)

var braces = regexp.MustCompile(`[{}]`)

// StripLatex removes LaTeX formatting commands, accent escapes, and special
// character escapes from s, returning the plain text. Unknown commands keep
// their backslash; downstream punctuation stripping removes it.
func StripLatex(s string) string {
	if s == "" {
		return ""
	}
	for _, c := range latexCommands {
		s = c.re.ReplaceAllString(s, c.repl)
	}
	for _, a := range latexAccents {
		s = a.re.ReplaceAllString(s, a.repl)
	}
	s = latexChars.Replace(s)
	return braces.ReplaceAllString(s, "")
}
