// Package sym defines canonical symbols for obelisk statements and system markers.
// These symbols are stable across CLI output, logs, and documentation.
package sym

// Statement symbols — one per top-level statement form.
const (
	Fact   = "⊢" // fact — unconditional assertion
	Rule   = "⟹" // rule — consequent follows from a reason
	Action = "⟶" // action — suggested action for a fact's truth
)

// Command symbols — the CLI verbs that read or reshape the knowledge base.
const (
	Query   = "⋈" // query — look up a fact by name
	Suggest = "✦" // suggest — resolve the action a fact suggests
	Watch   = "꩜" // watch — recompile on source change
	AM      = "≡" // am — configuration
)

// System infrastructure symbols.
const (
	DB   = "⊔" // database/storage layer
	Lex  = "▤" // source file tokenization
	Run  = "✿" // compile run start
	Done = "❀" // compile run finish
)

// PaletteOrder is the order symbols appear in help output.
var PaletteOrder = []string{Fact, Rule, Action, Query, Suggest, Watch, AM}

// SymbolToCommand maps glyph strings to their text command equivalents.
var SymbolToCommand = map[string]string{
	Fact:    "fact",
	Rule:    "rule",
	Action:  "action",
	Query:   "query",
	Suggest: "suggest",
	Watch:   "watch",
	AM:      "am",
}

// CommandToSymbol maps text commands to their canonical glyph strings.
var CommandToSymbol = map[string]string{
	"fact":    Fact,
	"rule":    Rule,
	"action":  Action,
	"query":   Query,
	"suggest": Suggest,
	"watch":   Watch,
	"am":      AM,
}

// CommandDescriptions provides human-readable explanations for help output.
var CommandDescriptions = map[string]string{
	"fact":    "Fact — unconditional assertion about two entities",
	"rule":    "Rule — a fact that becomes true when its reason is true",
	"action":  "Action — what to do when a fact is true or false",
	"query":   "Query — look up whether a fact is true",
	"suggest": "Suggest — the action a fact currently suggests",
	"watch":   "Watch — recompile sources whenever they change",
	"am":      "Configuration — settings and defaults",
}

// ForCommand returns the glyph for a command, or "" if it has none.
func ForCommand(cmd string) string {
	return CommandToSymbol[cmd]
}
