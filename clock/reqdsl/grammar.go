package reqdsl

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var requestLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s;]+`},
	{Name: "Number", Pattern: `\d+(\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `=`},
})

type file struct {
	Stmts []*stmt `parser:"@@*"`
}

type stmt struct {
	Family   *string     `parser:"  \"family\" @Ident"`
	Source   *sourceStmt `parser:"| \"source\" @@"`
	HSE      *hseStmt    `parser:"| \"hse\" @@"`
	SysClk   *quantity   `parser:"| \"sysclk\" @@"`
	PLL      *string     `parser:"| \"pll\" @(\"on\" | \"off\" | \"auto\")"`
	Ceiling  *ceiling    `parser:"| \"ceiling\" @@"`
	Override []*assign   `parser:"| \"override\" @@+"`
}

type sourceStmt struct {
	Name   string    `parser:"@Ident"`
	Freq   *quantity `parser:"@@?"`
	Bypass bool      `parser:"@\"bypass\"?"`
}

// hseStmt declares the crystal without selecting it as the source.
type hseStmt struct {
	Freq   quantity `parser:"@@"`
	Bypass bool     `parser:"@\"bypass\"?"`
}

type quantity struct {
	Value float64 `parser:"@Number"`
	Unit  string  `parser:"@(\"MHz\" | \"mhz\" | \"kHz\" | \"khz\" | \"Hz\" | \"hz\")?"`
}

type ceiling struct {
	Bus  string   `parser:"@Ident"`
	Freq quantity `parser:"@@"`
}

type assign struct {
	Key   string `parser:"@Ident \"=\""`
	Value int    `parser:"@Number"`
}

var parser = participle.MustBuild[file](
	participle.Lexer(requestLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(2),
)

var quantityParser = participle.MustBuild[quantity](
	participle.Lexer(requestLexer),
	participle.Elide("Comment", "Whitespace"),
)
