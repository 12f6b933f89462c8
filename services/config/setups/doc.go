// Package setups holds the board setups. On the host every board is
// compiled in; TinyGo builds keep only the board matching the target's
// family tag.
package setups
