// Package output renders RESP replies for respkv-cli.
//
// The text format follows redis-cli conventions: simple strings are printed
// as-is in green, a nil bulk as "(nil)" in yellow and errors as
// "(error) <message>" in red. The JSON format prints one object per reply
// for scripting.
package output
