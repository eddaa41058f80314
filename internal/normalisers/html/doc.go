// Package html extracts the visible text of HTML pages using the
// golang.org/x/net/html tokenizer.
package html
