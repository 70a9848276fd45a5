// Package ui styles terminal output for the CLI with lipgloss.
//
// A [Palette] renders headings, status lines and hints. [Default] is used for terminal
// output; [Plain] applies no styling.
package ui
