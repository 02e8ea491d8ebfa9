// Package report renders a checker.Result for people or machines. Text
// output is built from fasttemplate layouts and optionally styled with
// lipgloss; JSON and YAML output share one document shape. Sorting
// happens on copies here and never touches the Result itself.
package report
