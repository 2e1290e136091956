// Package hierarchy assembles the flat task collection into the two-level
// story/subtask tree shown by task tables.
//
// Stories become roots. A story's children come from its explicit subtask
// ids when that list is non-empty, otherwise from every task naming the story
// as its parent. Tasks that end up unattached become standalone roots, so a
// build never drops or duplicates a record.
package hierarchy
