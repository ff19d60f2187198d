/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package render turns tool results into a one-line summary and a display
// card. Everything here is pure.
package render

import (
	"fmt"
	"strings"

	"chainguard.dev/codetools/github/contents"
	"chainguard.dev/codetools/github/issues"
	"chainguard.dev/codetools/github/reporef"
	"chainguard.dev/codetools/github/repos"
	"chainguard.dev/codetools/workflows/codegen"
)

// Card is a titled block of text lines for a host UI.
type Card struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Summary is the human-facing part of a tool response.
type Summary struct {
	Text string
	Card Card
}

// lineCount counts newline-separated lines; an empty string is one line.
func lineCount(s string) int {
	return strings.Count(s, "\n") + 1
}

func short(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// CodeChanges summarizes a write-code run.
func CodeChanges(outputs []codegen.FileOutput, commits []contents.Commit) Summary {
	lines := make([]string, 0, len(outputs))
	for i, o := range outputs {
		sha := ""
		if i < len(commits) {
			sha = short(commits[i].SHA)
		}
		lines = append(lines, fmt.Sprintf("%d. Modified %s (Commit: %s)", i+1, o.FileName, sha))
	}
	return Summary{
		Text: fmt.Sprintf("Generated and pushed %d file modifications", len(outputs)),
		Card: Card{Title: "Code Changes", Lines: lines},
	}
}

// Push summarizes a push-to-git-repo run.
func Push(commits []contents.Commit) Summary {
	lines := make([]string, 0, len(commits))
	for i, c := range commits {
		line := fmt.Sprintf("%d. %s - Commit %s", i+1, c.Path, short(c.SHA))
		if c.Stats != nil {
			line += fmt.Sprintf(" (+%d -%d)", c.Stats.Additions, c.Stats.Deletions)
		}
		lines = append(lines, line)
	}
	return Summary{
		Text: fmt.Sprintf("Successfully pushed %d files to repository", len(commits)),
		Card: Card{Title: "Push Results", Lines: lines},
	}
}

// Read summarizes a read-git-repo run.
func Read(files []contents.File) Summary {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("%s (%d lines)", f.Path, lineCount(f.Content)))
	}
	if len(lines) == 0 {
		lines = []string{"No files found in specified path"}
	}
	return Summary{
		Text: fmt.Sprintf("Read %d files from repository", len(files)),
		Card: Card{Title: "Repository Contents", Lines: lines},
	}
}

// Issues summarizes a get-github-issues run.
func Issues(repo reporef.Ref, list []issues.Issue) Summary {
	lines := make([]string, 0, len(list))
	for _, is := range list {
		lines = append(lines, fmt.Sprintf("#%d %s (%s, created %s) %s",
			is.Number, is.Title, is.State, is.CreatedAt.Format("2006-01-02"), is.URL))
	}
	return Summary{
		Text: fmt.Sprintf("Found %d issues in repository %s", len(list), repo),
		Card: Card{Title: "GitHub Issues", Lines: lines},
	}
}

// CloseIssue summarizes a close-github-issue run.
func CloseIssue(number int, comment string, res issues.CloseResult) Summary {
	text := fmt.Sprintf("Successfully closed issue #%d", number)
	detail := "No closing comment added"
	if res.CommentAdded {
		text += " with comment"
		detail = "Comment added: " + comment
	}
	return Summary{
		Text: text,
		Card: Card{Title: "Issue Closed", Lines: []string{fmt.Sprintf("Issue #%d has been closed", number), detail}},
	}
}

// NewIssue summarizes a new-gh-issue run.
func NewIssue(is *issues.Issue) Summary {
	return Summary{
		Text: fmt.Sprintf("Created new issue %q at %s", is.Title, is.URL),
		Card: Card{Title: "New Issue Created", Lines: []string{"Issue Title: " + is.Title, "Issue URL: " + is.URL}},
	}
}

// NewRepo summarizes a new-gh-project run.
func NewRepo(r *repos.Repository, language string) Summary {
	return Summary{
		Text: fmt.Sprintf("Made a new repository %s and initialized a %s project", r.URL, language),
		Card: Card{Title: "New GitHub Repository Created", Lines: []string{"Repository URL: " + r.URL, "Language: " + language}},
	}
}

// Ideas summarizes a validate-idea run.
func Ideas(tasks []string) Summary {
	lines := make([]string, 0, len(tasks))
	for i, t := range tasks {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, t))
	}
	return Summary{
		Text: fmt.Sprintf("Generated %d tasks for your project idea", len(tasks)),
		Card: Card{Title: "Project Tasks", Lines: lines},
	}
}

// ReadFile summarizes a read-file run. The text carries the content so a
// model reading only the summary still sees the file.
func ReadFile(name, content string, lines int) Summary {
	return Summary{
		Text: fmt.Sprintf("Accessed the %s file content\n%s", name, content),
		Card: Card{Title: "File Contents", Lines: []string{fmt.Sprintf("Read %s, %d lines", name, lines)}},
	}
}

// WriteFile summarizes a write-file run.
func WriteFile(name string, lines int) Summary {
	return Summary{
		Text: fmt.Sprintf("Successfully wrote %d lines to %s", lines, name),
		Card: Card{Title: "File Written", Lines: []string{fmt.Sprintf("Wrote %d lines to %s", lines, name)}},
	}
}

// String renders the card as plain text.
func (c Card) String() string {
	return c.Title + "\n" + strings.Join(c.Lines, "\n")
}
