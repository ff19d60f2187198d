/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"context"
	"strings"

	"chainguard.dev/codetools/github/contents"
	"chainguard.dev/codetools/github/ghclient"
	"chainguard.dev/codetools/github/issues"
	"chainguard.dev/codetools/github/reporef"
	"chainguard.dev/codetools/github/repos"
	"chainguard.dev/codetools/llm/completion"
	"chainguard.dev/codetools/render"
	"chainguard.dev/codetools/toolerr"
	"chainguard.dev/codetools/workflows/codegen"
	"chainguard.dev/codetools/workflows/ideas"
	"chainguard.dev/codetools/workspace"
)

// Deps are the collaborators the built-in tools need. Completer,
// IdeaCompleter and Workspace may be nil; the tools that need them then fail
// with a ConfigurationError when called.
type Deps struct {
	GitHub        *ghclient.Factory
	Completer     completion.Interface
	IdeaCompleter completion.Interface
	Workspace     *workspace.Files
}

// ReadRepoRequest is the input of read-git-repo.
type ReadRepoRequest struct {
	RepoURL string `json:"repoURL" jsonschema:"required,description=The GitHub repository URL (format: https://github.com/owner/repo)"`
	Path    string `json:"path,omitempty" jsonschema:"description=Path to a file or directory; the repository root when empty"`
	Ref     string `json:"ref,omitempty" jsonschema:"description=Branch tag or commit to read; the default branch when empty"`

	repo reporef.Ref
}

func (r *ReadRepoRequest) Validate() error {
	repo, err := reporef.Parse(r.RepoURL)
	r.repo = repo
	return err
}

// ReadRepoResult is the output of read-git-repo.
type ReadRepoResult struct {
	Files []contents.File `json:"files" jsonschema:"description=The repository contents"`
}

// PushRequest is the input of push-to-git-repo.
type PushRequest struct {
	RepoURL string            `json:"repoURL" jsonschema:"required,description=The GitHub repository URL (format: https://github.com/owner/repo)"`
	Files   []contents.Change `json:"files" jsonschema:"required,description=Files to write in order"`
	Branch  string            `json:"branch,omitempty" jsonschema:"description=Branch to commit to; the default branch when empty"`

	repo reporef.Ref
}

func (r *PushRequest) Validate() error {
	repo, err := reporef.Parse(r.RepoURL)
	if err != nil {
		return err
	}
	r.repo = repo
	return contents.Validate(r.Files)
}

// PushResult is the output of push-to-git-repo.
type PushResult struct {
	Commits []contents.Commit `json:"commits" jsonschema:"description=The created commits"`
}

// IssuesRequest is the input of get-github-issues.
type IssuesRequest struct {
	RepoURL string `json:"repoURL" jsonschema:"required,description=The GitHub repository URL (format: https://github.com/owner/repo)"`
	State   string `json:"state,omitempty" jsonschema:"enum=open,enum=closed,enum=all,description=Issue state filter; open when empty"`

	repo reporef.Ref
}

func (r *IssuesRequest) Validate() error {
	repo, err := reporef.Parse(r.RepoURL)
	r.repo = repo
	return err
}

// IssuesResult is the output of get-github-issues.
type IssuesResult struct {
	Issues []issues.Issue `json:"issues" jsonschema:"description=The repository issues"`
}

// CloseIssueRequest is the input of close-github-issue.
type CloseIssueRequest struct {
	RepoURL     string `json:"repoURL" jsonschema:"required,description=The GitHub repository URL (format: https://github.com/owner/repo)"`
	IssueNumber int    `json:"issueNumber" jsonschema:"required,description=The issue number to close"`
	Comment     string `json:"comment,omitempty" jsonschema:"description=Optional comment to add before closing the issue"`

	repo reporef.Ref
}

func (r *CloseIssueRequest) Validate() error {
	repo, err := reporef.Parse(r.RepoURL)
	if err != nil {
		return err
	}
	r.repo = repo
	if r.IssueNumber <= 0 {
		return toolerr.Invalid("issueNumber", "must be positive, got %d", r.IssueNumber)
	}
	return nil
}

// NewProjectRequest is the input of new-gh-project.
type NewProjectRequest struct {
	Name     string `json:"name" jsonschema:"required,description=Name of the project"`
	Language string `json:"language" jsonschema:"required,enum=python,enum=typescript,description=Language to initialize project in"`
}

func (r *NewProjectRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return toolerr.Invalid("name", "must not be empty")
	}
	return nil
}

// NewIssueRequest is the input of new-gh-issue.
type NewIssueRequest struct {
	RepoURL     string `json:"repoUrl" jsonschema:"required,description=URL of the repository to create issues in"`
	Title       string `json:"title" jsonschema:"required,description=Title of the issue"`
	Description string `json:"description" jsonschema:"required,description=Description of the issue"`

	repo reporef.Ref
}

func (r *NewIssueRequest) Validate() error {
	repo, err := reporef.Parse(r.RepoURL)
	if err != nil {
		return err
	}
	r.repo = repo
	if strings.TrimSpace(r.Title) == "" {
		return toolerr.Invalid("title", "must not be empty")
	}
	return nil
}

// NewIssueResult is the output of new-gh-issue.
type NewIssueResult struct {
	IssueURL string `json:"issueUrl" jsonschema:"description=URL of the created issue"`
	Number   int    `json:"number" jsonschema:"description=Number of the created issue"`
}

// ReadFileRequest is the input of read-file.
type ReadFileRequest struct {
	FileName string `json:"fileName" jsonschema:"required,description=Path of the file relative to the workspace root"`
}

func (r *ReadFileRequest) Validate() error {
	if r.FileName == "" {
		return toolerr.Invalid("fileName", "must not be empty")
	}
	return nil
}

// ReadFileResult is the output of read-file.
type ReadFileResult struct {
	FileContent string `json:"fileContent" jsonschema:"description=The content of the file"`
	Lines       int    `json:"lines" jsonschema:"description=Number of lines in the file"`
}

// WriteFileRequest is the input of write-file.
type WriteFileRequest struct {
	FileName string `json:"fileName" jsonschema:"required,description=The file path relative to the workspace root"`
	Content  string `json:"content" jsonschema:"required,description=Content to write to the file"`
}

func (r *WriteFileRequest) Validate() error {
	if r.FileName == "" {
		return toolerr.Invalid("fileName", "must not be empty")
	}
	return nil
}

// WriteFileResult is the output of write-file.
type WriteFileResult struct {
	Success      bool `json:"success" jsonschema:"description=Whether the write was successful"`
	BytesWritten int  `json:"bytesWritten" jsonschema:"description=Number of bytes written"`
	Lines        int  `json:"lines" jsonschema:"description=Number of lines written"`
}

// Catalog returns every built-in tool wired to d.
func Catalog(d Deps) []*Tool {
	var (
		workflow  = codegen.New(d.Completer, d.GitHub)
		reader    = contents.NewReader(d.GitHub)
		pusher    = contents.NewPusher(d.GitHub)
		manager   = issues.NewManager(d.GitHub)
		creator   = repos.NewCreator(d.GitHub)
		validator = ideas.New(d.IdeaCompleter)
	)

	requireWorkspace := func() error {
		if d.Workspace == nil {
			return &toolerr.ConfigurationError{Setting: "WORKSPACE_DIR", Purpose: "workspace file access"}
		}
		return nil
	}

	return []*Tool{
		New("write-code", "Write Code",
			"Generates code to solve a GitHub issue based on provided context and pushes it to the repository",
			func(ctx context.Context, req *codegen.Request) (codegen.Result, render.Summary, error) {
				res, err := workflow.Run(ctx, *req)
				if err != nil {
					return codegen.Result{}, render.Summary{}, err
				}
				return *res, render.CodeChanges(res.ListOutputs, res.Commits), nil
			}),

		New("read-git-repo", "Read Git Repository",
			"Reads the content of files from a GitHub repository",
			func(ctx context.Context, req *ReadRepoRequest) (ReadRepoResult, render.Summary, error) {
				files, err := reader.Read(ctx, req.repo, req.Path, req.Ref)
				if err != nil {
					return ReadRepoResult{}, render.Summary{}, err
				}
				if files == nil {
					files = []contents.File{}
				}
				return ReadRepoResult{Files: files}, render.Read(files), nil
			}),

		New("push-to-git-repo", "Push to Git Repository",
			"Pushes file changes to a GitHub repository",
			func(ctx context.Context, req *PushRequest) (PushResult, render.Summary, error) {
				commits, err := pusher.Push(ctx, req.repo, req.Branch, req.Files)
				if err != nil {
					return PushResult{}, render.Summary{}, err
				}
				return PushResult{Commits: commits}, render.Push(commits), nil
			}),

		New("get-github-issues", "Get GitHub Issues",
			"Extracts all issues from a given GitHub repository",
			func(ctx context.Context, req *IssuesRequest) (IssuesResult, render.Summary, error) {
				list, err := manager.List(ctx, req.repo, req.State)
				if err != nil {
					return IssuesResult{}, render.Summary{}, err
				}
				return IssuesResult{Issues: list}, render.Issues(req.repo, list), nil
			}),

		New("close-github-issue", "Close GitHub Issue",
			"Closes a GitHub issue and optionally adds a closing comment",
			func(ctx context.Context, req *CloseIssueRequest) (issues.CloseResult, render.Summary, error) {
				res, err := manager.Close(ctx, req.repo, req.IssueNumber, req.Comment)
				if err != nil {
					return res, render.Summary{}, err
				}
				return res, render.CloseIssue(req.IssueNumber, req.Comment, res), nil
			}),

		New("new-gh-project", "New Github Project",
			"Initializes a new private GitHub repository for a project",
			func(ctx context.Context, req *NewProjectRequest) (repos.Repository, render.Summary, error) {
				repo, err := creator.Create(ctx, req.Name, req.Language)
				if err != nil {
					return repos.Repository{}, render.Summary{}, err
				}
				return *repo, render.NewRepo(repo, req.Language), nil
			}),

		New("new-gh-issue", "New Github Issue",
			"Makes a new issue for a Github Project",
			func(ctx context.Context, req *NewIssueRequest) (NewIssueResult, render.Summary, error) {
				is, err := manager.Create(ctx, req.repo, req.Title, req.Description)
				if err != nil {
					return NewIssueResult{}, render.Summary{}, err
				}
				return NewIssueResult{IssueURL: is.URL, Number: is.Number}, render.NewIssue(is), nil
			}),

		New("validate-idea", "Validate Idea",
			"Given the user's idea it expands on it and makes small checkpoints to be completed",
			func(ctx context.Context, req *ideas.Request) (ideas.Result, render.Summary, error) {
				res, err := validator.Expand(ctx, *req)
				if err != nil {
					return ideas.Result{}, render.Summary{}, err
				}
				return *res, render.Ideas(res.Tasks), nil
			}),

		New("read-file", "Read File",
			"Reads a file from the local workspace",
			func(_ context.Context, req *ReadFileRequest) (ReadFileResult, render.Summary, error) {
				if err := requireWorkspace(); err != nil {
					return ReadFileResult{}, render.Summary{}, err
				}
				content, lines, err := d.Workspace.Read(req.FileName)
				if err != nil {
					return ReadFileResult{}, render.Summary{}, err
				}
				return ReadFileResult{FileContent: content, Lines: lines}, render.ReadFile(req.FileName, content, lines), nil
			}),

		New("write-file", "Write File",
			"Writes content to a file at the specified path in the local workspace",
			func(_ context.Context, req *WriteFileRequest) (WriteFileResult, render.Summary, error) {
				if err := requireWorkspace(); err != nil {
					return WriteFileResult{}, render.Summary{}, err
				}
				lines, err := d.Workspace.Write(req.FileName, req.Content)
				if err != nil {
					return WriteFileResult{}, render.Summary{}, err
				}
				return WriteFileResult{Success: true, BytesWritten: len(req.Content), Lines: lines}, render.WriteFile(req.FileName, lines), nil
			}),
	}
}
