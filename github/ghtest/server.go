/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package ghtest provides an in-memory fake of the slice of the GitHub REST
// API the tools use: contents, issues, comments and repository creation.
package ghtest

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Call is one request observed by the fake.
type Call struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

type file struct {
	content  string
	sha      string
	withheld bool
}

type issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      *string   `json:"body"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	HTMLURL   string    `json:"html_url"`
	Comments  []string  `json:"-"`
}

type failure struct {
	status  int
	message string
}

// Server is a fake GitHub API backed by httptest.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	repos    map[string]map[string]*file
	issues   map[string][]*issue
	commits  int
	failures map[string]failure
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		repos:    map[string]map[string]*file{},
		issues:   map[string][]*issue{},
		failures: map[string]failure{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/contents/{path...}", s.getContents)
	mux.HandleFunc("PUT /repos/{owner}/{repo}/contents/{path...}", s.putContents)
	mux.HandleFunc("GET /raw/{owner}/{repo}/{path...}", s.getRaw)
	mux.HandleFunc("GET /repos/{owner}/{repo}/issues", s.listIssues)
	mux.HandleFunc("POST /repos/{owner}/{repo}/issues", s.createIssue)
	mux.HandleFunc("POST /repos/{owner}/{repo}/issues/{number}/comments", s.createComment)
	mux.HandleFunc("PATCH /repos/{owner}/{repo}/issues/{number}", s.editIssue)
	mux.HandleFunc("POST /user/repos", s.createRepo)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// APIURL is the base URL to hand to ghclient.WithBaseURL.
func (s *Server) APIURL() string { return s.URL + "/" }

// AddRepo registers an empty repository.
func (s *Server) AddRepo(owner, repo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := owner + "/" + repo
	if _, ok := s.repos[key]; !ok {
		s.repos[key] = map[string]*file{}
	}
}

// AddFile stores a file, creating the repository if needed, and returns its
// blob sha.
func (s *Server) AddFile(owner, repo, p, content string) string {
	return s.addFile(owner, repo, p, content, false)
}

// AddLargeFile stores a file whose inline content the API withholds, as
// GitHub does for files over 1MB.
func (s *Server) AddLargeFile(owner, repo, p, content string) string {
	return s.addFile(owner, repo, p, content, true)
}

func (s *Server) addFile(owner, repo, p, content string, withheld bool) string {
	s.AddRepo(owner, repo)
	s.mu.Lock()
	defer s.mu.Unlock()
	sha := BlobSHA(content)
	s.repos[owner+"/"+repo][p] = &file{content: content, sha: sha, withheld: withheld}
	return sha
}

// File returns the current content of a file.
func (s *Server) File(owner, repo, p string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.repos[owner+"/"+repo][p]
	if !ok {
		return "", false
	}
	return f.content, true
}

// AddIssue stores an issue and returns its number. A nil body is served as
// JSON null.
func (s *Server) AddIssue(owner, repo, title string, body *string, state string) int {
	s.AddRepo(owner, repo)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendIssue(owner, repo, title, body, state)
}

func (s *Server) appendIssue(owner, repo, title string, body *string, state string) int {
	key := owner + "/" + repo
	n := len(s.issues[key]) + 1
	s.issues[key] = append(s.issues[key], &issue{
		Number:    n,
		Title:     title,
		Body:      body,
		State:     state,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		HTMLURL:   fmt.Sprintf("https://github.com/%s/issues/%d", key, n),
	})
	return n
}

// Issue returns the state and comments of an issue.
func (s *Server) Issue(owner, repo string, number int) (state string, comments []string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, is := range s.issues[owner+"/"+repo] {
		if is.Number == number {
			return is.State, append([]string(nil), is.Comments...), true
		}
	}
	return "", nil, false
}

// Fail makes every request matching method and path fail with the given
// status and message.
func (s *Server) Fail(method, p string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+p] = failure{status: status, message: message}
}

// Calls returns the requests observed so far, in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsMatching returns the observed requests with the given method.
func (s *Server) CallsMatching(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// BlobSHA computes the git blob hash GitHub reports for content.
func BlobSHA(content string) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Call{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				c.Body = body
			}
		}

		s.mu.Lock()
		s.calls = append(s.calls, c)
		f, failing := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if failing {
			writeError(w, f.status, f.message)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey{}, c.Body)))
	})
}

type bodyKey struct{}

func bodyOf(r *http.Request) map[string]any {
	if body, ok := r.Context().Value(bodyKey{}).(map[string]any); ok && body != nil {
		return body
	}
	return map[string]any{}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"message":           message,
		"documentation_url": "https://docs.github.com/rest",
	})
}

func (s *Server) contentEntry(owner, repo, p string, f *file, inline bool) map[string]any {
	entry := map[string]any{
		"type":         "file",
		"name":         path.Base(p),
		"path":         p,
		"sha":          f.sha,
		"size":         len(f.content),
		"url":          fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.URL, owner, repo, p),
		"html_url":     fmt.Sprintf("https://github.com/%s/%s/blob/main/%s", owner, repo, p),
		"download_url": fmt.Sprintf("%s/raw/%s/%s/%s", s.URL, owner, repo, p),
	}
	if inline {
		if f.withheld {
			entry["encoding"] = "none"
			entry["content"] = ""
		} else {
			entry["encoding"] = "base64"
			entry["content"] = wrap(base64.StdEncoding.EncodeToString([]byte(f.content)), 60)
		}
	}
	return entry
}

// wrap inserts newlines the way GitHub formats base64 content.
func wrap(s string, width int) string {
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteByte('\n')
		s = s[width:]
	}
	b.WriteString(s)
	b.WriteByte('\n')
	return b.String()
}

func (s *Server) getContents(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	p := strings.Trim(r.PathValue("path"), "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	files, ok := s.repos[owner+"/"+repo]
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	if f, ok := files[p]; ok {
		writeJSON(w, http.StatusOK, s.contentEntry(owner, repo, p, f, true))
		return
	}

	prefix := ""
	if p != "" {
		prefix = p + "/"
	}
	var names []string
	dirs := map[string]bool{}
	for name := range files {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			dirs[prefix+rest[:i]] = true
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 && len(dirs) == 0 {
		if p == "" {
			writeError(w, http.StatusNotFound, "This repository is empty.")
			return
		}
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	for d := range dirs {
		names = append(names, d)
	}
	sort.Strings(names)

	listing := make([]map[string]any, 0, len(names))
	for _, name := range names {
		if dirs[name] {
			listing = append(listing, map[string]any{
				"type": "dir",
				"name": path.Base(name),
				"path": name,
				"sha":  BlobSHA(name),
			})
			continue
		}
		listing = append(listing, s.contentEntry(owner, repo, name, files[name], false))
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) getRaw(w http.ResponseWriter, r *http.Request) {
	owner, repo, p := r.PathValue("owner"), r.PathValue("repo"), r.PathValue("path")

	s.mu.Lock()
	f, ok := s.repos[owner+"/"+repo][p]
	s.mu.Unlock()

	if !ok {
		http.Error(w, "404: Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(f.content))
}

func (s *Server) putContents(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	p := strings.Trim(r.PathValue("path"), "/")
	body := bodyOf(r)

	message, _ := body["message"].(string)
	encoded, _ := body["content"].(string)
	sha, hasSHA := body["sha"].(string)
	if message == "" {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request.\n\n\"message\" wasn't supplied.")
		return
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		writeError(w, http.StatusBadRequest, "content is not valid Base64")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, ok := s.repos[owner+"/"+repo]
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	status := http.StatusCreated
	if existing, ok := files[p]; ok {
		if !hasSHA {
			writeError(w, http.StatusUnprocessableEntity, "Invalid request.\n\n\"sha\" wasn't supplied.")
			return
		}
		if sha != existing.sha {
			writeError(w, http.StatusConflict, fmt.Sprintf("%s does not match %s", p, sha))
			return
		}
		status = http.StatusOK
	}

	f := &file{content: string(raw), sha: BlobSHA(string(raw))}
	files[p] = f
	s.commits++
	commitSHA := fmt.Sprintf("%040x", s.commits)

	writeJSON(w, status, map[string]any{
		"content": s.contentEntry(owner, repo, p, f, false),
		"commit": map[string]any{
			"sha":      commitSHA,
			"message":  message,
			"html_url": fmt.Sprintf("https://github.com/%s/%s/commit/%s", owner, repo, commitSHA),
		},
	})
}

func (s *Server) listIssues(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	q := r.URL.Query()

	state := q.Get("state")
	if state == "" {
		state = "open"
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 {
		perPage = 30
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.repos[owner+"/"+repo]; !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	matched := []*issue{}
	for _, is := range s.issues[owner+"/"+repo] {
		if state == "all" || is.State == state {
			matched = append(matched, is)
		}
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	if end < len(matched) {
		next := fmt.Sprintf("%s%s?state=%s&per_page=%d&page=%d", s.URL, r.URL.Path, state, perPage, page+1)
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
	}
	writeJSON(w, http.StatusOK, matched[start:end])
}

func (s *Server) createIssue(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	body := bodyOf(r)

	title, _ := body["title"].(string)
	if title == "" {
		writeError(w, http.StatusUnprocessableEntity, "Validation Failed")
		return
	}
	var text *string
	if b, ok := body["body"].(string); ok {
		text = &b
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.repos[owner+"/"+repo]; !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	n := s.appendIssue(owner, repo, title, text, "open")
	writeJSON(w, http.StatusCreated, s.issues[owner+"/"+repo][n-1])
}

func (s *Server) findIssue(w http.ResponseWriter, r *http.Request) *issue {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	n, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return nil
	}
	for _, is := range s.issues[owner+"/"+repo] {
		if is.Number == n {
			return is
		}
	}
	writeError(w, http.StatusNotFound, "Not Found")
	return nil
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	body := bodyOf(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	is := s.findIssue(w, r)
	if is == nil {
		return
	}
	text, _ := body["body"].(string)
	is.Comments = append(is.Comments, text)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       len(is.Comments),
		"body":     text,
		"html_url": fmt.Sprintf("%s#issuecomment-%d", is.HTMLURL, len(is.Comments)),
	})
}

func (s *Server) editIssue(w http.ResponseWriter, r *http.Request) {
	body := bodyOf(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	is := s.findIssue(w, r)
	if is == nil {
		return
	}
	if state, ok := body["state"].(string); ok {
		is.State = state
	}
	writeJSON(w, http.StatusOK, is)
}

func (s *Server) createRepo(w http.ResponseWriter, r *http.Request) {
	body := bodyOf(r)
	name, _ := body["name"].(string)
	if name == "" {
		writeError(w, http.StatusUnprocessableEntity, "Repository creation failed.")
		return
	}
	private, _ := body["private"].(bool)
	description, _ := body["description"].(string)

	const owner = "octocat"
	s.mu.Lock()
	if _, exists := s.repos[owner+"/"+name]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusUnprocessableEntity, "Repository creation failed.")
		return
	}
	s.repos[owner+"/"+name] = map[string]*file{}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          1,
		"name":        name,
		"full_name":   owner + "/" + name,
		"private":     private,
		"description": description,
		"html_url":    "https://github.com/" + owner + "/" + name,
	})
}
