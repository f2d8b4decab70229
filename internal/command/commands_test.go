// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/codequill/internal/collect"
	"github.com/jeranaias/codequill/internal/config"
	"github.com/jeranaias/codequill/internal/gemini"
	"github.com/jeranaias/codequill/internal/settings"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// fakeStore is an in-memory SettingsStore.
type fakeStore struct {
	s *settings.Settings
}

func configuredStore() *fakeStore {
	return &fakeStore{s: &settings.Settings{APIKey: "AIzaTestKey123", Model: "gemini-2.0-flash"}}
}

func (f *fakeStore) Exists() bool { return f.s != nil }

func (f *fakeStore) Load() (*settings.Settings, error) {
	if f.s == nil {
		return nil, settings.ErrNotConfigured
	}
	return f.s, nil
}

func (f *fakeStore) Save(apiKey, model string) error {
	f.s = &settings.Settings{APIKey: apiKey, Model: model}
	return nil
}

func (f *fakeStore) Destroy() (bool, error) {
	if f.s == nil {
		return false, nil
	}
	f.s = nil
	return true, nil
}

// spyGenerator records calls and returns a scripted reply or error.
type spyGenerator struct {
	calls      int
	lastSystem string
	lastUser   string
	lastModel  string
	reply      string
	err        error
}

func (g *spyGenerator) Generate(ctx context.Context, system, user, model string) (string, error) {
	g.calls++
	g.lastSystem = system
	g.lastUser = user
	g.lastModel = model
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *spyGenerator) ListModels(ctx context.Context) ([]gemini.ModelInfo, error) {
	return nil, gemini.ErrNetwork
}

// scriptedPrompter feeds pre-arranged answers to interactive commands.
type scriptedPrompter struct {
	lines   []string
	secrets []string
	said    []string
}

func (p *scriptedPrompter) ReadLine(prompt string) (string, error) {
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *scriptedPrompter) ReadSecret(prompt string) (string, error) {
	if len(p.secrets) == 0 {
		return "", io.EOF
	}
	s := p.secrets[0]
	p.secrets = p.secrets[1:]
	return s, nil
}

func (p *scriptedPrompter) Say(msg string) { p.said = append(p.said, msg) }

// =============================================================================
// HELPERS
// =============================================================================

func newTestDeps(store SettingsStore, gen Generator, workDir string) *Deps {
	cfg := config.Default()
	return &Deps{
		Config:   cfg,
		Settings: store,
		Client:   gen,
		Git:      collect.NewGit(workDir, 10*time.Second),
		Files:    collect.NewFiles(workDir, cfg.Limits.FileMaxBytes),
		Tree:     collect.NewTree(cfg.Limits.TreeMaxDepth, cfg.Limits.TreeMaxFiles),
		Prompter: &scriptedPrompter{},
	}
}

func newTestManager(store SettingsStore, gen Generator, workDir string) *Manager {
	return NewManager(NewRegistry(), newTestDeps(store, gen, workDir))
}

// initTestRepo creates a real git repository. Skips when git is
// unavailable.
func initTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	return dir
}

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistryValidates(t *testing.T) {
	if err := NewRegistry().Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	r := NewRegistry()
	r.Register(IDSetup, func(d *Deps) Command { return nil })
}

func TestRegistryMissingCommandFailsValidation(t *testing.T) {
	r := &Registry{factories: map[string]Factory{}}
	if err := r.Validate(); err == nil {
		t.Error("empty registry passed validation")
	}
}

func TestEveryIdentifierDispatches(t *testing.T) {
	m := newTestManager(configuredStore(), &spyGenerator{reply: "ok"}, t.TempDir())
	for _, id := range Identifiers {
		res := m.Dispatch(context.Background(), "/"+id, &Session{WorkDir: t.TempDir()})
		if res.Kind == KindUnknownCommand {
			t.Errorf("/%s classified as UnknownCommand", id)
		}
	}
}

// =============================================================================
// MANAGER TESTS
// =============================================================================

func TestDispatchUnknownCommand(t *testing.T) {
	m := newTestManager(configuredStore(), &spyGenerator{}, t.TempDir())
	res := m.Dispatch(context.Background(), "/nonexistent", &Session{})
	if res.OK || res.Kind != KindUnknownCommand {
		t.Errorf("res = %+v, want UnknownCommand", res)
	}
}

func TestDispatchNonCommandInput(t *testing.T) {
	m := newTestManager(configuredStore(), &spyGenerator{}, t.TempDir())
	res := m.Dispatch(context.Background(), "just some text", &Session{})
	if res.OK || res.Kind != KindInvalidInput {
		t.Errorf("res = %+v, want InvalidInput", res)
	}
}

func TestDispatchNotConfiguredShortCircuits(t *testing.T) {
	gen := &spyGenerator{reply: "should never be used"}
	m := newTestManager(&fakeStore{}, gen, t.TempDir())

	for _, id := range []string{IDCommit, IDReview, IDExplain, IDInit, IDModels} {
		res := m.Dispatch(context.Background(), "/"+id, &Session{WorkDir: t.TempDir()})
		if res.Kind != KindNotConfigured {
			t.Errorf("/%s: kind = %v, want NotConfigured", id, res.Kind)
		}
	}
	if gen.calls != 0 {
		t.Errorf("generation client called %d times before setup", gen.calls)
	}
}

func TestDispatchSetupAndCleanWorkUnconfigured(t *testing.T) {
	store := &fakeStore{}
	deps := newTestDeps(store, &spyGenerator{}, t.TempDir())
	deps.Prompter = &scriptedPrompter{secrets: []string{"AIzaNewKey456"}, lines: []string{"1"}}
	m := NewManager(NewRegistry(), deps)

	res := m.Dispatch(context.Background(), "/clean", &Session{})
	if !res.OK {
		t.Fatalf("/clean unconfigured: %+v", res)
	}

	res = m.Dispatch(context.Background(), "/setup", &Session{})
	if !res.OK {
		t.Fatalf("/setup unconfigured: %+v", res)
	}
	if !store.Exists() {
		t.Error("setup did not persist settings")
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	r := &Registry{factories: map[string]Factory{}}
	for _, id := range Identifiers {
		r.Register(id, func(d *Deps) Command { return panicCommand{} })
	}
	m := NewManager(r, newTestDeps(configuredStore(), &spyGenerator{}, t.TempDir()))

	res := m.Dispatch(context.Background(), "/commit", &Session{})
	if res.OK || res.Kind != KindInternalError {
		t.Errorf("res = %+v, want InternalError", res)
	}

	// The manager must stay usable afterwards.
	res = m.Dispatch(context.Background(), "/nonexistent", &Session{})
	if res.Kind != KindUnknownCommand {
		t.Errorf("manager broken after panic: %+v", res)
	}
}

type panicCommand struct{}

func (panicCommand) Execute(ctx context.Context, args []string, sess *Session) Result {
	panic("boom")
}

func TestDispatchSingleInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	r := &Registry{factories: map[string]Factory{}}
	for _, id := range Identifiers {
		r.Register(id, func(d *Deps) Command {
			return blockingCommand{started: started, release: release}
		})
	}
	m := NewManager(r, newTestDeps(configuredStore(), &spyGenerator{}, t.TempDir()))

	var first atomic.Value
	go func() {
		first.Store(m.Dispatch(context.Background(), "/commit", &Session{}))
	}()
	<-started

	second := m.Dispatch(context.Background(), "/review", &Session{})
	if second.Kind != KindInternalError || !strings.Contains(second.Message, "already running") {
		t.Errorf("concurrent dispatch = %+v, want already-running InternalError", second)
	}

	close(release)
}

type blockingCommand struct {
	started chan struct{}
	release chan struct{}
}

func (c blockingCommand) Execute(ctx context.Context, args []string, sess *Session) Result {
	close(c.started)
	<-c.release
	return Success("done", "")
}

func TestDispatchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &spyGenerator{err: context.Canceled}
	m := newTestManager(configuredStore(), gen, t.TempDir())

	res := m.Dispatch(ctx, "/explain main.go", &Session{WorkDir: t.TempDir()})
	if res.OK {
		t.Fatalf("cancelled dispatch succeeded: %+v", res)
	}
	if res.Kind != KindCancelled && res.Kind != KindFileNotFound {
		t.Errorf("kind = %v, want Cancelled or FileNotFound", res.Kind)
	}
}

// =============================================================================
// SETUP TESTS
// =============================================================================

func TestSetupHappyPath(t *testing.T) {
	store := &fakeStore{}
	deps := newTestDeps(store, &spyGenerator{}, t.TempDir())
	deps.Prompter = &scriptedPrompter{secrets: []string{"AIzaSecretKey99"}, lines: []string{"2"}}
	m := NewManager(NewRegistry(), deps)

	res := m.Dispatch(context.Background(), "/setup", &Session{})
	if !res.OK {
		t.Fatalf("setup failed: %+v", res)
	}
	s, err := store.Load()
	if err != nil {
		t.Fatalf("Load() after setup: %v", err)
	}
	if s.APIKey != "AIzaSecretKey99" {
		t.Errorf("stored key = %q", s.APIKey)
	}
	if s.Model != gemini.Catalog[1] {
		t.Errorf("stored model = %q, want %q", s.Model, gemini.Catalog[1])
	}
	if strings.Contains(res.Message, "AIzaSecretKey99") || strings.Contains(res.Payload, "AIzaSecretKey99") {
		t.Error("setup result leaks the full API key")
	}
	if !strings.Contains(res.Message, "AIza...****") {
		t.Errorf("setup message missing masked key: %q", res.Message)
	}
}

func TestSetupOverwritesExisting(t *testing.T) {
	store := configuredStore()
	deps := newTestDeps(store, &spyGenerator{}, t.TempDir())
	deps.Prompter = &scriptedPrompter{secrets: []string{"AIzaReplacement1"}, lines: []string{"1"}}
	m := NewManager(NewRegistry(), deps)

	res := m.Dispatch(context.Background(), "/setup", &Session{})
	if !res.OK {
		t.Fatalf("setup failed: %+v", res)
	}
	s, _ := store.Load()
	if s.APIKey != "AIzaReplacement1" {
		t.Errorf("stored key = %q, want replacement", s.APIKey)
	}
}

func TestSetupEmptyKeyRetriesThenFails(t *testing.T) {
	deps := newTestDeps(&fakeStore{}, &spyGenerator{}, t.TempDir())
	deps.Prompter = &scriptedPrompter{secrets: []string{"", "  ", ""}}
	m := NewManager(NewRegistry(), deps)

	res := m.Dispatch(context.Background(), "/setup", &Session{})
	if res.OK || res.Kind != KindInvalidInput {
		t.Errorf("res = %+v, want InvalidInput after 3 empty keys", res)
	}
}

func TestSetupBadModelChoiceRetriesThenFails(t *testing.T) {
	store := &fakeStore{}
	deps := newTestDeps(store, &spyGenerator{}, t.TempDir())
	deps.Prompter = &scriptedPrompter{
		secrets: []string{"AIzaGoodKey"},
		lines:   []string{"0", "99", "banana"},
	}
	m := NewManager(NewRegistry(), deps)

	res := m.Dispatch(context.Background(), "/setup", &Session{})
	if res.OK || res.Kind != KindInvalidInput {
		t.Errorf("res = %+v, want InvalidInput after 3 bad choices", res)
	}
	if store.Exists() {
		t.Error("failed setup persisted settings")
	}
}

// =============================================================================
// CLEAN TESTS
// =============================================================================

func TestCleanIdempotent(t *testing.T) {
	store := configuredStore()
	m := newTestManager(store, &spyGenerator{}, t.TempDir())

	res := m.Dispatch(context.Background(), "/clean", &Session{})
	if !res.OK {
		t.Fatalf("first clean: %+v", res)
	}
	if store.Exists() {
		t.Error("settings survived clean")
	}

	res = m.Dispatch(context.Background(), "/clean", &Session{})
	if !res.OK {
		t.Fatalf("second clean: %+v", res)
	}
	if !strings.Contains(strings.ToLower(res.Message), "nothing") {
		t.Errorf("second clean message = %q", res.Message)
	}
}

// =============================================================================
// COMMIT / REVIEW TESTS
// =============================================================================

func TestCommitNoRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	gen := &spyGenerator{reply: "never"}
	m := newTestManager(configuredStore(), gen, dir)

	res := m.Dispatch(context.Background(), "/commit", &Session{WorkDir: dir})
	if res.Kind != KindNotARepository {
		t.Errorf("kind = %v, want NotARepository", res.Kind)
	}
	if gen.calls != 0 {
		t.Errorf("generation client called %d times outside a repo", gen.calls)
	}
}

func TestCommitEmptyDiff(t *testing.T) {
	dir := initTestRepo(t)
	gen := &spyGenerator{reply: "never"}
	m := newTestManager(configuredStore(), gen, dir)

	res := m.Dispatch(context.Background(), "/commit", &Session{WorkDir: dir})
	if res.Kind != KindNoChanges {
		t.Errorf("kind = %v, want NoChanges", res.Kind)
	}
	if gen.calls != 0 {
		t.Errorf("generation client called %d times on empty diff", gen.calls)
	}
}

func TestCommitSuccess(t *testing.T) {
	dir := initTestRepo(t)
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644)
	git(t, dir, "add", "a.go")

	gen := &spyGenerator{reply: `"feat: add package a"`}
	m := newTestManager(configuredStore(), gen, dir)

	res := m.Dispatch(context.Background(), "/commit", &Session{WorkDir: dir})
	if !res.OK {
		t.Fatalf("commit failed: %+v", res)
	}
	if res.Payload != "feat: add package a" {
		t.Errorf("payload = %q, wrapping quotes not stripped", res.Payload)
	}
	if res.Meta.Model != "gemini-2.0-flash" {
		t.Errorf("Meta.Model = %q", res.Meta.Model)
	}
	if res.Meta.Truncated {
		t.Error("small diff flagged as truncated")
	}
	if gen.calls != 1 {
		t.Errorf("generation client called %d times, want 1", gen.calls)
	}
}

func TestCommitTruncatesOversizedDiff(t *testing.T) {
	dir := initTestRepo(t)
	big := strings.Repeat("line of code\n", 200)
	os.WriteFile(filepath.Join(dir, "big.txt"), []byte(big), 0o644)
	git(t, dir, "add", "big.txt")

	gen := &spyGenerator{reply: "feat: big"}
	deps := newTestDeps(configuredStore(), gen, dir)
	deps.Config.Limits.DiffBudgetChars = 300
	m := NewManager(NewRegistry(), deps)

	res := m.Dispatch(context.Background(), "/commit", &Session{WorkDir: dir})
	if !res.OK {
		t.Fatalf("commit failed: %+v", res)
	}
	if !res.Meta.Truncated {
		t.Error("Meta.Truncated = false for oversized diff")
	}
	if !strings.HasSuffix(gen.lastUser, collect.TruncationMarker) {
		t.Error("clamped diff missing truncation marker")
	}
	if len(gen.lastUser) > 300 {
		t.Errorf("prompt length %d exceeds budget", len(gen.lastUser))
	}
}

func TestReviewUsesReviewTemplate(t *testing.T) {
	dir := initTestRepo(t)
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644)
	git(t, dir, "add", "a.go")

	gen := &spyGenerator{reply: "## Summary\nAdds package a."}
	m := newTestManager(configuredStore(), gen, dir)

	res := m.Dispatch(context.Background(), "/review", &Session{WorkDir: dir})
	if !res.OK {
		t.Fatalf("review failed: %+v", res)
	}
	if !strings.Contains(gen.lastSystem, "reviewing") {
		t.Errorf("unexpected system prompt: %q", gen.lastSystem)
	}
}

// TestCommitRetriesTransientFailures exercises the full pipeline with
// the real generation client: two server errors, then success.
func TestCommitRetriesTransientFailures(t *testing.T) {
	dir := initTestRepo(t)
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644)
	git(t, dir, "add", "a.go")

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"fix: retry"}]}}]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Gemini.BaseURL = srv.URL
	cfg.Gemini.RetryBackoffMs = 1
	cfg.Gemini.RequestsPerMinute = 6000
	client := gemini.NewClient(cfg.Gemini, "AIzaTestKey123")

	deps := newTestDeps(configuredStore(), client, dir)
	deps.Config = cfg
	m := NewManager(NewRegistry(), deps)

	res := m.Dispatch(context.Background(), "/commit", &Session{WorkDir: dir})
	if !res.OK {
		t.Fatalf("commit after transient failures: %+v", res)
	}
	if res.Payload != "fix: retry" {
		t.Errorf("payload = %q", res.Payload)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

// =============================================================================
// EXPLAIN TESTS
// =============================================================================

func TestExplainFileArgument(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644)

	gen := &spyGenerator{reply: "It is a main package."}
	m := newTestManager(configuredStore(), gen, dir)

	res := m.Dispatch(context.Background(), "/explain main.go", &Session{WorkDir: dir})
	if !res.OK {
		t.Fatalf("explain failed: %+v", res)
	}
	if !strings.Contains(gen.lastUser, "package main") {
		t.Error("file content missing from prompt")
	}
}

func TestExplainMissingFile(t *testing.T) {
	gen := &spyGenerator{}
	m := newTestManager(configuredStore(), gen, t.TempDir())

	res := m.Dispatch(context.Background(), "/explain nope.go", &Session{WorkDir: t.TempDir()})
	if res.Kind != KindFileNotFound {
		t.Errorf("kind = %v, want FileNotFound", res.Kind)
	}
	if gen.calls != 0 {
		t.Errorf("generation client called %d times for missing file", gen.calls)
	}
}

func TestExplainPathWinsOverPasted(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644)

	gen := &spyGenerator{reply: "explained"}
	m := newTestManager(configuredStore(), gen, dir)

	sess := &Session{WorkDir: dir, Pasted: "some pasted snippet"}
	res := m.Dispatch(context.Background(), "/explain main.go", sess)
	if !res.OK {
		t.Fatalf("explain failed: %+v", res)
	}
	if strings.Contains(gen.lastUser, "pasted snippet") {
		t.Error("pasted text used despite path argument")
	}
}

func TestExplainPastedFallback(t *testing.T) {
	gen := &spyGenerator{reply: "explained"}
	m := newTestManager(configuredStore(), gen, t.TempDir())

	sess := &Session{Pasted: "def f(): pass"}
	res := m.Dispatch(context.Background(), "/explain", sess)
	if !res.OK {
		t.Fatalf("explain failed: %+v", res)
	}
	if !strings.Contains(gen.lastUser, "def f(): pass") {
		t.Error("pasted text missing from prompt")
	}
}

func TestExplainNothingToExplain(t *testing.T) {
	m := newTestManager(configuredStore(), &spyGenerator{}, t.TempDir())
	res := m.Dispatch(context.Background(), "/explain", &Session{})
	if res.Kind != KindInvalidInput {
		t.Errorf("kind = %v, want InvalidInput", res.Kind)
	}
}

// =============================================================================
// INIT / MODELS TESTS
// =============================================================================

func TestInitWritesProjectFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "README.md"), []byte("# demo\n"), 0o644)

	gen := &spyGenerator{reply: "## Overview\nA demo project."}
	m := newTestManager(configuredStore(), gen, dir)

	res := m.Dispatch(context.Background(), "/init", &Session{WorkDir: dir})
	if !res.OK {
		t.Fatalf("init failed: %+v", res)
	}

	data, err := os.ReadFile(filepath.Join(dir, "PROJECT.md"))
	if err != nil {
		t.Fatalf("PROJECT.md not written: %v", err)
	}
	if !strings.Contains(string(data), "A demo project.") {
		t.Errorf("PROJECT.md content = %q", data)
	}
	if !strings.Contains(gen.lastUser, "README.md") {
		t.Error("key file head missing from prompt")
	}
}

func TestModelsMarksConfigured(t *testing.T) {
	m := newTestManager(configuredStore(), &spyGenerator{}, t.TempDir())
	res := m.Dispatch(context.Background(), "/models", &Session{})
	if !res.OK {
		t.Fatalf("models failed: %+v", res)
	}
	if !strings.Contains(res.Payload, "(configured)") {
		t.Error("configured model not marked")
	}
	for _, name := range gemini.Catalog {
		if !strings.Contains(res.Payload, name) {
			t.Errorf("catalog entry %q missing from listing", name)
		}
	}
}
