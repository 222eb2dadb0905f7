package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autotext/pkg/expander"
	"github.com/goliatone/go-autotext/pkg/notify"
	"github.com/goliatone/go-autotext/pkg/orchestrator"
	"github.com/goliatone/go-autotext/pkg/snippet"
	"github.com/goliatone/go-autotext/pkg/testsupport"
	"github.com/goliatone/go-autotext/pkg/variables"
)

type recordingTyper struct {
	mu    sync.Mutex
	typed []string
}

func (r *recordingTyper) Erase(context.Context, int) error { return nil }

func (r *recordingTyper) Type(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typed = append(r.typed, text)
	return nil
}

func (r *recordingTyper) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.typed...)
}

type recordingAlerter struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (r *recordingAlerter) Alert(_ context.Context, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	r.bodies = append(r.bodies, body)
	return nil
}

func (r *recordingAlerter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.titles)
}

func userIs(name string) orchestrator.Option {
	return orchestrator.WithExpanderOptions(expander.WithVariables(
		variables.WithUser(func() string { return name }),
	))
}

func TestReload_LoadsFixture(t *testing.T) {
	ctx := testsupport.Context()
	orch := orchestrator.New(orchestrator.WithDefinitions(filepath.Join("testdata", "snippets.yaml")), userIs("ann"))

	if err := orch.Reload(ctx, false); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	snap := orch.Store().Current()
	if snap.Len() != 4 {
		t.Fatalf("expected 4 snippets, got %d", snap.Len())
	}
	if diff := cmp.Diff([]string{";meeting", ";mtg", ";sig"}, orch.Registry().Registered()); diff != "" {
		t.Fatalf("registered triggers mismatch (-want +got):\n%s", diff)
	}

	got, err := orch.Expand(ctx, ";sig")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "Best regards,\nann" {
		t.Fatalf("first snippet claiming a trigger should win, got %q", got)
	}

	got, err = orch.Expand(ctx, ";meeting")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	golden := filepath.Join("testdata", "expand_mtg.golden")
	if testsupport.WriteMaybeGolden(t, golden, []byte(got)) {
		return
	}
	if diff := testsupport.CompareGolden(testsupport.MustReadGoldenString(t, golden), got); diff != "" {
		t.Fatalf("expansion mismatch (-want +got):\n%s", diff)
	}
}

func TestExpand_UnknownTrigger(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithDefinitions(filepath.Join("testdata", "snippets.yaml")))
	if err := orch.Reload(testsupport.Context(), false); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, err := orch.Expand(testsupport.Context(), ";nope"); !errors.Is(err, orchestrator.ErrUnknownTrigger) {
		t.Fatalf("expected ErrUnknownTrigger, got %v", err)
	}
}

func TestReload_MalformedFileClearsStore(t *testing.T) {
	ctx := testsupport.Context()
	dir := t.TempDir()
	path := testsupport.WriteDefinitions(t, dir, "- trigger: ;a\n  form: A\n")

	alerts := &recordingAlerter{}
	typ := &recordingTyper{}
	orch := orchestrator.New(
		orchestrator.WithDefinitions(path),
		orchestrator.WithAlerter(alerts),
		orchestrator.WithExpanderOptions(expander.WithTyper(typ)),
	)
	if err := orch.Reload(ctx, false); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := orch.OnTrigger(ctx, ";a"); err != nil {
		t.Fatalf("OnTrigger: %v", err)
	}

	testsupport.WriteDefinitions(t, dir, "- trigger: ;a\n  form: [unclosed\n")
	err := orch.Reload(ctx, true)
	if !errors.Is(err, snippet.ErrDefinitionLoad) {
		t.Fatalf("expected definition load error, got %v", err)
	}
	if orch.Store().Loaded() {
		t.Fatalf("store should be cleared after a failed load")
	}
	if alerts.count() != 1 {
		t.Fatalf("expected one alert, got %d", alerts.count())
	}
	if !strings.Contains(alerts.bodies[0], path) {
		t.Fatalf("alert should name the file: %q", alerts.bodies[0])
	}

	if err := orch.OnTrigger(ctx, ";a"); err != nil {
		t.Fatalf("OnTrigger after failed load: %v", err)
	}
	if diff := cmp.Diff([]string{"A"}, typ.texts()); diff != "" {
		t.Fatalf("typed mismatch (-want +got):\n%s", diff)
	}
}

func TestReload_ForcedAnnouncesResult(t *testing.T) {
	var mu sync.Mutex
	var got []notify.Message
	n := notify.New(notify.SinkFunc(func(_ context.Context, msg notify.Message) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = n.Run(ctx)
	}()

	path := filepath.Join("testdata", "snippets.yaml")
	orch := orchestrator.New(orchestrator.WithDefinitions(path), orchestrator.WithNotifier(n))

	if err := orch.Reload(ctx, false); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := orch.Reload(ctx, true); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})
	mu.Lock()
	want := notify.Message{Title: notify.DefaultReloadTitle, Body: "4 snippets loaded from " + path}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Fatalf("notification mismatch (-want +got):\n%s", diff)
	}
	mu.Unlock()

	cancel()
	<-done
}

func TestReload_ConcurrentReloadsLeaveCompleteSnapshot(t *testing.T) {
	ctx := testsupport.Context()
	dir := t.TempDir()
	var doc strings.Builder
	for i := 0; i < 50; i++ {
		doc.WriteString("- trigger: ;t" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + "\n  form: x\n")
	}
	path := testsupport.WriteDefinitions(t, dir, doc.String())
	orch := orchestrator.New(orchestrator.WithDefinitions(path))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := orch.Reload(ctx, false); err != nil {
				t.Errorf("Reload: %v", err)
			}
		}()
	}
	wg.Wait()

	snap := orch.Store().Current()
	if snap.Len() != 50 || len(snap.Triggers()) != 50 {
		t.Fatalf("expected a complete snapshot, got %d snippets and %d triggers", snap.Len(), len(snap.Triggers()))
	}
}

func TestRun_ServesInputAndManualReloads(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteDefinitions(t, dir, "- trigger: ;a\n  form: first\n")

	typ := &recordingTyper{}
	orch := orchestrator.New(
		orchestrator.WithDefinitions(path),
		orchestrator.WithExpanderOptions(expander.WithTyper(typ)),
	)

	reader, writer := io.Pipe()
	reload := make(chan struct{})
	errCh := make(chan error, 1)
	go func() { errCh <- orch.Run(context.Background(), reader, reload) }()

	if _, err := writer.Write([]byte(";a\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, func() bool { return len(typ.texts()) == 1 })

	testsupport.WriteDefinitions(t, dir, "- trigger: ;a\n  form: second\n")
	reload <- struct{}{}
	waitFor(t, func() bool {
		got, err := orch.Expand(context.Background(), ";a")
		return err == nil && got == "second"
	})

	if _, err := writer.Write([]byte(";a\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, func() bool { return len(typ.texts()) == 2 })
	writer.Close()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after input closed")
	}
	if diff := cmp.Diff([]string{"first", "second"}, typ.texts()); diff != "" {
		t.Fatalf("typed mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FileChangeReloadsAndNotifies(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteDefinitions(t, dir, "- trigger: ;a\n  form: first\n")

	var mu sync.Mutex
	var got []notify.Message
	n := notify.New(notify.SinkFunc(func(_ context.Context, msg notify.Message) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg)
		return nil
	}))
	orch := orchestrator.New(
		orchestrator.WithDefinitions(path),
		orchestrator.WithNotifier(n),
		orchestrator.WithWatch(true, 50*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- orch.Run(ctx, nil, nil) }()

	waitFor(t, func() bool { return orch.Store().Loaded() })
	// Give fsnotify time to register the directory.
	time.Sleep(100 * time.Millisecond)
	testsupport.WriteDefinitions(t, dir, "- trigger: ;a\n  form: second\n")

	waitFor(t, func() bool {
		text, err := orch.Expand(context.Background(), ";a")
		return err == nil && text == "second"
	})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})
	mu.Lock()
	want := notify.Message{Title: notify.DefaultReloadTitle, Body: "1 snippet loaded from " + path}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Fatalf("notification mismatch (-want +got):\n%s", diff)
	}
	mu.Unlock()

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_BrokenDefinitionsDoNotStopRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	alerts := &recordingAlerter{}
	orch := orchestrator.New(orchestrator.WithDefinitions(path), orchestrator.WithAlerter(alerts))

	if err := orch.Run(context.Background(), strings.NewReader(";a\n"), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if alerts.count() != 1 {
		t.Fatalf("expected one alert, got %d", alerts.count())
	}
}

func TestCheck_DoesNotTouchStore(t *testing.T) {
	path := filepath.Join("testdata", "snippets.yaml")
	orch := orchestrator.New(orchestrator.WithDefinitions(path))
	snap, err := orch.Check()
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if snap.Len() != 4 || orch.Store().Loaded() {
		t.Fatalf("unexpected check result: len=%d loaded=%v", snap.Len(), orch.Store().Loaded())
	}
	want := testsupport.MustLoadSnapshot(t, path)
	if diff := cmp.Diff(want.Triggers(), snap.Triggers()); diff != "" {
		t.Fatalf("check triggers mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(orch.Path()); err != nil {
		t.Fatalf("Path: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}
