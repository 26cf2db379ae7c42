package animation_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/visaire/pkg/model"
	"github.com/m-mizutani/visaire/pkg/repository"
	"github.com/m-mizutani/visaire/pkg/usecase/animation"
)

// Mock Service
type mockService struct {
	mu          sync.Mutex
	status      model.Status
	healthErr   error
	generateFn  func(prompt string) (*model.GenerateResult, error)
	prompts     []string
	healthCalls int
}

func (m *mockService) CheckHealth(ctx context.Context) (model.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthCalls++
	if m.healthErr != nil {
		return model.StatusOffline, m.healthErr
	}
	return m.status, nil
}

func (m *mockService) Generate(ctx context.Context, prompt string) (*model.GenerateResult, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	fn := m.generateFn
	m.mu.Unlock()

	if fn == nil {
		return &model.GenerateResult{VideoURL: "/videos/default.mp4"}, nil
	}
	return fn(prompt)
}

func (m *mockService) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.prompts...)
}

// Mock UI
type mockUI struct {
	mu        sync.Mutex
	status    model.Status
	busy      bool
	busyLog   []bool
	errorMsg  string
	errorOn   bool
	video     *model.Video
	download  string
	history   model.History
	renders   int
	prompt    string
	confirm   bool
	confirms  []string
	notices   []string
	presented []string
}

func (m *mockUI) SetStatus(status model.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

func (m *mockUI) SetBusy(busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = busy
	m.busyLog = append(m.busyLog, busy)
}

func (m *mockUI) ShowError(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsg = message
	m.errorOn = true
}

func (m *mockUI) HideError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorOn = false
}

func (m *mockUI) ShowVideo(video model.Video, downloadURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.video = &video
	m.download = downloadURL
}

func (m *mockUI) RenderHistory(history model.History) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = history
	m.renders++
}

func (m *mockUI) SetPromptText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompt = text
}

func (m *mockUI) Confirm(message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirms = append(m.confirms, message)
	return m.confirm
}

func (m *mockUI) Notify(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, message)
}

func (m *mockUI) PresentURL(message, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presented = append(m.presented, message+" "+url)
}

// Mock Platform
type mockPlatform struct {
	shareErr     error
	clipboardErr error
	shared       []model.ShareData
	copied       []string
}

func (m *mockPlatform) Share(ctx context.Context, data model.ShareData) error {
	if m.shareErr != nil {
		return m.shareErr
	}
	m.shared = append(m.shared, data)
	return nil
}

func (m *mockPlatform) CopyToClipboard(text string) error {
	if m.clipboardErr != nil {
		return m.clipboardErr
	}
	m.copied = append(m.copied, text)
	return nil
}

type originResolver struct{}

func (originResolver) ResolveURL(ref string) string {
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return "http://localhost:8000" + ref
}

type fixture struct {
	ctrl     *animation.Controller
	service  *mockService
	ui       *mockUI
	platform *mockPlatform
	kv       *repository.Memory
	store    *repository.HistoryStore
}

var testNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.Local)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		service:  &mockService{status: model.StatusOnline},
		ui:       &mockUI{},
		platform: &mockPlatform{},
		kv:       repository.NewMemory(),
	}
	f.store = repository.NewHistoryStore(f.kv)

	tick := testNow
	ctrl, err := animation.New(animation.NewInput{
		Service:  f.service,
		Platform: f.platform,
		UI:       f.ui,
		Store:    f.store,
		Resolver: originResolver{},
		Now: func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		},
	})
	gt.NoError(t, err)
	f.ctrl = ctrl
	return f
}

func TestNewRequiresDependencies(t *testing.T) {
	store := repository.NewHistoryStore(repository.NewMemory())

	_, err := animation.New(animation.NewInput{UI: &mockUI{}, Store: store})
	gt.Error(t, err)

	_, err = animation.New(animation.NewInput{Service: &mockService{}, Store: store})
	gt.Error(t, err)

	_, err = animation.New(animation.NewInput{Service: &mockService{}, UI: &mockUI{}})
	gt.Error(t, err)
}

func TestInit(t *testing.T) {
	t.Run("loads persisted history and checks health", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		gt.NoError(t, f.store.Save(ctx, model.History{{ID: 1, Prompt: "saved", VideoURL: "/videos/1.mp4"}}))

		f.ctrl.Init(ctx)
		f.ctrl.Wait()

		gt.A(t, f.ctrl.History()).Length(1)
		gt.Equal(t, f.ui.history[0].Prompt, "saved")
		gt.Equal(t, f.ui.status, model.StatusOnline)
		gt.Equal(t, f.ctrl.Status(), model.StatusOnline)
	})

	t.Run("corrupt history is treated as empty", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		gt.NoError(t, f.kv.Set(ctx, repository.HistoryKey, []byte("not json")))

		f.ctrl.Init(ctx)
		f.ctrl.Wait()

		gt.A(t, f.ctrl.History()).Length(0)
		gt.Equal(t, f.ui.renders, 1)
		gt.Equal(t, f.ui.errorOn, false)
	})
}

func TestCheckHealth(t *testing.T) {
	testCases := []struct {
		name   string
		status model.Status
		err    error
		expect model.Status
	}{
		{"healthy", model.StatusOnline, nil, model.StatusOnline},
		{"other indicator", model.StatusDegraded, nil, model.StatusDegraded},
		{"request failure", model.StatusOnline, goerr.New("connection refused"), model.StatusOffline},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.service.status = tc.status
			f.service.healthErr = tc.err

			gt.Equal(t, f.ctrl.CheckHealth(context.Background()), tc.expect)
			gt.Equal(t, f.ui.status, tc.expect)
			gt.Equal(t, f.service.healthCalls, 1)
		})
	}
}

func TestSubmitRejectsBlankPrompt(t *testing.T) {
	for _, text := range []string{"", " ", "\t\n", "   \r\n  "} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			f := newFixture(t)

			gt.Equal(t, f.ctrl.Submit(context.Background(), text), false)
			gt.A(t, f.service.calls()).Length(0)
			gt.True(t, f.ui.errorOn)
			gt.Equal(t, f.ui.errorMsg, "Please enter a prompt for your animation")
			gt.A(t, f.ui.busyLog).Length(0)
		})
	}
}

func TestSubmitSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.service.generateFn = func(prompt string) (*model.GenerateResult, error) {
		return &model.GenerateResult{VideoURL: "/videos/123.mp4"}, nil
	}
	f.ui.ShowError("stale error")

	gt.True(t, f.ctrl.Submit(ctx, "  a bouncing ball  "))

	gt.Equal(t, f.service.calls(), []string{"a bouncing ball"})
	gt.V(t, f.ui.video).NotNil()
	gt.Equal(t, f.ui.video.URL, "/videos/123.mp4")
	gt.Equal(t, f.ui.video.Prompt, "a bouncing ball")
	gt.Equal(t, f.ui.download, "http://localhost:8000/videos/123.mp4")
	gt.Equal(t, f.ui.errorOn, false)
	gt.Equal(t, f.ui.busyLog, []bool{true, false})
	gt.Equal(t, f.ctrl.Busy(), false)

	history := f.ctrl.History()
	gt.A(t, history).Length(1)
	gt.Equal(t, history[0].Prompt, "a bouncing ball")
	gt.Equal(t, history[0].VideoURL, "/videos/123.mp4")
	gt.Equal(t, history[0].Date, testNow.Format("1/2/2006"))

	persisted := f.store.Load(ctx)
	gt.Equal(t, persisted, history)
	gt.Equal(t, f.ui.history, history)

	current, ok := f.ctrl.Current()
	gt.True(t, ok)
	gt.Equal(t, current.URL, "/videos/123.mp4")
}

func TestSubmitServiceError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.service.generateFn = func(prompt string) (*model.GenerateResult, error) {
		return nil, goerr.Wrap(&model.ServiceError{StatusCode: 500, Detail: "render failed"}, "generation failed")
	}

	gt.Equal(t, f.ctrl.Submit(ctx, "a spinning cube"), false)

	gt.True(t, f.ui.errorOn)
	gt.Equal(t, f.ui.errorMsg, "render failed")
	gt.A(t, f.ctrl.History()).Length(0)
	gt.A(t, f.store.Load(ctx)).Length(0)
	gt.Equal(t, f.ui.busy, false)
	gt.Equal(t, f.ui.busyLog, []bool{true, false})
	gt.V(t, f.ui.video).Nil()
}

func TestSubmitGenericFailure(t *testing.T) {
	testCases := map[string]error{
		"transport":         goerr.New("connection reset"),
		"service no detail": &model.ServiceError{StatusCode: 502},
	}

	for name, genErr := range testCases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.service.generateFn = func(prompt string) (*model.GenerateResult, error) {
				return nil, genErr
			}

			gt.Equal(t, f.ctrl.Submit(context.Background(), "a circle"), false)
			gt.Equal(t, f.ui.errorMsg, "Failed to generate animation")
			gt.Equal(t, f.ui.busy, false)
			gt.Equal(t, f.ctrl.Busy(), false)
		})
	}
}

func TestSubmitSendsFullPrompt(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("x", 150)

	gt.True(t, f.ctrl.Submit(context.Background(), long))
	gt.Equal(t, f.service.calls(), []string{long})
	gt.Equal(t, f.ctrl.History()[0].Prompt, strings.Repeat("x", 100)+"...")
}

func TestSubmitWhileBusyIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	f.service.generateFn = func(prompt string) (*model.GenerateResult, error) {
		close(started)
		<-release
		return &model.GenerateResult{VideoURL: "/videos/slow.mp4"}, nil
	}

	done := make(chan bool)
	go func() {
		done <- f.ctrl.Submit(ctx, "slow")
	}()

	<-started
	gt.True(t, f.ctrl.Busy())
	gt.Equal(t, f.ctrl.Submit(ctx, "second"), false)
	close(release)

	gt.True(t, <-done)
	gt.Equal(t, f.service.calls(), []string{"slow"})
	gt.A(t, f.ctrl.History()).Length(1)
}

func TestHistoryCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		gt.True(t, f.ctrl.Submit(ctx, fmt.Sprintf("prompt %d", i)))
		gt.True(t, len(f.ctrl.History()) <= model.HistoryCapacity)
	}

	history := f.ctrl.History()
	gt.A(t, history).Length(10)
	gt.Equal(t, history[0].Prompt, "prompt 11")
	gt.Equal(t, history[9].Prompt, "prompt 2")
	gt.A(t, f.store.Load(ctx)).Length(10)

	seen := map[model.HistoryID]bool{}
	for _, item := range history {
		gt.Equal(t, seen[item.ID], false)
		seen[item.ID] = true
	}
}

func TestHistoryIDsUniqueWithFrozenClock(t *testing.T) {
	store := repository.NewHistoryStore(repository.NewMemory())
	ctrl, err := animation.New(animation.NewInput{
		Service: &mockService{},
		UI:      &mockUI{},
		Store:   store,
		Now:     func() time.Time { return testNow },
	})
	gt.NoError(t, err)

	ctx := context.Background()
	gt.True(t, ctrl.Submit(ctx, "one"))
	gt.True(t, ctrl.Submit(ctx, "two"))

	history := ctrl.History()
	gt.NotEqual(t, history[0].ID, history[1].ID)
}

func TestLoadHistoryItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gt.NoError(t, f.store.Save(ctx, model.History{
		{ID: 2, Prompt: "a wave", VideoURL: "/videos/2.mp4"},
		{ID: 1, Prompt: "a square", VideoURL: "/videos/1.mp4"},
	}))
	f.ctrl.Init(ctx)
	f.ctrl.Wait()

	gt.NoError(t, f.ctrl.LoadHistoryItem(ctx, 1))
	gt.Equal(t, f.ui.video.URL, "/videos/1.mp4")
	gt.Equal(t, f.ui.video.Prompt, "a square")
	gt.Equal(t, f.ui.prompt, "a square")

	err := f.ctrl.LoadHistoryItem(ctx, 99)
	gt.Error(t, err)
}

func TestDeleteHistoryItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gt.NoError(t, f.store.Save(ctx, model.History{
		{ID: 3, Prompt: "c"}, {ID: 2, Prompt: "b"}, {ID: 1, Prompt: "a"},
	}))
	f.ctrl.Init(ctx)
	f.ctrl.Wait()

	gt.NoError(t, f.ctrl.DeleteHistoryItem(ctx, 2))

	history := f.ctrl.History()
	gt.A(t, history).Length(2)
	gt.Equal(t, history[0].ID, model.HistoryID(3))
	gt.Equal(t, history[1].ID, model.HistoryID(1))
	gt.Equal(t, f.store.Load(ctx), history)
	gt.Equal(t, f.ui.history, history)

	gt.Error(t, f.ctrl.DeleteHistoryItem(ctx, 2))
	gt.A(t, f.ctrl.History()).Length(2)
}

func TestClearHistory(t *testing.T) {
	setup := func(t *testing.T) *fixture {
		f := newFixture(t)
		ctx := context.Background()
		gt.NoError(t, f.store.Save(ctx, model.History{{ID: 1, Prompt: "a"}, {ID: 2, Prompt: "b"}}))
		f.ctrl.Init(ctx)
		f.ctrl.Wait()
		return f
	}

	t.Run("confirmed", func(t *testing.T) {
		f := setup(t)
		f.ui.confirm = true

		gt.True(t, f.ctrl.ClearHistory(context.Background()))
		gt.A(t, f.ctrl.History()).Length(0)
		gt.A(t, f.store.Load(context.Background())).Length(0)
		gt.A(t, f.ui.history).Length(0)
		gt.Equal(t, f.ui.confirms, []string{"Are you sure you want to clear all animation history?"})
	})

	t.Run("declined", func(t *testing.T) {
		f := setup(t)
		f.ui.confirm = false

		gt.Equal(t, f.ctrl.ClearHistory(context.Background()), false)
		gt.A(t, f.ctrl.History()).Length(2)
		gt.A(t, f.store.Load(context.Background())).Length(2)
	})
}

func TestShare(t *testing.T) {
	video := model.Video{URL: "/videos/7.mp4", Prompt: "a pendulum"}

	t.Run("native share", func(t *testing.T) {
		f := newFixture(t)
		f.ctrl.Share(context.Background(), video)

		gt.A(t, f.platform.shared).Length(1)
		gt.Equal(t, f.platform.shared[0], model.ShareData{
			Title: "Visaire Animation",
			Text:  `Check out this animation: "a pendulum"`,
			URL:   "http://localhost:8000/videos/7.mp4",
		})
		gt.A(t, f.platform.copied).Length(0)
	})

	t.Run("clipboard fallback", func(t *testing.T) {
		f := newFixture(t)
		f.platform.shareErr = animation.ErrShareUnsupported
		f.ctrl.Share(context.Background(), video)

		gt.Equal(t, f.platform.copied, []string{"http://localhost:8000/videos/7.mp4"})
		gt.Equal(t, f.ui.notices, []string{"Video URL copied to clipboard!"})
		gt.A(t, f.ui.presented).Length(0)
	})

	t.Run("manual copy fallback", func(t *testing.T) {
		f := newFixture(t)
		f.platform.shareErr = goerr.Wrap(animation.ErrShareUnsupported, "terminal")
		f.platform.clipboardErr = goerr.New("no clipboard")
		f.ctrl.Share(context.Background(), video)

		gt.Equal(t, f.ui.presented, []string{"Copy this URL to share: http://localhost:8000/videos/7.mp4"})
		gt.A(t, f.ui.notices).Length(0)
	})

	t.Run("dismissed native share", func(t *testing.T) {
		f := newFixture(t)
		f.platform.shareErr = goerr.New("share canceled")
		f.ctrl.Share(context.Background(), video)

		gt.A(t, f.platform.copied).Length(0)
		gt.A(t, f.ui.presented).Length(0)
		gt.A(t, f.ui.notices).Length(0)
	})
}

func TestShareCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gt.Error(t, f.ctrl.ShareCurrent(ctx))

	gt.True(t, f.ctrl.Submit(ctx, "a star"))
	gt.NoError(t, f.ctrl.ShareCurrent(ctx))
	gt.A(t, f.platform.shared).Length(1)
	gt.Equal(t, f.platform.shared[0].URL, "http://localhost:8000/videos/default.mp4")
}

func TestInputEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ui.ShowError("something")
	f.ctrl.InputChanged()
	gt.Equal(t, f.ui.errorOn, false)

	f.ui.ShowError("something")
	f.ctrl.UseExample("a rotating triangle")
	gt.Equal(t, f.ui.prompt, "a rotating triangle")
	gt.Equal(t, f.ui.errorOn, false)

	gt.Equal(t, f.ctrl.HandleKey(ctx, model.KeyEvent{Key: "Enter"}, "ignored"), false)
	gt.A(t, f.service.calls()).Length(0)

	gt.True(t, f.ctrl.HandleKey(ctx, model.KeyEvent{Key: "Enter", Ctrl: true}, "by shortcut"))
	gt.Equal(t, f.service.calls(), []string{"by shortcut"})
}
