package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"tracker-go/internal/model"
	"tracker-go/internal/tracker"
)

// Operation is one named entry point of the command surface. It takes one
// JSON object and returns one JSON-encodable value.
type Operation struct {
	Name    string
	Summary string
	run     func(ctx context.Context, args json.RawMessage) (any, error)
}

// Dispatcher routes operation names to the tracking services.
type Dispatcher struct {
	ops map[string]Operation
}

// bind decodes args into T before calling fn. Empty args decode to the zero T.
// Unknown fields are rejected.
func bind[T any](name string, fn func(ctx context.Context, args T) (any, error)) func(context.Context, json.RawMessage) (any, error) {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args T
		if len(bytes.TrimSpace(raw)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&args); err != nil {
				return nil, tracker.Invalid(name, fmt.Errorf("decoding arguments: %w", err))
			}
		}
		return fn(ctx, args)
	}
}

type habitIDArgs struct {
	HabitID string `json:"habitId"`
}

type createHabitArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type updateHabitArgs struct {
	ID string `json:"id"`
	model.HabitPatch
}

type listCompletionsArgs struct {
	HabitID string `json:"habitId"`
	Limit   *int   `json:"limit,omitempty"`
}

type updateCycleArgs struct {
	ID     string            `json:"id"`
	Status model.CycleStatus `json:"status"`
}

type startSessionArgs struct {
	CycleID         string            `json:"cycleId"`
	SessionType     model.SessionType `json:"sessionType"`
	DurationMinutes int               `json:"durationMinutes"`
}

type completeSessionArgs struct {
	SessionID    string `json:"sessionId"`
	WasCompleted bool   `json:"wasCompleted"`
}

type dateArgs struct {
	Date string `json:"date"`
}

type noArgs struct{}

// NewDispatcher registers every operation against the given services.
func NewDispatcher(habits *tracker.HabitService, pomodoro *tracker.PomodoroService, licenses *tracker.LicenseService) *Dispatcher {
	d := &Dispatcher{ops: make(map[string]Operation)}

	d.add("createHabit", "Create a habit", bind("createHabit", func(ctx context.Context, a createHabitArgs) (any, error) {
		return habits.CreateHabit(ctx, a.Title, a.Description, a.Icon)
	}))
	d.add("listActiveHabits", "List habits that are not archived, newest first", bind("listActiveHabits", func(ctx context.Context, _ noArgs) (any, error) {
		return habits.ListHabits(ctx, false)
	}))
	d.add("listArchivedHabits", "List archived habits, newest first", bind("listArchivedHabits", func(ctx context.Context, _ noArgs) (any, error) {
		return habits.ListHabits(ctx, true)
	}))
	d.add("updateHabit", "Change a habit's title, description, icon or archive flag", bind("updateHabit", func(ctx context.Context, a updateHabitArgs) (any, error) {
		return habits.UpdateHabit(ctx, a.ID, a.HabitPatch)
	}))
	d.add("deleteHabit", "Delete a habit and its completions", bind("deleteHabit", func(ctx context.Context, a habitIDArgs) (any, error) {
		return nil, habits.DeleteHabit(ctx, a.HabitID)
	}))
	d.add("toggleHabitCompletion", "Flip a habit's completion mark for one day", bind("toggleHabitCompletion", func(ctx context.Context, a tracker.ToggleRequest) (any, error) {
		return habits.ToggleCompletion(ctx, a)
	}))
	d.add("listHabitCompletions", "List a habit's completions, newest first", bind("listHabitCompletions", func(ctx context.Context, a listCompletionsArgs) (any, error) {
		return habits.ListCompletions(ctx, a.HabitID, a.Limit)
	}))
	d.add("getHabitCompletionStreak", "Count consecutive completed days ending today or yesterday", bind("getHabitCompletionStreak", func(ctx context.Context, a habitIDArgs) (any, error) {
		return habits.ComputeStreak(ctx, a.HabitID)
	}))

	d.add("startPomodoroCycle", "Start a pomodoro cycle", bind("startPomodoroCycle", func(ctx context.Context, a model.CycleSettings) (any, error) {
		return pomodoro.StartCycle(ctx, a)
	}))
	d.add("getCurrentPomodoroCycle", "Show the newest in-progress cycle and its sessions", bind("getCurrentPomodoroCycle", func(ctx context.Context, _ noArgs) (any, error) {
		return pomodoro.GetCurrentCycle(ctx)
	}))
	d.add("updateCycleStatus", "Move a cycle to COMPLETED, ABANDONED or IN_PROGRESS", bind("updateCycleStatus", func(ctx context.Context, a updateCycleArgs) (any, error) {
		return pomodoro.UpdateCycleStatus(ctx, a.ID, a.Status)
	}))
	d.add("startSession", "Start a session inside a cycle", bind("startSession", func(ctx context.Context, a startSessionArgs) (any, error) {
		return pomodoro.StartSession(ctx, a.CycleID, a.SessionType, a.DurationMinutes)
	}))
	d.add("completeSession", "Finish a session", bind("completeSession", func(ctx context.Context, a completeSessionArgs) (any, error) {
		return pomodoro.CompleteSession(ctx, a.SessionID, a.WasCompleted)
	}))
	d.add("getDailyFocusMinutes", "Sum completed focus minutes for a UTC day", bind("getDailyFocusMinutes", func(ctx context.Context, a dateArgs) (any, error) {
		return pomodoro.DailyFocusMinutes(ctx, a.Date)
	}))

	d.add("activateLicenseKey", "Activate a license key for this installation", bind("activateLicenseKey", func(ctx context.Context, a tracker.ActivateRequest) (any, error) {
		return licenses.Activate(ctx, a)
	}))
	d.add("validateLicenseKey", "Check a license key with the licensing backend", bind("validateLicenseKey", func(ctx context.Context, a tracker.ValidateRequest) (any, error) {
		return licenses.Validate(ctx, a)
	}))
	d.add("deactivateLicenseKey", "Release this installation's license", bind("deactivateLicenseKey", func(ctx context.Context, a tracker.DeactivateRequest) (any, error) {
		return licenses.Deactivate(ctx, a)
	}))
	d.add("generateCheckoutSession", "Create a checkout session and return its URL", bind("generateCheckoutSession", func(ctx context.Context, _ noArgs) (any, error) {
		return licenses.GenerateCheckoutSession(ctx)
	}))

	return d
}

func (d *Dispatcher) add(name, summary string, run func(context.Context, json.RawMessage) (any, error)) {
	d.ops[name] = Operation{Name: name, Summary: summary, run: run}
}

// Operations returns the registered operations sorted by name.
func (d *Dispatcher) Operations() []Operation {
	ops := make([]Operation, 0, len(d.ops))
	for _, op := range d.ops {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// Call runs the named operation with one JSON argument object.
func (d *Dispatcher) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	op, ok := d.ops[name]
	if !ok {
		return nil, tracker.Invalid("call", fmt.Errorf("unknown operation %q", name))
	}
	return op.run(ctx, args)
}

// Render writes v to w as indented JSON or, with format "yaml", as YAML with
// the same camelCase keys.
func Render(w io.Writer, v any, format string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	switch format {
	case "json", "":
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("re-decoding result: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
