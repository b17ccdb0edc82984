package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/taskplan/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add write release notes", TypeAdd},
		{"sub a1 draft outline", TypeSub},
		{"status a1 in-progress", TypeStatus},
		{"priority a1 critical", TypePriority},
		{"due a1 2024-05-01", TypeDue},
		{"assign a1 none", TypeAssign},
		{"link a1 https://example.com Design doc", TypeLink},
		{"attach a1 notes/plan.md", TypeAttach},
		{"delete a1", TypeDelete},
		{"export", TypeExport},
		{"import backups/manual.json", TypeImport},
		{"autosave off", TypeAutoSave},
		{"/clear", TypeClear},
		{"report 14", TypeReport},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseArguments(t *testing.T) {
	cmd, err := Parse("sub a1 draft the outline")
	if err != nil || cmd.Sub.Parent != "a1" || cmd.Sub.Title != "draft the outline" {
		t.Fatalf("sub = %+v, %v", cmd.Sub, err)
	}

	cmd, err = Parse("status a1 doing")
	if err != nil || cmd.Status.Status != model.StatusInProgress {
		t.Fatalf("status = %+v, %v", cmd.Status, err)
	}

	cmd, err = Parse("due a1 2024-05-01")
	if err != nil || cmd.Date.Date == nil || cmd.Date.Date.String() != "2024-05-01" {
		t.Fatalf("due = %+v, %v", cmd.Date, err)
	}

	cmd, err = Parse("assign a1 none")
	if err != nil || cmd.Date.Date != nil {
		t.Fatalf("assign none = %+v, %v", cmd.Date, err)
	}

	cmd, err = Parse("link a1 https://example.com")
	if err != nil || cmd.Link.URL != "https://example.com" || cmd.Link.Title != "" {
		t.Fatalf("link = %+v, %v", cmd.Link, err)
	}

	cmd, err = Parse("autosave ON")
	if err != nil || !cmd.AutoSave.Enabled {
		t.Fatalf("autosave = %+v, %v", cmd.AutoSave, err)
	}

	cmd, err = Parse("report")
	if err != nil || cmd.Report.Days != 0 {
		t.Fatalf("report = %+v, %v", cmd.Report, err)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{
		"add",
		"sub a1",
		"status a1 finished",
		"priority a1 urgent",
		"due a1 tomorrow",
		"link a1",
		"delete",
		"export now",
		"autosave maybe",
		"report -3",
	} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument error, got %v", in, err)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "write docs" {
				t.Fatalf("unexpected title: %q", a.Title)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteRoutesDateCommandsSeparately(t *testing.T) {
	var got []string
	h := Handlers{
		Due:    func(DateArgs) (Result, error) { got = append(got, "due"); return Result{}, nil },
		Assign: func(DateArgs) (Result, error) { got = append(got, "assign"); return Result{}, nil },
	}
	for _, in := range []string{"due a 2024-01-01", "assign a 2024-01-01"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if _, err := Execute(cmd, h); err != nil {
			t.Fatalf("execute %q: %v", in, err)
		}
	}
	if len(got) != 2 || got[0] != "due" || got[1] != "assign" {
		t.Fatalf("routed to %v", got)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("clear")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
