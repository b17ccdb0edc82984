package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/taskplan/internal/model"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeSub      Type = "sub"
	TypeStatus   Type = "status"
	TypePriority Type = "priority"
	TypeDue      Type = "due"
	TypeAssign   Type = "assign"
	TypeLink     Type = "link"
	TypeAttach   Type = "attach"
	TypeDelete   Type = "delete"
	TypeExport   Type = "export"
	TypeImport   Type = "import"
	TypeAutoSave Type = "autosave"
	TypeClear    Type = "clear"
	TypeReport   Type = "report"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Title string
}

type SubArgs struct {
	Parent string
	Title  string
}

type StatusArgs struct {
	Target string
	Status model.Status
}

type PriorityArgs struct {
	Target   string
	Priority model.Priority
}

// DateArgs sets or, when Date is nil, clears a task date.
type DateArgs struct {
	Target string
	Date   *model.Date
}

type LinkArgs struct {
	Target string
	URL    string
	Title  string
}

type AttachArgs struct {
	Target string
	Path   string
}

type DeleteArgs struct {
	Target string
}

type ImportArgs struct {
	Path string
}

type AutoSaveArgs struct {
	Enabled bool
}

type ReportArgs struct {
	Days int
}

// Command is a parsed palette line. Exactly one argument pointer matching
// Type is set; export and clear carry none.
type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Sub      *SubArgs
	Status   *StatusArgs
	Priority *PriorityArgs
	Date     *DateArgs
	Link     *LinkArgs
	Attach   *AttachArgs
	Delete   *DeleteArgs
	Import   *ImportArgs
	AutoSave *AutoSaveArgs
	Report   *ReportArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := Type(strings.ToLower(parts[0]))
	args := parts[1:]

	switch head {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeSub:
		return parseSub(input, args)
	case TypeStatus:
		return parseStatus(input, args)
	case TypePriority:
		return parsePriority(input, args)
	case TypeDue, TypeAssign:
		return parseDate(input, head, args)
	case TypeLink:
		return parseLink(input, args)
	case TypeAttach:
		return parseAttach(input, args)
	case TypeDelete:
		if len(args) != 1 {
			return Command{}, invalid("delete requires a task")
		}
		return Command{Type: TypeDelete, Raw: input, Delete: &DeleteArgs{Target: args[0]}}, nil
	case TypeExport, TypeClear:
		if len(args) != 0 {
			return Command{}, invalid("%s takes no arguments", head)
		}
		return Command{Type: head, Raw: input}, nil
	case TypeImport:
		if len(args) == 0 {
			return Command{}, invalid("import requires a file path")
		}
		return Command{Type: TypeImport, Raw: input, Import: &ImportArgs{Path: strings.Join(args, " ")}}, nil
	case TypeAutoSave:
		return parseAutoSave(input, args)
	case TypeReport:
		return parseReport(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseSub(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("sub requires a parent task and a title")
	}
	return Command{Type: TypeSub, Raw: raw, Sub: &SubArgs{Parent: args[0], Title: strings.Join(args[1:], " ")}}, nil
}

func parseStatus(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("status requires a task and a status")
	}
	status, err := model.ParseStatus(args[1])
	if err != nil {
		return Command{}, invalid("unknown status %q", args[1])
	}
	return Command{Type: TypeStatus, Raw: raw, Status: &StatusArgs{Target: args[0], Status: status}}, nil
}

func parsePriority(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("priority requires a task and a priority")
	}
	priority, err := model.ParsePriority(args[1])
	if err != nil {
		return Command{}, invalid("unknown priority %q", args[1])
	}
	return Command{Type: TypePriority, Raw: raw, Priority: &PriorityArgs{Target: args[0], Priority: priority}}, nil
}

func parseDate(raw string, kind Type, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("%s requires a task and a date (YYYY-MM-DD or none)", kind)
	}
	out := &DateArgs{Target: args[0]}
	switch strings.ToLower(args[1]) {
	case "none", "clear", "-":
	default:
		d, err := model.ParseDate(args[1])
		if err != nil || d.IsZero() {
			return Command{}, invalid("invalid date %q", args[1])
		}
		out.Date = &d
	}
	return Command{Type: kind, Raw: raw, Date: out}, nil
}

func parseLink(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("link requires a task and a url")
	}
	return Command{Type: TypeLink, Raw: raw, Link: &LinkArgs{
		Target: args[0],
		URL:    args[1],
		Title:  strings.Join(args[2:], " "),
	}}, nil
}

func parseAttach(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("attach requires a task and a file path")
	}
	return Command{Type: TypeAttach, Raw: raw, Attach: &AttachArgs{Target: args[0], Path: strings.Join(args[1:], " ")}}, nil
}

func parseAutoSave(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("autosave requires on or off")
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "1":
		return Command{Type: TypeAutoSave, Raw: raw, AutoSave: &AutoSaveArgs{Enabled: true}}, nil
	case "off", "false", "0":
		return Command{Type: TypeAutoSave, Raw: raw, AutoSave: &AutoSaveArgs{Enabled: false}}, nil
	default:
		return Command{}, invalid("autosave expects on or off, got %q", args[0])
	}
}

func parseReport(raw string, args []string) (Command, error) {
	out := &ReportArgs{}
	switch len(args) {
	case 0:
	case 1:
		days, err := strconv.Atoi(args[0])
		if err != nil || days <= 0 {
			return Command{}, invalid("report days must be a positive number, got %q", args[0])
		}
		out.Days = days
	default:
		return Command{}, invalid("report takes at most one argument")
	}
	return Command{Type: TypeReport, Raw: raw, Report: out}, nil
}
