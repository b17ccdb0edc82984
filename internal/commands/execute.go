package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Sub      func(SubArgs) (Result, error)
	Status   func(StatusArgs) (Result, error)
	Priority func(PriorityArgs) (Result, error)
	Due      func(DateArgs) (Result, error)
	Assign   func(DateArgs) (Result, error)
	Link     func(LinkArgs) (Result, error)
	Attach   func(AttachArgs) (Result, error)
	Delete   func(DeleteArgs) (Result, error)
	Export   func() (Result, error)
	Import   func(ImportArgs) (Result, error)
	AutoSave func(AutoSaveArgs) (Result, error)
	Clear    func() (Result, error)
	Report   func(ReportArgs) (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, h Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if h.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Add(*cmd.Add)
	case TypeSub:
		if h.Sub == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Sub(*cmd.Sub)
	case TypeStatus:
		if h.Status == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Status(*cmd.Status)
	case TypePriority:
		if h.Priority == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Priority(*cmd.Priority)
	case TypeDue:
		if h.Due == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Due(*cmd.Date)
	case TypeAssign:
		if h.Assign == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Assign(*cmd.Date)
	case TypeLink:
		if h.Link == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Link(*cmd.Link)
	case TypeAttach:
		if h.Attach == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Attach(*cmd.Attach)
	case TypeDelete:
		if h.Delete == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Delete(*cmd.Delete)
	case TypeExport:
		if h.Export == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Export()
	case TypeImport:
		if h.Import == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Import(*cmd.Import)
	case TypeAutoSave:
		if h.AutoSave == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.AutoSave(*cmd.AutoSave)
	case TypeClear:
		if h.Clear == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Clear()
	case TypeReport:
		if h.Report == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Report(*cmd.Report)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
